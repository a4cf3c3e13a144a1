package validation

import (
	"regexp"
	"testing"

	apperrors "github.com/kbukum/backend-template/errors"
)

type registerInput struct {
	Username string `json:"username" validate:"required,max=10"`
	Email    string `json:"email" validate:"omitempty,email"`
	Bio      string `json:"-" validate:"max=3"`
}

func fieldsOf(t *testing.T, err error) FieldErrors {
	t.Helper()
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %T", err)
	}
	if appErr.Code != apperrors.ErrCodeInvalidInput || appErr.HTTPStatus != 400 {
		t.Errorf("unexpected %s/%d", appErr.Code, appErr.HTTPStatus)
	}
	fields, ok := appErr.Details["fields"].(FieldErrors)
	if !ok {
		t.Fatalf("unexpected details %#v", appErr.Details)
	}
	return fields
}

func TestValidate_Struct(t *testing.T) {
	if err := Validate(registerInput{Username: "ana", Email: "ana@example.com"}); err != nil {
		t.Fatalf("expected valid input, got %v", err)
	}

	fields := fieldsOf(t, Validate(registerInput{Email: "nope", Bio: "long bio"}))
	if got := fields["username"]; len(got) != 1 || got[0] != "This field is required." {
		t.Errorf("username = %v", got)
	}
	if got := fields["email"]; len(got) != 1 || got[0] != "Enter a valid email address." {
		t.Errorf("email = %v", got)
	}
	if _, ok := fields["Bio"]; !ok {
		t.Errorf("expected Go field name when json tag is '-': %v", fields)
	}
}

func TestValidate_MaxMessage(t *testing.T) {
	fields := fieldsOf(t, Validate(registerInput{Username: "a-very-long-name"}))
	if got := fields["username"]; len(got) != 1 || got[0] != "Ensure this field has no more than 10 characters." {
		t.Errorf("username = %v", got)
	}
}

func TestValidator_Collects(t *testing.T) {
	v := New()
	v.Required("password", "   ")
	v.MinLength("password", "short", 8)
	v.MaxLength("first_name", "ok", 150)
	v.Pattern("username", "bad name!", regexp.MustCompile(`^[\w.@+-]+$`), "Enter a valid username.")
	v.Custom(false, "password2", "Passwords do not match.")

	appErr := v.Validate()
	if appErr == nil {
		t.Fatal("expected errors")
	}
	fields := v.Errors()
	if len(fields["password"]) != 2 {
		t.Errorf("password = %v", fields["password"])
	}
	if _, ok := fields["first_name"]; ok {
		t.Error("first_name should be valid")
	}
	if len(fields["username"]) != 1 || len(fields["password2"]) != 1 {
		t.Errorf("fields = %v", fields)
	}
	if appErr.Message == "" {
		t.Error("expected a summary message")
	}
}

func TestValidator_NoErrors(t *testing.T) {
	v := New().Required("name", "Ana").MinLength("name", "Ana", 2)
	if v.HasErrors() || v.Validate() != nil {
		t.Errorf("unexpected errors %v", v.Errors())
	}
}
