package validation

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	apperrors "github.com/kbukum/backend-template/errors"
)

// FieldErrors maps a field name to its messages.
type FieldErrors map[string][]string

// Validator collects field errors.
type Validator struct {
	errors FieldErrors
}

// New creates a new Validator.
func New() *Validator {
	return &Validator{errors: make(FieldErrors)}
}

// AddError adds a message for field.
func (v *Validator) AddError(field, message string) {
	v.errors[field] = append(v.errors[field], message)
}

// HasErrors returns true if there are validation errors.
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Errors returns all collected errors.
func (v *Validator) Errors() FieldErrors {
	return v.errors
}

// Validate returns a VALIDATION AppError if any check failed, nil otherwise.
func (v *Validator) Validate() *apperrors.AppError {
	if !v.HasErrors() {
		return nil
	}

	fields := make([]string, 0, len(v.errors))
	for f := range v.errors {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	messages := make([]string, 0, len(fields))
	for _, f := range fields {
		messages = append(messages, fmt.Sprintf("%s: %s", f, strings.Join(v.errors[f], " ")))
	}

	appErr := apperrors.Validation(strings.Join(messages, "; "))
	appErr.Details = map[string]any{"fields": v.errors}
	return appErr
}

// Required checks that value is not blank.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.AddError(field, "This field is required.")
	}
	return v
}

// MaxLength checks that value has at most maxLen characters.
func (v *Validator) MaxLength(field, value string, maxLen int) *Validator {
	if utf8.RuneCountInString(value) > maxLen {
		v.AddError(field, fmt.Sprintf("Ensure this field has no more than %d characters.", maxLen))
	}
	return v
}

// MinLength checks that value has at least minLen characters.
func (v *Validator) MinLength(field, value string, minLen int) *Validator {
	if utf8.RuneCountInString(value) < minLen {
		v.AddError(field, fmt.Sprintf("Ensure this field has at least %d characters.", minLen))
	}
	return v
}

// Pattern checks that a non-empty value matches re.
func (v *Validator) Pattern(field, value string, re *regexp.Regexp, message string) *Validator {
	if value != "" && !re.MatchString(value) {
		v.AddError(field, message)
	}
	return v
}

// Custom adds message for field when condition is false.
func (v *Validator) Custom(condition bool, field, message string) *Validator {
	if !condition {
		v.AddError(field, message)
	}
	return v
}
