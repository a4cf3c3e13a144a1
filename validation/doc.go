// Package validation validates request payloads and reports failures as a
// VALIDATION AppError whose details map each field to its messages:
//
//	{"fields": {"username": ["This field is required."]}}
//
// Struct tags use go-playground/validator with JSON field names:
//
//	type RegisterInput struct {
//	    Username string `json:"username" validate:"required,max=150"`
//	    Email    string `json:"email" validate:"omitempty,email"`
//	}
//	err := validation.Validate(in)
//
// Checks that need code use a Validator:
//
//	v := validation.New()
//	v.Required("password", in.Password)
//	v.Custom(in.Password == in.Password2, "password2", "Passwords do not match.")
//	err := v.Validate()
package validation
