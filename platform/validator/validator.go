// Package validator provides input validation for the operator API.
// This is part of the platform layer and contains no business logic.
package validator

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

// regionPattern constrains the region codes that become board list names
// (LEADS-{REGION}): leading letter, then letters, digits or dashes, 2 to
// 32 characters total.
var regionPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9-]{1,31}$`)

// Validator wraps the go-playground validator for struct validation.
// Using a struct allows for dependency injection and easier testing.
type Validator struct {
	v *validator.Validate
}

// New creates a Validator with the domain rules registered.
func New() *Validator {
	v := validator.New()
	if err := v.RegisterValidation("region", func(fl validator.FieldLevel) bool {
		return regionPattern.MatchString(fl.Field().String())
	}); err != nil {
		panic("register region validation: " + err.Error())
	}
	return &Validator{v: v}
}

// Struct validates a struct based on validation tags.
func (val *Validator) Struct(s interface{}) error {
	return val.v.Struct(s)
}

// RegisterValidation registers a custom validation function.
func (val *Validator) RegisterValidation(tag string, fn validator.Func) error {
	return val.v.RegisterValidation(tag, fn)
}
