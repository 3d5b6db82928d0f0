// Package validate holds the field checks shared by the auth forms. Every
// check is pure and returns nil or a *FieldError carrying the message shown
// next to the field.
package validate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// MinPasswordLength is the minimum password length accepted at signup.
const MinPasswordLength = 8

// emailPattern is deliberately loose: something, "@", something, ".", something.
var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New()
	if err := val.RegisterValidation("loose_email", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("validate: register loose_email: %v", err))
	}
	return val
}

// FieldError is a human-readable validation failure for one field.
type FieldError struct {
	Message string
}

func (e *FieldError) Error() string { return e.Message }

func fail(format string, args ...any) error {
	return &FieldError{Message: fmt.Sprintf(format, args...)}
}

// Required fails only for the empty string.
func Required(label, value string) error {
	if v.Var(value, "required") != nil {
		return fail("%s is required", label)
	}
	return nil
}

// Email checks the loose address shape.
func Email(value string) error {
	if v.Var(value, "loose_email") != nil {
		return fail("Please enter a valid email")
	}
	return nil
}

// MinLength requires at least n characters.
func MinLength(label, value string, n int) error {
	if v.Var(value, fmt.Sprintf("min=%d", n)) != nil {
		return fail("%s must be at least %d characters", label, n)
	}
	return nil
}

// OneOf requires value to be one of allowed. Allowed values must not contain spaces.
func OneOf(label, value string, allowed []string) error {
	if len(allowed) == 0 || v.Var(value, "oneof="+strings.Join(allowed, " ")) != nil {
		return fail("%s is required", label)
	}
	return nil
}

// First runs checks in order and returns the message of the first failure,
// or "" when all pass.
func First(checks ...func() error) string {
	for _, check := range checks {
		if err := check(); err != nil {
			return err.Error()
		}
	}
	return ""
}
