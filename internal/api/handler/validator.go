package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// requestValidator adapts go-playground/validator to Echo's Validator
// interface so handlers can call c.Validate(req) on bound request bodies.
type requestValidator struct {
	v *validator.Validate
}

// NewValidator returns the validator the router installs on echo.Echo.
func NewValidator() *requestValidator {
	return &requestValidator{v: validator.New()}
}

// Validate flattens all field failures into one message; the central error
// handler wraps it as ERR_VALIDATION.
func (rv *requestValidator) Validate(i any) error {
	err := rv.v.Struct(i)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}

	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, fieldError(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

// fieldError renders a single failure. Request structs here only carry
// required and oneof constraints; anything else falls through generically.
func fieldError(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
	}
}
