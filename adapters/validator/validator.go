package validator

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator is a high-level wrapper for go-playground/validator.
type Validator struct {
	validator *validator.Validate
}

// NewValidator creates a new Validator instance.
func NewValidator() *Validator {
	return &Validator{
		validator: validator.New(),
	}
}

// Default is shared by the configuration and mediator definition loaders.
var Default = NewValidator()

// FieldErrors maps a field namespace (e.g. "Definition.Endpoints[0].Port")
// to a readable message.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, f[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Struct validates s. The returned error is a FieldErrors when the struct
// breaks a rule.
func (v *Validator) Struct(s any) error {
	errs := v.ValidateStruct(s)
	if errs == nil {
		return nil
	}
	return errs
}

// ValidateStruct validates a struct and returns a map of field names to error messages.
func (v *Validator) ValidateStruct(s any) FieldErrors {
	err := v.validator.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return FieldErrors{"error": err.Error()}
	}

	errorMap := make(FieldErrors, len(validationErrors))
	for _, fieldError := range validationErrors {
		errorMap[fieldError.Namespace()] = v.getErrorMessage(fieldError)
	}
	return errorMap
}

// ValidateField validates a single value against tag.
func (v *Validator) ValidateField(field any, tag string) string {
	err := v.validator.Var(field, tag)
	if err == nil {
		return ""
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return "validation error"
	}
	return v.getErrorMessage(validationErrors[0])
}

// getErrorMessage generates a user-friendly error message from a FieldError.
func (v *Validator) getErrorMessage(fieldError validator.FieldError) string {
	field := fieldError.Namespace()
	if field == "" {
		field = "value"
	}
	switch fieldError.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "required_if":
		return fmt.Sprintf("%s is required when %s", field, fieldError.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fieldError.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fieldError.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fieldError.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fieldError.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fieldError.Param())
	default:
		return fmt.Sprintf("invalid %s", field)
	}
}
