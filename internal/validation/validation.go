// Package validation wraps go-playground/validator for request payloads.
package validation

import (
	"errors"
	"fmt"
	"strings"

	"devlink/internal/models"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Struct validates a payload struct's `validate` tags and converts the first
// failure into a ValidationError suitable for the API response.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return models.NewValidationError("Invalid request payload")
	}

	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return models.NewValidationError(fmt.Sprintf("%s is required", field))
	case "min":
		return models.NewValidationError(fmt.Sprintf("%s must be at least %s characters", field, fe.Param()))
	case "max":
		return models.NewValidationError(fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
	case "email":
		return models.NewValidationError("a valid email is required")
	default:
		return models.NewValidationError(fmt.Sprintf("%s is invalid", field))
	}
}
