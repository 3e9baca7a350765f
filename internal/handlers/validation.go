package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/BradenHooton/citywalk/internal/models"
	"github.com/go-playground/validator/v10"
)

// Global validator instance (reused across all handlers)
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report JSON field names instead of Go field names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateRequest validates a request DTO with go-playground/validator and
// returns every failure as a *models.ValidationError.
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return fmt.Errorf("validation failed: %w", err)
	}

	messages := make([]string, 0, len(ve))
	for _, fe := range ve {
		messages = append(messages, fe.Field()+" "+formatValidationError(fe))
	}
	return models.NewValidationError(messages...)
}

// formatValidationError converts a validator FieldError to a user-friendly message
func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must have a minimum of %s characters", fe.Param())
	default:
		return fmt.Sprintf("failed validation: %s", fe.Tag())
	}
}
