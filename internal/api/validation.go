package api

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

type ValidationResponse struct {
	Error   string            `json:"error" example:"validation failed"`
	Details []ValidationError `json:"details,omitempty"`
}

// NewValidationResponse describes a request binding failure. Validator
// errors are listed per field; anything else (bad JSON) becomes the message.
func NewValidationResponse(err error) ValidationResponse {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return ValidationResponse{Error: "invalid request body: " + err.Error()}
	}

	details := make([]ValidationError, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, ValidationError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Message: validationMessage(fe),
		})
	}
	return ValidationResponse{Error: "validation failed", Details: details}
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email address"
	case "min":
		return fe.Field() + " must be at least " + fe.Param() + " characters"
	case "max":
		return fe.Field() + " must be at most " + fe.Param() + " characters"
	case "gt":
		return fe.Field() + " must be greater than " + fe.Param()
	case "gte":
		return fe.Field() + " must be greater than or equal to " + fe.Param()
	case "lte":
		return fe.Field() + " must be less than or equal to " + fe.Param()
	case "datetime":
		return fe.Field() + " must match " + fe.Param()
	default:
		return fe.Field() + " is invalid"
	}
}
