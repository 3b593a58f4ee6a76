package dto

import (
	"github.com/go-playground/validator/v10"

	apperrors "github.com/spec-kit/twin-workflow-service/pkg/util"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate runs struct-tag validation and converts the first failure into a
// domain validation error naming the field.
func Validate(payload any) error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}
	if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
		first := fieldErrs[0]
		return apperrors.NewValidationError("invalid request payload", map[string]any{
			"field": first.Field(),
			"rule":  first.Tag(),
		})
	}
	return apperrors.NewValidationError("invalid request payload", nil)
}
