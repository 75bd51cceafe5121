package dto

import (
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/correcteur-api/pkg/grading"
)

// TagGradingModel validates that a string names a supported model.
const TagGradingModel = "grading_model"

// RegisterValidations installs the custom rules used by request DTOs.
func RegisterValidations(v *validator.Validate) error {
	return v.RegisterValidation(TagGradingModel, func(fl validator.FieldLevel) bool {
		return grading.IsSupportedModel(fl.Field().String())
	})
}

// NewValidator returns a validator with the custom rules registered.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := RegisterValidations(v); err != nil {
		panic(err)
	}
	return v
}
