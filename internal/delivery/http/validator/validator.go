// Package validator adapts go-playground/validator to echo's Validator interface.
package validator

import (
	domainerrors "authd/internal/domain/errors"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type echoValidator struct {
	validate *validator.Validate
}

// New creates the request validator installed on the echo instance.
func New() echo.Validator {
	return &echoValidator{validate: validator.New()}
}

// Validate checks struct tags and maps failures to the validation error so
// the error handler renders a 400 with VALIDATION_FAILED.
func (v *echoValidator) Validate(i any) error {
	if err := v.validate.Struct(i); err != nil {
		return domainerrors.ErrValidationFailed.WithDetails(err.Error())
	}

	return nil
}
