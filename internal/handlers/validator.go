package handlers

import (
	"mockbank/internal/validation"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// requestValidator runs the struct tags on bound request bodies. Failures come back as
// validator.ValidationErrors and are rendered by the HTTP error handler.
type requestValidator struct {
	v *validator.Validate
}

func NewValidator() echo.Validator {
	return requestValidator{v: validation.New()}
}

func (rv requestValidator) Validate(i interface{}) error {
	return rv.v.Struct(i)
}
