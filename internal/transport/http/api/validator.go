package api

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/xiaot623/gogo/chatapi/internal/domain"
)

// RequestValidator validates bound request bodies using go-playground/validator.
// It implements echo.Validator.
type RequestValidator struct {
	validate *validator.Validate
}

// NewValidator creates a request validator.
func NewValidator() *RequestValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	v.RegisterValidation("notblank", validateNotBlank)

	return &RequestValidator{validate: v}
}

// Validate returns a *domain.ValidationError describing the first failing field.
func (rv *RequestValidator) Validate(i interface{}) error {
	err := rv.validate.Struct(i)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required", "notblank":
		return &domain.ValidationError{Reason: fe.Field() + " is required"}
	case "max":
		return &domain.ValidationError{Reason: fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())}
	case "email":
		return &domain.ValidationError{Reason: fe.Field() + " must be a valid email address"}
	default:
		return &domain.ValidationError{Reason: fmt.Sprintf("%s failed on the '%s' rule", fe.Field(), fe.Tag())}
	}
}

// validateNotBlank rejects strings made only of whitespace.
func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}
