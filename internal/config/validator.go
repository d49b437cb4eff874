package config

import (
	"errors"
	"reflect"

	"github.com/go-playground/validator/v10"

	"github.com/xiaot623/gogo/chatapi/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by the environment variable they come from.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("env"); name != "" {
			return name
		}
		return f.Name
	})
	return v
}

// ValidateAzure checks that the generation provider settings are usable.
// It returns a *domain.ConfigurationError naming every offending variable.
func (c *Config) ValidateAzure() error {
	err := validate.Struct(&c.Azure)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	cfgErr := &domain.ConfigurationError{}
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			cfgErr.Missing = append(cfgErr.Missing, fe.Field())
		} else {
			cfgErr.Invalid = append(cfgErr.Invalid, fe.Field())
		}
	}
	return cfgErr
}
