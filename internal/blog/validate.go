package blog

import (
	"errors"
	"reflect"
	"strings"

	"github.com/geocoder89/inkwell/internal/apperr"
	"github.com/go-playground/validator/v10"
)

// newValidator reads the same `binding` tags gin validates at the HTTP edge, so callers
// that bypass HTTP get identical rules.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.SetTagName("binding")
	v.RegisterTagNameFunc(func(sf reflect.StructField) string {
		name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return sf.Name
		}
		return name
	})
	return v
}

func validateInput(v *validator.Validate, op string, in any) error {
	err := v.Struct(in)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return apperr.Validation(op, []apperr.FieldError{{Rule: "invalid", Message: err.Error()}})
	}

	fields := make([]apperr.FieldError, 0, len(validationErrors))
	for _, fe := range validationErrors {
		fields = append(fields, apperr.FieldError{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Param:   fe.Param(),
			Message: apperr.ValidationMessage(fe.Tag(), fe.Param()),
		})
	}
	return apperr.Validation(op, fields)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
