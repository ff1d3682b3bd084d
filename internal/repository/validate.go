package repository

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	})
	return v
}

// validateStruct checks the validate tags of a catalog entity and reports
// the first violation as ErrInvalidInput.
func validateStruct(entity string, v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%w: %s %s required", ErrInvalidInput, entity, fe.Field())
	case "max":
		return fmt.Errorf("%w: %s %s must be at most %s characters", ErrInvalidInput, entity, fe.Field(), fe.Param())
	default:
		return fmt.Errorf("%w: %s %s failed on %q", ErrInvalidInput, entity, fe.Field(), fe.Tag())
	}
}
