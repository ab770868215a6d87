package models

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct runs tag-based validation and converts the first failure into
// a VALIDATION_ERROR AppError so callers never see raw validator errors.
func validateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return NewValidationError(err.Error())
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return NewValidationError(fmt.Sprintf("%s is required", fe.Field()))
	case "email":
		return NewValidationError(fmt.Sprintf("%s must be a valid email address", fe.Field()))
	case "min":
		return NewValidationError(fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param()))
	case "max":
		return NewValidationError(fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param()))
	case "gte":
		return NewValidationError(fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param()))
	case "lte":
		return NewValidationError(fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param()))
	default:
		return NewValidationError(fmt.Sprintf("%s is invalid", fe.Field()))
	}
}
