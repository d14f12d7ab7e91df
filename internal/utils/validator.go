package utils

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	Validate     *validator.Validate
	validateOnce sync.Once

	usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)
	slugPattern     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
)

func InitValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())

		// report JSON names so clients can map errors back to fields
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})

		_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return usernamePattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
			return slugPattern.MatchString(fl.Field().String())
		})

		Validate = v
	})
	return Validate
}

// FieldErrors flattens validator errors into a map keyed by the JSON path of
// each failing field. It returns nil when err is not a validation error.
func FieldErrors(err error) map[string][]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	out := make(map[string][]string, len(verrs))
	for _, fe := range verrs {
		key := fieldPath(fe.Namespace())
		out[key] = append(out[key], fieldMessage(fe))
	}
	return out
}

// fieldPath drops the struct name prefix: "CreateRecipeRequest.ingredients[0].amount"
// becomes "ingredients[0].amount".
func fieldPath(namespace string) string {
	if idx := strings.Index(namespace, "."); idx >= 0 {
		return namespace[idx+1:]
	}
	return namespace
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "min":
		if isNumber(fe.Kind()) {
			return fmt.Sprintf("ensure this value is greater than or equal to %s", fe.Param())
		}
		return fmt.Sprintf("ensure this field has at least %s items or characters", fe.Param())
	case "max":
		if isNumber(fe.Kind()) {
			return fmt.Sprintf("ensure this value is less than or equal to %s", fe.Param())
		}
		return fmt.Sprintf("ensure this field has no more than %s items or characters", fe.Param())
	case "len":
		return fmt.Sprintf("ensure this field has exactly %s characters", fe.Param())
	case "email":
		return "enter a valid email address"
	case "uuid":
		return "must be a valid id"
	case "hexcolor":
		return "enter a valid hex color such as #49B61E"
	case "username":
		return "may contain only letters, digits and @/./+/-/_"
	case "slug":
		return "may contain only letters, digits, hyphens and underscores"
	default:
		return fmt.Sprintf("failed on the %q rule", fe.Tag())
	}
}

func isNumber(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
