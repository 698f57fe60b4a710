package middleware

import (
	"errors"
	"reflect"
	"strings"

	"github.com/erp/backoffice/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// SetupValidator makes validation errors report JSON field names
func SetupValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form", "uri"} {
			name, _, _ := strings.Cut(fld.Tag.Get(tag), ",")
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
}

// ValidationDetails translates validator errors into per-field details. It
// returns nil when err is not a validation error.
func ValidationDetails(err error) []dto.ValidationDetail {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	details := make([]dto.ValidationDetail, 0, len(verrs))
	for _, e := range verrs {
		details = append(details, dto.ValidationDetail{
			Field:   fieldPath(e),
			Message: validationMessage(e),
		})
	}
	return details
}

// fieldPath drops the top-level struct name: "CreateSettingRequest.key"
// becomes "key", "CalculateTotalsRequest.items[0].item_name" keeps the index
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return e.Field()
}

func validationMessage(e validator.FieldError) string {
	str := e.Kind() == reflect.String
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "min":
		if str {
			return "Must be at least " + e.Param() + " characters"
		}
		return "Must be at least " + e.Param()
	case "max":
		if str {
			return "Must be at most " + e.Param() + " characters"
		}
		return "Must be at most " + e.Param()
	case "oneof":
		return "Must be one of: " + e.Param()
	case "uuid":
		return "Invalid UUID format"
	default:
		return "Invalid value"
	}
}
