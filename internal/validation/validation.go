// Package validation turns validator tags into field-path error maps.
package validation

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/egannguyen/go-commerce-api/internal/apperr"
)

var indexPattern = regexp.MustCompile(`\[(\d+)\]`)

// Validator checks request structs against their `validate` tags.
type Validator struct {
	v *validator.Validate
}

// New returns a Validator that reports fields by their JSON names.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	v.RegisterCustomTypeFunc(fieldValue, Text{}, Number{})
	for tag, fn := range map[string]validator.Func{
		"is_string":    isString,
		"is_number":    isNumber,
		"is_integer":   isInteger,
		"max_decimals": hasDecimals,
	} {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(err)
		}
	}
	return &Validator{v: v}
}

// Struct validates s. It returns nil or a non-empty ValidationError; any
// other failure means s is not a struct and is a programming error.
func (v *Validator) Struct(s any) (*apperr.ValidationError, error) {
	err := v.v.Struct(s)
	if err == nil {
		return nil, nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return nil, errors.Wrap(err, "validate request")
	}
	out := apperr.NewValidation()
	for _, fe := range fieldErrs {
		path := Path(fe.Namespace())
		out.Add(path, message(path, fe))
	}
	return out, nil
}

// Path converts a validator namespace like PlaceOrderInput.items[0].product
// into items.0.product.
func Path(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		namespace = namespace[i+1:]
	}
	return indexPattern.ReplaceAllString(namespace, ".$1")
}

func message(path string, fe validator.FieldError) string {
	attr := strings.ReplaceAll(path, "_", " ")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", attr)
	case "email":
		return fmt.Sprintf("The %s must be a valid email address.", attr)
	case "min", "gte":
		switch fe.Kind() {
		case reflect.String:
			return fmt.Sprintf("The %s must be at least %s characters.", attr, fe.Param())
		case reflect.Slice, reflect.Array, reflect.Map:
			return fmt.Sprintf("The %s must have at least %s items.", attr, fe.Param())
		default:
			return fmt.Sprintf("The %s must be at least %s.", attr, fe.Param())
		}
	case "max", "lte":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("The %s may not be greater than %s characters.", attr, fe.Param())
		}
		return fmt.Sprintf("The %s may not be greater than %s.", attr, fe.Param())
	case "is_string":
		return fmt.Sprintf("The %s must be a string.", attr)
	case "is_number":
		return fmt.Sprintf("The %s must be a number.", attr)
	case "is_integer":
		return fmt.Sprintf("The %s must be an integer.", attr)
	case "max_decimals":
		return fmt.Sprintf("The %s may not have more than %s decimal places.", attr, fe.Param())
	case "eqfield":
		return fmt.Sprintf("The %s confirmation does not match.", attr)
	case "nefield":
		return fmt.Sprintf("The %s and %s must be different.", attr, toSnake(fe.Param()))
	default:
		return fmt.Sprintf("The %s is invalid.", attr)
	}
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte(' ')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
