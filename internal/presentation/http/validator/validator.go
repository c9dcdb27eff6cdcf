package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/Additional-Code/procurement/pkg/errorbank"
)

// InvalidPayloadMessage is reported when field level validation fails.
const InvalidPayloadMessage = "the provided data is not valid"

var orderNumberPattern = regexp.MustCompile(`^PO-\d{4}-\d{6}$`)

const (
	maxIntegerDigits  = 17
	maxFractionDigits = 2
)

// Validator adapts go-playground/validator to echo.Validator and reports
// failures as errorbank validation errors keyed by JSON field name.
type Validator struct {
	v *validatorv10.Validate
}

// New returns a Validator with the purchase order tags registered.
func New() *Validator {
	v := validatorv10.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return exactString(d)
		}
		return nil
	}, decimal.Decimal{})

	mustRegister(v, "order_number", func(fl validatorv10.FieldLevel) bool {
		return orderNumberPattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "money", func(fl validatorv10.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		if err != nil {
			return false
		}
		return FitsMoney(d)
	})

	return &Validator{v: v}
}

func mustRegister(v *validatorv10.Validate, tag string, fn validatorv10.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validator: register %q: %v", tag, err))
	}
}

// exactString renders d keeping its scale, so "10.120" is not shortened to "10.12".
func exactString(d decimal.Decimal) string {
	if exp := d.Exponent(); exp < 0 {
		return d.StringFixed(-exp)
	}
	return d.String()
}

// Validate implements echo.Validator.
func (cv *Validator) Validate(i any) error {
	err := cv.v.Struct(i)
	if err == nil {
		return nil
	}
	var fieldErrs validatorv10.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errorbank.BadRequest("invalid request payload", errorbank.WithCause(err))
	}
	details := make(map[string]any, len(fieldErrs))
	for _, fe := range fieldErrs {
		if _, seen := details[fe.Field()]; seen {
			continue
		}
		details[fe.Field()] = message(fe)
	}
	return errorbank.Validation(InvalidPayloadMessage, errorbank.WithDetails(details))
}

// FitsMoney reports whether d has at most 17 integer and 2 fraction digits.
// The scale counts as written: 10.120 has three fraction digits.
func FitsMoney(d decimal.Decimal) bool {
	if d.Exponent() < -maxFractionDigits {
		return false
	}
	integer := d.Abs().Truncate(0).String()
	return len(integer) <= maxIntegerDigits
}

func message(fe validatorv10.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "datetime":
		return "must be a date formatted as yyyy-MM-dd"
	case "order_number":
		return "must match the format PO-YYYY-XXXXXX"
	case "money":
		return "must have at most 17 integer digits and 2 decimals"
	default:
		return "is invalid"
	}
}
