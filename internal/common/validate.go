package common

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	validator "github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-importa/internal/money"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared validator. It understands the "money" tag:
// a decimal string that fits NUMERIC(12,2), and "money_nonneg" for such
// values that must also be >= 0.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("money", func(fl validator.FieldLevel) bool {
			d, err := decimal.NewFromString(strings.TrimSpace(fl.Field().String()))
			return err == nil && money.InRange(d)
		})
		_ = v.RegisterValidation("money_nonneg", func(fl validator.FieldLevel) bool {
			d, err := decimal.NewFromString(strings.TrimSpace(fl.Field().String()))
			return err == nil && d.Sign() >= 0 && money.InRange(d)
		})
		validate = v
	})
	return validate
}

// ValidateStruct runs the shared validator and converts failures into a
// VALIDATION_ERROR with one detail entry per field.
func ValidateStruct(v any) error {
	err := Validator().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	details := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		details[fieldPath(fe)] = describe(fe)
	}
	return Validation("invalid request", details)
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "uuid":
		return "must be a valid id"
	case "money":
		return "must be a decimal amount of at most " + money.MaxAmount.StringFixed(money.Places)
	case "money_nonneg":
		return "must be a non-negative decimal amount of at most " + money.MaxAmount.StringFixed(money.Places)
	default:
		return "is invalid (" + fe.Tag() + ")"
	}
}
