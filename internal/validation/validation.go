// Package validation adapts go-playground/validator to echo and to the
// service field-error type.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/service"
)

type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form", "query"} {
			name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	// Enum fields are strings holding a name or an index; empty is left to
	// required/omitempty.
	_ = v.RegisterValidation("category", enumRule(func(s string) error { _, err := models.ParseCategory(s); return err }))
	_ = v.RegisterValidation("size", enumRule(func(s string) error { _, err := models.ParseSize(s); return err }))
	_ = v.RegisterValidation("color", enumRule(func(s string) error { _, err := models.ParseColor(s); return err }))
	_ = v.RegisterValidation("money", func(fl validator.FieldLevel) bool {
		s := strings.TrimSpace(fl.Field().String())
		if s == "" {
			return true
		}
		d, err := decimal.NewFromString(s)
		return err == nil && !d.IsNegative()
	})
	return &Validator{v: v}
}

func enumRule(parse func(string) error) validator.Func {
	return func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return strings.TrimSpace(s) == "" || parse(s) == nil
	}
}

// Validate implements echo.Validator. Failures come back as
// service.FieldErrors.
func (v *Validator) Validate(i any) error {
	err := v.v.Struct(i)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	fe := make(service.FieldErrors, 0, len(ve))
	for _, e := range ve {
		fe = append(fe, service.FieldError{Field: fieldPath(e), Message: message(e)})
	}
	return fe
}

// fieldPath drops the root struct name: "OrderRequest.products[0].quantity"
// becomes "products[0].quantity".
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return e.Field()
}

func message(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", e.Param())
		}
		if e.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s item(s)", e.Param())
		}
		return "must be at least " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", e.Param())
		}
		return "must be at most " + e.Param()
	case "gt":
		return "must be greater than " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "money":
		return "must be a non-negative decimal number"
	case "category", "size", "color":
		return fmt.Sprintf("unknown %s", e.Tag())
	case "url", "http_url":
		return "must be a valid URL"
	}
	return "is invalid (" + e.Tag() + ")"
}
