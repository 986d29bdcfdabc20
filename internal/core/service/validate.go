package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/niksmo/ecom-admin/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Validator checks form inputs locally before any request is made.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})

	v.RegisterCustomTypeFunc(func(f reflect.Value) any {
		if d, ok := f.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})

	mustRegister(v, "slug", func(fl validator.FieldLevel) bool {
		return domain.IsSlug(fl.Field().String())
	})
	mustRegister(v, "size", func(fl validator.FieldLevel) bool {
		return domain.IsSizeOption(fl.Field().String())
	})
	mustRegister(v, "color", func(fl validator.FieldLevel) bool {
		return domain.IsColorOption(fl.Field().String())
	})

	return &Validator{v: v}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Errorf("register %q validation: %w", tag, err))
	}
}

func (v *Validator) Product(in domain.ProductInput) domain.FieldErrors {
	fe := v.structErrors(in)

	seen := make(map[string]int, len(in.Variants))
	for i, vr := range in.Variants {
		sku := strings.ToUpper(strings.TrimSpace(vr.SKU))
		if sku == "" {
			continue
		}
		if _, dup := seen[sku]; dup {
			fe.add(fmt.Sprintf("variants[%d].sku", i), "SKU must be unique within the product")
			continue
		}
		seen[sku] = i
	}
	return fe.orNil()
}

func (v *Validator) Category(in domain.CategoryInput) domain.FieldErrors {
	return v.structErrors(in).orNil()
}

func (v *Validator) Banner(in domain.BannerInput) domain.FieldErrors {
	fe := v.structErrors(in)
	if in.StartDate.IsZero() {
		fe.add("startDate", "is required")
	}
	if in.EndDate != nil && !in.StartDate.IsZero() && !in.EndDate.After(in.StartDate) {
		fe.add("endDate", "must be after the start date")
	}
	return fe.orNil()
}

// Admin checks the account form. New accounts need a password; edits
// keep the current one when it is left empty.
func (v *Validator) Admin(in domain.AdminInput) domain.FieldErrors {
	fe := v.structErrors(in)
	if in.NewAccount && in.Password == "" {
		fe.add("password", "is required")
	}
	return fe.orNil()
}

func (v *Validator) OrderStatus(s domain.OrderStatus) domain.FieldErrors {
	if s.Valid() {
		return nil
	}
	return domain.FieldErrors{"status": "must be a known order status"}
}

func (v *Validator) RefundRejection(reason string) domain.FieldErrors {
	if strings.TrimSpace(reason) != "" {
		return nil
	}
	return domain.FieldErrors{"rejectionReason": "is required"}
}

type fieldErrors domain.FieldErrors

// add keeps the first message reported for a field.
func (fe fieldErrors) add(field, msg string) {
	if _, ok := fe[field]; !ok {
		fe[field] = msg
	}
}

func (fe fieldErrors) orNil() domain.FieldErrors {
	if len(fe) == 0 {
		return nil
	}
	return domain.FieldErrors(fe)
}

func (v *Validator) structErrors(s any) fieldErrors {
	fe := make(fieldErrors)

	err := v.v.Struct(s)
	if err == nil {
		return fe
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		fe.add("_", err.Error())
		return fe
	}
	for _, e := range verrs {
		fe.add(fieldPath(e.Namespace()), message(e))
	}
	return fe
}

// fieldPath drops the root struct name: "ProductInput.variants[0].sku"
// becomes "variants[0].sku".
func fieldPath(ns string) string {
	_, path, ok := strings.Cut(ns, ".")
	if !ok {
		return ns
	}
	return path
}

func message(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "gt":
		return "must be greater than " + e.Param()
	case "gte":
		return "must be at least " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return "must be at most " + e.Param() + " characters"
		}
		return "must be at most " + e.Param()
	case "min":
		switch e.Kind() {
		case reflect.Slice:
			return "needs at least " + e.Param() + " item(s)"
		case reflect.String:
			return "must be at least " + e.Param() + " characters"
		}
		return "must be at least " + e.Param()
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of " + strings.ReplaceAll(e.Param(), " ", ", ")
	case "slug":
		return "may contain only lowercase letters, digits and hyphens"
	case "size":
		return "must be one of " + strings.Join(domain.SizeOptions, ", ")
	case "color":
		return "must be one of " + strings.Join(domain.ColorOptions, ", ")
	default:
		return "is invalid"
	}
}
