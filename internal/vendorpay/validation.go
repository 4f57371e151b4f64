package vendorpay

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

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

// validatePayment checks a fully built candidate record before it is stored.
func validatePayment(v *validator.Validate, p Payment) error {
	verr := newValidationError()
	if err := v.Struct(p); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		for _, fe := range fieldErrs {
			verr.add(fe.Field(), describeTag(fe))
		}
	}

	if !p.BaseAmount.GreaterThan(decimal.Zero) {
		verr.add("baseAmount", "amount must be greater than zero")
	}
	if p.TaxAmount.IsNegative() {
		verr.add("taxAmount", "tax amount cannot be negative")
	}
	if p.DiscountAmount.IsNegative() {
		verr.add("discountAmount", "discount amount cannot be negative")
	}
	if p.PaymentDate.IsZero() {
		verr.add("paymentDate", "payment date is required")
	}
	if p.DueDate.IsZero() {
		verr.add("dueDate", "due date is required")
	}
	if !p.PaymentDate.IsZero() && !p.DueDate.IsZero() && p.PaymentDate.After(p.DueDate) {
		verr.add("dueDate", "due date cannot be before payment date")
	}

	if verr.empty() {
		return nil
	}
	return verr
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "oneof":
		return fe.Field() + " must be one of: " + fe.Param()
	default:
		return fe.Error()
	}
}
