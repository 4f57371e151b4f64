package vendorpay

import "github.com/shopspring/decimal"

// Money is the monetary breakdown of a payment. NetAmount is always
// BaseAmount + TaxAmount - DiscountAmount; use NewMoney to build one.
type Money struct {
	BaseAmount     decimal.Decimal `json:"baseAmount"`
	TaxAmount      decimal.Decimal `json:"taxAmount"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	NetAmount      decimal.Decimal `json:"netAmount"`
}

// NewMoney builds a breakdown with the net amount derived from its inputs.
func NewMoney(base, tax, discount decimal.Decimal) Money {
	return Money{
		BaseAmount:     base,
		TaxAmount:      tax,
		DiscountAmount: discount,
		NetAmount:      Recompute(base, tax, discount),
	}
}

// Recompute returns base + tax - discount. A negative result is returned as is.
func Recompute(base, tax, discount decimal.Decimal) decimal.Decimal {
	return base.Add(tax).Sub(discount)
}

// Consistent reports whether the stored net matches the inputs.
func (m Money) Consistent() bool {
	return m.NetAmount.Equal(Recompute(m.BaseAmount, m.TaxAmount, m.DiscountAmount))
}
