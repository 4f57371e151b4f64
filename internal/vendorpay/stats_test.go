package vendorpay

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestAggregateSeededData(t *testing.T) {
	_, seeded := seededService(t)

	stats := Aggregate(seeded, fixedNow)

	assert.Equal(t, 6, stats.TotalPayments)
	assert.Equal(t, 3, stats.CompletedPayments)
	assert.Equal(t, 1, stats.PendingPayments)
	assert.Equal(t, 5, stats.TotalVendors)
	// INV-002 (processing, due 09-30) and INV-004 (on hold, due 09-12).
	assert.Equal(t, 2, stats.OverduePayments)
	assert.True(t, stats.OverdueAmount.Equal(decimal.NewFromInt(53100+25960)), "got %s", stats.OverdueAmount)
	assert.True(t, stats.TotalAmount.Equal(decimal.NewFromInt(16750+53100+9730+25960+7116+36760)), "got %s", stats.TotalAmount)
	assert.Equal(t, map[PaymentStatus]int{
		StatusCompleted:  3,
		StatusProcessing: 1,
		StatusPending:    1,
		StatusOnHold:     1,
	}, stats.ByStatus)
}

func TestAggregateEmpty(t *testing.T) {
	stats := Aggregate(nil, fixedNow)
	assert.Zero(t, stats.TotalPayments)
	assert.True(t, stats.TotalAmount.IsZero())
	assert.NotNil(t, stats.ByStatus)
}

func TestAggregateVendorFallsBackToName(t *testing.T) {
	stats := Aggregate([]Payment{
		{VendorName: "Walk-in Electrician", DueDate: day("2024-12-01")},
		{VendorName: "Walk-in Electrician", DueDate: day("2024-12-01")},
		{VendorID: "VEN-001", VendorName: "QuickFix Plumbing Services", DueDate: day("2024-12-01")},
	}, fixedNow)
	assert.Equal(t, 2, stats.TotalVendors)
}
