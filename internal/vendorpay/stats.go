package vendorpay

import (
	"time"

	"github.com/shopspring/decimal"
)

// Aggregate reduces payments into summary counters. Overdue is evaluated against now.
func Aggregate(payments []Payment, now time.Time) PaymentStats {
	stats := PaymentStats{
		TotalAmount:   decimal.Zero,
		OverdueAmount: decimal.Zero,
		ByStatus:      make(map[PaymentStatus]int),
	}
	vendors := make(map[string]struct{})
	for _, p := range payments {
		stats.TotalPayments++
		stats.ByStatus[p.Status]++
		switch p.Status {
		case StatusCompleted:
			stats.CompletedPayments++
		case StatusPending:
			stats.PendingPayments++
		}
		if IsOverdue(p, now) {
			stats.OverduePayments++
			stats.OverdueAmount = stats.OverdueAmount.Add(p.NetAmount)
		}
		stats.TotalAmount = stats.TotalAmount.Add(p.NetAmount)
		vendors[vendorKey(p)] = struct{}{}
	}
	stats.TotalVendors = len(vendors)
	return stats
}

// vendorKey falls back to the name for records created without a vendor id.
func vendorKey(p Payment) string {
	if p.VendorID != "" {
		return "id:" + p.VendorID
	}
	return "name:" + p.VendorName
}
