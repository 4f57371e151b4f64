package vendorpay

import "time"

const dateLayout = "2006-01-02"

// IsOverdue reports whether an unsettled payment is past its due date.
func IsOverdue(p Payment, now time.Time) bool {
	if p.Status == StatusCompleted || p.Status == StatusCancelled {
		return false
	}
	return p.DueDate.Before(now)
}

// NextPaymentDate returns the user supplied next date of a recurring payment.
// There is no cadence: the date is only ever what was entered.
func NextPaymentDate(p Payment) (time.Time, bool) {
	if !p.RecurringPayment || p.NextPaymentDate == nil {
		return time.Time{}, false
	}
	return *p.NextPaymentDate, true
}

// withDerived returns a copy of p with derived read-time fields filled in.
func withDerived(p Payment, now time.Time) Payment {
	out := p.clone()
	out.IsOverdue = IsOverdue(out, now)
	return out
}

// toDate truncates t to its calendar date in UTC.
func toDate(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
