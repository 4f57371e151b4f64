package vendorpay

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

// FilterAll is the sentinel meaning "no restriction" for a facet.
const FilterAll = "all"

// SortKey selects the ordering of a query result.
type SortKey string

const (
	SortVendorName  SortKey = "vendorName"
	SortAmount      SortKey = "amount"
	SortPaymentDate SortKey = "paymentDate"
	SortDueDate     SortKey = "dueDate"
	SortStatus      SortKey = "status"
	SortPriority    SortKey = "priority"
)

// PaymentQuery describes a search. Empty or FilterAll facets do not restrict.
type PaymentQuery struct {
	Search   string
	Vendor   string
	Status   string
	Type     string
	Priority string
	Sort     SortKey
}

var priorityRank = map[Priority]int{
	PriorityUrgent: 0,
	PriorityHigh:   1,
	PriorityMedium: 2,
	PriorityLow:    3,
}

// lessFuncs are strict orderings used with a stable sort.
var lessFuncs = map[SortKey]func(a, b Payment) bool{
	SortVendorName: func(a, b Payment) bool { return a.VendorName < b.VendorName },
	SortAmount:     func(a, b Payment) bool { return a.NetAmount.GreaterThan(b.NetAmount) },
	SortPaymentDate: func(a, b Payment) bool {
		return a.PaymentDate.After(b.PaymentDate)
	},
	SortDueDate: func(a, b Payment) bool { return a.DueDate.Before(b.DueDate) },
	SortStatus:  func(a, b Payment) bool { return a.Status < b.Status },
	SortPriority: func(a, b Payment) bool {
		return rankOf(a.Priority) < rankOf(b.Priority)
	},
}

func rankOf(p Priority) int {
	if r, ok := priorityRank[p]; ok {
		return r
	}
	return len(priorityRank)
}

// Validate rejects unknown facet values and sort keys.
func (q PaymentQuery) Validate() error {
	verr := newValidationError()
	if q.Sort != "" {
		if _, ok := lessFuncs[q.Sort]; !ok {
			verr.add("sort", "unknown sort key "+string(q.Sort))
		}
	}
	if restricts(q.Status) && !PaymentStatus(q.Status).Valid() {
		verr.add("status", "unknown status "+q.Status)
	}
	if restricts(q.Priority) {
		if _, ok := priorityRank[Priority(q.Priority)]; !ok {
			verr.add("priority", "unknown priority "+q.Priority)
		}
	}
	if restricts(q.Type) && !validPaymentType(PaymentType(q.Type)) {
		verr.add("type", "unknown payment type "+q.Type)
	}
	if verr.empty() {
		return nil
	}
	return verr
}

func validPaymentType(t PaymentType) bool {
	switch t {
	case TypeService, TypeMaintenance, TypeSupplies, TypeContract, TypeEmergency, TypeOther:
		return true
	}
	return false
}

func restricts(facet string) bool {
	return facet != "" && facet != FilterAll
}

// RunQuery filters and orders payments. The input slice is not modified.
func RunQuery(payments []Payment, q PaymentQuery) []Payment {
	fold := cases.Fold()
	term := fold.String(strings.TrimSpace(q.Search))

	out := make([]Payment, 0, len(payments))
	for _, p := range payments {
		if term != "" && !matchesTerm(fold, p, term) {
			continue
		}
		if restricts(q.Vendor) && p.VendorName != q.Vendor {
			continue
		}
		if restricts(q.Status) && string(p.Status) != q.Status {
			continue
		}
		if restricts(q.Type) && string(p.PaymentType) != q.Type {
			continue
		}
		if restricts(q.Priority) && string(p.Priority) != q.Priority {
			continue
		}
		out = append(out, p)
	}

	less, ok := lessFuncs[q.Sort]
	if !ok {
		less = lessFuncs[SortPaymentDate]
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func matchesTerm(fold cases.Caser, p Payment, term string) bool {
	for _, field := range []string{p.VendorName, p.InvoiceNumber, p.ID, p.PaymentReference, p.ServiceDescription} {
		if strings.Contains(fold.String(field), term) {
			return true
		}
	}
	return false
}
