package vendorpay

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus enumerates vendor payment statuses.
type PaymentStatus string

const (
	StatusPending    PaymentStatus = "pending"
	StatusProcessing PaymentStatus = "processing"
	StatusCompleted  PaymentStatus = "completed"
	StatusOnHold     PaymentStatus = "on_hold"
	StatusFailed     PaymentStatus = "failed"
	StatusCancelled  PaymentStatus = "cancelled"
)

// PaymentType classifies what a payment is for.
type PaymentType string

const (
	TypeService     PaymentType = "service"
	TypeMaintenance PaymentType = "maintenance"
	TypeSupplies    PaymentType = "supplies"
	TypeContract    PaymentType = "contract"
	TypeEmergency   PaymentType = "emergency"
	TypeOther       PaymentType = "other"
)

// PaymentMethod is how the vendor gets paid.
type PaymentMethod string

const (
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodCheck        PaymentMethod = "check"
	MethodOnline       PaymentMethod = "online"
	MethodCash         PaymentMethod = "cash"
	MethodCard         PaymentMethod = "card"
)

// Priority of a payment.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Payment is a single vendor payment record.
type Payment struct {
	ID                 string        `json:"id"`
	VendorID           string        `json:"vendorId"`
	VendorName         string        `json:"vendorName" validate:"required"`
	InvoiceNumber      string        `json:"invoiceNumber" validate:"required"`
	PaymentReference   string        `json:"paymentReference"`
	ServiceDescription string        `json:"serviceDescription" validate:"required"`
	Category           string        `json:"category" validate:"required"`
	Notes              string        `json:"notes"`
	ContractID         string        `json:"contractId,omitempty"`
	PaymentType        PaymentType   `json:"paymentType" validate:"required,oneof=service maintenance supplies contract emergency other"`
	PaymentMethod      PaymentMethod `json:"paymentMethod" validate:"required,oneof=bank_transfer check online cash card"`
	Priority           Priority      `json:"priority" validate:"required,oneof=low medium high urgent"`
	Money
	PaymentDate      time.Time     `json:"paymentDate"`
	DueDate          time.Time     `json:"dueDate"`
	ProcessedDate    *time.Time    `json:"processedDate,omitempty"`
	Status           PaymentStatus `json:"status"`
	ApprovedBy       string        `json:"approvedBy,omitempty"`
	ProcessedBy      string        `json:"processedBy,omitempty"`
	RejectionReason  string        `json:"rejectionReason,omitempty"`
	Attachments      []string      `json:"attachments"`
	RecurringPayment bool          `json:"recurringPayment"`
	NextPaymentDate  *time.Time    `json:"nextPaymentDate,omitempty"`
	IsOverdue        bool          `json:"isOverdue"`
	CreatedBy        string        `json:"createdBy"`
	CreatedDate      time.Time     `json:"createdDate"`
	LastModified     time.Time     `json:"lastModified"`
	Version          int64         `json:"version"`
}

// clone returns a deep copy so callers never share slices or pointers with the store.
func (p Payment) clone() Payment {
	out := p
	out.Attachments = append([]string{}, p.Attachments...)
	if p.ProcessedDate != nil {
		t := *p.ProcessedDate
		out.ProcessedDate = &t
	}
	if p.NextPaymentDate != nil {
		t := *p.NextPaymentDate
		out.NextPaymentDate = &t
	}
	return out
}

// --- Input DTOs ---

// CreatePaymentInput is the payload for recording a new vendor payment.
type CreatePaymentInput struct {
	VendorID           string
	VendorName         string
	InvoiceNumber      string
	PaymentReference   string
	ServiceDescription string
	Category           string
	Notes              string
	ContractID         string
	PaymentType        PaymentType
	PaymentMethod      PaymentMethod
	Priority           Priority
	BaseAmount         decimal.Decimal
	TaxAmount          decimal.Decimal
	DiscountAmount     decimal.Decimal
	PaymentDate        time.Time
	DueDate            time.Time
	Attachments        []string
	RecurringPayment   bool
	NextPaymentDate    *time.Time
}

// UpdatePaymentInput carries an edit. Nil fields are left untouched.
// There is no status field: status only moves through transitions.
type UpdatePaymentInput struct {
	VendorID           *string
	VendorName         *string
	InvoiceNumber      *string
	ServiceDescription *string
	Category           *string
	Notes              *string
	ContractID         *string
	PaymentType        *PaymentType
	PaymentMethod      *PaymentMethod
	Priority           *Priority
	BaseAmount         *decimal.Decimal
	TaxAmount          *decimal.Decimal
	DiscountAmount     *decimal.Decimal
	PaymentDate        *time.Time
	DueDate            *time.Time
	Attachments        []string
	RecurringPayment   *bool
	NextPaymentDate    *time.Time
	// ExpectedVersion rejects the write when the stored version differs. Zero skips the check.
	ExpectedVersion int64
}

// TransitionInput drives a status change.
type TransitionInput struct {
	PaymentID       string
	Reason          string
	ExpectedVersion int64
}

// PaymentStats summarises a set of payments.
type PaymentStats struct {
	TotalPayments     int                   `json:"totalPayments"`
	CompletedPayments int                   `json:"completedPayments"`
	PendingPayments   int                   `json:"pendingPayments"`
	OverduePayments   int                   `json:"overduePayments"`
	TotalAmount       decimal.Decimal       `json:"totalAmount"`
	OverdueAmount     decimal.Decimal       `json:"overdueAmount"`
	TotalVendors      int                   `json:"totalVendors"`
	ByStatus          map[PaymentStatus]int `json:"byStatus"`
}
