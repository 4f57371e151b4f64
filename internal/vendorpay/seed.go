package vendorpay

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/societyhub/societyhub/internal/vendors"
)

// DemoVendors are the vendors referenced by the demo dataset.
var DemoVendors = []vendors.Vendor{
	{ID: "VEN-001", Name: "QuickFix Plumbing Services"},
	{ID: "VEN-002", Name: "SecureGuard Security"},
	{ID: "VEN-003", Name: "GreenLeaf Landscaping"},
	{ID: "VEN-004", Name: "PowerTech Electricals"},
	{ID: "VEN-005", Name: "CleanPro Housekeeping"},
}

type demoPayment struct {
	input CreatePaymentInput
	steps []func(*Service, context.Context, TransitionInput) (Payment, error)
	// reason is passed to every step; only hold and fail need one.
	reason string
}

func day(s string) time.Time {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func amount(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func demoPayments() []demoPayment {
	return []demoPayment{
		{
			input: CreatePaymentInput{
				VendorID: "VEN-001", InvoiceNumber: "INV-2024-001", ServiceDescription: "Monthly plumbing maintenance",
				Category: "Maintenance", PaymentType: TypeMaintenance, PaymentMethod: MethodBankTransfer, Priority: PriorityMedium,
				BaseAmount: amount(15000), TaxAmount: amount(2250), DiscountAmount: amount(500),
				PaymentDate: day("2024-09-15"), DueDate: day("2024-09-25"), ContractID: "CON-2024-001",
				Attachments: []string{"invoice-001.pdf"}, RecurringPayment: true, NextPaymentDate: timePtr(day("2024-10-15")),
			},
			steps: []func(*Service, context.Context, TransitionInput) (Payment, error){(*Service).ProcessPayment, (*Service).CompletePayment},
		},
		{
			input: CreatePaymentInput{
				VendorID: "VEN-002", InvoiceNumber: "INV-2024-002", ServiceDescription: "Security guard services for September",
				Category: "Security", PaymentType: TypeContract, PaymentMethod: MethodBankTransfer, Priority: PriorityHigh,
				BaseAmount: amount(45000), TaxAmount: amount(8100),
				PaymentDate: day("2024-09-20"), DueDate: day("2024-09-30"), ContractID: "CON-2024-002", RecurringPayment: true,
				NextPaymentDate: timePtr(day("2024-10-20")),
			},
			steps: []func(*Service, context.Context, TransitionInput) (Payment, error){(*Service).ProcessPayment},
		},
		{
			input: CreatePaymentInput{
				VendorID: "VEN-003", InvoiceNumber: "INV-2024-003", ServiceDescription: "Garden landscaping and tree trimming",
				Category: "Landscaping", PaymentType: TypeService, PaymentMethod: MethodCheck, Priority: PriorityLow,
				BaseAmount: amount(8500), TaxAmount: amount(1530), DiscountAmount: amount(300),
				PaymentDate: day("2024-09-25"), DueDate: day("2024-10-05"),
			},
		},
		{
			input: CreatePaymentInput{
				VendorID: "VEN-004", InvoiceNumber: "INV-2024-004", ServiceDescription: "Emergency generator repair",
				Category: "Electrical", PaymentType: TypeEmergency, PaymentMethod: MethodOnline, Priority: PriorityUrgent,
				BaseAmount: amount(22000), TaxAmount: amount(3960),
				PaymentDate: day("2024-09-10"), DueDate: day("2024-09-12"),
			},
			steps:  []func(*Service, context.Context, TransitionInput) (Payment, error){(*Service).HoldPayment},
			reason: "Awaiting inspection report",
		},
		{
			input: CreatePaymentInput{
				VendorID: "VEN-005", InvoiceNumber: "INV-2024-005", ServiceDescription: "Common area housekeeping supplies",
				Category: "Housekeeping", PaymentType: TypeSupplies, PaymentMethod: MethodCash, Priority: PriorityMedium,
				BaseAmount: amount(6200), TaxAmount: amount(1116), DiscountAmount: amount(200),
				PaymentDate: day("2024-09-05"), DueDate: day("2024-09-15"),
			},
			steps: []func(*Service, context.Context, TransitionInput) (Payment, error){(*Service).ProcessPayment, (*Service).CompletePayment},
		},
		{
			input: CreatePaymentInput{
				VendorID: "VEN-001", InvoiceNumber: "INV-2024-006", ServiceDescription: "Water tank pipeline replacement",
				Category: "Maintenance", PaymentType: TypeMaintenance, PaymentMethod: MethodCard, Priority: PriorityHigh,
				BaseAmount: amount(32000), TaxAmount: amount(5760), DiscountAmount: amount(1000),
				PaymentDate: day("2024-09-28"), DueDate: day("2024-10-08"),
			},
			steps: []func(*Service, context.Context, TransitionInput) (Payment, error){(*Service).ProcessPayment, (*Service).CompletePayment},
		},
	}
}

func timePtr(t time.Time) *time.Time {
	return &t
}

// SeedDemoData loads the demo dataset through the service, so seeded
// records pass the same validation and transitions as user writes.
func SeedDemoData(ctx context.Context, svc *Service) ([]Payment, error) {
	names := make(map[string]string, len(DemoVendors))
	for _, v := range DemoVendors {
		names[v.ID] = v.Name
	}
	var out []Payment
	for _, demo := range demoPayments() {
		if demo.input.VendorName == "" {
			demo.input.VendorName = names[demo.input.VendorID]
		}
		p, err := svc.CreatePayment(ctx, demo.input)
		if err != nil {
			return nil, fmt.Errorf("seed %s: %w", demo.input.InvoiceNumber, err)
		}
		for _, step := range demo.steps {
			p, err = step(svc, ctx, TransitionInput{PaymentID: p.ID, Reason: demo.reason})
			if err != nil {
				return nil, fmt.Errorf("seed %s: %w", demo.input.InvoiceNumber, err)
			}
		}
		out = append(out, p)
	}
	return out, nil
}
