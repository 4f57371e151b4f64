package vendorpay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/societyhub/societyhub/internal/shared"
	"github.com/societyhub/societyhub/internal/vendors"
)

// TransitionObserver is notified after a status change commits.
type TransitionObserver interface {
	ObservePaymentTransition(from, to string)
}

// Service is the command and query facade over vendor payments.
type Service struct {
	repo     Repository
	vendors  vendors.Directory
	logger   *slog.Logger
	validate *validator.Validate
	observer TransitionObserver
	now      func() time.Time
}

// NewService wires a Service. directory may be nil when vendor names are always supplied.
func NewService(repo Repository, directory vendors.Directory, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:     repo,
		vendors:  directory,
		logger:   logger,
		validate: newValidator(),
		now:      time.Now,
	}
}

// SetClock overrides the time source.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// SetTransitionObserver injects metrics hooks.
func (s *Service) SetTransitionObserver(observer TransitionObserver) {
	s.observer = observer
}

// CreatePayment records a new pending payment.
func (s *Service) CreatePayment(ctx context.Context, input CreatePaymentInput) (Payment, error) {
	now := s.now()

	vendorName := strings.TrimSpace(input.VendorName)
	vendorID := strings.TrimSpace(input.VendorID)
	if vendorName == "" && vendorID != "" && s.vendors != nil {
		name, err := s.vendors.VendorName(ctx, vendorID)
		switch {
		case errors.Is(err, vendors.ErrVendorNotFound):
			return Payment{}, fieldError("vendorId", "unknown vendor "+vendorID)
		case err != nil:
			return Payment{}, fmt.Errorf("resolve vendor: %w", err)
		}
		vendorName = name
	}

	p := Payment{
		ID:                 uuid.NewString(),
		VendorID:           vendorID,
		VendorName:         vendorName,
		InvoiceNumber:      strings.TrimSpace(input.InvoiceNumber),
		PaymentReference:   strings.TrimSpace(input.PaymentReference),
		ServiceDescription: strings.TrimSpace(input.ServiceDescription),
		Category:           strings.TrimSpace(input.Category),
		Notes:              input.Notes,
		ContractID:         input.ContractID,
		PaymentType:        input.PaymentType,
		PaymentMethod:      input.PaymentMethod,
		Priority:           input.Priority,
		Money:              NewMoney(input.BaseAmount, input.TaxAmount, input.DiscountAmount),
		PaymentDate:        toDate(input.PaymentDate),
		DueDate:            toDate(input.DueDate),
		Status:             StatusPending,
		Attachments:        append([]string{}, input.Attachments...),
		RecurringPayment:   input.RecurringPayment,
		CreatedBy:          shared.ActorFromContext(ctx),
		CreatedDate:        now,
		LastModified:       now,
		Version:            1,
	}
	if p.PaymentType == "" {
		p.PaymentType = TypeService
	}
	if p.PaymentMethod == "" {
		p.PaymentMethod = MethodBankTransfer
	}
	if p.Priority == "" {
		p.Priority = PriorityMedium
	}
	if p.RecurringPayment && input.NextPaymentDate != nil {
		next := toDate(*input.NextPaymentDate)
		p.NextPaymentDate = &next
	}

	if err := validatePayment(s.validate, p); err != nil {
		return Payment{}, err
	}

	if err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if p.PaymentReference == "" {
			reference, err := generateReference(ctx, tx, now)
			if err != nil {
				return err
			}
			p.PaymentReference = reference
		}
		return tx.InsertPayment(ctx, p)
	}); err != nil {
		return Payment{}, err
	}

	s.warnNegativeNet(p)
	s.logger.Info("vendor payment created",
		slog.String("payment_id", p.ID),
		slog.String("vendor", p.VendorName),
		slog.String("net_amount", p.NetAmount.String()))
	return withDerived(p, now), nil
}

// generateReference returns REF-<unix millis>, adding a -N suffix while the
// reference is already taken.
func generateReference(ctx context.Context, tx TxRepository, now time.Time) (string, error) {
	base := fmt.Sprintf("REF-%d", now.UnixMilli())
	reference := base
	for n := 2; ; n++ {
		taken, err := tx.ReferenceExists(ctx, reference)
		if err != nil {
			return "", fmt.Errorf("check payment reference: %w", err)
		}
		if !taken {
			return reference, nil
		}
		reference = fmt.Sprintf("%s-%d", base, n)
	}
}

// UpdatePayment merges an edit into an existing payment.
func (s *Service) UpdatePayment(ctx context.Context, id string, input UpdatePaymentInput) (Payment, error) {
	now := s.now()
	var updated Payment
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetPayment(ctx, id)
		if err != nil {
			return err
		}
		if input.ExpectedVersion != 0 && input.ExpectedVersion != current.Version {
			return ErrVersionConflict
		}

		next := mergePayment(current, input)
		if err := validatePayment(s.validate, next); err != nil {
			return err
		}
		next.LastModified = now
		next.Version = current.Version + 1
		if err := tx.UpdatePayment(ctx, next); err != nil {
			return err
		}
		updated = next
		return nil
	})
	if err != nil {
		return Payment{}, err
	}

	s.warnNegativeNet(updated)
	s.logger.Info("vendor payment updated", slog.String("payment_id", id), slog.Int64("version", updated.Version))
	return withDerived(updated, now), nil
}

func mergePayment(p Payment, in UpdatePaymentInput) Payment {
	next := p.clone()
	setString(&next.VendorID, in.VendorID)
	setString(&next.VendorName, in.VendorName)
	setString(&next.InvoiceNumber, in.InvoiceNumber)
	setString(&next.ServiceDescription, in.ServiceDescription)
	setString(&next.Category, in.Category)
	if in.Notes != nil {
		next.Notes = *in.Notes
	}
	if in.ContractID != nil {
		next.ContractID = *in.ContractID
	}
	if in.PaymentType != nil {
		next.PaymentType = *in.PaymentType
	}
	if in.PaymentMethod != nil {
		next.PaymentMethod = *in.PaymentMethod
	}
	if in.Priority != nil {
		next.Priority = *in.Priority
	}

	base, tax, discount := next.BaseAmount, next.TaxAmount, next.DiscountAmount
	if in.BaseAmount != nil {
		base = *in.BaseAmount
	}
	if in.TaxAmount != nil {
		tax = *in.TaxAmount
	}
	if in.DiscountAmount != nil {
		discount = *in.DiscountAmount
	}
	next.Money = NewMoney(base, tax, discount)

	if in.PaymentDate != nil {
		next.PaymentDate = toDate(*in.PaymentDate)
	}
	if in.DueDate != nil {
		next.DueDate = toDate(*in.DueDate)
	}
	if in.Attachments != nil {
		next.Attachments = append([]string{}, in.Attachments...)
	}
	if in.RecurringPayment != nil {
		next.RecurringPayment = *in.RecurringPayment
	}
	if in.NextPaymentDate != nil {
		d := toDate(*in.NextPaymentDate)
		next.NextPaymentDate = &d
	}
	if !next.RecurringPayment {
		next.NextPaymentDate = nil
	}
	return next
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

// DeletePayment removes a payment permanently.
func (s *Service) DeletePayment(ctx context.Context, id string) error {
	if err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.DeletePayment(ctx, id)
	}); err != nil {
		return err
	}
	s.logger.Info("vendor payment deleted", slog.String("payment_id", id))
	return nil
}

// GetPayment fetches one payment with derived fields evaluated now.
func (s *Service) GetPayment(ctx context.Context, id string) (Payment, error) {
	p, err := s.repo.GetPayment(ctx, id)
	if err != nil {
		return Payment{}, err
	}
	return withDerived(p, s.now()), nil
}

// ListPayments returns every payment in insertion order.
func (s *Service) ListPayments(ctx context.Context) ([]Payment, error) {
	payments, err := s.repo.ListPayments(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for i := range payments {
		payments[i] = withDerived(payments[i], now)
	}
	return payments, nil
}

// QueryPayments searches, filters and sorts payments.
func (s *Service) QueryPayments(ctx context.Context, q PaymentQuery) ([]Payment, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	payments, err := s.ListPayments(ctx)
	if err != nil {
		return nil, err
	}
	return RunQuery(payments, q), nil
}

// Stats summarises the full payment set.
func (s *Service) Stats(ctx context.Context) (PaymentStats, error) {
	payments, err := s.repo.ListPayments(ctx)
	if err != nil {
		return PaymentStats{}, err
	}
	return Aggregate(payments, s.now()), nil
}

// OverduePayments lists payments past due as of now, earliest due first.
func (s *Service) OverduePayments(ctx context.Context) ([]Payment, error) {
	payments, err := s.ListPayments(ctx)
	if err != nil {
		return nil, err
	}
	overdue := make([]Payment, 0)
	for _, p := range payments {
		if p.IsOverdue {
			overdue = append(overdue, p)
		}
	}
	return RunQuery(overdue, PaymentQuery{Sort: SortDueDate}), nil
}

// ProcessPayment moves a pending payment into processing.
func (s *Service) ProcessPayment(ctx context.Context, input TransitionInput) (Payment, error) {
	return s.transition(ctx, input, processTransition)
}

// CompletePayment settles a processing payment.
func (s *Service) CompletePayment(ctx context.Context, input TransitionInput) (Payment, error) {
	return s.transition(ctx, input, completeTransition)
}

// HoldPayment parks a payment. A reason is required.
func (s *Service) HoldPayment(ctx context.Context, input TransitionInput) (Payment, error) {
	return s.transition(ctx, input, holdTransition)
}

// FailPayment marks a payment as failed. A reason is required.
func (s *Service) FailPayment(ctx context.Context, input TransitionInput) (Payment, error) {
	return s.transition(ctx, input, failTransition)
}

// CancelPayment cancels a payment with an optional reason.
func (s *Service) CancelPayment(ctx context.Context, input TransitionInput) (Payment, error) {
	return s.transition(ctx, input, cancelTransition)
}

func (s *Service) transition(ctx context.Context, input TransitionInput, t transition) (Payment, error) {
	now := s.now()
	actor := shared.ActorFromContext(ctx)
	var (
		from    PaymentStatus
		updated Payment
	)
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetPayment(ctx, input.PaymentID)
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("%w: %w", ErrInvalidTransition, err)
		}
		if err != nil {
			return err
		}
		if input.ExpectedVersion != 0 && input.ExpectedVersion != current.Version {
			return ErrVersionConflict
		}
		from = current.Status

		next := current.clone()
		if err := applyTransition(&next, t, actor, input.Reason, now); err != nil {
			return err
		}
		next.LastModified = now
		next.Version = current.Version + 1
		if err := tx.UpdatePayment(ctx, next); err != nil {
			return err
		}
		updated = next
		return nil
	})
	if err != nil {
		return Payment{}, err
	}

	if s.observer != nil {
		s.observer.ObservePaymentTransition(string(from), string(updated.Status))
	}
	s.logger.Info("vendor payment status changed",
		slog.String("payment_id", updated.ID),
		slog.String("from", string(from)),
		slog.String("to", string(updated.Status)),
		slog.String("actor", actor))
	return withDerived(updated, now), nil
}

func (s *Service) warnNegativeNet(p Payment) {
	if p.NetAmount.IsNegative() {
		s.logger.Warn("vendor payment net amount is negative",
			slog.String("payment_id", p.ID),
			slog.String("net_amount", p.NetAmount.String()))
	}
}
