package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/societyhub/societyhub/internal/jobs"
	"github.com/societyhub/societyhub/internal/vendorpay"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// OverdueLister returns payments past their due date.
type OverdueLister interface {
	OverduePayments(ctx context.Context) ([]vendorpay.Payment, error)
}

// OverdueRecorder publishes the scan result.
type OverdueRecorder interface {
	SetOverdue(count int, amount float64)
}

// OverdueScanJob reports vendor payments that are past due.
type OverdueScanJob struct {
	Payments OverdueLister
	Recorder OverdueRecorder
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
	clock    func() time.Time
}

// OverdueScanResult summarises one scan.
type OverdueScanResult struct {
	Count  int
	Amount float64
}

// NewOverdueScanJob initialises the overdue scan handler.
func NewOverdueScanJob(payments OverdueLister, recorder OverdueRecorder, logger *slog.Logger, metrics *jobmetrics.Metrics) *OverdueScanJob {
	return &OverdueScanJob{
		Payments: payments,
		Recorder: recorder,
		Logger:   logger,
		Metrics:  metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes the overdue scan task.
func (j *OverdueScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Payments == nil {
		return errors.New("overdue scan: handler not configured")
	}
	var payload OverdueScanPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}
	_, err := j.Scan(ctx, payload)
	return err
}

// Scan computes the overdue set, logs it and updates the recorder.
func (j *OverdueScanJob) Scan(ctx context.Context, payload OverdueScanPayload) (result OverdueScanResult, err error) {
	start := j.now()
	tracker := j.metrics().Track(TaskVendorPaymentOverdueScan)
	defer func() {
		err = tracker.End(err)
	}()

	logger := j.logger()
	overdue, err := j.Payments.OverduePayments(ctx)
	if err != nil {
		logger.Error("overdue scan failed", slog.Any("error", err))
		return OverdueScanResult{}, err
	}

	for i, p := range overdue {
		amount, _ := p.NetAmount.Float64()
		result.Amount += amount
		if payload.Limit > 0 && i >= payload.Limit {
			continue
		}
		logger.Warn("vendor payment overdue",
			slog.String("payment_id", p.ID),
			slog.String("vendor", p.VendorName),
			slog.String("status", string(p.Status)),
			slog.String("due_date", p.DueDate.Format(time.DateOnly)),
			slog.String("net_amount", p.NetAmount.String()),
		)
	}
	result.Count = len(overdue)
	if j.Recorder != nil {
		j.Recorder.SetOverdue(result.Count, result.Amount)
	}

	logger.Info("completed overdue scan",
		slog.Int("overdue", result.Count),
		slog.Float64("overdue_amount", result.Amount),
		slog.Duration("duration", time.Since(start)),
	)
	return result, nil
}

func (j *OverdueScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskVendorPaymentOverdueScan))
	}
	return slog.Default().With(slog.String("job", TaskVendorPaymentOverdueScan))
}

func (j *OverdueScanJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *OverdueScanJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
