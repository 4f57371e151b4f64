package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jobmetrics "github.com/societyhub/societyhub/internal/jobs"
	"github.com/societyhub/societyhub/internal/vendorpay"
)

type stubLister struct {
	payments []vendorpay.Payment
	err      error
}

func (s stubLister) OverduePayments(context.Context) ([]vendorpay.Payment, error) {
	return s.payments, s.err
}

type stubRecorder struct {
	count  int
	amount float64
	calls  int
}

func (r *stubRecorder) SetOverdue(count int, amount float64) {
	r.count, r.amount = count, amount
	r.calls++
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func overduePayment(id string, net int64) vendorpay.Payment {
	return vendorpay.Payment{
		ID:         id,
		VendorName: "SecureGuard Security",
		Status:     vendorpay.StatusProcessing,
		DueDate:    time.Date(2024, 9, 30, 0, 0, 0, 0, time.UTC),
		Money:      vendorpay.NewMoney(decimal.NewFromInt(net), decimal.Zero, decimal.Zero),
		IsOverdue:  true,
	}
}

func TestOverdueScanPublishesTotals(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := jobmetrics.NewMetrics(registry)
	recorder := &stubRecorder{}
	job := NewOverdueScanJob(stubLister{payments: []vendorpay.Payment{
		overduePayment("a", 53100),
		overduePayment("b", 25960),
	}}, recorder, quietLogger(), metrics)

	task, err := NewOverdueScanTask(1)
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))

	assert.Equal(t, 1, recorder.calls)
	assert.Equal(t, 2, recorder.count)
	assert.InDelta(t, 79060, recorder.amount, 0.001)

	families, err := registry.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, mf := range families {
		names = append(names, mf.GetName())
	}
	assert.Contains(t, names, "societyhub_jobs_total")
	assert.Contains(t, names, "societyhub_job_duration_seconds")
	assert.NotContains(t, names, "societyhub_jobs_failures_total")
}

func TestOverdueScanPropagatesErrors(t *testing.T) {
	recorder := &stubRecorder{}
	boom := errors.New("repository offline")
	job := NewOverdueScanJob(stubLister{err: boom}, recorder, quietLogger(), jobmetrics.NewMetrics(prometheus.NewRegistry()))

	_, err := job.Scan(context.Background(), OverdueScanPayload{})
	require.ErrorIs(t, err, boom)
	assert.Zero(t, recorder.calls)
}

func TestOverdueScanRejectsBadPayload(t *testing.T) {
	job := NewOverdueScanJob(stubLister{}, nil, quietLogger(), jobmetrics.NewMetrics(prometheus.NewRegistry()))
	err := job.Handle(context.Background(), asynq.NewTask(TaskVendorPaymentOverdueScan, []byte("{")))
	require.ErrorIs(t, err, asynq.SkipRetry)
}

func TestOverdueScanAgainstService(t *testing.T) {
	svc := vendorpay.NewService(vendorpay.NewMemoryRepository(), nil, quietLogger())
	svc.SetClock(func() time.Time { return time.Date(2024, 10, 1, 9, 0, 0, 0, time.UTC) })
	_, err := vendorpay.SeedDemoData(context.Background(), svc)
	require.NoError(t, err)

	recorder := &stubRecorder{}
	job := NewOverdueScanJob(svc, recorder, quietLogger(), jobmetrics.NewMetrics(prometheus.NewRegistry()))
	result, err := job.Scan(context.Background(), OverdueScanPayload{})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Count)
	assert.Equal(t, 2, recorder.count)
}

func TestNewOverdueScanTask(t *testing.T) {
	task, err := NewOverdueScanTask(25)
	require.NoError(t, err)
	assert.Equal(t, TaskVendorPaymentOverdueScan, task.Type())

	var payload OverdueScanPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, 25, payload.Limit)
}

type stubInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (s stubInspector) GetQueueInfo(string) (*asynq.QueueInfo, error) {
	return s.info, s.err
}

func TestHealthHandler(t *testing.T) {
	cases := []struct {
		name      string
		inspector QueueInspector
		status    int
		want      healthResponse
	}{
		{name: "disabled", status: http.StatusOK, want: healthResponse{Queue: QueueDefault}},
		{name: "busy", inspector: stubInspector{info: &asynq.QueueInfo{Queue: QueueDefault, Pending: 3, Active: 1}}, status: http.StatusOK, want: healthResponse{Queue: QueueDefault, Pending: 3, Active: 1, Enabled: true}},
		{name: "redis down", inspector: stubInspector{err: errors.New("dial tcp: refused")}, status: http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := chi.NewRouter()
			r.Route("/jobs", NewHandler(tc.inspector, quietLogger()).MountRoutes)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))

			require.Equal(t, tc.status, rec.Code)
			if tc.status != http.StatusOK {
				return
			}
			var got healthResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNewWorkerRegistersCron(t *testing.T) {
	task, err := NewOverdueScanTask(0)
	require.NoError(t, err)

	_, err = NewWorker(WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: "127.0.0.1:0"},
		Cron:      []CronRegistration{{Spec: "not a cron", Task: task}},
	})
	require.Error(t, err)

	worker, err := NewWorker(WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: "127.0.0.1:0"},
		Handlers:  []TaskHandler{{Type: TaskVendorPaymentOverdueScan, Handler: func(context.Context, *asynq.Task) error { return nil }}},
		Cron:      []CronRegistration{{Spec: "0 6 * * *", Task: task}},
	})
	require.NoError(t, err)
	require.NotNil(t, worker)
}
