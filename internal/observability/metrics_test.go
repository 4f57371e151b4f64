package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	return rr.Body.String()
}

func TestMetricsMiddlewareRecordsRequest(t *testing.T) {
	metrics := NewMetrics()

	handler := metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	routeCtx := chi.NewRouteContext()
	routeCtx.RoutePatterns = append(routeCtx.RoutePatterns, "/test")

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx)
	req = req.WithContext(ctx)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusTeapot {
		t.Fatalf("expected status %d, got %d", http.StatusTeapot, rr.Code)
	}

	body := scrape(t, metrics)
	if !strings.Contains(body, "societyhub_http_requests_total{code=\"418\",route=\"/test\"} 1") {
		t.Fatalf("expected metrics to record request, got: %s", body)
	}
	if !strings.Contains(body, "societyhub_http_request_duration_seconds_bucket{route=\"/test\"") {
		t.Fatalf("expected duration histogram to be present, got: %s", body)
	}
}

func TestObservePaymentTransition(t *testing.T) {
	metrics := NewMetrics()
	metrics.ObservePaymentTransition("pending", "processing")
	metrics.ObservePaymentTransition("pending", "processing")

	body := scrape(t, metrics)
	if !strings.Contains(body, `societyhub_vendor_payment_transitions_total{from="pending",to="processing"} 2`) {
		t.Fatalf("expected transition counter, got: %s", body)
	}
}

func TestSetOverdue(t *testing.T) {
	metrics := NewMetrics()
	metrics.SetOverdue(3, 1250.5)

	body := scrape(t, metrics)
	if !strings.Contains(body, "societyhub_vendor_payments_overdue 3") {
		t.Fatalf("expected overdue gauge, got: %s", body)
	}
	if !strings.Contains(body, "societyhub_vendor_payments_overdue_amount 1250.5") {
		t.Fatalf("expected overdue amount gauge, got: %s", body)
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var metrics *Metrics
	metrics.ObservePaymentTransition("pending", "failed")
	metrics.SetOverdue(1, 1)

	rr := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 from nil metrics, got %d", rr.Code)
	}
}
