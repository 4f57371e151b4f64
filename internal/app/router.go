package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/societyhub/societyhub/internal/observability"
	"github.com/societyhub/societyhub/internal/vendorpay"
	"github.com/societyhub/societyhub/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	VendorPayHandler  *vendorpay.Handler
	JobHandler        *jobs.Handler
	Metrics           *observability.Metrics
	DisableAccessLogs bool
}

// NewRouter constructs the chi.Router with SocietyHub defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	if !params.DisableAccessLogs {
		r.Use(chimw.Logger)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.VendorPayHandler != nil {
		r.Route("/finance/vendor-payments", params.VendorPayHandler.MountRoutes)
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
