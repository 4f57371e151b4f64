package jobmetrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes Prometheus collectors for background jobs.
type Metrics struct {
	runs     *prometheus.CounterVec
	failures *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// NewMetrics registers the job metrics against the provided registerer. When the
// registerer is nil the default Prometheus registerer is used.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		defaultOnce.Do(func() {
			defaultMetrics = buildMetrics(prometheus.DefaultRegisterer)
		})
		return defaultMetrics
	}
	return buildMetrics(registerer)
}

// Tracker records the outcome of a single job run.
type Tracker struct {
	metrics *Metrics
	job     string
	start   time.Time
}

// Track starts a tracker for the given job name.
func (m *Metrics) Track(job string) *Tracker {
	return &Tracker{metrics: m, job: job, start: time.Now()}
}

// End records duration and outcome, returning err untouched.
func (t *Tracker) End(err error) error {
	if t == nil || t.metrics == nil || t.job == "" {
		return err
	}
	status := "success"
	if err != nil {
		status = "failure"
		t.metrics.failures.WithLabelValues(t.job).Inc()
	}
	t.metrics.runs.WithLabelValues(t.job, status).Inc()
	t.metrics.duration.WithLabelValues(t.job).Observe(time.Since(t.start).Seconds())
	return err
}

func buildMetrics(registerer prometheus.Registerer) *Metrics {
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "societyhub_jobs_total",
		Help: "Total job executions partitioned by job name and status.",
	}, []string{"job", "status"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "societyhub_jobs_failures_total",
		Help: "Total failures observed for background jobs.",
	}, []string{"job"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "societyhub_job_duration_seconds",
		Help:    "Duration in seconds of background job executions.",
		Buckets: prometheus.DefBuckets,
	}, []string{"job"})
	registerer.MustRegister(runs, failures, duration)
	return &Metrics{runs: runs, failures: failures, duration: duration}
}
