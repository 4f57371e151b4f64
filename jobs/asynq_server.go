package jobs

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"

	"github.com/societyhub/societyhub/internal/platform/httpx"
)

// Worker wraps the Asynq server and optional scheduler.
type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	scheduler *asynq.Scheduler
	logger    *slog.Logger
}

// TaskHandler allows injecting custom Asynq handlers during worker setup.
type TaskHandler struct {
	Type    string
	Handler asynq.HandlerFunc
}

// CronRegistration wires a cron expression to a prepared task.
type CronRegistration struct {
	Spec    string
	Task    *asynq.Task
	Options []asynq.Option
}

// WorkerConfig collects dependencies required to bootstrap the worker.
type WorkerConfig struct {
	RedisOpts   asynq.RedisClientOpt
	Logger      *slog.Logger
	Concurrency int
	Handlers    []TaskHandler
	Cron        []CronRegistration
}

// NewWorker constructs a Worker instance.
func NewWorker(cfg WorkerConfig) (*Worker, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 2
	}
	srv := asynq.NewServer(cfg.RedisOpts, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			QueueDefault: 1,
		},
	})
	mux := newServeMux(cfg.Handlers)

	var scheduler *asynq.Scheduler
	if len(cfg.Cron) > 0 {
		scheduler = asynq.NewScheduler(cfg.RedisOpts, &asynq.SchedulerOpts{Location: time.UTC})
		for _, entry := range cfg.Cron {
			if entry.Spec == "" || entry.Task == nil {
				continue
			}
			if _, err := scheduler.Register(entry.Spec, entry.Task, entry.Options...); err != nil {
				return nil, err
			}
		}
	}

	return &Worker{server: srv, mux: mux, scheduler: scheduler, logger: cfg.Logger}, nil
}

func newServeMux(handlers []TaskHandler) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	for _, h := range handlers {
		if h.Type == "" || h.Handler == nil {
			continue
		}
		mux.HandleFunc(h.Type, h.Handler)
	}
	return mux
}

// Run starts processing jobs until context cancellation.
func (w *Worker) Run(ctx context.Context) error {
	if w == nil {
		return errors.New("worker: not configured")
	}
	if w.scheduler != nil {
		if err := w.scheduler.Start(); err != nil {
			return err
		}
	}
	w.logger.Info("worker started")
	errCh := make(chan error, 1)
	go func() {
		errCh <- w.server.Run(w.mux)
	}()
	select {
	case <-ctx.Done():
		if w.scheduler != nil {
			w.scheduler.Shutdown()
		}
		w.server.Shutdown()
		w.logger.Info("worker stopped")
		return ctx.Err()
	case err := <-errCh:
		if w.scheduler != nil {
			w.scheduler.Shutdown()
		}
		return err
	}
}

// Client submits jobs to the queue.
type Client struct {
	client *asynq.Client
}

// NewClient constructs an Asynq client.
func NewClient(redisOpts asynq.RedisClientOpt) (*Client, error) {
	client := asynq.NewClient(redisOpts)
	return &Client{client: client}, nil
}

// EnqueueOverdueScan enqueues an immediate overdue scan.
func (c *Client) EnqueueOverdueScan(ctx context.Context, payload OverdueScanPayload) (*asynq.TaskInfo, error) {
	task, err := NewOverdueScanTask(payload.Limit)
	if err != nil {
		return nil, err
	}
	return c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault), asynq.MaxRetry(3))
}

// Close releases client resources.
func (c *Client) Close() error {
	return c.client.Close()
}

// QueueInspector reports queue state. *asynq.Inspector satisfies it.
type QueueInspector interface {
	GetQueueInfo(queue string) (*asynq.QueueInfo, error)
}

// Handler exposes HTTP endpoints for job observability.
type Handler struct {
	inspector QueueInspector
	logger    *slog.Logger
}

// NewHandler constructs an HTTP handler for jobs endpoints. A nil inspector
// reports an idle queue, which is the state when jobs are disabled.
func NewHandler(inspector QueueInspector, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{inspector: inspector, logger: logger}
}

// MountRoutes attaches job routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/health", h.health)
}

type healthResponse struct {
	Queue   string `json:"queue"`
	Pending int    `json:"pending"`
	Active  int    `json:"active"`
	Enabled bool   `json:"enabled"`
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if h.inspector == nil {
		httpx.JSON(w, http.StatusOK, healthResponse{Queue: QueueDefault})
		return
	}
	info, err := h.inspector.GetQueueInfo(QueueDefault)
	if err != nil {
		h.logger.Warn("jobs health", slog.Any("error", err))
		httpx.Problem(w, http.StatusServiceUnavailable, "Service Unavailable", "job queue unavailable")
		return
	}
	resp := healthResponse{Queue: QueueDefault, Enabled: true}
	if info != nil {
		resp.Queue = info.Queue
		resp.Pending = info.Pending
		resp.Active = info.Active
	}
	httpx.JSON(w, http.StatusOK, resp)
}
