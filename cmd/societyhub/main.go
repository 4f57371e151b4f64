package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/societyhub/societyhub/internal/app"
	jobmetrics "github.com/societyhub/societyhub/internal/jobs"
	"github.com/societyhub/societyhub/internal/observability"
	"github.com/societyhub/societyhub/internal/platform/cache"
	"github.com/societyhub/societyhub/internal/platform/db"
	"github.com/societyhub/societyhub/internal/shared"
	"github.com/societyhub/societyhub/internal/vendorpay"
	"github.com/societyhub/societyhub/internal/vendors"
	"github.com/societyhub/societyhub/jobs"
)

const systemActor = "system"

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping server startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)

	if len(os.Args) > 1 && os.Args[1] == "enqueue-overdue-scan" {
		if err := enqueueOverdueScan(ctx, cfg); err != nil {
			logger.Error("enqueue overdue scan", slog.Any("error", err))
			os.Exit(1)
		}
		return
	}

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("societyhub exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *app.Config, logger *slog.Logger) error {
	metrics := observability.NewMetrics()

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		client, err := cache.New(ctx, cfg.RedisAddr)
		if err != nil {
			if cfg.JobsEnabled {
				return err
			}
			logger.Warn("redis unavailable, vendor cache disabled", slog.Any("error", err))
		} else {
			redisClient = client
			defer func() {
				if err := redisClient.Close(); err != nil {
					logger.Warn("redis close", slog.Any("error", err))
				}
			}()
		}
	}

	directory, closeDirectory, err := buildDirectory(ctx, cfg, redisClient, logger)
	if err != nil {
		return err
	}
	defer closeDirectory()

	service := vendorpay.NewService(vendorpay.NewMemoryRepository(), directory, logger)
	service.SetTransitionObserver(metrics)

	if cfg.SeedDemoData {
		seeded, err := vendorpay.SeedDemoData(shared.ContextWithActor(ctx, systemActor), service)
		if err != nil {
			return fmt.Errorf("seed demo data: %w", err)
		}
		logger.Info("demo vendor payments seeded", slog.Int("count", len(seeded)))
	}

	var (
		worker    *jobs.Worker
		inspector *asynq.Inspector
	)
	if cfg.JobsEnabled {
		redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
		scanJob := jobs.NewOverdueScanJob(service, metrics, logger, jobmetrics.NewMetrics(metrics.Registerer()))
		scanTask, err := jobs.NewOverdueScanTask(0)
		if err != nil {
			return fmt.Errorf("build overdue scan task: %w", err)
		}
		worker, err = jobs.NewWorker(jobs.WorkerConfig{
			RedisOpts: redisOpts,
			Logger:    logger,
			Handlers: []jobs.TaskHandler{
				{Type: jobs.TaskVendorPaymentOverdueScan, Handler: scanJob.Handle},
			},
			Cron: []jobs.CronRegistration{
				{Spec: cfg.OverdueScanCron, Task: scanTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			},
		})
		if err != nil {
			return fmt.Errorf("init worker: %w", err)
		}
		inspector = asynq.NewInspector(redisOpts)
		defer func() {
			if err := inspector.Close(); err != nil {
				logger.Warn("asynq inspector close", slog.Any("error", err))
			}
		}()
	}

	var queue jobs.QueueInspector
	if inspector != nil {
		queue = inspector
	}
	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		VendorPayHandler: vendorpay.NewHandler(logger, service),
		JobHandler:       jobs.NewHandler(queue, logger),
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("http server listening", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown", slog.Any("error", err))
		}
		return nil
	})
	if worker != nil {
		group.Go(func() error {
			if err := worker.Run(groupCtx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("worker: %w", err)
			}
			return nil
		})
	}
	return group.Wait()
}

// buildDirectory selects the vendor source and fronts it with the redis cache when available.
func buildDirectory(ctx context.Context, cfg *app.Config, redisClient *redis.Client, logger *slog.Logger) (vendors.Directory, func(), error) {
	closeFn := func() {}
	var directory vendors.Directory
	switch cfg.VendorSource {
	case app.VendorSourcePostgres:
		pool, err := db.New(ctx, cfg.PGDSN)
		if err != nil {
			return nil, closeFn, err
		}
		closeFn = pool.Close
		pg := vendors.NewPGDirectory(pool)
		if cfg.SeedDemoData {
			if err := pg.EnsureSchema(ctx); err != nil {
				pool.Close()
				return nil, func() {}, err
			}
			if err := pg.Upsert(ctx, vendorpay.DemoVendors...); err != nil {
				pool.Close()
				return nil, func() {}, err
			}
		}
		directory = pg
	default:
		directory = vendors.NewMemoryDirectory(vendorpay.DemoVendors...)
	}
	if redisClient != nil {
		directory = vendors.NewCachedDirectory(directory, redisClient, cfg.VendorCacheTTL, logger)
	}
	return directory, closeFn, nil
}

func enqueueOverdueScan(ctx context.Context, cfg *app.Config) error {
	if cfg.RedisAddr == "" {
		return errors.New("REDIS_ADDR is required")
	}
	client, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		return err
	}
	defer client.Close()
	info, err := client.EnqueueOverdueScan(ctx, jobs.OverdueScanPayload{})
	if err != nil {
		return err
	}
	fmt.Printf("enqueued %s id=%s queue=%s\n", info.Type, info.ID, info.Queue)
	return nil
}
