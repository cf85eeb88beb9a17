package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/mbarroso/escala-engine/internal/autofill"
	"github.com/mbarroso/escala-engine/internal/config"
	"github.com/mbarroso/escala-engine/internal/infra/postgresql"
	"github.com/mbarroso/escala-engine/internal/infra/postgresql/migrations"
	"github.com/mbarroso/escala-engine/internal/notify"
	"github.com/mbarroso/escala-engine/internal/observability"
	"github.com/mbarroso/escala-engine/internal/queue"
	"github.com/mbarroso/escala-engine/internal/repository"
	"github.com/mbarroso/escala-engine/internal/service"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	db, err := postgresql.NewPostgres(cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("postgres initialization failed", zap.Error(err))
	}

	if err := migrations.Migrate(db); err != nil {
		logger.Fatal("database migrations failed", zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("postgres underlying db init failed", zap.Error(err))
	}
	defer sqlDB.Close()

	mq, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
	if err != nil {
		logger.Fatal("rabbitmq initialization failed", zap.Error(err))
	}
	defer mq.Close()

	batches := repository.NewGormBatchRepo(db)
	schedules := repository.NewGormScheduleRepo(db)
	templates := repository.NewGormTemplateRepo(db)
	areas := repository.NewGormAreaMembershipRepo(db)

	var assigner autofill.Assigner
	if cfg.AutoFillURL != "" {
		assigner, err = autofill.NewHTTPAssigner(cfg.AutoFillURL)
		if err != nil {
			logger.Fatal("auto-fill client initialization failed", zap.Error(err))
		}
	}

	var notifier notify.Notifier
	if cfg.NotifierURL != "" {
		notifier, err = notify.NewWebhookNotifier(cfg.NotifierURL)
		if err != nil {
			logger.Fatal("notifier initialization failed", zap.Error(err))
		}
	}

	resolver, err := service.NewTemplateResolver(templates, areas)
	if err != nil {
		logger.Fatal("template resolver initialization failed", zap.Error(err))
	}

	materializer, err := service.NewScheduleMaterializer(schedules, assigner, logger)
	if err != nil {
		logger.Fatal("materializer initialization failed", zap.Error(err))
	}

	consumer := queue.NewRabbitMQConsumer(
		mq,
		cfg.WorkerPrefetch,
		cfg.BatchMaxAttempts,
		time.Duration(cfg.BatchTimeoutSec)*time.Second,
		logger,
	)

	worker, err := service.NewBulkWorkerService(batches, schedules, resolver, materializer, consumer, notifier, logger)
	if err != nil {
		logger.Fatal("worker initialization failed", zap.Error(err))
	}

	metrics := observability.NewMetrics()
	worker.SetMetrics(metrics)

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.APIPort),
		Handler: mux,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return worker.Start(gctx)
	})

	g.Go(func() error {
		logger.Info("worker metrics endpoint started", zap.Int("port", cfg.APIPort))
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down worker")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return metricsServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("worker terminated", zap.Error(err))
	}
}
