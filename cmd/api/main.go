package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/mbarroso/escala-engine/internal/config"
	"github.com/mbarroso/escala-engine/internal/handler"
	"github.com/mbarroso/escala-engine/internal/infra/postgresql"
	"github.com/mbarroso/escala-engine/internal/infra/postgresql/migrations"
	infraredis "github.com/mbarroso/escala-engine/internal/infra/redis"
	"github.com/mbarroso/escala-engine/internal/observability"
	"github.com/mbarroso/escala-engine/internal/queue"
	"github.com/mbarroso/escala-engine/internal/repository"
	"github.com/mbarroso/escala-engine/internal/service"
	"github.com/mbarroso/escala-engine/internal/transport"
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

	rdb, err := infraredis.NewRedis(cfg.RedisURL)
	if err != nil {
		logger.Fatal("redis initialization failed", zap.Error(err))
	}
	defer rdb.Close()

	mq, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
	if err != nil {
		logger.Fatal("rabbitmq initialization failed", zap.Error(err))
	}
	defer mq.Close()

	limiter, err := infraredis.NewRedisRateLimiter(rdb, cfg.BulkSubmitPerMin)
	if err != nil {
		logger.Fatal("rate limiter initialization failed", zap.Error(err))
	}

	batches := repository.NewGormBatchRepo(db)
	schedules := repository.NewGormScheduleRepo(db)
	areas := repository.NewGormAreaMembershipRepo(db)
	publisher := queue.NewRabbitMQPublisher(mq)

	bulkService, err := service.NewBulkService(batches, schedules, areas, publisher, limiter, logger)
	if err != nil {
		logger.Fatal("bulk service initialization failed", zap.Error(err))
	}

	metrics := observability.NewMetrics()
	bulkService.SetMetrics(metrics)

	app := fiber.New(fiber.Config{
		ErrorHandler:          transport.ErrorHandler(logger),
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(metrics.HTTPMiddleware())

	handler.RegisterHealthRoutes(app, sqlDB, rdb)
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	if err := handler.RegisterBulkRoutes(app, bulkService); err != nil {
		logger.Fatal("route registration failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("escala-engine api started", zap.Int("port", cfg.APIPort))
		return app.Listen(fmt.Sprintf(":%d", cfg.APIPort))
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down api")
		return app.ShutdownWithTimeout(shutdownTimeout)
	})

	if err := g.Wait(); err != nil {
		logger.Error("api terminated", zap.Error(err))
	}
}
