package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/syamcode/thumbnail-generator/internal/api"
	"github.com/syamcode/thumbnail-generator/internal/infra/config"
	"github.com/syamcode/thumbnail-generator/internal/infra/metrics"
	"github.com/syamcode/thumbnail-generator/internal/infra/postgres"
	"github.com/syamcode/thumbnail-generator/internal/infra/rabbitmq"
	"github.com/syamcode/thumbnail-generator/internal/infra/redis"
	"github.com/syamcode/thumbnail-generator/internal/usecase"
	"github.com/syamcode/thumbnail-generator/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	fatalOnErr(err, "load config")

	log, err := logger.New(cfg.LogLevel)
	fatalOnErr(err, "init logger")
	defer log.Sync()

	log.Info("starting thumbnail-generator api")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	fatalOnErr(err, "connect to postgres")
	defer pool.Close()

	if err := postgres.RunMigrations(cfg.DatabaseURL); err != nil {
		log.Warn("migration warning", zap.Error(err))
	}

	// Dedup cache
	cache := redis.NewCache(redis.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer cache.Close()

	// RabbitMQ publisher connection
	rmqConn, err := amqp.Dial(cfg.RabbitMQURL)
	fatalOnErr(err, "connect to rabbitmq")
	defer rmqConn.Close()

	pub, err := rabbitmq.NewPublisher(rmqConn, cfg.RabbitMQExchange)
	fatalOnErr(err, "create rabbitmq publisher")

	requestPub, err := rabbitmq.NewRequestPublisher(pub, cfg.RabbitMQRequestQueue)
	fatalOnErr(err, "create request publisher")

	repo := postgres.NewJobRepository(pool)
	submit := usecase.NewSubmitThumbnailUseCase(repo, cache, requestPub, log, usecase.SubmitThumbnailConfig{
		MaxAttempts: cfg.MaxAttempts,
		DedupTTL:    cfg.DedupTTL,
	})

	srv := api.NewServer(submit, repo, log, cfg.GifURL, cfg.GifDir)

	metricsSrv := metrics.StartServer(cfg.MetricsPort, log)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		log.Info("api listening", zap.String("addr", addr))
		if err := srv.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Error("api server error", zap.Error(err))
			cancel()
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", zap.String("signal", sig.String()))
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("api shutdown error", zap.Error(err))
	}
	metricsSrv.Shutdown(shutdownCtx)

	log.Info("thumbnail-generator api stopped")
}

func fatalOnErr(err error, msg string) {
	if err != nil {
		panic(msg + ": " + err.Error())
	}
}
