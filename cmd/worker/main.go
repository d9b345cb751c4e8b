package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/syamcode/thumbnail-generator/internal/domain/entity"
	"github.com/syamcode/thumbnail-generator/internal/infra/config"
	"github.com/syamcode/thumbnail-generator/internal/infra/download"
	"github.com/syamcode/thumbnail-generator/internal/infra/email"
	"github.com/syamcode/thumbnail-generator/internal/infra/ffmpeg"
	"github.com/syamcode/thumbnail-generator/internal/infra/metrics"
	"github.com/syamcode/thumbnail-generator/internal/infra/postgres"
	"github.com/syamcode/thumbnail-generator/internal/infra/rabbitmq"
	"github.com/syamcode/thumbnail-generator/internal/infra/storage"
	"github.com/syamcode/thumbnail-generator/internal/infra/tracing"
	"github.com/syamcode/thumbnail-generator/internal/scoring"
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

	log.Info("starting thumbnail-generator worker")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Tracing (non-fatal if the collector is unavailable)
	tp, err := tracing.InitTracer(ctx, cfg.OTLPEndpoint)
	if err != nil {
		log.Warn("tracing init failed, continuing without tracing", zap.Error(err))
	} else {
		defer tp.Shutdown(ctx)
	}

	// Database
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	fatalOnErr(err, "connect to postgres")
	defer pool.Close()

	if err := postgres.RunMigrations(cfg.DatabaseURL); err != nil {
		log.Warn("migration warning", zap.Error(err))
	}

	// Artifact publishing
	artifacts, err := storage.NewArtifactStore(storage.Config{
		PublicDir:      cfg.GifDir,
		BaseURL:        cfg.GifURL,
		MinIOEndpoint:  cfg.MinIOEndpoint,
		MinIOAccessKey: cfg.MinIOAccessKey,
		MinIOSecretKey: cfg.MinIOSecretKey,
		MinIOUseSSL:    cfg.MinIOUseSSL,
		MinIOBucket:    cfg.MinIOBucket,
	}, log)
	fatalOnErr(err, "create artifact store")
	fatalOnErr(artifacts.EnsureReady(ctx), "prepare artifact store")

	// RabbitMQ publisher connection
	rmqConn, err := amqp.Dial(cfg.RabbitMQURL)
	fatalOnErr(err, "connect to rabbitmq for publisher")
	defer rmqConn.Close()

	pub, err := rabbitmq.NewPublisher(rmqConn, cfg.RabbitMQExchange)
	fatalOnErr(err, "create rabbitmq publisher")

	statusPub := rabbitmq.NewStatusPublisher(pub, cfg.RabbitMQStatusQueue)
	dlqPub := rabbitmq.NewDLQPublisher(pub, cfg.RabbitMQDLQ)

	// Infra adapters
	repo := postgres.NewJobRepository(pool)
	fetcher := download.NewFetcher(download.Config{
		AllowedTypes: cfg.FetchAllowedTypes,
		MaxBytes:     cfg.FetchMaxBytes,
	}, log)
	extractor := ffmpeg.NewExtractor(cfg.ExtractMinFrames, log)
	assembler := ffmpeg.NewAssembler(ffmpeg.AssemblerConfig{
		FPS:   cfg.GifFPS,
		Width: cfg.GifWidth,
	}, log)
	scorer := scoring.NewScorer()
	notifier := email.NewSMTPNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom, log)

	// Use case
	uc := usecase.NewGenerateThumbnailUseCase(
		repo, fetcher, extractor, scorer, assembler,
		artifacts, statusPub, dlqPub, notifier,
		log,
		usecase.GenerateThumbnailConfig{
			TempDir:                 cfg.TempDir,
			MaxAttempts:             cfg.MaxAttempts,
			TopN:                    cfg.SelectTopN,
			Weights:                 entity.DefaultScoreWeights,
			RemoveWorkdirOnComplete: cfg.RemoveWorkdirOnComplete,
			RemoveWorkdirOnFailure:  cfg.RemoveWorkdirOnFailure,
			NotifyEmail:             cfg.NotifyEmail,
		},
	)

	// Metrics server
	metricsSrv := metrics.StartServer(cfg.MetricsPort, log)

	// Consumer (worker pool)
	consumer, err := rabbitmq.NewConsumer(rabbitmq.ConsumerConfig{
		URL:          cfg.RabbitMQURL,
		RequestQueue: cfg.RabbitMQRequestQueue,
		StatusQueue:  cfg.RabbitMQStatusQueue,
		DLQ:          cfg.RabbitMQDLQ,
		Exchange:     cfg.RabbitMQExchange,
		Prefetch:     cfg.RabbitMQPrefetch,
		WorkerCount:  cfg.WorkerCount,
		BaseDelay:    cfg.RetryBaseDelay,
	}, uc.Execute, log)
	fatalOnErr(err, "create consumer")

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Info("received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	}()

	log.Info("thumbnail-generator worker started, consuming messages")

	if err := consumer.Start(ctx); err != nil {
		log.Error("consumer error", zap.Error(err))
	}

	// Shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	metricsSrv.Shutdown(shutdownCtx)

	consumer.Close()
	log.Info("thumbnail-generator worker stopped")
}

func fatalOnErr(err error, msg string) {
	if err != nil {
		panic(msg + ": " + err.Error())
	}
}
