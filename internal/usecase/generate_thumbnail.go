package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/syamcode/thumbnail-generator/internal/domain/entity"
	"github.com/syamcode/thumbnail-generator/internal/domain/port"
	"github.com/syamcode/thumbnail-generator/internal/infra/metrics"
	"github.com/syamcode/thumbnail-generator/internal/scoring"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// GenerateThumbnailUseCase runs the full pipeline for one queued job:
// fetch, extract, score, select, assemble. Stages are strictly
// sequential; any stage error aborts the attempt.
type GenerateThumbnailUseCase struct {
	repo      port.JobRepository
	fetcher   port.VideoFetcher
	extractor port.FrameExtractor
	scorer    port.FrameScorer
	assembler port.GifAssembler
	artifacts port.ArtifactStore
	statusPub port.StatusPublisher
	dlq       port.DLQPublisher
	notifier  port.FailureNotifier
	logger    *zap.Logger
	cfg       GenerateThumbnailConfig
}

type GenerateThumbnailConfig struct {
	TempDir     string
	MaxAttempts int
	TopN        int
	Weights     entity.ScoreWeights

	RemoveWorkdirOnComplete bool
	RemoveWorkdirOnFailure  bool

	// NotifyEmail receives a mail on permanent failure; empty disables it.
	NotifyEmail string
}

func NewGenerateThumbnailUseCase(
	repo port.JobRepository,
	fetcher port.VideoFetcher,
	extractor port.FrameExtractor,
	scorer port.FrameScorer,
	assembler port.GifAssembler,
	artifacts port.ArtifactStore,
	statusPub port.StatusPublisher,
	dlq port.DLQPublisher,
	notifier port.FailureNotifier,
	logger *zap.Logger,
	cfg GenerateThumbnailConfig,
) *GenerateThumbnailUseCase {
	if cfg.TopN <= 0 {
		cfg.TopN = scoring.DefaultTopN
	}
	if cfg.Weights == (entity.ScoreWeights{}) {
		cfg.Weights = entity.DefaultScoreWeights
	}
	return &GenerateThumbnailUseCase{
		repo:      repo,
		fetcher:   fetcher,
		extractor: extractor,
		scorer:    scorer,
		assembler: assembler,
		artifacts: artifacts,
		statusPub: statusPub,
		dlq:       dlq,
		notifier:  notifier,
		logger:    logger,
		cfg:       cfg,
	}
}

// Execute is the queue message handler. A nil return acks the message; an
// error requeues it for another attempt.
func (uc *GenerateThumbnailUseCase) Execute(ctx context.Context, rawMsg []byte) error {
	tracer := otel.Tracer("usecase")
	ctx, span := tracer.Start(ctx, "GenerateThumbnailUseCase.Execute")
	defer span.End()

	var msg entity.ThumbnailRequestMessage
	if err := json.Unmarshal(rawMsg, &msg); err != nil {
		uc.logger.Error("unparseable request message", zap.Error(err), zap.ByteString("body", rawMsg))
		_ = uc.dlq.PublishToDLQ(ctx, rawMsg, "unmarshal_error: "+err.Error())
		return nil
	}

	span.SetAttributes(
		attribute.String("job.id", msg.JobID.String()),
		attribute.String("job.video_url", msg.VideoURL),
	)
	log := uc.logger.With(zap.String("job_id", msg.JobID.String()))

	job, err := uc.repo.FindByID(ctx, msg.JobID)
	if err != nil {
		// Redelivery can outlive the record; rebuild it from the message.
		job = entity.NewJob(msg.VideoURL, uc.cfg.MaxAttempts)
		job.ID = msg.JobID
		if err := uc.repo.Create(ctx, job); err != nil {
			log.Error("failed to create job record", zap.Error(err))
			return fmt.Errorf("create job: %w", err)
		}
	}

	if job.Terminal() {
		// Redelivered after completion or permanent failure; nothing to do.
		log.Info("job already terminal, acking redelivery", zap.String("state", string(job.State)))
		return nil
	}

	if !job.CanRetry() {
		log.Warn("job has no attempts left")
		uc.failPermanently(ctx, job, rawMsg, entity.ErrAttemptsExhausted.Error()+": "+job.LastError)
		return nil
	}

	job.MarkActive()
	if err := uc.repo.Update(ctx, job); err != nil {
		log.Error("failed to mark job active", zap.Error(err))
		return fmt.Errorf("update job: %w", err)
	}
	uc.publishStatus(ctx, job, log)

	metrics.ActiveWorkers.Inc()
	defer metrics.ActiveWorkers.Dec()

	return uc.runPipeline(ctx, job, rawMsg, log)
}

func (uc *GenerateThumbnailUseCase) runPipeline(ctx context.Context, job *entity.Job, rawMsg []byte, log *zap.Logger) error {
	workDir := filepath.Join(uc.cfg.TempDir, job.ID.String())
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return fmt.Errorf("create workdir: %w", err)
	}

	// Fetch
	videoPath := filepath.Join(workDir, inputFileName(job.SourceURL))
	if _, err := uc.runStage(ctx, job, entity.StageFetch, log, func(ctx context.Context) error {
		_, err := uc.fetcher.Fetch(ctx, job.SourceURL, videoPath)
		return err
	}); err != nil {
		return uc.handleStageFailure(ctx, job, rawMsg, entity.StageFetch, err, log)
	}

	// Extract
	framesDir := filepath.Join(workDir, "frames")
	var extraction *port.FrameExtractionResult
	if _, err := uc.runStage(ctx, job, entity.StageExtract, log, func(ctx context.Context) error {
		var err error
		extraction, err = uc.extractor.ExtractFrames(ctx, videoPath, framesDir)
		return err
	}); err != nil {
		return uc.handleStageFailure(ctx, job, rawMsg, entity.StageExtract, err, log)
	}
	metrics.FramesExtractedTotal.Add(float64(extraction.FrameCount))

	// Score
	var scores []entity.FrameScore
	if _, err := uc.runStage(ctx, job, entity.StageScore, log, func(ctx context.Context) error {
		var err error
		scores, err = uc.scorer.ScoreFrames(ctx, extraction.FramePaths, uc.cfg.Weights)
		return err
	}); err != nil {
		return uc.handleStageFailure(ctx, job, rawMsg, entity.StageScore, err, log)
	}

	// Select
	var selected []entity.FrameScore
	if _, err := uc.runStage(ctx, job, entity.StageSelect, log, func(context.Context) error {
		selected = scoring.SelectKeyFrames(scores, uc.cfg.TopN)
		return nil
	}); err != nil {
		return uc.handleStageFailure(ctx, job, rawMsg, entity.StageSelect, err, log)
	}
	metrics.FramesSelectedTotal.Add(float64(len(selected)))

	// Assemble and publish the artifact under the deterministic key.
	artifactKey := job.ID.String() + ".gif"
	gifPath := filepath.Join(workDir, artifactKey)
	if _, err := uc.runStage(ctx, job, entity.StageAssemble, log, func(ctx context.Context) error {
		frames := make([]string, len(selected))
		for i, fs := range selected {
			frames[i] = fs.File
		}
		if err := uc.assembler.AssembleGif(ctx, frames, gifPath); err != nil {
			return err
		}
		_, err := uc.artifacts.Publish(ctx, gifPath, artifactKey)
		return err
	}); err != nil {
		return uc.handleStageFailure(ctx, job, rawMsg, entity.StageAssemble, err, log)
	}

	job.MarkCompleted(artifactKey)
	if err := uc.repo.Update(ctx, job); err != nil {
		log.Error("failed to mark job completed", zap.Error(err))
		return fmt.Errorf("update job completed: %w", err)
	}
	uc.publishStatus(ctx, job, log)
	metrics.JobsProcessedTotal.WithLabelValues("completed").Inc()

	if uc.cfg.RemoveWorkdirOnComplete {
		uc.removeWorkdir(workDir, log)
	}

	log.Info("job completed",
		zap.Int("frames_extracted", extraction.FrameCount),
		zap.Int("frames_selected", len(selected)),
		zap.String("artifact_key", artifactKey),
	)
	return nil
}

// runStage records the stage as coarse progress, wraps it in a span, and
// times it.
func (uc *GenerateThumbnailUseCase) runStage(ctx context.Context, job *entity.Job, stage string, log *zap.Logger, fn func(context.Context) error) (time.Duration, error) {
	job.SetStage(stage)
	if err := uc.repo.Update(ctx, job); err != nil {
		log.Warn("failed to persist stage progress", zap.String("stage", stage), zap.Error(err))
	}

	ctx, span := otel.Tracer("usecase").Start(ctx, "stage."+stage)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	metrics.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
	return time.Since(start), err
}

// handleStageFailure decides between requeueing the whole pipeline for a
// fresh attempt and failing the job permanently.
func (uc *GenerateThumbnailUseCase) handleStageFailure(ctx context.Context, job *entity.Job, rawMsg []byte, stage string, stageErr error, log *zap.Logger) error {
	reason := stage + ": " + stageErr.Error()
	log.Error("stage failed",
		zap.String("stage", stage),
		zap.Int("attempt", job.Attempt),
		zap.Int("max_attempts", job.MaxAttempts),
		zap.Error(stageErr),
	)

	if !job.CanRetry() {
		uc.failPermanently(ctx, job, rawMsg, reason)
		return nil
	}

	job.MarkQueued(reason)
	if err := uc.repo.Update(ctx, job); err != nil {
		log.Error("failed to requeue job", zap.Error(err))
	}
	uc.publishStatus(ctx, job, log)
	metrics.RetryTotal.WithLabelValues(strconv.Itoa(job.Attempt)).Inc()

	return fmt.Errorf("attempt %d/%d failed: %s", job.Attempt, job.MaxAttempts, reason)
}

func (uc *GenerateThumbnailUseCase) failPermanently(ctx context.Context, job *entity.Job, rawMsg []byte, reason string) {
	job.MarkFailed(reason)
	if err := uc.repo.Update(ctx, job); err != nil {
		uc.logger.Error("failed to mark job failed", zap.String("job_id", job.ID.String()), zap.Error(err))
	}

	_ = uc.dlq.PublishToDLQ(ctx, rawMsg, reason)
	uc.publishStatus(ctx, job, uc.logger)
	metrics.JobsProcessedTotal.WithLabelValues("failed").Inc()

	if uc.cfg.NotifyEmail != "" {
		_ = uc.notifier.NotifyFailure(ctx, uc.cfg.NotifyEmail, job.ID.String(), job.SourceURL, reason)
	}

	if uc.cfg.RemoveWorkdirOnFailure {
		uc.removeWorkdir(filepath.Join(uc.cfg.TempDir, job.ID.String()), uc.logger)
	}
}

func (uc *GenerateThumbnailUseCase) publishStatus(ctx context.Context, job *entity.Job, log *zap.Logger) {
	statusMsg := entity.ThumbnailStatusMessage{
		JobID:       job.ID,
		State:       job.State,
		Progress:    job.Progress(),
		ArtifactKey: job.ArtifactKey,
		Error:       job.FailureReason,
		Attempt:     job.Attempt,
		MaxAttempts: job.MaxAttempts,
	}
	data, _ := json.Marshal(statusMsg)
	if err := uc.statusPub.PublishStatus(ctx, data); err != nil {
		log.Error("failed to publish status", zap.Error(err))
	}
}

// removeWorkdir is best-effort cleanup; failure is logged, not propagated.
func (uc *GenerateThumbnailUseCase) removeWorkdir(workDir string, log *zap.Logger) {
	if err := os.RemoveAll(workDir); err != nil {
		log.Warn("could not remove workdir", zap.String("dir", workDir), zap.Error(err))
	}
}

// inputFileName keeps the source extension when the URL carries one so
// ffprobe sees a sensible container hint.
func inputFileName(sourceURL string) string {
	ext := ""
	if u, err := url.Parse(sourceURL); err == nil {
		ext = strings.ToLower(path.Ext(u.Path))
	}
	if ext == "" || len(ext) > 5 {
		ext = ".mp4"
	}
	return "input" + ext
}
