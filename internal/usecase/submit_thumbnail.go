package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/syamcode/thumbnail-generator/internal/domain/entity"
	"github.com/syamcode/thumbnail-generator/internal/domain/port"
	"github.com/syamcode/thumbnail-generator/internal/infra/metrics"
	"go.uber.org/zap"
)

const dedupKeyPrefix = "thumbnail:dedup:"

// SubmitThumbnailUseCase accepts a video URL, reuses a prior job for the
// same normalized URL when the dedup cache allows, and otherwise creates
// and enqueues a new one.
type SubmitThumbnailUseCase struct {
	repo     port.JobRepository
	cache    port.DedupCache
	requests port.RequestPublisher
	logger   *zap.Logger
	cfg      SubmitThumbnailConfig
}

type SubmitThumbnailConfig struct {
	MaxAttempts int
	DedupTTL    time.Duration
}

func NewSubmitThumbnailUseCase(
	repo port.JobRepository,
	cache port.DedupCache,
	requests port.RequestPublisher,
	logger *zap.Logger,
	cfg SubmitThumbnailConfig,
) *SubmitThumbnailUseCase {
	return &SubmitThumbnailUseCase{
		repo:     repo,
		cache:    cache,
		requests: requests,
		logger:   logger,
		cfg:      cfg,
	}
}

// Execute returns the job for videoURL and whether it was reused from a
// previous submission.
func (uc *SubmitThumbnailUseCase) Execute(ctx context.Context, videoURL string) (*entity.Job, bool, error) {
	normalized, err := NormalizeURL(videoURL)
	if err != nil {
		return nil, false, err
	}
	key := dedupKeyPrefix + normalized

	if job := uc.lookupExisting(ctx, key); job != nil {
		metrics.DedupHitsTotal.Inc()
		uc.logger.Info("submission deduplicated",
			zap.String("job_id", job.ID.String()),
			zap.String("url", normalized),
		)
		return job, true, nil
	}

	job := entity.NewJob(normalized, uc.cfg.MaxAttempts)
	if err := uc.repo.Create(ctx, job); err != nil {
		return nil, false, fmt.Errorf("create job: %w", err)
	}

	msg, _ := json.Marshal(entity.ThumbnailRequestMessage{
		JobID:    job.ID,
		VideoURL: normalized,
	})
	if err := uc.requests.PublishRequest(ctx, msg); err != nil {
		return nil, false, fmt.Errorf("enqueue job: %w", err)
	}

	// Cache only after the job actually exists; a failed Set just loses
	// the dedup shortcut.
	if err := uc.cache.Set(ctx, key, job.ID.String(), uc.cfg.DedupTTL); err != nil {
		uc.logger.Warn("failed to cache dedup entry", zap.String("url", normalized), zap.Error(err))
	}

	uc.logger.Info("job submitted",
		zap.String("job_id", job.ID.String()),
		zap.String("url", normalized),
	)
	return job, false, nil
}

// lookupExisting resolves a cache hit to a live job record. Cache entries
// can outlive the record, so a dangling hit is just a miss.
func (uc *SubmitThumbnailUseCase) lookupExisting(ctx context.Context, key string) *entity.Job {
	cached, ok, err := uc.cache.Get(ctx, key)
	if err != nil {
		uc.logger.Warn("dedup cache lookup failed", zap.Error(err))
		return nil
	}
	if !ok {
		return nil
	}

	id, err := uuid.Parse(cached)
	if err != nil {
		return nil
	}
	job, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil
	}
	return job
}

// NormalizeURL canonicalizes a source URL for dedup purposes: scheme and
// host are case-insensitive, fragments never reach the server.
func NormalizeURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: %q", entity.ErrInvalidURL, rawURL)
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	return u.String(), nil
}
