package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/syamcode/thumbnail-generator/internal/domain/entity"
	"github.com/syamcode/thumbnail-generator/internal/domain/port"
)

type MockJobRepository struct {
	mock.Mock
}

func (m *MockJobRepository) Create(ctx context.Context, job *entity.Job) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockJobRepository) Update(ctx context.Context, job *entity.Job) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockJobRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Job), args.Error(1)
}

type MockVideoFetcher struct {
	mock.Mock
}

func (m *MockVideoFetcher) Fetch(ctx context.Context, url, destPath string) (string, error) {
	args := m.Called(ctx, url, destPath)
	return args.String(0), args.Error(1)
}

type MockFrameExtractor struct {
	mock.Mock
}

func (m *MockFrameExtractor) ExtractFrames(ctx context.Context, videoPath, outputDir string) (*port.FrameExtractionResult, error) {
	args := m.Called(ctx, videoPath, outputDir)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.FrameExtractionResult), args.Error(1)
}

type MockFrameScorer struct {
	mock.Mock
}

func (m *MockFrameScorer) ScoreFrames(ctx context.Context, frames []string, weights entity.ScoreWeights) ([]entity.FrameScore, error) {
	args := m.Called(ctx, frames, weights)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.FrameScore), args.Error(1)
}

type MockGifAssembler struct {
	mock.Mock
}

func (m *MockGifAssembler) AssembleGif(ctx context.Context, framePaths []string, outputPath string) error {
	args := m.Called(ctx, framePaths, outputPath)
	return args.Error(0)
}

type MockArtifactStore struct {
	mock.Mock
}

func (m *MockArtifactStore) Publish(ctx context.Context, localPath, key string) (string, error) {
	args := m.Called(ctx, localPath, key)
	return args.String(0), args.Error(1)
}

type MockDedupCache struct {
	mock.Mock
}

func (m *MockDedupCache) Get(ctx context.Context, key string) (string, bool, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockDedupCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

type MockRequestPublisher struct {
	mock.Mock
}

func (m *MockRequestPublisher) PublishRequest(ctx context.Context, msg []byte) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

type MockStatusPublisher struct {
	mock.Mock
}

func (m *MockStatusPublisher) PublishStatus(ctx context.Context, msg []byte) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

type MockDLQPublisher struct {
	mock.Mock
}

func (m *MockDLQPublisher) PublishToDLQ(ctx context.Context, msg []byte, reason string) error {
	args := m.Called(ctx, msg, reason)
	return args.Error(0)
}

type MockFailureNotifier struct {
	mock.Mock
}

func (m *MockFailureNotifier) NotifyFailure(ctx context.Context, to, jobID, sourceURL, reason string) error {
	args := m.Called(ctx, to, jobID, sourceURL, reason)
	return args.Error(0)
}
