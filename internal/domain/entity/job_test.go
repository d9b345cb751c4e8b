package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJob(t *testing.T) {
	job := NewJob("https://example.com/video.mp4", 3)

	assert.Equal(t, JobStateQueued, job.State)
	assert.Equal(t, 0, job.Attempt)
	assert.Equal(t, 3, job.MaxAttempts)
	assert.Empty(t, job.FailureReason)
	assert.Nil(t, job.CompletedAt)
	assert.True(t, job.CanRetry())
}

func TestJobAttemptCounting(t *testing.T) {
	job := NewJob("https://example.com/video.mp4", 2)

	job.MarkActive()
	assert.Equal(t, JobStateActive, job.State)
	assert.Equal(t, 1, job.Attempt)
	assert.True(t, job.CanRetry())

	job.MarkQueued("fetch: connection reset")
	assert.Equal(t, JobStateQueued, job.State)
	assert.Empty(t, job.FailureReason, "retryable failures must not expose a failure reason")

	job.MarkActive()
	assert.Equal(t, 2, job.Attempt)
	assert.False(t, job.CanRetry())
}

func TestJobMarkCompleted(t *testing.T) {
	job := NewJob("https://example.com/video.mp4", 3)
	job.MarkActive()
	job.MarkCompleted(job.ID.String() + ".gif")

	assert.Equal(t, JobStateCompleted, job.State)
	assert.True(t, job.Terminal())
	require.NotNil(t, job.CompletedAt)
	assert.Equal(t, job.ID.String()+".gif", job.ArtifactKey)
	assert.Empty(t, job.Stage)
}

func TestJobMarkFailed(t *testing.T) {
	job := NewJob("https://example.com/video.mp4", 1)
	job.MarkActive()
	job.MarkFailed("extract: input has no video stream")

	assert.Equal(t, JobStateFailed, job.State)
	assert.True(t, job.Terminal())
	assert.Equal(t, "extract: input has no video stream", job.FailureReason)
}

func TestJobProgress(t *testing.T) {
	job := NewJob("https://example.com/video.mp4", 3)
	assert.Equal(t, "queued", job.Progress())

	job.MarkActive()
	assert.Equal(t, "active:fetch", job.Progress())

	job.SetStage(StageScore)
	assert.Equal(t, "active:score", job.Progress())

	job.MarkCompleted("x.gif")
	assert.Equal(t, "completed", job.Progress())
}
