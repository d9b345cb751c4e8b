package entity

import (
	"time"

	"github.com/google/uuid"
)

type JobState string

const (
	JobStateQueued    JobState = "queued"
	JobStateActive    JobState = "active"
	JobStateCompleted JobState = "completed"
	JobStateFailed    JobState = "failed"
)

// Pipeline stage names, reported as coarse progress while a job is active.
const (
	StageFetch    = "fetch"
	StageExtract  = "extract"
	StageScore    = "score"
	StageSelect   = "select"
	StageAssemble = "assemble"
)

// Job is one end-to-end request to turn a source video into an animated
// thumbnail. It is mutated only by the orchestrator.
type Job struct {
	ID          uuid.UUID
	SourceURL   string
	State       JobState
	Stage       string
	ArtifactKey string
	Attempt     int
	MaxAttempts int

	// LastError holds the most recent per-attempt error. Only FailureReason
	// is exposed to callers, and only once attempts are exhausted.
	LastError     string
	FailureReason string

	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
}

func NewJob(sourceURL string, maxAttempts int) *Job {
	now := time.Now().UTC()
	return &Job{
		ID:          uuid.New(),
		SourceURL:   sourceURL,
		State:       JobStateQueued,
		Attempt:     0,
		MaxAttempts: maxAttempts,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// MarkActive records a worker picking the job up for a fresh attempt.
func (j *Job) MarkActive() {
	j.State = JobStateActive
	j.Attempt++
	j.Stage = StageFetch
	j.UpdatedAt = time.Now().UTC()
}

// SetStage advances the coarse progress indicator within an active attempt.
func (j *Job) SetStage(stage string) {
	j.Stage = stage
	j.UpdatedAt = time.Now().UTC()
}

// MarkQueued returns the job to the queue after a retryable attempt failure.
func (j *Job) MarkQueued(lastErr string) {
	j.State = JobStateQueued
	j.Stage = ""
	j.LastError = lastErr
	j.UpdatedAt = time.Now().UTC()
}

func (j *Job) MarkCompleted(artifactKey string) {
	now := time.Now().UTC()
	j.State = JobStateCompleted
	j.Stage = ""
	j.ArtifactKey = artifactKey
	j.UpdatedAt = now
	j.CompletedAt = &now
}

// MarkFailed is terminal: attempts are exhausted and the reason becomes
// visible to status callers.
func (j *Job) MarkFailed(reason string) {
	j.State = JobStateFailed
	j.Stage = ""
	j.LastError = reason
	j.FailureReason = reason
	j.UpdatedAt = time.Now().UTC()
}

func (j *Job) CanRetry() bool {
	return j.Attempt < j.MaxAttempts
}

func (j *Job) Terminal() bool {
	return j.State == JobStateCompleted || j.State == JobStateFailed
}

// Progress reports the coarse progress unit: the state, refined by the
// current stage name while the job is active.
func (j *Job) Progress() string {
	if j.State == JobStateActive && j.Stage != "" {
		return string(j.State) + ":" + j.Stage
	}
	return string(j.State)
}
