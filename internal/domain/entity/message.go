package entity

import "github.com/google/uuid"

// ThumbnailRequestMessage is the inbound message on the generation queue.
type ThumbnailRequestMessage struct {
	JobID    uuid.UUID `json:"job_id"`
	VideoURL string    `json:"video_url"`
}

// ThumbnailStatusMessage is published to the status queue on every job
// state transition.
type ThumbnailStatusMessage struct {
	JobID       uuid.UUID `json:"job_id"`
	State       JobState  `json:"state"`
	Progress    string    `json:"progress"`
	ArtifactKey string    `json:"artifact_key,omitempty"`
	Error       string    `json:"error,omitempty"`
	Attempt     int       `json:"attempt"`
	MaxAttempts int       `json:"max_attempts"`
}
