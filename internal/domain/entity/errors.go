package entity

import (
	"errors"
	"fmt"
)

// Stage error taxonomy. Each pipeline stage surfaces one of these; the
// orchestrator never interprets anything finer-grained.
var (
	// Fetch
	ErrInvalidURL      = errors.New("invalid video url")
	ErrUnsupportedType = errors.New("unsupported content type")
	ErrTooLarge        = errors.New("content exceeds size limit")
	ErrWriteFailed     = errors.New("failed to write video file")

	// Extract
	ErrMissingInput = errors.New("missing input path")
	ErrNotAVideo    = errors.New("input has no video stream")

	// Orchestrator, terminal
	ErrAttemptsExhausted = errors.New("attempts exhausted")
)

// ScoreError aborts a whole scoring batch and names the frame that could
// not be analyzed.
type ScoreError struct {
	File string
	Err  error
}

func (e *ScoreError) Error() string {
	return fmt.Sprintf("score frame %s: %v", e.File, e.Err)
}

func (e *ScoreError) Unwrap() error { return e.Err }

// EngineError wraps a failure of the external decode/encode engine. The
// engine is a black box; Op records which invocation failed.
type EngineError struct {
	Op  string
	Err error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("engine %s: %v", e.Op, e.Err)
}

func (e *EngineError) Unwrap() error { return e.Err }
