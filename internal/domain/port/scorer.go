package port

import (
	"context"

	"github.com/syamcode/thumbnail-generator/internal/domain/entity"
)

// FrameScorer computes a visual-appeal score per frame. A single
// unreadable frame fails the whole batch.
type FrameScorer interface {
	ScoreFrames(ctx context.Context, frames []string, weights entity.ScoreWeights) ([]entity.FrameScore, error)
}
