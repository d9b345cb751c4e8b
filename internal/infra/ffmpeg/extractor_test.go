package ffmpeg

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/syamcode/thumbnail-generator/internal/domain/entity"
	"go.uber.org/zap/zaptest"
)

func TestEffectiveFps(t *testing.T) {
	tests := []struct {
		name      string
		duration  float64
		minFrames int
		want      float64
	}{
		{"unknown duration falls back to target rate", 0, 5, 5},
		{"negative duration falls back to target rate", -1, 5, 5},
		{"short source samples faster", 2, 5, 2.5},
		{"one second source", 1, 5, 5},
		{"long source floors at 1 fps", 60, 5, 1},
		{"exact boundary", 5, 5, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, effectiveFps(tt.duration, tt.minFrames), 1e-9)
		})
	}
}

func TestExtractFramesMissingInput(t *testing.T) {
	e := NewExtractor(5, zaptest.NewLogger(t))

	_, err := e.ExtractFrames(context.Background(), "", t.TempDir())
	assert.ErrorIs(t, err, entity.ErrMissingInput)

	_, err = e.ExtractFrames(context.Background(), "/tmp/video.mp4", "")
	assert.ErrorIs(t, err, entity.ErrMissingInput)

	_, err = e.ExtractFrames(context.Background(), filepath.Join(t.TempDir(), "nope.mp4"), t.TempDir())
	assert.ErrorIs(t, err, entity.ErrMissingInput)
}

func TestResetDirClearsStaleFrames(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "frames")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	stale := filepath.Join(dir, "frame_0001.png")
	require.NoError(t, os.WriteFile(stale, []byte("stale"), 0o644))

	require.NoError(t, resetDir(dir))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "a re-run must never see frames from a previous input")
}
