package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"

	"github.com/syamcode/thumbnail-generator/internal/domain/entity"
	"github.com/syamcode/thumbnail-generator/internal/domain/port"
	"go.uber.org/zap"
)

const framePattern = "frame_%04d.png"

type Extractor struct {
	minFrames int
	logger    *zap.Logger
}

// NewExtractor builds an extractor that always yields at least minFrames
// frames, however short the source.
func NewExtractor(minFrames int, logger *zap.Logger) *Extractor {
	return &Extractor{minFrames: minFrames, logger: logger}
}

func (e *Extractor) ExtractFrames(ctx context.Context, videoPath string, outputDir string) (*port.FrameExtractionResult, error) {
	if videoPath == "" || outputDir == "" {
		return nil, fmt.Errorf("%w: video path and output dir are required", entity.ErrMissingInput)
	}
	if _, err := os.Stat(videoPath); err != nil {
		return nil, fmt.Errorf("%w: %s", entity.ErrMissingInput, videoPath)
	}

	probe, err := Probe(ctx, videoPath)
	if err != nil {
		return nil, err
	}
	if !probe.HasVideoStream {
		return nil, fmt.Errorf("%w: %s", entity.ErrNotAVideo, videoPath)
	}

	// Re-runs on the same directory must never mix frames from two inputs.
	if err := resetDir(outputDir); err != nil {
		return nil, fmt.Errorf("prepare output dir: %w", err)
	}

	fps := effectiveFps(probe.Duration, e.minFrames)

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-hide_banner",
		"-i", videoPath,
		"-vf", fmt.Sprintf("fps=%g", fps),
		"-qscale:v", "2",
		"-y",
		filepath.Join(outputDir, framePattern),
	)
	if output, err := cmd.CombinedOutput(); err != nil {
		return nil, &entity.EngineError{Op: "extract", Err: fmt.Errorf("%w: %s", err, string(output))}
	}

	frames, err := filepath.Glob(filepath.Join(outputDir, "frame_*.png"))
	if err != nil {
		return nil, fmt.Errorf("glob frames: %w", err)
	}
	if len(frames) == 0 {
		return nil, &entity.EngineError{Op: "extract", Err: fmt.Errorf("no frames produced")}
	}
	sort.Strings(frames)

	e.logger.Info("frames extracted",
		zap.String("video", videoPath),
		zap.Int("count", len(frames)),
		zap.Float64("duration", probe.Duration),
		zap.Float64("fps", fps),
	)

	return &port.FrameExtractionResult{
		FramePaths:    frames,
		FrameCount:    len(frames),
		VideoDuration: probe.Duration,
	}, nil
}

// effectiveFps spreads minFrames samples across the source duration, with a
// floor of 1 fps for long sources. Unknown duration falls back to the
// target rate itself.
func effectiveFps(duration float64, minFrames int) float64 {
	if duration <= 0 {
		return float64(minFrames)
	}
	fps := float64(minFrames) / duration
	if fps < 1 {
		return 1
	}
	return fps
}

func resetDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o755)
}
