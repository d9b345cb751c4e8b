package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/syamcode/thumbnail-generator/internal/domain/entity"
	"go.uber.org/zap"
)

type AssemblerConfig struct {
	FPS   int
	Width int
}

// Assembler encodes a selected frame sequence into a looping animated GIF.
type Assembler struct {
	fps    int
	width  int
	logger *zap.Logger
}

func NewAssembler(cfg AssemblerConfig, logger *zap.Logger) *Assembler {
	return &Assembler{fps: cfg.FPS, width: cfg.Width, logger: logger}
}

func (a *Assembler) AssembleGif(ctx context.Context, framePaths []string, outputPath string) error {
	if len(framePaths) == 0 {
		return fmt.Errorf("%w: no frames to assemble", entity.ErrMissingInput)
	}
	for _, frame := range framePaths {
		if _, err := os.Stat(frame); err != nil {
			return fmt.Errorf("%w: frame %s", entity.ErrMissingInput, frame)
		}
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	// Single-pass palette generation keeps GIF colors from banding: split
	// the stream, build an optimal palette from one copy, apply it to the
	// other.
	filter := fmt.Sprintf(
		"fps=%d,scale=%d:-1:flags=lanczos,split[s0][s1];[s0]palettegen[p];[s1][p]paletteuse",
		a.fps, a.width,
	)

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-hide_banner",
		"-f", "image2pipe",
		"-framerate", fmt.Sprintf("%d", a.fps),
		"-i", "concat:"+strings.Join(framePaths, "|"),
		"-filter_complex", filter,
		"-loop", "0",
		"-y",
		outputPath,
	)
	if output, err := cmd.CombinedOutput(); err != nil {
		return &entity.EngineError{Op: "assemble", Err: fmt.Errorf("%w: %s", err, string(output))}
	}

	a.logger.Info("gif assembled",
		zap.Int("frames", len(framePaths)),
		zap.String("output", outputPath),
	)
	return nil
}
