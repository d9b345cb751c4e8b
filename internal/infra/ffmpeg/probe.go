// Package ffmpeg shells out to ffmpeg/ffprobe for everything that touches
// actual video decode and encode. The rest of the system treats it as a
// black box that either succeeds or fails.
package ffmpeg

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"

	"github.com/syamcode/thumbnail-generator/internal/domain/entity"
)

// ProbeResult is the subset of stream metadata the pipeline cares about.
type ProbeResult struct {
	HasVideoStream bool
	// Duration is in seconds; 0 when the container does not report one.
	Duration float64
}

// ffprobeOutput matches ffprobe's JSON output structure.
type ffprobeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType string `json:"codec_type"`
	} `json:"streams"`
}

// Probe inspects a media file for a video stream and its duration.
func Probe(ctx context.Context, path string) (*ProbeResult, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-hide_banner",
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, &entity.EngineError{Op: "probe", Err: fmt.Errorf("%w: %s", err, stderr.String())}
	}

	var out ffprobeOutput
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		return nil, &entity.EngineError{Op: "probe", Err: fmt.Errorf("parse output: %w", err)}
	}

	result := &ProbeResult{}
	for _, s := range out.Streams {
		if s.CodecType == "video" {
			result.HasVideoStream = true
			break
		}
	}
	if out.Format.Duration != "" {
		if d, err := strconv.ParseFloat(out.Format.Duration, 64); err == nil {
			result.Duration = d
		}
	}
	return result, nil
}
