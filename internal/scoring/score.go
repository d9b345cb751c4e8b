// Package scoring implements the deterministic visual-appeal heuristic used
// to pick key frames: per-frame pixel statistics combined by weighted sum,
// then a two-phase top-N selection.
package scoring

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/syamcode/thumbnail-generator/internal/domain/entity"
)

// Scorer computes visual-appeal scores from raw pixel samples. It is a pure
// function of the weights and the file bytes; nothing is cached across calls.
type Scorer struct{}

func NewScorer() *Scorer {
	return &Scorer{}
}

// ScoreFrames scores each frame independently. A single unreadable or
// corrupt frame aborts the whole batch so a bad extraction can never
// silently produce a truncated score set.
func (s *Scorer) ScoreFrames(ctx context.Context, frames []string, weights entity.ScoreWeights) ([]entity.FrameScore, error) {
	scores := make([]entity.FrameScore, 0, len(frames))

	for _, file := range frames {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		stats, err := analyzeFrame(file)
		if err != nil {
			return nil, &entity.ScoreError{File: file, Err: err}
		}
		scores = append(scores, entity.FrameScore{
			File:  file,
			Score: stats.brightness*weights.Brightness + stats.contrast*weights.Contrast + stats.saturation*weights.Saturation,
		})
	}

	return scores, nil
}

// frameStats are the three normalized [0,1] statistics of one image.
type frameStats struct {
	brightness float64
	contrast   float64
	saturation float64
}

// analyzeFrame makes two passes over the pixel data: the first establishes
// mean brightness and saturation, the second accumulates the absolute
// deviation from that mean, which is the contrast measure.
func analyzeFrame(path string) (frameStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return frameStats{}, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return frameStats{}, fmt.Errorf("decode: %w", err)
	}

	bounds := img.Bounds()
	pixels := float64(bounds.Dx() * bounds.Dy())
	if pixels == 0 {
		return frameStats{}, fmt.Errorf("empty image")
	}

	var totalBrightness, totalSaturation float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b := rgb8(img.At(x, y).RGBA())
			totalBrightness += (r + g + b) / 3
			totalSaturation += max3(r, g, b) - min3(r, g, b)
		}
	}
	meanBrightness := totalBrightness / pixels

	var totalDeviation float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b := rgb8(img.At(x, y).RGBA())
			intensity := (r + g + b) / 3
			if intensity > meanBrightness {
				totalDeviation += intensity - meanBrightness
			} else {
				totalDeviation += meanBrightness - intensity
			}
		}
	}

	return frameStats{
		brightness: meanBrightness / 255,
		contrast:   totalDeviation / (pixels * 255),
		saturation: totalSaturation / (pixels * 255),
	}, nil
}

func rgb8(r, g, b, _ uint32) (float64, float64, float64) {
	return float64(r >> 8), float64(g >> 8), float64(b >> 8)
}

func max3(a, b, c float64) float64 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}

func min3(a, b, c float64) float64 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
