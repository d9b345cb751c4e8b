package scoring

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/syamcode/thumbnail-generator/internal/domain/entity"
)

func TestSelectKeyFramesReturnsAllWhenFewerThanTopN(t *testing.T) {
	scores := []entity.FrameScore{
		{File: "frame_0002.png", Score: 0.1},
		{File: "frame_0001.png", Score: 0.9},
	}

	selected := SelectKeyFrames(scores, 10)
	require.Len(t, selected, 2)
	assert.Equal(t, "frame_0001.png", selected[0].File)
	assert.Equal(t, "frame_0002.png", selected[1].File)
}

func TestSelectKeyFramesCardinality(t *testing.T) {
	for _, n := range []int{0, 1, 3, 5, 7} {
		scores := make([]entity.FrameScore, 5)
		for i := range scores {
			scores[i] = entity.FrameScore{File: "f", Score: float64(i) / 10}
		}
		want := n
		if want > len(scores) {
			want = len(scores)
		}
		assert.Len(t, SelectKeyFrames(scores, n), want, "topN=%d", n)
	}
}

func TestSelectKeyFramesMembershipByScore(t *testing.T) {
	scores := []entity.FrameScore{
		{File: "frame_0001.png", Score: 0.2},
		{File: "frame_0002.png", Score: 0.9},
		{File: "frame_0003.png", Score: 0.1},
		{File: "frame_0004.png", Score: 0.8},
		{File: "frame_0005.png", Score: 0.5},
	}

	selected := SelectKeyFrames(scores, 3)
	require.Len(t, selected, 3)

	files := make([]string, 0, len(selected))
	for _, fs := range selected {
		files = append(files, fs.File)
	}
	// The three highest scores, regardless of output order.
	assert.ElementsMatch(t, []string{"frame_0002.png", "frame_0004.png", "frame_0005.png"}, files)
}

func TestSelectKeyFramesOutputSortedByFilename(t *testing.T) {
	scores := []entity.FrameScore{
		{File: "frame_0009.png", Score: 0.99},
		{File: "frame_0001.png", Score: 0.55},
		{File: "frame_0005.png", Score: 0.77},
		{File: "frame_0003.png", Score: 0.88},
	}

	selected := SelectKeyFrames(scores, 3)
	require.Len(t, selected, 3)
	assert.True(t, sort.SliceIsSorted(selected, func(i, j int) bool {
		return selected[i].File < selected[j].File
	}), "selection must come back in temporal (filename) order, not score order")
	// Ranked order would be 0009, 0003, 0005; temporal order is the contract.
	assert.Equal(t, "frame_0003.png", selected[0].File)
	assert.Equal(t, "frame_0005.png", selected[1].File)
	assert.Equal(t, "frame_0009.png", selected[2].File)
}

func TestSelectKeyFramesDoesNotMutateInput(t *testing.T) {
	scores := []entity.FrameScore{
		{File: "frame_0002.png", Score: 0.2},
		{File: "frame_0001.png", Score: 0.9},
		{File: "frame_0003.png", Score: 0.5},
	}
	original := make([]entity.FrameScore, len(scores))
	copy(original, scores)

	SelectKeyFrames(scores, 2)
	assert.Equal(t, original, scores)
}
