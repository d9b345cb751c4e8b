package scoring

import (
	"sort"

	"github.com/syamcode/thumbnail-generator/internal/domain/entity"
)

// DefaultTopN is how many key frames end up in the thumbnail by default.
const DefaultTopN = 10

// SelectKeyFrames picks the topN highest-scoring frames, then re-sorts the
// chosen subset ascending by filename. Membership is decided by score;
// output order is temporal. Downstream assembly depends on getting frames
// back in their original order, not ranked order.
func SelectKeyFrames(scores []entity.FrameScore, topN int) []entity.FrameScore {
	selected := make([]entity.FrameScore, len(scores))
	copy(selected, scores)

	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].Score > selected[j].Score
	})
	if topN < 0 {
		topN = 0
	}
	if topN < len(selected) {
		selected = selected[:topN]
	}

	sort.Slice(selected, func(i, j int) bool {
		return selected[i].File < selected[j].File
	})
	return selected
}
