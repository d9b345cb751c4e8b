package entity

// FrameScore ties an extracted frame file to its visual-appeal score in
// [0,1]. Immutable once computed.
type FrameScore struct {
	File  string
	Score float64
}

// ScoreWeights are the relative importance of each pixel statistic in the
// final score. The weights should sum to 1.0 so the score stays in [0,1];
// this is not enforced, but the defaults satisfy it.
type ScoreWeights struct {
	Brightness float64
	Contrast   float64
	Saturation float64
}

// DefaultScoreWeights favor well-lit, well-defined frames over vivid ones.
var DefaultScoreWeights = ScoreWeights{
	Brightness: 0.4,
	Contrast:   0.4,
	Saturation: 0.2,
}
