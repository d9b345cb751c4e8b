package port

import "context"

// GifAssembler encodes an ordered frame sequence into an animated GIF.
type GifAssembler interface {
	AssembleGif(ctx context.Context, framePaths []string, outputPath string) error
}
