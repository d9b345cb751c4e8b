package port

import "context"

// VideoFetcher validates a remote URL and streams the video to a local path.
type VideoFetcher interface {
	Fetch(ctx context.Context, url string, destPath string) (string, error)
}
