package port

import "context"

// ArtifactStore publishes a finished artifact under a deterministic key and
// returns its public URL.
type ArtifactStore interface {
	Publish(ctx context.Context, localPath string, key string) (string, error)
}
