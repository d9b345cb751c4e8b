package port

import "context"

type FailureNotifier interface {
	NotifyFailure(ctx context.Context, to string, jobID string, sourceURL string, reason string) error
}
