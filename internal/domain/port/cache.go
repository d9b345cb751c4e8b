package port

import (
	"context"
	"time"
)

// DedupCache maps normalized source URLs to job ids with a TTL. It is an
// optimization, never authoritative job state: entries may outlive the job
// record, and callers must treat a dangling hit as a miss.
type DedupCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}
