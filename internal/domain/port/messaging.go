package port

import "context"

// RequestPublisher enqueues a thumbnail generation request for the workers.
type RequestPublisher interface {
	PublishRequest(ctx context.Context, msg []byte) error
}

// StatusPublisher broadcasts job state transitions.
type StatusPublisher interface {
	PublishStatus(ctx context.Context, msg []byte) error
}

// DLQPublisher parks poisonous or permanently failed messages.
type DLQPublisher interface {
	PublishToDLQ(ctx context.Context, msg []byte, reason string) error
}
