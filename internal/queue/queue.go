package queue

import "context"

const (
	// BulkQueueName is the work queue carrying bulk schedule batch jobs.
	BulkQueueName = "schedule.bulk"

	// BulkDLQName receives batch jobs that exhausted their attempts.
	BulkDLQName = "dlq.schedule.bulk"

	// attemptHeader tracks which delivery attempt a message is on (1-based).
	attemptHeader = "x-attempt"
)

// Publisher publishes batch messages to a queue.
type Publisher interface {
	Publish(ctx context.Context, queue string, msg BatchMessage) error
	Close() error
}

// MessageHandler handles a consumed batch message.
type MessageHandler func(ctx context.Context, msg BatchMessage) error

// Consumer consumes batch messages from a queue. Implementations own the
// attempt accounting and per-attempt timeout of the handler.
type Consumer interface {
	Consume(ctx context.Context, queue string, handler MessageHandler) error
	Close() error
}
