package common

import "context"

// Publisher specifies the minimal interface for a batch-forwarding backend.
// Publish receives one drained batch; an error marks the whole batch failed.
type Publisher interface {
	Publish(ctx context.Context, lines []string) error
	Close() error
}
