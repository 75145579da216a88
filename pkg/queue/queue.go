package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Job handles one message type.
type Job interface {
	// Type returns the message type this job consumes.
	Type() string

	// Handle processes one payload. A returned error schedules a retry.
	Handle(ctx context.Context, payload json.RawMessage) error
}

// Config contains the configuration for the queue
type Config struct {
	Workers    int           // number of workers
	RetryLimit int           // number of maximum retries
	RetryDelay time.Duration // time delay between retries
}

// Message is the envelope stored in Redis.
type Message struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	Attempts   int             `json:"attempts"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}

// Decode unmarshals a payload into T.
func Decode[T any](payload json.RawMessage) (*T, error) {
	var out T
	if len(payload) == 0 {
		return nil, fmt.Errorf("empty payload")
	}
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}
	return &out, nil
}

// backend is the list and sorted-set subset of Redis the queue needs.
type backend interface {
	push(ctx context.Context, key string, data []byte) error
	// pop blocks up to timeout and returns nil, nil when nothing arrived.
	pop(ctx context.Context, key string, timeout time.Duration) ([]byte, error)
	schedule(ctx context.Context, key string, data []byte, at time.Time) error
	// promote moves every scheduled entry due at now onto the list.
	promote(ctx context.Context, from, to string, now time.Time) (int, error)
	ping(ctx context.Context) error
	addr() string
}
