package queue

import (
	"context"
	"encoding/json"
	"time"
)

// Enqueuer accepts work for later processing.
type Enqueuer interface {
	Enqueue(ctx context.Context, msgType string, payload interface{}) error
}

type QueueConfig struct {
	Workers      int           // number of workers
	RetryLimit   int           // retries before the message goes to the dead-letter list
	RetryDelay   time.Duration // delay before a failed message is retried
	PollInterval time.Duration // how often due retries are moved back to the queue
}

func (c *QueueConfig) applyDefaults() {
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = 10 * time.Second
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 5 * time.Second
	}
}

// Message is the envelope stored in Redis.
type Message struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Attempts  int             `json:"attempts"`
	Timestamp time.Time       `json:"timestamp"`
}
