package logger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturePublisher struct {
	mu      sync.Mutex
	topic   string
	batches [][]DigestEntry
}

func (p *capturePublisher) PublishMessage(_ context.Context, topic string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topic = topic
	p.batches = append(p.batches, payload.([]DigestEntry))
	return nil
}

func TestErrorDigestFoldsRepeats(t *testing.T) {
	pub := &capturePublisher{}
	d := NewErrorDigest(DigestConfig{Interval: time.Hour, MaxUnique: 10, Topic: "logs.errors", Publisher: pub})

	d.Add("error", "upstream failed", map[string]interface{}{"svc": "news"}, "a.go:1")
	d.Add("error", "upstream failed", map[string]interface{}{"svc": "news"}, "a.go:1")
	d.Add("error", "other", nil, "b.go:2")
	assert.Equal(t, 2, d.Pending())

	d.Close()

	pub.mu.Lock()
	defer pub.mu.Unlock()
	require.Len(t, pub.batches, 1)
	assert.Equal(t, "logs.errors", pub.topic)

	counts := map[string]int{}
	for _, e := range pub.batches[0] {
		counts[e.Message] = e.Count
	}
	assert.Equal(t, 2, counts["upstream failed"])
	assert.Equal(t, 1, counts["other"])
}

func TestLoggerRecordsErrorsOnlyWhenDigestAttached(t *testing.T) {
	pub := &capturePublisher{}
	d := NewErrorDigest(DigestConfig{Interval: time.Hour, Publisher: pub})
	l := Nop()

	l.Error("before attach")
	l.AttachDigest(d)
	l.Warn("warn is not digested")
	l.Error("after attach", String("k", "v"))
	assert.Equal(t, 1, d.Pending())

	l.DetachDigest()
	assert.Equal(t, 0, d.Pending())
}
