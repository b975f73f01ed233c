package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

type countingObserver struct {
	calls, messages int
	lastErr         error
}

func (c *countingObserver) ObservePublish(_ string, messages int, _ int64, _ time.Duration, err error) {
	c.calls++
	c.messages += messages
	c.lastErr = err
}

func TestPublishEncodesJSON(t *testing.T) {
	w := &fakeWriter{}
	obs := &countingObserver{}
	p := newProducer(w, obs)

	err := p.Publish(context.Background(), "chat.query-logs", []byte("k"), map[string]string{"intent": "NEWS"})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "chat.query-logs", w.msgs[0].Topic)

	var got map[string]string
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, "NEWS", got["intent"])
	assert.Equal(t, 1, obs.calls)
}

func TestPublishBatchReportsErrors(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	obs := &countingObserver{}
	p := newProducer(w, obs)

	err := p.PublishBatch(context.Background(), "t", []Message{{Value: "a"}, {Value: "b"}})
	require.Error(t, err)
	assert.Equal(t, 2, obs.messages)
	assert.Error(t, obs.lastErr)
}

func TestNewProducerRequiresBrokers(t *testing.T) {
	_, err := NewProducer()
	assert.Error(t, err)
}
