package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinChat/internal/domain/models"
)

func logEntry(i int, intent string) *models.QueryLog {
	return &models.QueryLog{
		ID:        fmt.Sprintf("id-%d", i),
		Query:     fmt.Sprintf("q%d", i),
		Intent:    intent,
		Tier:      models.TierClassified,
		CreatedAt: time.Unix(int64(i), 0),
	}
}

func TestMemoryStoreNewestFirstAndBounded(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryQueryLogStore(3)
	for i := 1; i <= 5; i++ {
		require.NoError(t, s.Store(ctx, logEntry(i, "NEWS")))
	}

	got, err := s.Recent(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"id-5", "id-4", "id-3"}, []string{got[0].ID, got[1].ID, got[2].ID})
}

func TestMemoryStoreFiltersByIntent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryQueryLogStore(10)
	require.NoError(t, s.Store(ctx, logEntry(1, "NEWS")))
	require.NoError(t, s.Store(ctx, logEntry(2, "VALUATION")))
	require.NoError(t, s.Store(ctx, logEntry(3, "NEWS")))

	got, err := s.Recent(ctx, "NEWS", 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "id-3", got[0].ID)

	none, err := s.Recent(ctx, "FDA", 5)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMemoryStoreCopiesEntries(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryQueryLogStore(2)
	l := logEntry(1, "NEWS")
	require.NoError(t, s.Store(ctx, l))
	l.Intent = "changed"

	got, _ := s.Recent(ctx, "", 1)
	assert.Equal(t, "NEWS", got[0].Intent)
}

func TestRecentQuery(t *testing.T) {
	q, args := recentQuery("", 50)
	assert.NotContains(t, q, "WHERE")
	assert.Equal(t, []interface{}{50}, args)

	q, args = recentQuery("FDA", 5)
	assert.Contains(t, q, "WHERE intent = ?")
	assert.Contains(t, q, "ORDER BY created_at DESC")
	assert.Equal(t, []interface{}{"FDA", 5}, args)
}

type fakePublisher struct {
	topic string
	key   string
	value interface{}
	err   error
}

func (f *fakePublisher) Publish(_ context.Context, topic string, key []byte, value interface{}) error {
	f.topic, f.key, f.value = topic, string(key), value
	return f.err
}

func (f *fakePublisher) Close() error { return nil }

func TestKafkaPublisherKeysBySession(t *testing.T) {
	fp := &fakePublisher{}
	p := NewKafkaQueryLogPublisher(fp, "")
	l := logEntry(1, "NEWS")
	l.SessionID = "s-1"

	require.NoError(t, p.Publish(context.Background(), l))
	assert.Equal(t, DefaultQueryLogTopic, fp.topic)
	assert.Equal(t, "s-1", fp.key)
	assert.Same(t, l, fp.value)

	fp.err = errors.New("broker down")
	assert.ErrorContains(t, p.Publish(context.Background(), logEntry(2, "NEWS")), "broker down")
	assert.Equal(t, "id-2", fp.key)
}

type fakeEnqueuer struct {
	err      error
	payloads []interface{}
}

func (f *fakeEnqueuer) Enqueue(_ context.Context, msgType string, payload interface{}) error {
	if f.err != nil {
		return f.err
	}
	f.payloads = append(f.payloads, payload)
	return nil
}

func TestQueuedStoreEnqueuesAndJobPersists(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryQueryLogStore(10)
	q := &fakeEnqueuer{}
	s := NewQueuedQueryLogStore(mem, q, nil)

	require.NoError(t, s.Store(ctx, logEntry(1, "NEWS")))
	got, _ := s.Recent(ctx, "", 10)
	assert.Empty(t, got)
	require.Len(t, q.payloads, 1)

	raw, err := json.Marshal(q.payloads[0])
	require.NoError(t, err)
	job := NewStoreQueryLogJob(mem)
	assert.Equal(t, queryLogJobType, job.Type())
	require.NoError(t, job.Handle(ctx, raw))

	got, _ = s.Recent(ctx, "", 10)
	require.Len(t, got, 1)
	assert.Equal(t, "id-1", got[0].ID)
	assert.Equal(t, models.TierClassified, got[0].Tier)

	assert.Error(t, job.Handle(ctx, json.RawMessage(`{`)))
}

func TestQueuedStoreFallsBackToDirectWrite(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryQueryLogStore(10)
	s := NewQueuedQueryLogStore(mem, &fakeEnqueuer{err: errors.New("redis down")}, nil)

	require.NoError(t, s.Store(ctx, logEntry(1, "NEWS")))
	got, _ := s.Recent(ctx, "", 10)
	assert.Len(t, got, 1)
}
