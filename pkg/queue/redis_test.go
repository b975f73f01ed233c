package queue

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordJob struct {
	mu   sync.Mutex
	seen []string
	err  error
}

func (j *recordJob) Name() string { return "record" }
func (j *recordJob) Type() string { return "record" }

func (j *recordJob) Handle(_ context.Context, payload json.RawMessage) error {
	var v struct{ Name string }
	if err := json.Unmarshal(payload, &v); err != nil {
		return err
	}
	j.mu.Lock()
	j.seen = append(j.seen, v.Name)
	j.mu.Unlock()
	return j.err
}

func (j *recordJob) names() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.seen...)
}

func (j *recordJob) count() int { return len(j.names()) }

func startQueue(t *testing.T, job Job, cfg QueueConfig) (*RedisQueue, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	q := NewRedisQueue(nil, cfg, client, WithKeyPrefix("test"))
	q.RegisterJob(job)
	require.NoError(t, q.Start(context.Background()))
	t.Cleanup(func() { _ = q.Stop(context.Background()) })
	return q, mr
}

func TestEnqueueDeliversPayload(t *testing.T) {
	job := &recordJob{}
	q, _ := startQueue(t, job, QueueConfig{})

	require.NoError(t, q.Enqueue(context.Background(), "record", map[string]string{"Name": "a"}))
	assert.Eventually(t, func() bool { return job.count() == 1 }, 3*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"a"}, job.names())

	assert.Error(t, q.Enqueue(context.Background(), "other", nil))
}

func TestFailedJobGoesToDeadLetter(t *testing.T) {
	job := &recordJob{err: errors.New("store down")}
	q, mr := startQueue(t, job, QueueConfig{RetryLimit: 0})

	require.NoError(t, q.Enqueue(context.Background(), "record", map[string]string{"Name": "a"}))
	assert.Eventually(t, func() bool {
		items, err := mr.List("test:dlq")
		return err == nil && len(items) == 1
	}, 3*time.Second, 10*time.Millisecond)
}

func TestRequeueDueMovesRetries(t *testing.T) {
	job := &recordJob{err: errors.New("store down")}
	q, mr := startQueue(t, job, QueueConfig{RetryLimit: 1, RetryDelay: time.Millisecond, PollInterval: time.Hour})

	require.NoError(t, q.Enqueue(context.Background(), "record", map[string]string{"Name": "a"}))
	assert.Eventually(t, func() bool {
		members, err := mr.ZMembers("test:retry")
		return err == nil && len(members) == 1
	}, 3*time.Second, 10*time.Millisecond)

	q.requeueDue(context.Background(), time.Now().Add(time.Minute))
	assert.Eventually(t, func() bool {
		items, err := mr.List("test:dlq")
		return err == nil && len(items) == 1
	}, 3*time.Second, 10*time.Millisecond)
	assert.Equal(t, 2, job.count())
}

func TestEnqueueBeforeStart(t *testing.T) {
	q := NewRedisQueue(nil, QueueConfig{}, redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"}))
	assert.ErrorIs(t, q.Enqueue(context.Background(), "record", nil), ErrNotRunning)
}
