package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"FinChat/internal/domain/models"
	domrepo "FinChat/internal/domain/repository"
	"FinChat/pkg/logger"
	"FinChat/pkg/queue"
)

const queryLogJobType = "querylog.store"

// QueuedQueryLogStore moves writes off the request path: Store enqueues and StoreQueryLogJob
// persists. Reads go straight to the wrapped store.
type QueuedQueryLogStore struct {
	domrepo.QueryLogStore
	q   queue.Enqueuer
	log *logger.Logger
}

func NewQueuedQueryLogStore(store domrepo.QueryLogStore, q queue.Enqueuer, log *logger.Logger) *QueuedQueryLogStore {
	if log == nil {
		log = logger.Nop()
	}
	return &QueuedQueryLogStore{QueryLogStore: store, q: q, log: log}
}

// Store writes synchronously when the queue refuses the message.
func (s *QueuedQueryLogStore) Store(ctx context.Context, l *models.QueryLog) error {
	if err := s.q.Enqueue(ctx, queryLogJobType, l); err != nil {
		s.log.Warn("enqueue query log failed, writing directly", logger.String("id", l.ID), logger.Error(err))
		return s.QueryLogStore.Store(ctx, l)
	}
	return nil
}

// StoreQueryLogJob drains queued query logs into a store.
type StoreQueryLogJob struct {
	store domrepo.QueryLogStore
}

func NewStoreQueryLogJob(store domrepo.QueryLogStore) *StoreQueryLogJob {
	return &StoreQueryLogJob{store: store}
}

func (j *StoreQueryLogJob) Name() string { return "store-query-log" }
func (j *StoreQueryLogJob) Type() string { return queryLogJobType }

func (j *StoreQueryLogJob) Handle(ctx context.Context, payload json.RawMessage) error {
	var l models.QueryLog
	if err := json.Unmarshal(payload, &l); err != nil {
		return fmt.Errorf("decode query log: %w", err)
	}
	return j.store.Store(ctx, &l)
}
