package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"FinChat/internal/domain/models"
	domrepo "FinChat/internal/domain/repository"
	"FinChat/pkg/logger"
)

const (
	defaultLogLimit = 100
	maxLogLimit     = 1000
)

// QueryLogUseCase records routing decisions and serves the recent ones.
type QueryLogUseCase struct {
	store     domrepo.QueryLogStore
	publisher domrepo.Publisher
	log       *logger.Logger
}

// NewQueryLogUseCase accepts a nil publisher when no broker is configured.
func NewQueryLogUseCase(store domrepo.QueryLogStore, publisher domrepo.Publisher, log *logger.Logger) *QueryLogUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &QueryLogUseCase{store: store, publisher: publisher, log: log}
}

// Record stores l and publishes it. Failures are logged; routing never depends on them.
func (uc *QueryLogUseCase) Record(ctx context.Context, l *models.QueryLog) {
	if uc == nil || l == nil {
		return
	}
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}
	if err := uc.store.Store(ctx, l); err != nil {
		uc.log.Warn("store query log failed", logger.String("id", l.ID), logger.Error(err))
	}
	if uc.publisher != nil {
		if err := uc.publisher.Publish(ctx, l); err != nil {
			uc.log.Warn("publish query log failed", logger.String("id", l.ID), logger.Error(err))
		}
	}
}

// Recent returns up to limit logs, newest first; an empty intent matches all.
func (uc *QueryLogUseCase) Recent(ctx context.Context, intent string, limit int) ([]*models.QueryLog, error) {
	if limit <= 0 {
		limit = defaultLogLimit
	}
	if limit > maxLogLimit {
		limit = maxLogLimit
	}
	return uc.store.Recent(ctx, intent, limit)
}
