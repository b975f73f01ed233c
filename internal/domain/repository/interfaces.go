package repository

import (
	"context"

	"FinChat/internal/domain/models"
)

// QueryLogStore persists routing decisions.
type QueryLogStore interface {
	Init(ctx context.Context) error
	Store(ctx context.Context, l *models.QueryLog) error
	// Recent returns newest first; an empty intent matches all.
	Recent(ctx context.Context, intent string, limit int) ([]*models.QueryLog, error)
	Health(ctx context.Context) error
	Close() error
}

// Publisher emits query-log events to a broker.
type Publisher interface {
	Publish(ctx context.Context, l *models.QueryLog) error
	Close() error
}
