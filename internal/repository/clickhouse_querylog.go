package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"FinChat/internal/domain/models"
	pkgch "FinChat/pkg/clickhouse"
	applogger "FinChat/pkg/logger"
)

const queryLogTable = "query_logs"

var queryLogSchema = []string{`
        CREATE TABLE IF NOT EXISTS query_logs (
            id         String,
            session_id String,
            query      String,
            intent     LowCardinality(String),
            tier       LowCardinality(String),
            ticker     String,
            language   LowCardinality(String),
            created_at DateTime64(3, 'UTC')
        )
        ENGINE = MergeTree
        ORDER BY (created_at, id)
        TTL toDateTime(created_at) + INTERVAL 90 DAY
    `}

// CHQueryLogStore persists query logs in ClickHouse.
type CHQueryLogStore struct {
	ch *pkgch.Client
	db *sql.DB
	l  *applogger.Logger
}

func NewCHQueryLogStore(ch *pkgch.Client, l *applogger.Logger) *CHQueryLogStore {
	if l == nil {
		l = applogger.Nop()
	}
	return &CHQueryLogStore{ch: ch, db: ch.DB(), l: l}
}

func (s *CHQueryLogStore) Init(ctx context.Context) error {
	return s.ch.InitSchema(ctx, queryLogSchema)
}

func (s *CHQueryLogStore) Store(ctx context.Context, l *models.QueryLog) error {
	q := fmt.Sprintf("INSERT INTO %s (id, session_id, query, intent, tier, ticker, language, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)", queryLogTable)
	_, err := s.db.ExecContext(ctx, q, insertArgs(l)...)
	if err != nil {
		s.l.Error("clickhouse store_query_log error", applogger.String("id", l.ID), applogger.Error(err))
		return fmt.Errorf("store query log: %w", err)
	}
	return nil
}

func insertArgs(l *models.QueryLog) []interface{} {
	return []interface{}{l.ID, l.SessionID, l.Query, l.Intent, string(l.Tier), l.Ticker, l.Language, l.CreatedAt.UTC()}
}

// recentQuery builds the newest-first select, filtered by intent when set.
func recentQuery(intent string, limit int) (string, []interface{}) {
	const qtpl = `
        SELECT id, session_id, query, intent, tier, ticker, language, created_at
        FROM %s
        %s
        ORDER BY created_at DESC
        LIMIT ?
    `
	where := ""
	args := make([]interface{}, 0, 2)
	if intent != "" {
		where = "WHERE intent = ?"
		args = append(args, intent)
	}
	args = append(args, limit)
	return fmt.Sprintf(qtpl, queryLogTable, where), args
}

func (s *CHQueryLogStore) Recent(ctx context.Context, intent string, limit int) ([]*models.QueryLog, error) {
	start := time.Now()
	q, args := recentQuery(intent, limit)
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		s.l.Error("clickhouse recent_query_logs query error", applogger.String("intent", intent), applogger.Error(err))
		return nil, fmt.Errorf("recent query logs: %w", err)
	}
	defer rows.Close()

	out := make([]*models.QueryLog, 0, limit)
	for rows.Next() {
		var (
			l    models.QueryLog
			tier string
		)
		if err := rows.Scan(&l.ID, &l.SessionID, &l.Query, &l.Intent, &tier, &l.Ticker, &l.Language, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan query log: %w", err)
		}
		l.Tier = models.Tier(tier)
		out = append(out, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	s.l.Debug("clickhouse recent_query_logs ok",
		applogger.String("intent", intent),
		applogger.Int("rows", len(out)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return out, nil
}

func (s *CHQueryLogStore) Health(ctx context.Context) error { return s.ch.Health(ctx) }
func (s *CHQueryLogStore) Close() error                     { return s.ch.Close() }
