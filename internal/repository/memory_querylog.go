package repository

import (
	"context"
	"sync"

	"FinChat/internal/domain/models"
)

const defaultMemoryEntries = 1000

// MemoryQueryLogStore keeps the newest max logs in a ring.
type MemoryQueryLogStore struct {
	mu   sync.RWMutex
	buf  []*models.QueryLog
	next int
	full bool
}

func NewMemoryQueryLogStore(max int) *MemoryQueryLogStore {
	if max <= 0 {
		max = defaultMemoryEntries
	}
	return &MemoryQueryLogStore{buf: make([]*models.QueryLog, max)}
}

func (s *MemoryQueryLogStore) Init(context.Context) error { return nil }

func (s *MemoryQueryLogStore) Store(_ context.Context, l *models.QueryLog) error {
	cp := *l
	s.mu.Lock()
	s.buf[s.next] = &cp
	s.next = (s.next + 1) % len(s.buf)
	if s.next == 0 {
		s.full = true
	}
	s.mu.Unlock()
	return nil
}

func (s *MemoryQueryLogStore) Recent(_ context.Context, intent string, limit int) ([]*models.QueryLog, error) {
	if limit <= 0 {
		return nil, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := s.next
	if s.full {
		n = len(s.buf)
	}
	out := make([]*models.QueryLog, 0, min(limit, n))
	for i := 0; i < n && len(out) < limit; i++ {
		idx := (s.next - 1 - i + len(s.buf)) % len(s.buf)
		l := s.buf[idx]
		if intent != "" && l.Intent != intent {
			continue
		}
		cp := *l
		out = append(out, &cp)
	}
	return out, nil
}

func (s *MemoryQueryLogStore) Health(context.Context) error { return nil }
func (s *MemoryQueryLogStore) Close() error                 { return nil }
