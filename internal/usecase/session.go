package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"FinChat/internal/domain/models"
	domsvc "FinChat/internal/domain/service"
	"FinChat/pkg/logger"
)

const (
	defaultSessionTTL  = 2 * time.Hour
	defaultMaxSessions = 10000
	sweepEvery         = time.Minute
)

// Session is one user's conversation: transcript, display language and demo runner.
type Session struct {
	ID string

	turn sync.Mutex // serializes turns

	mu       sync.RWMutex
	turns    []*models.ConversationTurn
	lang     string
	lastSeen time.Time
	demo     context.CancelFunc
	demoGen  uint64

	fill       sync.Mutex
	translator domsvc.Translator
}

func newSession(id string, tr domsvc.Translator) *Session {
	return &Session{ID: id, lang: models.LangEnglish, lastSeen: time.Now(), translator: tr}
}

// Do runs fn while holding the session's turn lock.
func (s *Session) Do(fn func() error) error {
	s.turn.Lock()
	defer s.turn.Unlock()
	s.touch()
	return fn()
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSeen
}

func (s *Session) Language() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lang
}

func (s *Session) SetLanguage(lang string) {
	if lang != models.LangChinese {
		lang = models.LangEnglish
	}
	s.mu.Lock()
	s.lang = lang
	s.mu.Unlock()
}

func (s *Session) append(t *models.ConversationTurn) {
	s.mu.Lock()
	s.turns = append(s.turns, t)
	s.mu.Unlock()
}

// appendCtx appends unless ctx is done. Reset cancels the demo under the same lock, so a
// cancelled step never lands in a cleared transcript.
func (s *Session) appendCtx(ctx context.Context, t *models.ConversationTurn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	s.turns = append(s.turns, t)
	return nil
}

// AppendUser records a user turn. zh is empty for English input.
func (s *Session) AppendUser(en, zh string) {
	s.append(models.NewUserTurn(en, zh))
}

// Transcript is the emitter that appends to this session.
func (s *Session) Transcript() domsvc.Emitter {
	return transcriptEmitter{s: s}
}

// Len is the number of turns.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.turns)
}

// Messages renders the transcript in lang. Missing Chinese variants are translated once and
// cached on the turn.
func (s *Session) Messages(ctx context.Context, lang string) []models.RenderedTurn {
	if lang != models.LangChinese {
		lang = models.LangEnglish
	}
	if lang == models.LangChinese && s.translator != nil {
		s.fill.Lock()
		s.fillChinese(ctx)
		s.fill.Unlock()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.RenderedTurn, 0, len(s.turns))
	for _, t := range s.turns {
		out = append(out, t.Rendered(lang))
	}
	return out
}

func (s *Session) fillChinese(ctx context.Context) {
	s.mu.RLock()
	var pending []*models.ConversationTurn
	for _, t := range s.turns {
		if t.NeedsTranslation(models.LangChinese) {
			pending = append(pending, t)
		}
	}
	s.mu.RUnlock()

	for _, t := range pending {
		if ctx.Err() != nil {
			return
		}
		zh, _ := s.translator.Translate(ctx, t.ContentEn, models.LangChinese)
		s.mu.Lock()
		if t.ContentZh == "" {
			t.ContentZh = zh
		}
		s.mu.Unlock()
	}
}

// startDemo cancels any running demo and runs fn on its own goroutine with a fresh token.
func (s *Session) startDemo(fn func(ctx context.Context)) {
	ctx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	if s.demo != nil {
		s.demo()
	}
	s.demo = cancel
	s.demoGen++
	gen := s.demoGen
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			if s.demoGen == gen {
				s.demo = nil
			}
			s.mu.Unlock()
			cancel()
		}()
		fn(ctx)
	}()
}

// DemoRunning reports whether a demo goroutine is active.
func (s *Session) DemoRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.demo != nil
}

// Reset cancels the demo, clears the transcript and returns to English.
func (s *Session) Reset() {
	s.mu.Lock()
	if s.demo != nil {
		s.demo()
		s.demo = nil
	}
	s.turns = nil
	s.lang = models.LangEnglish
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

func (s *Session) stop() {
	s.mu.Lock()
	if s.demo != nil {
		s.demo()
		s.demo = nil
	}
	s.mu.Unlock()
}

// SessionStore keeps sessions in memory, expiring idle ones.
type SessionStore struct {
	mu         sync.Mutex
	sessions   map[string]*Session
	ttl        time.Duration
	max        int
	translator domsvc.Translator
	log        *logger.Logger

	stop chan struct{}
	once sync.Once
}

func NewSessionStore(ttl time.Duration, max int, tr domsvc.Translator, log *logger.Logger) *SessionStore {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	if max <= 0 {
		max = defaultMaxSessions
	}
	if log == nil {
		log = logger.Nop()
	}
	st := &SessionStore{
		sessions:   make(map[string]*Session),
		ttl:        ttl,
		max:        max,
		translator: tr,
		log:        log,
		stop:       make(chan struct{}),
	}
	go st.sweep(sweepEvery)
	return st
}

// Get returns an existing session.
func (st *SessionStore) Get(id string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	return s, ok
}

// GetOrCreate returns the session for id, creating it (with a fresh id when id is empty).
func (st *SessionStore) GetOrCreate(id string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	if id != "" {
		if s, ok := st.sessions[id]; ok {
			return s
		}
	} else {
		id = uuid.NewString()
	}
	if len(st.sessions) >= st.max {
		st.evictOldestLocked(len(st.sessions) - st.max + 1)
	}
	s := newSession(id, st.translator)
	st.sessions[id] = s
	return s
}

func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

func (st *SessionStore) evictOldestLocked(n int) {
	all := make([]*Session, 0, len(st.sessions))
	for _, s := range st.sessions {
		all = append(all, s)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].idleSince().Before(all[j].idleSince()) })
	for _, s := range all[:min(n, len(all))] {
		s.stop()
		delete(st.sessions, s.ID)
	}
}

// Expire drops sessions idle longer than the TTL and returns how many went.
func (st *SessionStore) Expire(now time.Time) int {
	st.mu.Lock()
	defer st.mu.Unlock()
	n := 0
	for id, s := range st.sessions {
		if now.Sub(s.idleSince()) > st.ttl {
			s.stop()
			delete(st.sessions, id)
			n++
		}
	}
	return n
}

func (st *SessionStore) sweep(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case now := <-ticker.C:
			if n := st.Expire(now); n > 0 {
				st.log.Debug("expired sessions", logger.Int("count", n))
			}
		case <-st.stop:
			return
		}
	}
}

// Close stops the sweeper and every running demo.
func (st *SessionStore) Close() error {
	st.once.Do(func() { close(st.stop) })
	st.mu.Lock()
	defer st.mu.Unlock()
	for _, s := range st.sessions {
		s.stop()
	}
	return nil
}
