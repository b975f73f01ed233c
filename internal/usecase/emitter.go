package usecase

import (
	"context"
	"sync"

	"FinChat/internal/domain/models"
	domsvc "FinChat/internal/domain/service"
)

// Collector buffers results for a synchronous response.
type Collector struct {
	mu      sync.Mutex
	results []models.ModuleResult
}

func (c *Collector) Emit(_ context.Context, r models.ModuleResult) error {
	c.mu.Lock()
	c.results = append(c.results, r)
	c.mu.Unlock()
	return nil
}

// Results returns a copy of everything emitted so far.
func (c *Collector) Results() []models.ModuleResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.ModuleResult, len(c.results))
	copy(out, c.results)
	return out
}

// FrameWriter is satisfied by *websocket.Conn.
type FrameWriter interface {
	WriteJSON(v interface{}) error
}

// Frame is what a socket client receives per result.
type Frame struct {
	Type      string              `json:"type"`
	SessionID string              `json:"session_id"`
	Result    models.ModuleResult `json:"result"`
}

const frameResult = "result"

// SocketEmitter writes one JSON frame per result. Writes are serialized.
type SocketEmitter struct {
	mu        sync.Mutex
	w         FrameWriter
	sessionID string
}

func NewSocketEmitter(w FrameWriter, sessionID string) *SocketEmitter {
	return &SocketEmitter{w: w, sessionID: sessionID}
}

func (s *SocketEmitter) Emit(ctx context.Context, r models.ModuleResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.WriteJSON(Frame{Type: frameResult, SessionID: s.sessionID, Result: r})
}

// FanOut emits to each emitter in order and stops at the first error.
type FanOut []domsvc.Emitter

func (f FanOut) Emit(ctx context.Context, r models.ModuleResult) error {
	for _, em := range f {
		if em == nil {
			continue
		}
		if err := em.Emit(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

// transcriptEmitter appends results to a session transcript, translating while the session
// displays Chinese.
type transcriptEmitter struct {
	s *Session
}

func (t transcriptEmitter) Emit(ctx context.Context, r models.ModuleResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	turn := models.NewAgentTurn(r)
	if t.s.Language() == models.LangChinese && t.s.translator != nil && turn.ContentEn != "" {
		zh, _ := t.s.translator.Translate(ctx, turn.ContentEn, models.LangChinese)
		turn.ContentZh = zh
	}
	return t.s.appendCtx(ctx, turn)
}
