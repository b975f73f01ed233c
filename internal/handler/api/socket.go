package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"FinChat/internal/service/ratelimit"
	"FinChat/internal/usecase"
	xlogger "FinChat/pkg/logger"
)

const (
	pingInterval = 30 * time.Second
	pongWait     = 70 * time.Second
	writeWait    = 10 * time.Second
	maxFrameSize = 16 << 10
)

// Inbound frame types.
const (
	frameMessage    = "message"
	frameIndustry   = "industry"
	frameDemo       = "demo"
	frameReset      = "reset"
	frameSmartBrief = "smart_brief"
)

// ClientFrame is what a socket client sends.
type ClientFrame struct {
	Type        string `json:"type"`
	Message     string `json:"message,omitempty"`
	Industry    string `json:"industry,omitempty"`
	NewsContent string `json:"news_content,omitempty"`
}

type statusFrame struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
	Error     string `json:"error,omitempty"`
}

// wsConn serializes writes to a connection shared by several goroutines.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *wsConn) WriteJSON(v interface{}) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return w.conn.WriteJSON(v)
}

func (w *wsConn) ping() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

// SocketHandler streams every result of a session over one websocket.
type SocketHandler struct {
	logger   *xlogger.Logger
	chat     *usecase.ChatUseCase
	limiter  *ratelimit.Limiter
	upgrader websocket.Upgrader
}

func NewSocketHandler(logger *xlogger.Logger, chat *usecase.ChatUseCase, limiter *ratelimit.Limiter) *SocketHandler {
	return &SocketHandler{
		logger:  logger,
		chat:    chat,
		limiter: limiter,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// Serve upgrades GET /ws/chat?session_id=... and runs the reader loop until the client leaves.
func (h *SocketHandler) Serve(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", xlogger.Error(err))
		return nil
	}
	defer conn.Close()

	sessionID := c.QueryParam("session_id")
	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	w := &wsConn{conn: conn}
	conn.SetReadLimit(maxFrameSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go h.ping(ctx, w)

	remote := c.RealIP()
	for {
		var f ClientFrame
		if err := conn.ReadJSON(&f); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("ws read error", xlogger.String("session", sessionID), xlogger.Error(err))
			}
			return nil
		}
		if h.limiter != nil && !h.limiter.Allow(remote) {
			h.status(w, "error", sessionID, "rate limited")
			continue
		}
		// The session id is only known after the first turn when the client did not send one.
		sessionID = h.handle(ctx, f, sessionID, w)
	}
}

func (h *SocketHandler) handle(ctx context.Context, f ClientFrame, sessionID string, w *wsConn) string {
	em := usecase.NewSocketEmitter(w, sessionID)
	var (
		res *usecase.TurnResult
		err error
	)
	switch f.Type {
	case frameMessage, "":
		res, err = h.chat.Send(ctx, sessionID, f.Message, em)
	case frameIndustry:
		res, err = h.chat.SelectIndustry(ctx, sessionID, f.Industry, em)
	case frameSmartBrief:
		res, err = h.chat.SmartBrief(ctx, sessionID, f.Message, f.NewsContent, em)
	case frameDemo:
		sessionID = h.chat.StartDemo(sessionID, f.Industry, em)
		h.status(w, "demo_started", sessionID, "")
		return sessionID
	case frameReset:
		if err := h.chat.Reset(sessionID); err != nil {
			h.status(w, "error", sessionID, err.Error())
			return sessionID
		}
		h.status(w, "reset", sessionID, "")
		return sessionID
	default:
		h.status(w, "error", sessionID, "unknown frame type "+f.Type)
		return sessionID
	}
	if err != nil {
		h.logger.Warn("ws turn failed", xlogger.String("session", sessionID), xlogger.Error(err))
		h.status(w, "error", sessionID, err.Error())
		return sessionID
	}
	h.status(w, "done", res.SessionID, "")
	return res.SessionID
}

func (h *SocketHandler) status(w *wsConn, typ, sessionID, msg string) {
	if err := w.WriteJSON(statusFrame{Type: typ, SessionID: sessionID, Error: msg}); err != nil {
		h.logger.Debug("ws status write failed", xlogger.Error(err))
	}
}

func (h *SocketHandler) ping(ctx context.Context, w *wsConn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := w.ping(); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
