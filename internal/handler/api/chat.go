package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"FinChat/internal/service/ratelimit"
	"FinChat/internal/usecase"
	xhttp "FinChat/pkg/http"
	xlogger "FinChat/pkg/logger"
)

// ChatEchoHandler serves the conversation endpoints.
type ChatEchoHandler struct {
	logger  *xlogger.Logger
	chat    *usecase.ChatUseCase
	limiter *ratelimit.Limiter
	ws      *SocketHandler
}

func NewChatEchoHandler(logger *xlogger.Logger, chat *usecase.ChatUseCase, limiter *ratelimit.Limiter) *ChatEchoHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &ChatEchoHandler{
		logger:  logger,
		chat:    chat,
		limiter: limiter,
		ws:      NewSocketHandler(logger, chat, limiter),
	}
}

func (h *ChatEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/chat")
	g.POST("", h.Send, h.rateLimited)
	g.POST("/industry", h.SelectIndustry, h.rateLimited)
	g.POST("/demo", h.Demo)
	g.POST("/reset", h.Reset)
	g.POST("/smart-brief", h.SmartBrief, h.rateLimited)
	g.GET("/:session/messages", h.Messages)
	e.GET("/ws/chat", h.ws.Serve)
}

func (h *ChatEchoHandler) rateLimited(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if h.limiter != nil && !h.limiter.Allow(c.RealIP()) {
			h.logger.Warn("chat rate_limited", xlogger.String("remote", c.RealIP()))
			return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("Too many requests, slow down"))
		}
		return next(c)
	}
}

func (h *ChatEchoHandler) Send(c echo.Context) error {
	req := &ChatRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.chat.Send(c.Request().Context(), req.SessionID, req.Message, nil)
	if err != nil {
		h.logger.Error("chat send error", xlogger.String("session", req.SessionID), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *ChatEchoHandler) SelectIndustry(c echo.Context) error {
	req := &IndustryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.chat.SelectIndustry(c.Request().Context(), req.SessionID, req.Industry, nil)
	if errors.Is(err, usecase.ErrUnknownIndustry) {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf("industry must be one of the offered options").WithField("industry"))
	}
	if err != nil {
		h.logger.Error("industry selection error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *ChatEchoHandler) Demo(c echo.Context) error {
	req := &DemoRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	id := h.chat.StartDemo(req.SessionID, req.Industry, nil)
	return xhttp.DataResponse(c, http.StatusAccepted, map[string]string{"session_id": id, "industry": req.Industry})
}

func (h *ChatEchoHandler) Reset(c echo.Context) error {
	req := &ResetRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if err := h.chat.Reset(req.SessionID); err != nil {
		return sessionError(c, err)
	}
	return xhttp.SuccessResponse(c, map[string]string{"session_id": req.SessionID})
}

func (h *ChatEchoHandler) Messages(c echo.Context) error {
	req := &MessagesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	turns, err := h.chat.Messages(c.Request().Context(), req.SessionID, req.Lang)
	if err != nil {
		return sessionError(c, err)
	}
	return xhttp.ListResponse(c, turns, int64(len(turns)))
}

func (h *ChatEchoHandler) SmartBrief(c echo.Context) error {
	req := &SmartBriefRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.chat.SmartBrief(c.Request().Context(), req.SessionID, req.Query, req.NewsContent, nil)
	if err != nil {
		h.logger.Error("smart brief error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func sessionError(c echo.Context, err error) error {
	if errors.Is(err, usecase.ErrSessionNotFound) {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError("Session not found"))
	}
	return xhttp.AppErrorResponse(c, err)
}
