package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"FinChat/internal/domain/models"
	domsvc "FinChat/internal/domain/service"
	"FinChat/internal/service/slots"
	"FinChat/internal/service/translate"
	"FinChat/pkg/logger"
)

var (
	ErrEmptyMessage    = errors.New("message is required")
	ErrSessionNotFound = errors.New("session not found")
	ErrUnknownIndustry = errors.New("unknown industry")
)

// ChatUseCase is the entry point for a conversation turn: it normalizes language, records the user
// turn and hands the query to the dispatcher.
type ChatUseCase struct {
	sessions   *SessionStore
	dispatcher *Dispatcher
	handlers   *Handlers
	translator domsvc.Translator
	demo       *Demo
	log        *logger.Logger
}

func NewChatUseCase(
	sessions *SessionStore,
	dispatcher *Dispatcher,
	handlers *Handlers,
	translator domsvc.Translator,
	demo *Demo,
	log *logger.Logger,
) *ChatUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &ChatUseCase{
		sessions:   sessions,
		dispatcher: dispatcher,
		handlers:   handlers,
		translator: translator,
		demo:       demo,
		log:        log,
	}
}

// TurnResult is what a synchronous caller gets back.
type TurnResult struct {
	SessionID string                `json:"session_id"`
	Results   []models.ModuleResult `json:"results"`
}

// Normalize turns raw user text into a routed query. Chinese input is translated to English for
// routing; a failed translation routes the original text.
func (uc *ChatUseCase) Normalize(ctx context.Context, sessionID, message string) models.RoutedQuery {
	q := models.RoutedQuery{SessionID: sessionID, Text: message, Original: message, SourceLanguage: models.SourceEnglish}
	if !translate.IsChinese(message) {
		return q
	}
	q.SourceLanguage = models.SourceChinese
	if uc.translator != nil {
		en, _ := uc.translator.Translate(ctx, message, models.LangEnglish)
		if strings.TrimSpace(en) != "" {
			q.Text = en
		}
	}
	return q
}

// Send handles one user message. extra, when set, receives every result as it is emitted.
func (uc *ChatUseCase) Send(ctx context.Context, sessionID, message string, extra domsvc.Emitter) (*TurnResult, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}
	s := uc.sessions.GetOrCreate(sessionID)
	col := &Collector{}

	err := s.Do(func() error {
		q := uc.Normalize(ctx, s.ID, message)
		if q.Chinese() {
			s.SetLanguage(models.LangChinese)
			s.AppendUser(q.Text, q.Original)
		} else {
			s.SetLanguage(models.LangEnglish)
			s.AppendUser(q.Original, "")
		}
		return uc.dispatcher.Handle(ctx, FanOut{s.Transcript(), col, extra}, q)
	})
	if err != nil {
		return nil, fmt.Errorf("chat turn: %w", err)
	}
	return &TurnResult{SessionID: s.ID, Results: col.Results()}, nil
}

// SelectIndustry answers an industry prompt by running screening for it.
func (uc *ChatUseCase) SelectIndustry(ctx context.Context, sessionID, industry string, extra domsvc.Emitter) (*TurnResult, error) {
	name, ok := lookupIndustry(industry)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownIndustry, industry)
	}
	s := uc.sessions.GetOrCreate(sessionID)
	col := &Collector{}

	err := s.Do(func() error {
		s.AppendUser(fmt.Sprintf("Selected industry: <strong>%s</strong>", esc(name)), "")
		return uc.handlers.Screening(ctx, FanOut{s.Transcript(), col, extra}, slots.NormalizeIndustry(name))
	})
	if err != nil {
		return nil, fmt.Errorf("industry selection: %w", err)
	}
	return &TurnResult{SessionID: s.ID, Results: col.Results()}, nil
}

func lookupIndustry(industry string) (string, bool) {
	industry = strings.TrimSpace(industry)
	for _, name := range Industries {
		if strings.EqualFold(name, industry) {
			return name, true
		}
	}
	return "", false
}

// StartDemo runs the walkthrough in the background. A running demo is replaced.
func (uc *ChatUseCase) StartDemo(sessionID, industry string, extra domsvc.Emitter) string {
	s := uc.sessions.GetOrCreate(sessionID)
	em := FanOut{s.Transcript(), extra}
	s.startDemo(func(ctx context.Context) {
		step, err := uc.demo.Run(ctx, em, industry)
		if err != nil && !errors.Is(err, context.Canceled) {
			uc.log.Warn("demo stopped", logger.String("session", s.ID), logger.String("step", step.String()), logger.Error(err))
		}
	})
	return s.ID
}

// Reset cancels the demo and clears the session.
func (uc *ChatUseCase) Reset(sessionID string) error {
	s, ok := uc.sessions.Get(sessionID)
	if !ok {
		return ErrSessionNotFound
	}
	s.Reset()
	return nil
}

// Messages renders a session's transcript in lang.
func (uc *ChatUseCase) Messages(ctx context.Context, sessionID, lang string) ([]models.RenderedTurn, error) {
	s, ok := uc.sessions.Get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s.Messages(ctx, lang), nil
}

// SmartBrief renders the brief the news result offers, into the session transcript.
func (uc *ChatUseCase) SmartBrief(ctx context.Context, sessionID, query, newsContent string, extra domsvc.Emitter) (*TurnResult, error) {
	s := uc.sessions.GetOrCreate(sessionID)
	col := &Collector{}
	err := s.Do(func() error {
		return uc.handlers.SmartBrief(ctx, FanOut{s.Transcript(), col, extra}, query, newsContent)
	})
	if err != nil {
		return nil, fmt.Errorf("smart brief: %w", err)
	}
	return &TurnResult{SessionID: s.ID, Results: col.Results()}, nil
}
