// Package analysis holds the LLM-backed analyzers: red flags, earnings summaries, stock picks,
// general Q&A, Porter's five forces and the earnings fallback.
package analysis

import (
	"context"
	"errors"

	"FinChat/internal/service/llm"
	"FinChat/pkg/logger"
)

var ErrNoRecommendations = errors.New("no valid recommendations generated")

type Completer interface {
	Configured() bool
	Complete(ctx context.Context, req llm.Request) (llm.Completion, error)
}

type Service struct {
	deepseek   Completer
	perplexity Completer
	openai     Completer
	log        *logger.Logger
	mock       bool
}

func New(deepseek, perplexity, openai Completer, log *logger.Logger, mock bool) *Service {
	return &Service{
		deepseek:   deepseek,
		perplexity: perplexity,
		openai:     openai,
		log:        log,
		mock:       mock,
	}
}

// NewFromProviders wires the three configured backends.
func NewFromProviders(p *llm.Providers, log *logger.Logger, mock bool) *Service {
	return New(p.DeepSeek, p.Perplexity, p.OpenAI, log, mock)
}

func configured(c Completer) bool {
	return c != nil && c.Configured()
}

func ask(ctx context.Context, c Completer, req llm.Request) (llm.Completion, error) {
	if !configured(c) {
		return llm.Completion{}, llm.ErrNotConfigured
	}
	return c.Complete(ctx, req)
}

func messages(system, user string) []llm.Message {
	out := make([]llm.Message, 0, 2)
	if system != "" {
		out = append(out, llm.Message{Role: llm.RoleSystem, Content: system})
	}
	return append(out, llm.Message{Role: llm.RoleUser, Content: user})
}
