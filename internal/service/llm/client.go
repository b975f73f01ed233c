// Package llm is a small client for OpenAI-compatible chat completion APIs
// (DeepSeek, Perplexity and OpenAI all speak the same wire format).
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"FinChat/pkg/config"
	xhttp "FinChat/pkg/http"
	"FinChat/pkg/logger"
)

var (
	// ErrNotConfigured is returned before any network call when the provider has no key.
	ErrNotConfigured = errors.New("llm provider not configured")
	ErrEmptyResponse = errors.New("llm returned no choices")
)

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Request struct {
	// Model overrides the provider default when set.
	Model       string
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

type Completion struct {
	Content   string
	Citations []string
}

// UpstreamObserver receives one measurement per completion call.
type UpstreamObserver interface {
	ObserveUpstream(service, endpoint string, elapsed time.Duration, err error)
}

type Option func(*Client)

func WithObserver(o UpstreamObserver) Option {
	return func(c *Client) { c.observer = o }
}

// WithHTTPClient replaces the underlying transport client, mainly for tests.
func WithHTTPClient(hc *xhttp.Client) Option {
	return func(c *Client) { c.http = hc }
}

type Client struct {
	name     string
	cfg      config.Provider
	http     *xhttp.Client
	log      *logger.Logger
	observer UpstreamObserver
}

func New(name string, cfg config.Provider, log *logger.Logger, opts ...Option) *Client {
	burst := int(cfg.RPS)
	if burst < 1 {
		burst = 1
	}
	c := &Client{
		name: name,
		cfg:  cfg,
		log:  log,
		http: xhttp.NewClient(xhttp.WithTimeout(cfg.Timeout), xhttp.WithRateLimit(cfg.RPS, burst)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Name() string { return c.name }

func (c *Client) Configured() bool { return c != nil && c.cfg.Configured() }

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Citations []string `json:"citations"`
}

// Complete sends one chat completion. It never retries.
func (c *Client) Complete(ctx context.Context, req Request) (Completion, error) {
	if !c.Configured() {
		return Completion{}, fmt.Errorf("%s: %w", c.name, ErrNotConfigured)
	}

	model := req.Model
	if model == "" {
		model = c.cfg.Model
	}

	start := time.Now()
	var resp chatResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodPost,
		URL:     strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions",
		Headers: map[string]string{"Authorization": "Bearer " + c.cfg.APIKey},
		Body: chatRequest{
			Model:       model,
			Messages:    req.Messages,
			Temperature: req.Temperature,
			MaxTokens:   req.MaxTokens,
		},
	}, &resp)
	if err == nil && len(resp.Choices) == 0 {
		err = ErrEmptyResponse
	}

	elapsed := time.Since(start)
	if c.observer != nil {
		c.observer.ObserveUpstream(c.name, "chat/completions", elapsed, err)
	}
	if err != nil {
		c.log.Warn("llm completion failed",
			logger.String("provider", c.name),
			logger.String("model", model),
			logger.Duration("elapsed", elapsed),
			logger.Error(err))
		return Completion{}, fmt.Errorf("%s completion: %w", c.name, err)
	}

	c.log.Debug("llm completion",
		logger.String("provider", c.name),
		logger.String("model", model),
		logger.Duration("elapsed", elapsed))

	return Completion{
		Content:   strings.TrimSpace(resp.Choices[0].Message.Content),
		Citations: resp.Citations,
	}, nil
}

// Ask is Complete with one system and one user message.
func (c *Client) Ask(ctx context.Context, system, user string, temperature float64, maxTokens int) (string, error) {
	out, err := c.Complete(ctx, Request{
		Messages: []Message{
			{Role: RoleSystem, Content: system},
			{Role: RoleUser, Content: user},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", err
	}
	return out.Content, nil
}

// Providers bundles the three configured backends.
type Providers struct {
	DeepSeek   *Client
	Perplexity *Client
	OpenAI     *Client
}

func NewProviders(cfg *config.Config, log *logger.Logger, opts ...Option) *Providers {
	return &Providers{
		DeepSeek:   New("deepseek", cfg.LLM.DeepSeek, log, opts...),
		Perplexity: New("perplexity", cfg.LLM.Perplexity, log, opts...),
		OpenAI:     New("openai", cfg.LLM.OpenAI, log, opts...),
	}
}
