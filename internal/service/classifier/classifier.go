// Package classifier maps a free-text query to one of the chat intents with an LLM call.
package classifier

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"math"
	"strings"

	"FinChat/internal/domain/models"
	"FinChat/internal/service/llm"
	"FinChat/pkg/logger"
)

//go:embed prompt.txt
var systemPrompt string

var (
	// ErrUnavailable means no classification backend is configured.
	ErrUnavailable = errors.New("classifier unavailable")
	// ErrClassification wraps a failed or empty upstream call.
	ErrClassification = errors.New("classification failed")
)

const (
	defaultConfidence = 0.7
	parseFailConf     = 0.5

	parseFailRationale  = "Failed to parse, defaulting to GENERAL"
	newsBriefDemotedMsg = "Changed from NEWSBRIEF to NEWS because no specific company/ticker was found. "
)

// Completer is the part of llm.Client the classifier needs.
type Completer interface {
	Configured() bool
	Complete(ctx context.Context, req llm.Request) (llm.Completion, error)
}

type Service struct {
	llm  Completer
	log  *logger.Logger
	mock bool
}

func New(c Completer, log *logger.Logger, mock bool) *Service {
	return &Service{llm: c, log: log, mock: mock}
}

// Classify issues exactly one completion request. It does not retry.
func (s *Service) Classify(ctx context.Context, query string) (models.ClassificationResult, error) {
	if s.mock {
		return MockResult(), nil
	}
	if s.llm == nil || !s.llm.Configured() {
		return models.ClassificationResult{}, ErrUnavailable
	}

	out, err := s.llm.Complete(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: systemPrompt},
			{Role: llm.RoleUser, Content: fmt.Sprintf("Classify: %q", query)},
		},
		Temperature: 0.1,
		MaxTokens:   250,
	})
	if err != nil {
		if errors.Is(err, llm.ErrNotConfigured) {
			return models.ClassificationResult{}, ErrUnavailable
		}
		return models.ClassificationResult{}, fmt.Errorf("%w: %v", ErrClassification, err)
	}
	if strings.TrimSpace(out.Content) == "" {
		return models.ClassificationResult{}, fmt.Errorf("%w: empty response", ErrClassification)
	}

	res := Normalize(out.Content)
	s.log.Info("query classified",
		logger.String("intent", string(res.Intent)),
		logger.Float64("confidence", res.Confidence),
		logger.String("ticker", res.Ticker),
		logger.String("industry", res.Industry))
	return res, nil
}

type rawResult struct {
	Intent         string      `json:"intent"`
	Confidence     interface{} `json:"confidence"`
	Identifier     string      `json:"identifier"`
	IdentifierType string      `json:"identifier_type"`
	Ticker         string      `json:"ticker"`
	CompanyName    string      `json:"company_name"`
	Industry       string      `json:"industry"`
	Rationale      string      `json:"rationale"`
}

// Normalize turns a raw model reply into a valid ClassificationResult. It never fails:
// unparsable content yields GENERAL with confidence 0.5.
func Normalize(content string) models.ClassificationResult {
	var raw rawResult
	if err := llm.ParseJSON(content, &raw); err != nil {
		return models.ClassificationResult{
			Intent:     models.IntentGeneral,
			Confidence: parseFailConf,
			Rationale:  parseFailRationale,
		}
	}

	intent, _ := models.ParseIntent(raw.Intent)
	res := models.ClassificationResult{
		Intent:         intent,
		Confidence:     clampConfidence(raw.Confidence),
		Identifier:     strings.TrimSpace(raw.Identifier),
		IdentifierType: strings.TrimSpace(raw.IdentifierType),
		Ticker:         strings.ToUpper(strings.TrimSpace(raw.Ticker)),
		CompanyName:    strings.TrimSpace(raw.CompanyName),
		Industry:       strings.TrimSpace(raw.Industry),
		Rationale:      strings.TrimSpace(raw.Rationale),
	}

	switch {
	case res.Intent == models.IntentNewsBrief && res.Ticker == "":
		res.Intent = models.IntentNews
		res.Rationale = newsBriefDemotedMsg + res.Rationale
	case res.Intent == models.IntentCompetitive && res.Ticker == "":
		res.Intent = models.IntentGeneral
	}
	return res
}

func clampConfidence(v interface{}) float64 {
	f, ok := v.(float64)
	if !ok || math.IsNaN(f) {
		return defaultConfidence
	}
	return math.Max(0, math.Min(1, f))
}

// MockResult is the fixed offline classification.
func MockResult() models.ClassificationResult {
	return models.ClassificationResult{
		Intent:         models.IntentNews,
		Confidence:     0.92,
		Identifier:     "TSLA",
		IdentifierType: models.IdentifierTicker,
		Ticker:         "TSLA",
		CompanyName:    "Tesla Inc.",
		Industry:       "EV",
		Rationale:      "Mock intent for testing",
	}
}
