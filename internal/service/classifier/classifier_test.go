package classifier

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinChat/internal/domain/models"
	"FinChat/internal/service/llm"
	"FinChat/pkg/config"
	"FinChat/pkg/logger"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name       string
		in         string
		intent     models.Intent
		confidence float64
	}{
		{"fenced", "```json\n{\"intent\":\"VALUATION\",\"confidence\":0.9,\"ticker\":\"TSLA\"}\n```", models.IntentValuation, 0.9},
		{"bare fence", "```\n{\"intent\":\"RUMOR\",\"confidence\":0.8}\n```", models.IntentRumor, 0.8},
		{"clamp high", `{"intent":"NEWS","confidence":1.8}`, models.IntentNews, 1.0},
		{"clamp low", `{"intent":"NEWS","confidence":-0.3}`, models.IntentNews, 0.0},
		{"missing confidence", `{"intent":"FDA"}`, models.IntentFDA, 0.7},
		{"string confidence", `{"intent":"FDA","confidence":"high"}`, models.IntentFDA, 0.7},
		{"unknown intent", `{"intent":"WEATHER","confidence":0.6}`, models.IntentGeneral, 0.6},
		{"lowercase intent", `{"intent":"news","confidence":0.6}`, models.IntentGeneral, 0.6},
		{"truncated", `{"intent":"NEWS","confid`, models.IntentGeneral, 0.5},
		{"prose", `I think this is news`, models.IntentGeneral, 0.5},
		{"newsbrief without ticker", `{"intent":"NEWSBRIEF","ticker":null,"confidence":0.9}`, models.IntentNews, 0.9},
		{"competitive without ticker", `{"intent":"COMPETITIVE","confidence":0.9}`, models.IntentGeneral, 0.9},
		{"competitive with ticker", `{"intent":"COMPETITIVE","ticker":"tsla","confidence":0.9}`, models.IntentCompetitive, 0.9},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Normalize(tc.in)
			if got.Intent != tc.intent {
				t.Fatalf("intent = %s, want %s", got.Intent, tc.intent)
			}
			if got.Confidence != tc.confidence {
				t.Fatalf("confidence = %v, want %v", got.Confidence, tc.confidence)
			}
		})
	}
}

func TestNormalizeNewsBriefRationale(t *testing.T) {
	got := Normalize(`{"intent":"NEWSBRIEF","rationale":"why question"}`)
	assert.Equal(t, models.IntentNews, got.Intent)
	assert.Equal(t, "Changed from NEWSBRIEF to NEWS because no specific company/ticker was found. why question", got.Rationale)
}

func TestNormalizeKeepsSlots(t *testing.T) {
	got := Normalize(`{"intent":"NEWSBRIEF","ticker":"intc","company_name":"Intel","identifier":"INTC","identifier_type":"ticker","industry":null}`)
	assert.Equal(t, models.IntentNewsBrief, got.Intent)
	assert.Equal(t, "INTC", got.Ticker)
	assert.Equal(t, "Intel", got.CompanyName)
	assert.Equal(t, models.IdentifierTicker, got.IdentifierType)
	assert.Empty(t, got.Industry)
}

func newService(t *testing.T, handler http.HandlerFunc) *Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := llm.New("deepseek", config.Provider{BaseURL: srv.URL, APIKey: "k", Model: "deepseek-chat", Timeout: time.Second, RPS: 50}, logger.Nop())
	return New(c, logger.Nop(), false)
}

func TestClassifyOneCallNoRetry(t *testing.T) {
	calls := 0
	s := newService(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := s.Classify(context.Background(), "Is Tesla undervalued?")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrClassification))
	assert.Equal(t, 1, calls)
}

func TestClassifySuccess(t *testing.T) {
	s := newService(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"intent\":\"VALUATION\",\"confidence\":0.95,\"ticker\":\"TSLA\"}"}}]}`))
	})

	got, err := s.Classify(context.Background(), "Is Tesla undervalued?")
	require.NoError(t, err)
	assert.Equal(t, models.IntentValuation, got.Intent)
	assert.Equal(t, "TSLA", got.Ticker)
}

func TestClassifyEmptyContent(t *testing.T) {
	s := newService(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"  "}}]}`))
	})
	_, err := s.Classify(context.Background(), "x")
	assert.True(t, errors.Is(err, ErrClassification))
}

func TestClassifyUnavailable(t *testing.T) {
	c := llm.New("deepseek", config.Provider{BaseURL: "http://127.0.0.1:1"}, logger.Nop())
	_, err := New(c, logger.Nop(), false).Classify(context.Background(), "x")
	assert.True(t, errors.Is(err, ErrUnavailable))

	_, err = New(nil, logger.Nop(), false).Classify(context.Background(), "x")
	assert.True(t, errors.Is(err, ErrUnavailable))
}

func TestClassifyMock(t *testing.T) {
	got, err := New(nil, logger.Nop(), true).Classify(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, models.IntentNews, got.Intent)
	assert.Equal(t, "TSLA", got.Ticker)
	assert.Equal(t, 0.92, got.Confidence)
}
