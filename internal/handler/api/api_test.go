package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinChat/internal/domain/models"
	"FinChat/internal/repository"
	"FinChat/internal/service/classifier"
	"FinChat/internal/service/keywords"
	"FinChat/internal/service/llm"
	"FinChat/internal/usecase"
	xhttp "FinChat/pkg/http"
)

type stubClassifier struct {
	res models.ClassificationResult
	err error
}

func (s stubClassifier) Classify(context.Context, string) (models.ClassificationResult, error) {
	return s.res, s.err
}

type stubTranslator struct {
	configured bool
	err        error
}

func (s stubTranslator) Configured() bool { return s.configured }

func (s stubTranslator) TranslateStrict(_ context.Context, text, target string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "[" + target + "] " + text, nil
}

type fixture struct {
	e       *echo.Echo
	queries *usecase.QueryLogUseCase
}

func newFixture(t *testing.T, c stubClassifier, tr stubTranslator) fixture {
	t.Helper()
	router, err := keywords.NewRouter()
	require.NoError(t, err)
	screening, err := keywords.NewScreeningDetector()
	require.NoError(t, err)

	queries := usecase.NewQueryLogUseCase(repository.NewMemoryQueryLogStore(50), nil, nil)
	handlers := usecase.NewHandlers(nil, nil, nil, nil, nil, nil, nil, nil)
	dispatcher := usecase.NewDispatcher(c, router, screening, handlers, queries, nil, false, nil)
	sessions := usecase.NewSessionStore(0, 0, nil, nil)
	t.Cleanup(func() { _ = sessions.Close() })
	chat := usecase.NewChatUseCase(sessions, dispatcher, handlers, nil, usecase.NewDemo(0, nil), nil)

	research := NewResearchEchoHandler(nil, c, nil, nil, nil, nil, tr, queries, Status{ValuationConfigured: true})
	srv := xhttp.NewServer(xhttp.Handlers{NewChatEchoHandler(nil, chat, nil), research}, nil)
	return fixture{e: srv.Echo(), queries: queries}
}

func (f fixture) do(t *testing.T, method, path, body string) (int, xhttp.APIResponse) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)

	var resp xhttp.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return rec.Code, resp
}

func dataMap(t *testing.T, resp xhttp.APIResponse) map[string]interface{} {
	t.Helper()
	m, ok := resp.Data.(map[string]interface{})
	require.True(t, ok, "data is %T", resp.Data)
	return m
}

func TestHeartbeat(t *testing.T) {
	f := newFixture(t, stubClassifier{}, stubTranslator{})
	code, resp := f.do(t, http.MethodGet, "/api/test", "")
	assert.Equal(t, http.StatusOK, code)
	d := dataMap(t, resp)
	assert.Equal(t, "API is working!", d["message"])
	assert.Equal(t, true, d["valuation_api_configured"])
	assert.Equal(t, false, d["openai_configured"])
}

func TestClassifyIntent(t *testing.T) {
	tests := []struct {
		name string
		c    stubClassifier
		body string
		code int
	}{
		{"blank query", stubClassifier{}, `{"query":"  "}`, http.StatusBadRequest},
		{"no key", stubClassifier{err: classifier.ErrUnavailable}, `{"query":"apple news"}`, http.StatusServiceUnavailable},
		{"upstream failure", stubClassifier{err: classifier.ErrClassification}, `{"query":"apple news"}`, http.StatusBadGateway},
		{"ok", stubClassifier{res: models.ClassificationResult{Intent: models.IntentNews, Ticker: "AAPL"}}, `{"query":"apple news"}`, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.c, stubTranslator{})
			code, resp := f.do(t, http.MethodPost, "/api/classify-intent", tt.body)
			assert.Equal(t, tt.code, code)
			if tt.code == http.StatusOK {
				assert.Equal(t, "NEWS", dataMap(t, resp)["intent"])
			}
		})
	}
}

func TestTranslateFallsBackToOriginal(t *testing.T) {
	f := newFixture(t, stubClassifier{}, stubTranslator{configured: true, err: errors.New("timeout")})
	code, resp := f.do(t, http.MethodPost, "/api/translate", `{"text":"hello"}`)
	require.Equal(t, http.StatusOK, code)
	d := dataMap(t, resp)
	assert.Equal(t, "hello", d["translatedText"])
	assert.Equal(t, "zh-CN", d["targetLanguage"])
	assert.Equal(t, true, d["fallback"])

	f = newFixture(t, stubClassifier{}, stubTranslator{configured: true})
	_, resp = f.do(t, http.MethodPost, "/api/translate", `{"text":"hello","targetLanguage":"en"}`)
	assert.Equal(t, "[en] hello", dataMap(t, resp)["translatedText"])

	f = newFixture(t, stubClassifier{}, stubTranslator{})
	code, _ = f.do(t, http.MethodPost, "/api/translate", `{"text":"hello"}`)
	assert.Equal(t, http.StatusServiceUnavailable, code)
}

func TestEarningsQueryValidation(t *testing.T) {
	f := newFixture(t, stubClassifier{}, stubTranslator{})
	for _, body := range []string{
		`{"ticker":"AAPL","year":2025,"quarter":5}`,
		`{"ticker":"AAPL","quarter":2}`,
		`{"ticker":"AAPL","year":2025,"quarter":2,"topic":"memo"}`,
		`{"year":2025,"quarter":2}`,
	} {
		code, _ := f.do(t, http.MethodPost, "/api/earnings/query", body)
		assert.Equal(t, http.StatusBadRequest, code, body)
	}
}

func TestChatHelpTurnIsLoggedAndStored(t *testing.T) {
	f := newFixture(t, stubClassifier{err: classifier.ErrUnavailable}, stubTranslator{})

	code, resp := f.do(t, http.MethodPost, "/api/chat", `{"message":"hello there"}`)
	require.Equal(t, http.StatusOK, code)
	d := dataMap(t, resp)
	sessionID, _ := d["session_id"].(string)
	require.NotEmpty(t, sessionID)
	results, _ := d["results"].([]interface{})
	require.Len(t, results, 1)
	assert.Contains(t, results[0].(map[string]interface{})["content"], "I'm not sure how to help")

	code, resp = f.do(t, http.MethodGet, "/api/chat/"+sessionID+"/messages", "")
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 2, dataMap(t, resp)["total"])

	logs, err := f.queries.Recent(context.Background(), "", 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, models.TierHelp, logs[0].Tier)
	assert.Equal(t, "hello there", logs[0].Query)

	code, resp = f.do(t, http.MethodGet, "/api/query-logs?intent=news_default", "")
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, dataMap(t, resp)["total"])
}

func TestChatValidationAndUnknownSession(t *testing.T) {
	f := newFixture(t, stubClassifier{}, stubTranslator{})

	code, _ := f.do(t, http.MethodPost, "/api/chat", `{"message":""}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = f.do(t, http.MethodPost, "/api/chat/reset", `{"session_id":"missing"}`)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = f.do(t, http.MethodGet, "/api/chat/missing/messages?lang=fr", "")
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = f.do(t, http.MethodPost, "/api/chat/industry", `{"industry":"Underwater Basket Weaving"}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestLLMErrorMapping(t *testing.T) {
	assert.Equal(t, http.StatusServiceUnavailable, llmError(llm.ErrNotConfigured, "x", "y").Status)
	assert.Equal(t, http.StatusBadGateway, llmError(errors.New("boom"), "x", "y").Status)
}
