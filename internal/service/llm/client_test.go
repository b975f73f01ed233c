package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinChat/pkg/config"
	"FinChat/pkg/logger"
)

func TestCompleteSendsOpenAIShape(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"  hi  "}}],"citations":["https://a.example"]}`))
	}))
	defer srv.Close()

	c := New("deepseek", config.Provider{BaseURL: srv.URL + "/", APIKey: "k", Model: "deepseek-chat", Timeout: time.Second, RPS: 100}, logger.Nop())
	out, err := c.Complete(context.Background(), Request{
		Messages:    []Message{{Role: RoleUser, Content: "q"}},
		Temperature: 0.1,
		MaxTokens:   250,
	})
	require.NoError(t, err)
	assert.Equal(t, "hi", out.Content)
	assert.Equal(t, []string{"https://a.example"}, out.Citations)
	assert.Equal(t, "deepseek-chat", got.Model)
	assert.Equal(t, 250, got.MaxTokens)
}

func TestCompleteNotConfigured(t *testing.T) {
	c := New("openai", config.Provider{BaseURL: "http://127.0.0.1:1"}, logger.Nop())
	_, err := c.Complete(context.Background(), Request{})
	assert.True(t, errors.Is(err, ErrNotConfigured))
}

func TestCompleteEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := New("perplexity", config.Provider{BaseURL: srv.URL, APIKey: "k", Timeout: time.Second}, logger.Nop())
	_, err := c.Ask(context.Background(), "s", "u", 0, 0)
	assert.True(t, errors.Is(err, ErrEmptyResponse))
}

func TestStripFences(t *testing.T) {
	cases := []struct{ in, want string }{
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{`  {"a":1} `, `{"a":1}`},
	}
	for _, tc := range cases {
		if got := StripFences(tc.in); got != tc.want {
			t.Fatalf("StripFences(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseAndRepairJSON(t *testing.T) {
	var v struct {
		A int `json:"a"`
	}
	assert.Error(t, ParseJSON(`{"a":1`, &v))

	require.NoError(t, RepairJSON("Here you go: {\"a\": 2} thanks", &v))
	assert.Equal(t, 2, v.A)

	require.NoError(t, RepairJSON(`{"a": 3,}`, &v))
	assert.Equal(t, 3, v.A)
}
