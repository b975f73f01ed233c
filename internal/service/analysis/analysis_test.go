package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinChat/internal/domain/models"
	"FinChat/internal/service/llm"
	"FinChat/pkg/logger"
)

type fakeLLM struct {
	content   string
	citations []string
	err       error
	off       bool
	requests  []llm.Request
}

func (f *fakeLLM) Configured() bool { return !f.off }

func (f *fakeLLM) Complete(ctx context.Context, req llm.Request) (llm.Completion, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return llm.Completion{}, f.err
	}
	return llm.Completion{Content: f.content, Citations: f.citations}, nil
}

func newSvc(f *fakeLLM) *Service {
	return New(f, f, f, logger.Nop(), false)
}

func TestRedFlagsDegrades(t *testing.T) {
	got, err := newSvc(&fakeLLM{off: true}).RedFlags(context.Background(), "TSLA", "news")
	require.NoError(t, err)
	assert.Equal(t, "DeepSeek API not configured", got.Summary)
	assert.Equal(t, "unknown", got.Severity)

	got, err = newSvc(&fakeLLM{err: errors.New("timeout")}).RedFlags(context.Background(), "TSLA", "news")
	require.NoError(t, err)
	assert.Equal(t, "Analysis failed", got.Summary)
}

func TestRedFlagsParsesAndTruncates(t *testing.T) {
	f := &fakeLLM{content: "```json\n{\"redflag_count\": 2, \"severity\": \"high\", \"summary\": \"Recall\"}\n```"}
	got, err := newSvc(f).RedFlags(context.Background(), "TSLA", strings.Repeat("x", 4000))
	require.NoError(t, err)
	assert.Equal(t, models.RedFlagReport{RedFlagCount: 2, Severity: "high", Summary: "Recall"}, got)

	user := f.requests[0].Messages[1].Content
	assert.Less(t, len(user), 1700)
}

func TestSummarizeEarnings(t *testing.T) {
	s := newSvc(&fakeLLM{content: `{"summary":"Beat","issues":["margin", 3],"sentiment":"positive"}`})

	short, err := s.SummarizeEarnings(context.Background(), "AAPL", "too short")
	require.NoError(t, err)
	assert.Equal(t, "No earnings data", short.Summary)
	assert.Empty(t, short.Issues)

	got, err := s.SummarizeEarnings(context.Background(), "AAPL", strings.Repeat("revenue up ", 10))
	require.NoError(t, err)
	assert.Equal(t, "Beat", got.Summary)
	assert.Equal(t, []string{"margin"}, got.Issues)
	assert.Equal(t, "positive", got.Sentiment)
}

func TestParseRecommendationsStrict(t *testing.T) {
	reply := "```json\n[" +
		`{"symbol":"NVDA","name":"Nvidia","rationale":"GPUs"},` +
		`{"symbol":"AMD","name":"","rationale":""},` +
		`{"symbol":"AVGO","name":"Broadcom","rationale":"Networking"},` +
		`{"symbol":"INTC","name":"Intel","rationale":"Turnaround"}` +
		"]\n```\nThese picks reflect AI demand."
	got := ParseRecommendations(reply)
	require.Len(t, got, 3)
	assert.Equal(t, "NVDA", got[0].Symbol)
	assert.Equal(t, "Unknown Company", got[1].Name)
	assert.Equal(t, "Strong fundamentals and growth potential.", got[1].Rationale)
}

func TestParseRecommendationsRepaired(t *testing.T) {
	got := ParseRecommendations(`[{"symbol": "NVDA", "name": "Nvidia", "rationale": "GPUs",}]`)
	require.Len(t, got, 1)
	assert.Equal(t, "Nvidia", got[0].Name)
}

func TestParseRecommendationsLines(t *testing.T) {
	reply := "Here are my picks\n1. NVDA - Nvidia leads AI accelerators with strong margins\n2. AMD: Gaining data center share quickly"
	got := ParseRecommendations(reply)
	require.Len(t, got, 2)
	assert.Equal(t, "NVDA", got[0].Symbol)
	assert.Equal(t, "AMD", got[1].Symbol)
	assert.NotEmpty(t, got[1].Rationale)
}

func TestRecommendStocksEmpty(t *testing.T) {
	_, err := newSvc(&fakeLLM{content: "no idea"}).RecommendStocks(context.Background(), "Technology")
	assert.True(t, errors.Is(err, ErrNoRecommendations))

	_, err = newSvc(&fakeLLM{off: true}).RecommendStocks(context.Background(), "Technology")
	assert.True(t, errors.Is(err, llm.ErrNotConfigured))
}

func TestGeneralQA(t *testing.T) {
	f := &fakeLLM{content: "Rates are **rising**[1] because of inflation[2].", citations: []string{"https://a.example"}}
	got, err := newSvc(f).GeneralQA(context.Background(), "why are rates rising")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got.Answer, "<strong>💡 Answer</strong><br><br>"))
	assert.Contains(t, got.Answer, "<strong>rising</strong>")
	assert.NotContains(t, got.Answer, "[1]")
	assert.Equal(t, []string{"https://a.example"}, got.Citations)
	assert.Equal(t, "sonar", f.requests[0].Model)
}

func TestCompetitive(t *testing.T) {
	f := &fakeLLM{content: `{"en":{"forces":{"competitive_rivalry":{"score":"8","analysis":"BYD"}},"overall_assessment":"Tough"},"zh":{"forces":{},"overall_assessment":"激烈"}}`}
	got, err := newSvc(f).Competitive(context.Background(), "Tesla", "EV", "robotaxi")
	require.NoError(t, err)
	assert.Equal(t, "Tesla", got.Company)
	assert.Equal(t, "EV", got.Industry)
	assert.Equal(t, 8.0, got.En.Forces["competitive_rivalry"].Score.Or(0))
	assert.Equal(t, "激烈", got.Zh.OverallAssessment)
	// research call then five-forces call
	assert.Len(t, f.requests, 2)
}

func TestCompetitiveMock(t *testing.T) {
	got, err := New(nil, nil, nil, logger.Nop(), true).Competitive(context.Background(), "Tesla", "EV", "")
	require.NoError(t, err)
	assert.Equal(t, 7.0, got.En.Forces["competitive_rivalry"].Score.Or(0))
	assert.Len(t, got.Zh.Forces, 5)
}

func TestEarningsFallbackWrapsNotice(t *testing.T) {
	got, err := newSvc(&fakeLLM{content: "**Revenue** grew"}).EarningsFallback(context.Background(), "Apple earnings")
	require.NoError(t, err)
	assert.Contains(t, got, "AI-Generated Analysis")
	assert.Contains(t, got, "<strong>Revenue</strong>")

	_, err = newSvc(&fakeLLM{off: true}).EarningsFallback(context.Background(), "x")
	assert.True(t, errors.Is(err, llm.ErrNotConfigured))
}

func TestParseEarningsQuery(t *testing.T) {
	now := time.Date(2025, time.February, 10, 0, 0, 0, 0, time.UTC)

	s := newSvc(&fakeLLM{content: `{"ticker":"tsla","topic":"qa","quarter":3,"year":2024}`})
	got := s.parseEarningsQuery(context.Background(), "tesla q3 2024 q&a", now)
	assert.Equal(t, models.EarningsQuery{Ticker: "TSLA", Topic: models.TopicQA, Quarter: 3, Year: 2024}, got)

	bad := newSvc(&fakeLLM{content: "nope"}).parseEarningsQuery(context.Background(), "x", now)
	assert.Equal(t, "AAPL", bad.Ticker)
	assert.Equal(t, models.TopicSummary, bad.Topic)
	assert.Equal(t, 1, bad.Quarter)
	assert.Equal(t, 2025, bad.Year)
	assert.NotEmpty(t, bad.ParseError)
}

func TestDefaultEarningsQuery(t *testing.T) {
	cases := []struct {
		month time.Month
		want  int
	}{
		{time.January, 1}, {time.April, 1}, {time.July, 2}, {time.November, 3},
	}
	for _, tc := range cases {
		got := DefaultEarningsQuery(time.Date(2025, tc.month, 1, 0, 0, 0, 0, time.UTC))
		if got.Quarter != tc.want {
			t.Fatalf("month %s: quarter = %d, want %d", tc.month, got.Quarter, tc.want)
		}
	}
}
