package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"FinChat/internal/domain/models"
	"FinChat/internal/service/llm"
	"FinChat/pkg/logger"
	"FinChat/pkg/util"
)

const summarizeSystem = `Summarize earnings and identify issues.
Return ONLY valid JSON with: summary (brief text), issues (array), sentiment (positive/neutral/negative).
No markdown, no code blocks, just pure JSON.`

type summaryReply struct {
	Summary   string        `json:"summary"`
	Issues    []interface{} `json:"issues"`
	Sentiment string        `json:"sentiment"`
}

// SummarizeEarnings degrades to a neutral summary on short input, a missing key or a failed call.
func (s *Service) SummarizeEarnings(ctx context.Context, ticker, content string) (models.EarningsSummary, error) {
	if len(content) < minEarningsText {
		return neutralSummary("No earnings data"), nil
	}
	if s.mock {
		return models.EarningsSummary{Summary: "Mock earnings summary", Issues: []string{"Mock risk"}, Sentiment: "positive"}, nil
	}
	if !configured(s.deepseek) {
		return neutralSummary(notConfiguredSummary), nil
	}

	user := fmt.Sprintf("Summarize earnings for %s:\n\n%s\n\nReturn JSON: {\"summary\": \"text\", \"issues\": [], \"sentiment\": \"positive|neutral|negative\"}",
		ticker, util.Truncate(content, maxContentChars))

	out, err := ask(ctx, s.deepseek, llm.Request{
		Messages:    messages(summarizeSystem, user),
		Temperature: 0.1,
		MaxTokens:   300,
	})
	var reply summaryReply
	if err == nil {
		err = llm.RepairJSON(out.Content, &reply)
	}
	if err != nil {
		s.log.Warn("earnings summary failed", logger.String("ticker", ticker), logger.Error(err))
		return neutralSummary(analysisFailed), nil
	}

	res := models.EarningsSummary{
		Summary:   strings.TrimSpace(reply.Summary),
		Issues:    []string{},
		Sentiment: strings.TrimSpace(reply.Sentiment),
	}
	for _, issue := range reply.Issues {
		if str, ok := issue.(string); ok && strings.TrimSpace(str) != "" {
			res.Issues = append(res.Issues, strings.TrimSpace(str))
		}
	}
	if res.Summary == "" {
		res.Summary = "Analysis completed"
	}
	if res.Sentiment == "" {
		res.Sentiment = "neutral"
	}
	return res, nil
}

func neutralSummary(summary string) models.EarningsSummary {
	return models.EarningsSummary{Summary: summary, Issues: []string{}, Sentiment: "neutral"}
}

const earningsFallbackSystem = `You are an expert earnings analyst for Checkit Analytics.

When analyzing earnings, provide comprehensive insights including:
1. **Revenue & Growth**: Key revenue figures and growth rates
2. **Profitability**: Margins, net income, EPS trends
3. **Guidance**: Management outlook and guidance updates
4. **Key Metrics**: Important KPIs specific to the company/industry
5. **Risks & Opportunities**: Major concerns and growth drivers

Format your response with Markdown:
- Use bold for headers and important figures
- Use bullet points
- Keep response focused and data-driven

If you don't have specific recent data, provide:
- General analysis framework for the company/sector
- What investors should look for in their earnings
- Historical patterns and typical performance metrics
- Industry-specific considerations`

const (
	earningsFallbackNotice = `<strong>ℹ️ AI-Generated Analysis</strong><br>` +
		`Real-time earnings data is temporarily unavailable. This analysis is based on historical patterns and market knowledge.`
	earningsFallbackFooter = `<strong>💡 For Latest Earnings Data:</strong><br>` +
		`• Check the company's investor relations page<br>` +
		`• Visit SEC EDGAR for official filings<br>` +
		`• Use financial platforms like Yahoo Finance or Seeking Alpha`
)

// EarningsFallback produces a model-only earnings analysis, wrapped with the AI-generated notice.
func (s *Service) EarningsFallback(ctx context.Context, query string) (string, error) {
	body := "Mock earnings analysis"
	if !s.mock {
		out, err := ask(ctx, s.deepseek, llm.Request{
			Messages:    messages(earningsFallbackSystem, query),
			Temperature: 0.3,
			MaxTokens:   1200,
		})
		if err != nil {
			return "", err
		}
		if out.Content == "" {
			return "", llm.ErrEmptyResponse
		}
		body = ToHTML(out.Content)
	}

	return "<strong>📞 Earnings Analysis</strong><br><br>" +
		"<div>" + earningsFallbackNotice + "</div><br>" +
		body +
		"<br><div>" + earningsFallbackFooter + "</div>", nil
}

const parseEarningsSystem = `Extract earnings query parameters from user input. Return JSON only, no markdown, no code blocks:
{
  "ticker": "AAPL",
  "topic": "summary|transcript|qa",
  "quarter": 1-4,
  "year": 2024
}
Rules:
- ticker: Stock symbol (2-5 letters), default "AAPL"
- topic: "transcript" for full call, "summary" for overview, "qa" for Q&A session. Default "summary"
- quarter: 1-4, default to latest available (current quarter - 1)
- year: 4-digit year, default current year
Return ONLY the JSON object, nothing else.`

type earningsQueryReply struct {
	Ticker  string        `json:"ticker"`
	Topic   string        `json:"topic"`
	Quarter models.Number `json:"quarter"`
	Year    models.Number `json:"year"`
}

// ParseEarningsQuery never fails; on any error it returns the defaults with ParseError set.
func (s *Service) ParseEarningsQuery(ctx context.Context, query string) models.EarningsQuery {
	return s.parseEarningsQuery(ctx, query, time.Now())
}

func (s *Service) parseEarningsQuery(ctx context.Context, query string, now time.Time) models.EarningsQuery {
	if s.mock {
		return models.EarningsQuery{Ticker: "AAPL", Topic: models.TopicSummary, Quarter: 2, Year: 2024}
	}

	def := DefaultEarningsQuery(now)
	out, err := ask(ctx, s.deepseek, llm.Request{
		Messages:    messages(parseEarningsSystem, query),
		Temperature: 0.1,
		MaxTokens:   100,
	})
	var reply earningsQueryReply
	if err == nil {
		err = llm.ParseJSON(out.Content, &reply)
	}
	if err != nil {
		def.ParseError = err.Error()
		return def
	}

	res := def
	if t := strings.ToUpper(strings.TrimSpace(reply.Ticker)); t != "" {
		res.Ticker = t
	}
	switch topic := models.EarningsTopic(strings.ToLower(strings.TrimSpace(reply.Topic))); topic {
	case models.TopicSummary, models.TopicQA, models.TopicTranscript:
		res.Topic = topic
	}
	if q := int(reply.Quarter.Or(0)); q >= 1 && q <= 4 {
		res.Quarter = q
	}
	if y := int(reply.Year.Or(0)); y > 0 {
		res.Year = y
	}
	return res
}

// DefaultEarningsQuery is AAPL summary for the previous quarter of now's year (at least Q1).
func DefaultEarningsQuery(now time.Time) models.EarningsQuery {
	return models.EarningsQuery{
		Ticker:  "AAPL",
		Topic:   models.TopicSummary,
		Quarter: util.LastReportedQuarter(now),
		Year:    now.Year(),
	}
}
