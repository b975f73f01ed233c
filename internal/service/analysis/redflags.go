package analysis

import (
	"context"
	"fmt"
	"strings"

	"FinChat/internal/domain/models"
	"FinChat/internal/service/llm"
	"FinChat/pkg/logger"
	"FinChat/pkg/util"
)

const (
	maxContentChars = 1500
	minEarningsText = 50

	notConfiguredSummary = "DeepSeek API not configured"
	analysisFailed       = "Analysis failed"
)

const redFlagsSystem = `Analyze news for red flags (risks, issues, problems).
Return ONLY valid JSON with: redflag_count (0-5), severity (low/medium/high), summary.
No markdown, no code blocks, just pure JSON.`

type redFlagsReply struct {
	RedFlagCount models.Number `json:"redflag_count"`
	Severity     string        `json:"severity"`
	Summary      string        `json:"summary"`
}

// RedFlags never returns an upstream error: a missing key or failed call degrades to a zero report.
func (s *Service) RedFlags(ctx context.Context, ticker, newsContent string) (models.RedFlagReport, error) {
	if s.mock {
		return models.RedFlagReport{RedFlagCount: 1, Severity: "medium", Summary: "Mock red flag summary"}, nil
	}
	if !configured(s.deepseek) {
		return models.RedFlagReport{Severity: "unknown", Summary: notConfiguredSummary}, nil
	}

	user := fmt.Sprintf("Analyze news for %s:\n\n%s\n\nReturn JSON: {\"redflag_count\": number, \"severity\": \"low|medium|high\", \"summary\": \"text\"}",
		ticker, util.Truncate(newsContent, maxContentChars))

	out, err := ask(ctx, s.deepseek, llm.Request{
		Messages:    messages(redFlagsSystem, user),
		Temperature: 0.1,
		MaxTokens:   250,
	})
	var reply redFlagsReply
	if err == nil {
		err = llm.RepairJSON(out.Content, &reply)
	}
	if err != nil {
		s.log.Warn("red flag analysis failed", logger.String("ticker", ticker), logger.Error(err))
		return models.RedFlagReport{Severity: "unknown", Summary: analysisFailed}, nil
	}

	report := models.RedFlagReport{
		RedFlagCount: int(reply.RedFlagCount.Or(0)),
		Severity:     strings.TrimSpace(reply.Severity),
		Summary:      strings.TrimSpace(reply.Summary),
	}
	if report.Severity == "" {
		report.Severity = "low"
	}
	if report.Summary == "" {
		report.Summary = "No red flags"
	}
	return report, nil
}
