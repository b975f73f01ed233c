// Package keywords holds the offline routing tiers: the keyword router and the screening detector.
package keywords

import (
	"fmt"

	"FinChat/internal/domain/models"
)

var (
	NewsKeywords = []string{
		"news", "headline", "rumor", "hearsay", "leak", "product", "launch", "unveil", "release",
		"event", "partnership", "acquisition", "m&a", "divest", "recall", "lawsuit", "regulatory",
		"sec", "management change", "ceo", "cfo", "layoff", "hiring", "expansion", "market entry",
		"technology", "prototype",
	}

	EarningsKeywords = []string{
		"earnings", "earning call", "guidance", "outlook", "gaap", "non-gaap", "preview",
		"transcript", "q&a",
	}

	PerformanceKeywords = []string{
		"performance", "how is", "how's", "doing", "metrics", "financial data", "key metrics",
		"compare", "comparison", "peer", "competitor", "vs", "versus",
	}

	ScreeningKeywords = []string{
		"what stock should i invest", "which stock", "best stock", "undervalued",
		"stock recommendation", "invest in", "good investment", "stock pick",
	}
)

// Router maps text to PERFORMANCE, EARNINGS, NEWS or NEWS_DEFAULT without any network call.
type Router struct {
	performance *Matcher
	earnings    *Matcher
	news        *Matcher
}

func NewRouter() (*Router, error) {
	perf, err := NewMatcher(PerformanceKeywords)
	if err != nil {
		return nil, fmt.Errorf("performance keywords: %w", err)
	}
	earn, err := NewMatcher(EarningsKeywords)
	if err != nil {
		return nil, fmt.Errorf("earnings keywords: %w", err)
	}
	news, err := NewMatcher(NewsKeywords)
	if err != nil {
		return nil, fmt.Errorf("news keywords: %w", err)
	}
	return &Router{performance: perf, earnings: earn, news: news}, nil
}

// Route applies the fixed priority performance > earnings > news > NEWS_DEFAULT.
// Earnings therefore wins whenever both earnings and news words are present.
func (r *Router) Route(text string) models.Intent {
	switch {
	case r.performance.Matches(text):
		return models.IntentPerformance
	case r.earnings.Matches(text):
		return models.IntentEarnings
	case r.news.Matches(text):
		return models.IntentNews
	default:
		return models.IntentNewsDefault
	}
}

// ScreeningDetector recognizes investment-recommendation requests.
type ScreeningDetector struct {
	m *Matcher
}

func NewScreeningDetector() (*ScreeningDetector, error) {
	m, err := NewMatcher(ScreeningKeywords)
	if err != nil {
		return nil, fmt.Errorf("screening keywords: %w", err)
	}
	return &ScreeningDetector{m: m}, nil
}

func (d *ScreeningDetector) Detect(text string) bool {
	return d.m.Matches(text)
}
