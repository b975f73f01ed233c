package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	"github.com/samber/lo"

	"FinChat/internal/domain/models"
	"FinChat/internal/service/llm"
	"FinChat/pkg/logger"
	"FinChat/pkg/util"
)

const (
	maxPicks         = 3
	maxRationale     = 200
	defaultRationale = "Strong fundamentals and growth potential."
)

const recommendSystem = "You are a financial analyst. Return JSON data as requested, followed by any additional text."

const recommendPrompt = `Recommend 3 stocks in %s sector for 2025.

Return ONLY a JSON array, nothing else. No markdown, no explanation.
Keep rationale under 50 words, no quotes or special characters inside.

Example format:
[
  {"symbol": "AAPL", "name": "Apple Inc", "rationale": "Strong revenue growth and services expansion"},
  {"symbol": "MSFT", "name": "Microsoft", "rationale": "Cloud dominance and AI integration"},
  {"symbol": "GOOGL", "name": "Alphabet", "rationale": "Search monopoly and emerging AI"}
]`

var (
	jsonArrayRe  = regexp.MustCompile(`(?s)\[.*\]`)
	lineTickerRe = regexp.MustCompile(`\b([A-Z]{2,5})\b`)
	namePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\(([^)]+)\)`),
		regexp.MustCompile(`[A-Z]{2,5}\s*[-:]\s*([^,\n]+)`),
		regexp.MustCompile(`[A-Z]{2,5}\s+([A-Z][a-zA-Z\s&.]+?)(?:\s*[-:]|$)`),
	}
	lineRationaleRe = regexp.MustCompile(`[:|\-]\s*(.+)$`)
)

// RecommendStocks asks Perplexity for up to three picks in industry.
func (s *Service) RecommendStocks(ctx context.Context, industry string) ([]models.StockRecommendation, error) {
	if s.mock {
		return []models.StockRecommendation{
			{Symbol: "AAPL", Name: "Apple Inc", Rationale: "Mock rationale"},
			{Symbol: "MSFT", Name: "Microsoft", Rationale: "Mock rationale"},
			{Symbol: "TSLA", Name: "Tesla", Rationale: "Mock rationale"},
		}, nil
	}

	out, err := ask(ctx, s.perplexity, llm.Request{
		Model:       "sonar-pro",
		Messages:    messages(recommendSystem, fmt.Sprintf(recommendPrompt, industry)),
		Temperature: 0.1,
		MaxTokens:   1500,
	})
	if err != nil {
		return nil, err
	}

	picks := ParseRecommendations(out.Content)
	if len(picks) == 0 {
		s.log.Warn("no recommendations parsed", logger.String("industry", industry), logger.Int("chars", len(out.Content)))
		return nil, ErrNoRecommendations
	}
	return picks, nil
}

// ParseRecommendations runs the strict stage (JSON array, repaired if needed) and falls back to
// the line scanner. At most three picks are returned.
func ParseRecommendations(reply string) []models.StockRecommendation {
	picks := parseRecommendationArray(reply)
	if len(picks) == 0 {
		picks = parseRecommendationLines(reply)
	}
	if len(picks) > maxPicks {
		picks = picks[:maxPicks]
	}
	return picks
}

type recommendationJSON struct {
	Symbol    string `json:"symbol"`
	Name      string `json:"name"`
	Rationale string `json:"rationale"`
}

func parseRecommendationArray(reply string) []models.StockRecommendation {
	cleaned := strings.TrimSpace(strings.NewReplacer("```json", "", "```JSON", "", "```", "").Replace(reply))
	match := jsonArrayRe.FindString(cleaned)
	if match == "" {
		return nil
	}

	var raw []recommendationJSON
	if err := json.Unmarshal([]byte(match), &raw); err != nil {
		fixed, rerr := jsonrepair.RepairJSON(match)
		if rerr != nil || json.Unmarshal([]byte(fixed), &raw) != nil {
			return nil
		}
	}

	return lo.FilterMap(raw, func(r recommendationJSON, _ int) (models.StockRecommendation, bool) {
		rec := models.StockRecommendation{
			Symbol:    strings.TrimSpace(r.Symbol),
			Name:      strings.TrimSpace(r.Name),
			Rationale: strings.TrimSpace(r.Rationale),
		}
		if rec.Symbol == "" && rec.Name == "" {
			return rec, false
		}
		rec.Symbol = lo.Ternary(rec.Symbol == "", "N/A", rec.Symbol)
		rec.Name = lo.Ternary(rec.Name == "", "Unknown Company", rec.Name)
		rec.Rationale = lo.Ternary(rec.Rationale == "", defaultRationale, rec.Rationale)
		return rec, true
	})
}

func parseRecommendationLines(reply string) []models.StockRecommendation {
	lines := lo.FilterMap(strings.Split(reply, "\n"), func(l string, _ int) (string, bool) {
		l = strings.TrimSpace(l)
		return l, l != ""
	})

	var out []models.StockRecommendation
	for i, line := range lines {
		m := lineTickerRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		symbol := m[1]

		name := symbol
		for _, re := range namePatterns {
			if nm := re.FindStringSubmatch(line); nm != nil && strings.TrimSpace(nm[1]) != "" {
				name = strings.TrimSpace(nm[1])
				break
			}
		}

		rationale := ""
		if rm := lineRationaleRe.FindStringSubmatch(line); rm != nil {
			rationale = strings.TrimSpace(rm[1])
		} else if i+1 < len(lines) {
			rationale = lines[i+1]
		}
		if len(rationale) < 20 && i+2 < len(lines) {
			rationale = strings.TrimSpace(rationale + " " + lines[i+2])
		}
		if rationale == "" {
			rationale = defaultRationale
		}

		out = append(out, models.StockRecommendation{
			Symbol:    symbol,
			Name:      name,
			Rationale: util.Truncate(rationale, maxRationale),
		})
		if len(out) >= maxPicks {
			break
		}
	}
	return out
}
