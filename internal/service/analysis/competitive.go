package analysis

import (
	"context"
	"fmt"
	"strings"

	"FinChat/internal/domain/models"
	"FinChat/internal/service/llm"
	"FinChat/pkg/logger"
)

const (
	researchSystem    = "You are a business research assistant. Provide concise, factual competitive intelligence."
	fiveForcesSystem  = "You are an expert business analyst. Respond ONLY with valid JSON."
	noResearchContext = "No real-time research available."
)

const fiveForcesPrompt = `Analyze %[1]s in the %[2]s industry using Porter's Five Forces.

Research Context:
%[3]s

%[4]s

Return ONLY valid JSON. List competitor names. Format:
{
  "company": "%[1]s",
  "industry": "%[2]s",
  "en": {
    "forces": {
      "competitive_rivalry": { "score": 8, "analysis": "..." },
      "threat_of_new_entrants": { "score": 6, "analysis": "..." },
      "threat_of_substitutes": { "score": 7, "analysis": "..." },
      "supplier_power": { "score": 5, "analysis": "..." },
      "buyer_power": { "score": 6, "analysis": "..." }
    },
    "overall_assessment": "..."
  },
  "zh": {
    "forces": { "...": "same keys, Simplified Chinese analysis" },
    "overall_assessment": "..."
  }
}`

// Competitive runs Perplexity research (failure tolerated) and then an OpenAI five-forces analysis.
func (s *Service) Competitive(ctx context.Context, company, industry, additionalContext string) (models.CompetitiveReport, error) {
	if s.mock {
		return mockCompetitive(company, industry), nil
	}
	if !configured(s.openai) {
		return models.CompetitiveReport{}, llm.ErrNotConfigured
	}

	research := s.research(ctx, company, industry, additionalContext)
	if research == "" {
		research = noResearchContext
	}
	extra := ""
	if additionalContext != "" {
		extra = "Additional context: " + additionalContext
	}

	out, err := ask(ctx, s.openai, llm.Request{
		Messages:    messages(fiveForcesSystem, fmt.Sprintf(fiveForcesPrompt, company, industry, research, extra)),
		Temperature: 0.7,
		MaxTokens:   2000,
	})
	if err != nil {
		return models.CompetitiveReport{}, err
	}

	var report models.CompetitiveReport
	if err := llm.RepairJSON(out.Content, &report); err != nil {
		return models.CompetitiveReport{}, err
	}
	if report.Company == "" {
		report.Company = company
	}
	if report.Industry == "" {
		report.Industry = industry
	}
	return report, nil
}

func (s *Service) research(ctx context.Context, company, industry, additionalContext string) string {
	if !configured(s.perplexity) {
		return ""
	}
	user := fmt.Sprintf("Research %s in the %s industry. Identify key competitors, market position, and recent strategic moves.", company, industry)
	if additionalContext != "" {
		user += " Context: " + additionalContext
	}
	out, err := s.perplexity.Complete(ctx, llm.Request{
		Model:       "sonar-reasoning-pro",
		Messages:    messages(researchSystem, user),
		Temperature: 0.2,
	})
	if err != nil {
		s.log.Warn("competitive research failed", logger.String("company", company), logger.Error(err))
		return ""
	}
	return strings.TrimSpace(out.Content)
}

func mockCompetitive(company, industry string) models.CompetitiveReport {
	view := func(analyses [5]string, overall string) models.ForcesView {
		scores := [5]float64{7, 4, 5, 6, 6}
		forces := make(map[string]models.ForceScore, len(models.ForceKeys))
		for i, key := range models.ForceKeys {
			forces[key] = models.ForceScore{Score: models.Num(scores[i]), Analysis: analyses[i]}
		}
		return models.ForcesView{Forces: forces, OverallAssessment: overall}
	}
	return models.CompetitiveReport{
		Company:  company,
		Industry: industry,
		En: view([5]string{"Mock rivalry details", "Mock entrants", "Mock substitutes", "Mock suppliers", "Mock buyers"},
			"Mock overall assessment"),
		Zh: view([5]string{"竞争 mock", "新进入者 mock", "替代品 mock", "供应商 mock", "买方 mock"},
			"总体评价 mock"),
	}
}
