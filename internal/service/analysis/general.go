package analysis

import (
	"context"

	"FinChat/internal/domain/models"
	"FinChat/internal/service/llm"
)

const answerHeader = "<strong>💡 Answer</strong><br><br>"

// GeneralQA answers with Perplexity's online model. Citation markers are removed and the
// Markdown answer is rendered to HTML.
func (s *Service) GeneralQA(ctx context.Context, query string) (models.GeneralAnswer, error) {
	if s.mock {
		return models.GeneralAnswer{Answer: answerHeader + "Mock Q&A answer", Citations: []string{}}, nil
	}

	out, err := ask(ctx, s.perplexity, llm.Request{
		Model:       "sonar",
		Messages:    messages("", query),
		Temperature: 0.2,
		MaxTokens:   800,
	})
	if err != nil {
		return models.GeneralAnswer{}, err
	}
	if out.Content == "" {
		return models.GeneralAnswer{}, llm.ErrEmptyResponse
	}

	citations := out.Citations
	if citations == nil {
		citations = []string{}
	}
	return models.GeneralAnswer{
		Answer:    answerHeader + ToHTML(StripCitationMarkers(out.Content)),
		Citations: citations,
	}, nil
}
