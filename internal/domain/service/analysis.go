package service

import (
	"context"

	"FinChat/internal/domain/models"
)

// Analyst groups the LLM-backed analyzers exposed over /api and used by the chat handlers.
type Analyst interface {
	RedFlags(ctx context.Context, ticker, newsContent string) (models.RedFlagReport, error)
	SummarizeEarnings(ctx context.Context, ticker, content string) (models.EarningsSummary, error)
	RecommendStocks(ctx context.Context, industry string) ([]models.StockRecommendation, error)
	GeneralQA(ctx context.Context, query string) (models.GeneralAnswer, error)
	Competitive(ctx context.Context, company, industry, additionalContext string) (models.CompetitiveReport, error)
	EarningsFallback(ctx context.Context, query string) (string, error)
	ParseEarningsQuery(ctx context.Context, query string) models.EarningsQuery
}
