package service

import (
	"context"
	"encoding/json"

	"FinChat/internal/domain/models"
)

// NewsService is the smart-news backend: search, briefs, rumor checks, RAG and X/Twitter.
type NewsService interface {
	SearchNews(ctx context.Context, query, language string) (models.NewsSearch, error)
	SearchNewsV2(ctx context.Context, query, language string) (models.NewsSearch, error)
	NewsBrief(ctx context.Context, ticker, query, language string) (models.NewsBriefResponse, error)
	CreateSmartBrief(ctx context.Context, req models.SmartBriefRequest) (models.SmartBriefResponse, error)
	DetectRumor(ctx context.Context, query, language string) (models.RumorReport, error)
	RAGSearch(ctx context.Context, query, language string) (models.RAGResult, error)
	TwitterSearch(ctx context.Context, query string, count int) (json.RawMessage, error)
	TwitterConsolidate(ctx context.Context, results json.RawMessage, query string) (models.TwitterDigest, error)
}

type KeyMetricsService interface {
	Resolve(ctx context.Context, input string) (models.ResolvedCompany, error)
	FindPeers(ctx context.Context, ticker string) (models.PeerList, error)
	GetMetrics(ctx context.Context, tickers []string) (models.MetricsTable, error)
	Conclusion(ctx context.Context, req models.ConclusionRequest) (models.PeerConclusion, error)
}

type ValuationEngine interface {
	FullValuation(ctx context.Context, ticker string) (models.ValuationEngineResult, error)
}

type FDACalendar interface {
	Company(ctx context.Context, ticker string) (models.FDAResponse, error)
	SearchCompanies(ctx context.Context, company string) (models.FDAResponse, error)
	ListCompanies(ctx context.Context) (models.FDAResponse, error)
}

type EarningsDocs interface {
	LatestTranscript(ctx context.Context, ticker string) (models.LatestTranscript, error)
	AIDoc(ctx context.Context, ticker string, year, quarter int, topic models.EarningsTopic, lang string) (models.AIDocResponse, error)
	Transcript(ctx context.Context, ticker string, year, quarter int) (models.Transcript, error)
}
