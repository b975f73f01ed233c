package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"FinChat/internal/domain/models"
	"FinChat/internal/repository"
	"FinChat/internal/service/keywords"
)

var errBoom = errors.New("boom")

type fakeNews struct {
	content string
	err     error
	rag     models.RAGResult
	rumor   models.RumorReport
}

func (f *fakeNews) SearchNews(_ context.Context, query, _ string) (models.NewsSearch, error) {
	return models.NewsSearch{NewsContent: strings.Repeat("risk ", 20) + query}, f.err
}

func (f *fakeNews) SearchNewsV2(context.Context, string, string) (models.NewsSearch, error) {
	return models.NewsSearch{NewsContent: f.content}, f.err
}

func (f *fakeNews) NewsBrief(context.Context, string, string, string) (models.NewsBriefResponse, error) {
	return models.NewsBriefResponse{}, f.err
}

func (f *fakeNews) CreateSmartBrief(context.Context, models.SmartBriefRequest) (models.SmartBriefResponse, error) {
	return models.SmartBriefResponse{}, f.err
}

func (f *fakeNews) DetectRumor(context.Context, string, string) (models.RumorReport, error) {
	return f.rumor, f.err
}

func (f *fakeNews) RAGSearch(context.Context, string, string) (models.RAGResult, error) {
	return f.rag, f.err
}

func (f *fakeNews) TwitterSearch(context.Context, string, int) (json.RawMessage, error) {
	return json.RawMessage(`[]`), f.err
}

func (f *fakeNews) TwitterConsolidate(context.Context, json.RawMessage, string) (models.TwitterDigest, error) {
	return models.TwitterDigest{}, f.err
}

type fakeAnalyst struct {
	picks    []models.StockRecommendation
	picksErr error
	industry string
}

func (f *fakeAnalyst) RedFlags(_ context.Context, ticker, _ string) (models.RedFlagReport, error) {
	return models.RedFlagReport{RedFlagCount: 2, Severity: "medium", Summary: ticker + " flags"}, nil
}

func (f *fakeAnalyst) SummarizeEarnings(_ context.Context, ticker, _ string) (models.EarningsSummary, error) {
	return models.EarningsSummary{Summary: ticker + " beat", Sentiment: "positive"}, nil
}

func (f *fakeAnalyst) RecommendStocks(_ context.Context, industry string) ([]models.StockRecommendation, error) {
	f.industry = industry
	return f.picks, f.picksErr
}

func (f *fakeAnalyst) GeneralQA(context.Context, string) (models.GeneralAnswer, error) {
	return models.GeneralAnswer{Answer: "answer"}, nil
}

func (f *fakeAnalyst) Competitive(context.Context, string, string, string) (models.CompetitiveReport, error) {
	return models.CompetitiveReport{}, errBoom
}

func (f *fakeAnalyst) EarningsFallback(context.Context, string) (string, error) { return "", errBoom }

func (f *fakeAnalyst) ParseEarningsQuery(context.Context, string) models.EarningsQuery {
	return models.EarningsQuery{}
}

// fakeEngine answers per ticker; tickers in fail return an error.
type fakeEngine struct {
	mu    sync.Mutex
	fail  map[string]bool
	calls []string
}

func (f *fakeEngine) FullValuation(_ context.Context, ticker string) (models.ValuationEngineResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, ticker)
	f.mu.Unlock()
	if f.fail[ticker] {
		return models.ValuationEngineResult{}, errBoom
	}
	return models.ValuationEngineResult{
		Ticker:       ticker,
		CurrentPrice: models.Num(100),
		TargetPrice:  models.Num(120),
		Confidence:   models.Num(0.85),
		Method:       "DCF",
	}, nil
}

func (f *fakeEngine) called() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type fakeClassifier struct {
	res models.ClassificationResult
	err error
}

func (f fakeClassifier) Classify(context.Context, string) (models.ClassificationResult, error) {
	return f.res, f.err
}

type recordingObserver struct {
	mu         sync.Mutex
	dispatches []string
	handlers   []string
}

func (r *recordingObserver) ObserveDispatch(tier, intent string) {
	r.mu.Lock()
	r.dispatches = append(r.dispatches, tier+"/"+intent)
	r.mu.Unlock()
}

func (r *recordingObserver) ObserveClassifier(string, time.Duration) {}

func (r *recordingObserver) ObserveHandler(module string, failed bool, _ time.Duration) {
	r.mu.Lock()
	if failed {
		module += "!"
	}
	r.handlers = append(r.handlers, module)
	r.mu.Unlock()
}

type env struct {
	news     *fakeNews
	analyst  *fakeAnalyst
	engine   *fakeEngine
	obs      *recordingObserver
	store    *repository.MemoryQueryLogStore
	handlers *Handlers
}

func newEnv() *env {
	e := &env{
		news:    &fakeNews{content: "Apple shipped a phone.\n\n\nSource: https://www.example.com/a"},
		analyst: &fakeAnalyst{},
		engine:  &fakeEngine{fail: map[string]bool{}},
		obs:     &recordingObserver{},
		store:   repository.NewMemoryQueryLogStore(20),
	}
	e.handlers = NewHandlers(e.news, nil, NewValuationUseCase(e.engine, nil), nil, nil, e.analyst, e.obs, nil)
	return e
}

func (e *env) dispatcher(t *testing.T, c fakeClassifier, hideNotice bool) *Dispatcher {
	t.Helper()
	router, err := keywords.NewRouter()
	require.NoError(t, err)
	screening, err := keywords.NewScreeningDetector()
	require.NoError(t, err)
	return NewDispatcher(c, router, screening, e.handlers, NewQueryLogUseCase(e.store, nil, nil), e.obs, hideNotice, nil)
}

func bodies(rs []models.ModuleResult) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Body()
	}
	return out
}
