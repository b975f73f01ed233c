package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"FinChat/internal/domain/models"
	domsvc "FinChat/internal/domain/service"
	"FinChat/pkg/logger"
)

const minRedFlagNews = 50

// stockPart is one of the concurrent per-stock analyses. An empty html with a nil error means
// the part had nothing to show.
type stockPart struct {
	idx  int
	html string
	err  error
}

type stockFetcher func(ctx context.Context, ticker string) (string, error)

// Screening asks for up to three picks in industry and analyzes each one. Per stock, valuation,
// red flags and earnings run concurrently and always render in that order.
func (h *Handlers) Screening(ctx context.Context, em domsvc.Emitter, industry string) error {
	start := time.Now()
	failed := false
	defer func() {
		if h.observer != nil {
			h.observer.ObserveHandler(models.ModuleScreening, failed, time.Since(start))
		}
	}()

	if err := em.Emit(ctx, models.NewPlaceholder(models.ModuleScreening,
		fmt.Sprintf("<strong>🤖 AI Stock Screening</strong><br>Industry: <strong>%s</strong><br>", esc(industry)))); err != nil {
		return err
	}

	recs, err := h.analyst.RecommendStocks(ctx, industry)
	if err == nil && len(recs) == 0 {
		err = errors.New("no recommendations returned")
	}
	if err != nil {
		failed = true
		h.log.Warn("stock screening failed", logger.String("industry", industry), logger.Error(err))
		return em.Emit(ctx, models.NewErrorResult(models.ModuleScreening, "<strong>❌ Failed</strong><br>"+esc(err.Error())))
	}

	if err := em.Emit(ctx, models.NewResult(models.ModuleScreening, renderPicks(industry, recs))); err != nil {
		return err
	}
	if err := em.Emit(ctx, models.NewPlaceholder(models.ModuleScreening, "<strong>⚡ Analysis Started</strong><br>")); err != nil {
		return err
	}

	fetchers := []stockFetcher{h.screenValuation, h.screenRedFlags, h.screenEarnings}
	analyzed := 0
	for _, rec := range recs {
		ticker := strings.ToUpper(rec.Symbol)
		if err := em.Emit(ctx, models.NewResult(models.ModuleScreening, fmt.Sprintf("<strong>📊 %s Analysis</strong>", esc(ticker)))); err != nil {
			return err
		}

		parts, err := analyzeStock(ctx, ticker, fetchers)
		if err != nil {
			h.log.Warn("stock analysis failed", logger.String("ticker", ticker), logger.Error(err))
			if err := em.Emit(ctx, models.NewErrorResult(models.ModuleScreening,
				fmt.Sprintf("<strong>⚠️ %s Analysis Failed</strong><br>Continuing...", esc(ticker)))); err != nil {
				return err
			}
			continue
		}
		analyzed++
		for _, p := range parts {
			if p.err != nil {
				h.log.Debug("screening part skipped", logger.String("ticker", ticker), logger.Int("part", p.idx), logger.Error(p.err))
				continue
			}
			if p.html == "" {
				continue
			}
			if err := em.Emit(ctx, models.NewResult(models.ModuleScreening, p.html)); err != nil {
				return err
			}
		}
	}

	summary := fmt.Sprintf("<strong>🏆 Complete</strong><br>✅ Analyzed: %d/%d stocks<br>", analyzed, len(recs))
	if n := len(recs) - analyzed; n > 0 {
		summary += fmt.Sprintf("⚠️ Failed: %d", n)
	}
	return em.Emit(ctx, models.NewResult(models.ModuleScreening, summary, models.ModuleValuation, models.ModuleNews, models.ModuleEarnings))
}

// analyzeStock runs every fetcher concurrently and returns their outputs in fetcher order.
// It fails when the context ends or when every fetcher failed.
func analyzeStock(ctx context.Context, ticker string, fetchers []stockFetcher) ([]stockPart, error) {
	ch := make(chan stockPart, len(fetchers))
	var wg sync.WaitGroup
	for i, f := range fetchers {
		wg.Add(1)
		go func(i int, f stockFetcher) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					ch <- stockPart{idx: i, err: fmt.Errorf("unexpected failure: %v", r)}
				}
			}()
			html, err := f(ctx, ticker)
			ch <- stockPart{idx: i, html: html, err: err}
		}(i, f)
	}
	wg.Wait()
	close(ch)

	parts := make([]stockPart, len(fetchers))
	for p := range ch {
		parts[p.idx] = p
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var errs []error
	for _, p := range parts {
		if p.err != nil {
			errs = append(errs, p.err)
		}
	}
	if len(errs) == len(parts) && len(parts) > 0 {
		return nil, errors.Join(errs...)
	}
	return parts, nil
}

func renderPicks(industry string, recs []models.StockRecommendation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<strong>🤖 AI Recommendations - %s</strong><br><br>", esc(industry))
	for i, r := range recs {
		fmt.Fprintf(&b, "<strong>%d. %s - %s</strong><br>%s<br><br>", i+1, esc(r.Symbol), esc(r.Name), esc(r.Rationale))
	}
	b.WriteString("<em>💡 Powered by Perplexity AI</em>")
	return b.String()
}

func (h *Handlers) screenValuation(ctx context.Context, ticker string) (string, error) {
	a := h.valuation.Analyze(ctx, ticker)
	if !a.Success {
		return "", fmt.Errorf("%s: %s", a.Error, a.Details)
	}
	return ScreeningValuationLine(a.Data.CurrentPrice, a.Data.TargetPrice, a.Data.UpsidePercentage), nil
}

// ScreeningValuationLine renders "current → target (pct direction)" with a status badge.
func ScreeningValuationLine(current, target, reported models.Number) string {
	pct := PreferredUpside(current, target, reported)
	status, icon := "FAIR", "⚠️"
	switch {
	case pct < 0:
		status = "OVERVALUED"
	case pct > 5:
		status, icon = "UNDERVALUED", "✅"
	}
	return fmt.Sprintf("<strong>💰 Valuation:</strong> %s %s<br>$%.2f → $%.2f (%.1f%% %s)",
		icon, status, current.Or(0), target.Or(0), displayPercent(pct), upsideWord(pct))
}

func (h *Handlers) screenRedFlags(ctx context.Context, ticker string) (string, error) {
	news, err := h.news.SearchNews(ctx, ticker+" red flag risks issues", models.LangEnglish)
	if err != nil {
		return "", err
	}
	if len(news.NewsContent) <= minRedFlagNews {
		return "", nil
	}
	report, err := h.analyst.RedFlags(ctx, ticker, news.NewsContent)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("<strong>🚩 Red Flags:</strong> %d issues<br>%s", report.RedFlagCount, esc(report.Summary)), nil
}

func (h *Handlers) screenEarnings(ctx context.Context, ticker string) (string, error) {
	rag, err := h.news.RAGSearch(ctx, ticker+" latest quarter summary", models.LangEnglish)
	if err != nil {
		return "", err
	}
	if rag.Response == "" || rag.TotalSources <= 0 {
		return "", nil
	}
	sum, err := h.analyst.SummarizeEarnings(ctx, ticker, rag.Response)
	if err != nil {
		return "", err
	}
	sentiment := strings.ToUpper(sum.Sentiment)
	if sentiment == "" {
		sentiment = "NEUTRAL"
	}
	issues := "✅ No issues"
	if len(sum.Issues) > 0 {
		issues = "Issues: " + esc(strings.Join(sum.Issues, ", "))
	}
	return fmt.Sprintf("<strong>📞 Earnings:</strong> %s<br>%s<br>%s", sentiment, esc(sum.Summary), issues), nil
}
