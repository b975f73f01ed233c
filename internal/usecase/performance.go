package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"FinChat/internal/domain/models"
	domsvc "FinChat/internal/domain/service"
	"FinChat/internal/service/analysis"
	"FinChat/internal/service/slots"
	"FinChat/pkg/logger"
)

const (
	maxPeers          = 3
	seriesQuarters    = 5
	marketCapPeriod   = "Current"
	metricMarketCap   = "Market Cap"
	metricRevenue     = "Total Revenue"
	metricGrossMargin = "Gross Margin %"
	metricNetIncome   = "Net Income"
)

// Metrics sent to the conclusion writer.
var conclusionMetrics = []string{
	metricMarketCap, metricRevenue, metricGrossMargin, "Operating Expense", "EBIT", metricNetIncome, "Free Cash Flow",
}

// Rows of the peer comparison table.
var comparisonMetrics = []string{
	metricMarketCap, metricRevenue, "Revenue (TTM)", "Gross Profit (TTM)", metricGrossMargin,
	"Operating Expense", "EBIT", metricNetIncome, "Net Income (TTM)", "Free Cash Flow",
}

// Rows of the primary company's time series table.
var seriesMetrics = []string{
	metricRevenue, "Operating Expense", metricGrossMargin, "EBIT", metricNetIncome, "Free Cash Flow",
}

// periodFor returns the column a metric is read from; market cap only has a current value.
func periodFor(metric, quarter string) string {
	if metric == metricMarketCap {
		return marketCapPeriod
	}
	return quarter
}

type performanceView struct {
	ticker   string
	name     string
	peers    []models.PeerCompany
	table    models.MetricsTable
	primary  models.TickerMetrics
	latest   string
	quarters []string
	summary  *models.PeerConclusion
}

// Performance resolves the company, compares it with up to three peers and renders the metric tables.
func (h *Handlers) Performance(ctx context.Context, em domsvc.Emitter, q models.RoutedQuery, ticker, company string) error {
	return h.run(ctx, em, models.ModulePerformance,
		"<strong>🎯 Intent Detected</strong><br>I've identified your query as a Performance Analysis request. Fetching financial metrics...",
		failure{
			prefix: "Failed to fetch performance data.",
			tip:    `Try queries like "How is Tesla's performance?" or "Rivian metrics"`,
		},
		func() (models.ModuleResult, error) {
			v, err := h.collectPerformance(ctx, em, q, ticker, company)
			if err != nil {
				return models.ModuleResult{}, err
			}
			return models.NewResult(models.ModulePerformance, renderPerformance(v), models.ModuleData), nil
		})
}

func (h *Handlers) collectPerformance(ctx context.Context, em domsvc.Emitter, q models.RoutedQuery, ticker, company string) (*performanceView, error) {
	v := &performanceView{ticker: strings.ToUpper(ticker), name: company}

	if v.ticker == "" {
		input := slots.ExtractTicker(q.Text)
		if input == "" {
			input = slots.ExtractCompanyPhrase(q.Text)
		}
		if input == "" {
			return nil, errors.New("could not identify a company in the question")
		}
		resolved, err := h.metrics.Resolve(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("resolve %q: %w", input, err)
		}
		if resolved.Error != "" || resolved.Ticker == "" {
			return nil, fmt.Errorf("could not resolve %q: %s", input, resolved.Error)
		}
		v.ticker, v.name = strings.ToUpper(resolved.Ticker), resolved.Name
	}
	if v.name == "" {
		v.name = v.ticker
	}
	_ = em.Emit(ctx, models.NewPlaceholder(models.ModulePerformance, fmt.Sprintf(
		"<strong>✅ Company Identified</strong><br>Company: <strong>%s</strong> (%s)<br>Finding peer companies...", esc(v.name), esc(v.ticker))))

	if peers, err := h.metrics.FindPeers(ctx, v.ticker); err != nil {
		h.log.Warn("find peers failed, continuing without peers", logger.String("ticker", v.ticker), logger.Error(err))
	} else {
		v.peers = selectPeers(peers.Peers, v.ticker)
	}
	if len(v.peers) > 0 {
		_ = em.Emit(ctx, models.NewPlaceholder(models.ModulePerformance,
			"<strong>🔍 Peer Companies Found</strong><br>Comparing with: "+peerLabels(v.peers)))
	}

	tickers := append([]string{v.ticker}, lo.Map(v.peers, func(p models.PeerCompany, _ int) string { return p.Ticker })...)
	table, err := h.metrics.GetMetrics(ctx, tickers)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch metrics: %w", err)
	}
	primary, ok := table[v.ticker]
	if !ok || primary.Error != "" {
		return nil, fmt.Errorf("no data available for %s", v.ticker)
	}
	quarters := primary.PeriodsDesc(metricRevenue)
	if len(quarters) == 0 {
		return nil, fmt.Errorf("no quarterly data available for %s", v.ticker)
	}
	v.table, v.primary = table, primary
	v.latest = quarters[0]
	v.quarters = quarters[:min(seriesQuarters, len(quarters))]

	conclusion, err := h.metrics.Conclusion(ctx, buildConclusionRequest(v))
	switch {
	case err != nil:
		h.log.Warn("peer conclusion failed", logger.String("ticker", v.ticker), logger.Error(err))
	case conclusion.ConclusionEn != "" || conclusion.ConclusionZh != "":
		if q.Chinese() && conclusion.ConclusionZh != "" {
			conclusion.ConclusionEn = conclusion.ConclusionZh
		}
		if conclusion.Period == "" {
			conclusion.Period = v.latest
		}
		v.summary = &conclusion
	}
	return v, nil
}

// selectPeers keeps the first three distinct peers other than the primary ticker.
func selectPeers(peers []models.PeerCompany, primary string) []models.PeerCompany {
	peers = lo.UniqBy(lo.Filter(peers, func(p models.PeerCompany, _ int) bool {
		return p.Ticker != "" && !strings.EqualFold(p.Ticker, primary)
	}), func(p models.PeerCompany) string { return strings.ToUpper(p.Ticker) })
	if len(peers) > maxPeers {
		peers = peers[:maxPeers]
	}
	return lo.Map(peers, func(p models.PeerCompany, _ int) models.PeerCompany {
		p.Ticker = strings.ToUpper(p.Ticker)
		if p.Name == "" {
			p.Name = p.Ticker
		}
		return p
	})
}

func peerLabels(peers []models.PeerCompany) string {
	return strings.Join(lo.Map(peers, func(p models.PeerCompany, _ int) string {
		return fmt.Sprintf("%s (%s)", esc(p.Ticker), esc(p.Name))
	}), ", ")
}

func (v *performanceView) peerMetrics(ticker string) (models.TickerMetrics, bool) {
	m, ok := v.table[ticker]
	return m, ok && m.Error == ""
}

func buildConclusionRequest(v *performanceView) models.ConclusionRequest {
	lq := models.LatestQuarterBlock{Period: v.latest}
	ts := models.TimeSeriesBlock{Ticker: v.ticker, Quarters: v.quarters}
	for _, metric := range conclusionMetrics {
		period := periodFor(metric, v.latest)
		row := map[string]interface{}{"metric": metric, v.ticker: v.primary.Value(metric, period).Ptr()}
		for _, p := range v.peers {
			if pm, ok := v.peerMetrics(p.Ticker); ok {
				row[p.Ticker] = pm.Value(metric, period).Ptr()
			}
		}
		lq.Rows = append(lq.Rows, row)

		values := lo.Map(v.quarters, func(q string, _ int) *float64 { return v.primary.Value(metric, q).Ptr() })
		ts.Rows = append(ts.Rows, models.SeriesRow{Metric: metric, Values: values})
	}
	return models.ConclusionRequest{Primary: v.ticker, LatestQuarter: lq, TimeSeries: ts}
}

func providerLabel(llm string) string {
	switch strings.ToLower(llm) {
	case "deepseek":
		return "DeepSeek"
	case "perplexity":
		return "Perplexity"
	default:
		return "Local Analysis"
	}
}

func renderPerformance(v *performanceView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<strong>📊 Financial Performance - %s (%s)</strong><br><br>", esc(v.name), esc(v.ticker))
	if len(v.peers) > 0 {
		b.WriteString("<strong>📈 Peer Comparison Enabled</strong><br>Comparing with: " + peerLabels(v.peers) + "<br><br>")
	}
	if v.summary != nil {
		b.WriteString("<strong>🎯 Primary Company Analysis</strong><br>")
		b.WriteString(analysis.ToHTML(v.summary.ConclusionEn))
		fmt.Fprintf(&b, "<em>Generated by: %s • Period: %s</em><br><br>", providerLabel(v.summary.LLM), esc(v.summary.Period))
	}

	if len(v.peers) > 0 {
		headers := []string{"Metric", esc(v.ticker) + "<br>" + esc(v.latest)}
		for _, p := range v.peers {
			headers = append(headers, esc(p.Ticker)+"<br>"+esc(v.latest))
		}
		t := newTable(headers...)
		all := append([]string{v.ticker}, lo.Map(v.peers, func(p models.PeerCompany, _ int) string { return p.Ticker })...)
		cells := func(f func(m models.TickerMetrics) string) []string {
			return lo.Map(all, func(tk string, _ int) string {
				m, ok := v.peerMetrics(tk)
				if !ok {
					return "N/A"
				}
				return f(m)
			})
		}
		for _, metric := range comparisonMetrics {
			period := periodFor(metric, v.latest)
			t.row(append([]string{metric}, cells(func(m models.TickerMetrics) string {
				return FormatMetric(m.Value(metric, period), metric)
			})...)...)
		}
		t.row(append([]string{"Price/Sales ratio"}, cells(func(m models.TickerMetrics) string {
			return Ratio(m.Value(metricMarketCap, marketCapPeriod), m.Value(metricRevenue, v.latest))
		})...)...)
		t.row(append([]string{"P/E ratio"}, cells(func(m models.TickerMetrics) string {
			return Ratio(m.Value(metricMarketCap, marketCapPeriod), m.Value(metricNetIncome, v.latest))
		})...)...)
		b.WriteString("<strong>📊 Latest Quarter Metrics</strong><br>" + t.String() + "<br>")
	}

	series := newTable(append([]string{""}, lo.Map(v.quarters, func(q string, _ int) string { return esc(q) })...)...)
	for _, metric := range seriesMetrics {
		series.row(append([]string{metric}, lo.Map(v.quarters, func(q string, _ int) string {
			return FormatMetric(v.primary.Value(metric, q), metric)
		})...)...)
	}
	fmt.Fprintf(&b, "<strong>📈 %s - %d Quarter Time Series</strong><br>%s", esc(v.ticker), seriesQuarters, series.String())

	b.WriteString(quickInsights(v.primary, v.latest))
	return b.String()
}

func quickInsights(m models.TickerMetrics, latest string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<br><strong>💡 Quick Insights:</strong><br>• Latest Quarter (%s): ", esc(latest))
	if rev := m.Value(metricRevenue, latest); rev.Valid {
		fmt.Fprintf(&b, "Revenue of $%.2fB", rev.Value/1e9)
	}
	if gm := m.Value(metricGrossMargin, latest); gm.Valid {
		fmt.Fprintf(&b, ", Gross Margin of %.1f%%", gm.Value)
	}
	if ni := m.Value(metricNetIncome, latest); ni.Valid {
		status := "Profitable"
		if ni.Value < 0 {
			status = "Loss"
		}
		fmt.Fprintf(&b, "<br>• %s: Net Income of $%.0fM", status, ni.Value/1e6)
	}
	return b.String()
}
