package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/samber/lo"

	"FinChat/internal/domain/models"
	domsvc "FinChat/internal/domain/service"
	"FinChat/pkg/util"
)

var (
	briefTickerRe   = regexp.MustCompile(`\b([A-Z]{1,5})\b`)
	tweetTickerRe   = regexp.MustCompile(`\$[A-Z]+`)
	tweetPercentRe  = regexp.MustCompile(`[+-]?\d+(?:\.\d+)?%`)
	errEmptyPayload = errors.New("empty response")
)

// News runs the news search and renders a cleaned article digest.
func (h *Handlers) News(ctx context.Context, em domsvc.Emitter, q models.RoutedQuery) error {
	return h.run(ctx, em, models.ModuleNews,
		"<strong>🎯 Intent Detected</strong><br>I've identified your query as an Intelligent Stock News Analyst request. Analyzing the latest news for you...",
		failure{
			prefix: "Failed to fetch news analysis.",
			tip:    `Try queries like "Latest news on Apple" or "What's happening with NVDA?"`,
		},
		func() (models.ModuleResult, error) {
			res, err := h.news.SearchNewsV2(ctx, q.Text, models.LangEnglish)
			if err != nil {
				return models.ModuleResult{}, err
			}
			if res.Error != "" {
				return models.ModuleResult{}, fmt.Errorf("news search: %s", res.Error)
			}
			if strings.TrimSpace(res.NewsContent) == "" {
				return models.ModuleResult{}, errEmptyPayload
			}

			var b strings.Builder
			b.WriteString("<strong>📰 Latest News Analysis</strong><br><br>")
			b.WriteString("<div>" + CleanNewsContent(res.NewsContent) + "</div>")
			b.WriteString("<br><em>💡 Want a comprehensive analysis with actionable insights? Ask for a Smart Brief.</em>")
			return models.NewResult(models.ModuleNews, b.String(), models.ModuleNews), nil
		})
}

// SmartBrief condenses news content the user already has into actionable insights.
func (h *Handlers) SmartBrief(ctx context.Context, em domsvc.Emitter, query, newsContent string) error {
	return h.run(ctx, em, models.ModuleNews, "",
		failure{prefix: "Failed to generate smart brief."},
		func() (models.ModuleResult, error) {
			req := models.SmartBriefRequest{
				Query:             query,
				Language:          models.LangEnglish,
				NewsContent:       newsContent,
				IncludeStockPrice: true,
			}
			if m := briefTickerRe.FindStringSubmatch(query); m != nil {
				req.TickerSymbol = m[1]
			}
			res, err := h.news.CreateSmartBrief(ctx, req)
			if err != nil {
				return models.ModuleResult{}, err
			}
			if res.Error != "" {
				return models.ModuleResult{}, fmt.Errorf("smart brief: %s", res.Error)
			}

			var b strings.Builder
			b.WriteString("<strong>📊 Smart Brief Generated</strong><br><br>")
			if brief := res.SmartBrief; brief != nil {
				if brief.Ticker != "" && brief.CurrentPrice.Valid {
					fmt.Fprintf(&b, "<strong>💰 %s</strong>: $%g %s<br><br>", esc(brief.Ticker), brief.CurrentPrice.Value, util.FirstNonEmpty(brief.Currency, "USD"))
				}
				writeBriefSections(&b, brief)
				if brief.WordCount > 0 {
					fmt.Fprintf(&b, "<br><em>📝 %d words</em>", brief.WordCount)
				}
			}
			return models.NewResult(models.ModuleNews, b.String(), models.ModuleNews, models.ModuleAnalysis), nil
		})
}

func writeBriefSections(b *strings.Builder, brief *models.SmartBrief) {
	if brief.ActionableInsightsSection != "" {
		b.WriteString("<strong>💡 Actionable Insights</strong><br>" + nl2br(brief.ActionableInsightsSection) + "<br><br>")
	}
	if brief.AnalysisSection != "" {
		b.WriteString("<strong>📈 Analysis</strong><br>" + nl2br(brief.AnalysisSection) + "<br><br>")
	}
	if brief.NewsSection != "" {
		b.WriteString("<details><summary>📰 News</summary>" + nl2br(brief.NewsSection) + "</details>")
	}
}

// NewsBrief answers an event question about one company with a smart brief.
func (h *Handlers) NewsBrief(ctx context.Context, em domsvc.Emitter, q models.RoutedQuery, ticker, company string) error {
	return h.run(ctx, em, models.ModuleNewsBrief,
		"<strong>🎯 Event Analysis</strong><br>Analyzing the specific event or data you asked about...<br><br><em>⏱️ This may take a moment as I search for detailed information</em>",
		failure{
			prefix: "Failed to analyze the event.",
			tip:    `Try being more specific, like "Why did Intel stock jump today?" or "How many Tesla deliveries in Q3?"`,
		},
		func() (models.ModuleResult, error) {
			res, err := h.news.NewsBrief(ctx, ticker, q.Text, models.LangEnglish)
			if err != nil {
				return models.ModuleResult{}, err
			}

			var b strings.Builder
			fmt.Fprintf(&b, "<strong>📊 Smart News Brief</strong> <em>%s</em><br>", h.now().Format("Jan 2"))
			if ticker != "" {
				label := ticker
				if company != "" {
					label = fmt.Sprintf("%s (%s)", company, ticker)
				}
				b.WriteString("<strong>" + esc(label) + "</strong>")
				if res.CurrentPrice.Valid {
					fmt.Fprintf(&b, " $%g", res.CurrentPrice.Value)
				}
				b.WriteString("<br>")
			}
			b.WriteString("<em>Query: " + esc(q.Text) + "</em><br><br>")

			switch {
			case res.NewsBrief.SmartBrief != nil:
				brief := res.NewsBrief.SmartBrief
				writeBriefSections(&b, brief)
				if brief.WordCount > 0 {
					fmt.Fprintf(&b, "<br><em>📝 Word count: %d</em>", brief.WordCount)
				}
			case res.Error != "":
				return models.ModuleResult{}, fmt.Errorf("news brief: %s", res.Error)
			default:
				return models.ModuleResult{}, errEmptyPayload
			}
			return models.NewResult(models.ModuleNewsBrief, b.String(), models.ModuleNews), nil
		})
}

// Rumor runs the rumor detector and renders its verification report.
func (h *Handlers) Rumor(ctx context.Context, em domsvc.Emitter, q models.RoutedQuery) error {
	return h.run(ctx, em, models.ModuleRumor,
		"<strong>🔍 Rumor Verification</strong><br>Checking the credibility of this claim across multiple sources...<br><br><em>⏱️ Cross-referencing with authoritative sources...</em>",
		failure{
			prefix: "Failed to verify the rumor.",
			tip:    `Try rephrasing like "Rumor check: Is Qualcomm acquiring Intel?" or "Is it true that Apple is buying Disney?"`,
		},
		func() (models.ModuleResult, error) {
			res, err := h.news.DetectRumor(ctx, q.Text, models.LangEnglish)
			if err != nil {
				return models.ModuleResult{}, err
			}
			content := "<strong>🔎 Rumor Verification Report</strong><br><br>"
			if a := res.Analysis.FullAnalysis; a != "" {
				content += "<div>" + nl2br(a) + "</div>"
			}
			return models.NewResult(models.ModuleRumor, content, models.ModuleNews), nil
		})
}

// Twitter searches X for the full question and renders the consolidated insights.
func (h *Handlers) Twitter(ctx context.Context, em domsvc.Emitter, q models.RoutedQuery, ticker string) error {
	return h.run(ctx, em, models.ModuleTwitter,
		"<strong>🐦 Search on X Results</strong><br>Searching Twitter/X for relevant discussions...<br><br><em>⏱️ Analyzing social sentiment and discussions</em>",
		failure{
			prefix: "Failed to fetch Twitter/X discussions.",
			tip:    `Try searching for specific topics or tickers like "TSLA robotaxi" or "Apple AI strategy"`,
		},
		func() (models.ModuleResult, error) {
			tweets, err := h.news.TwitterSearch(ctx, q.Text, 10)
			if err != nil {
				return models.ModuleResult{}, fmt.Errorf("twitter search: %w", err)
			}
			digest, err := h.news.TwitterConsolidate(ctx, tweets, q.Text)
			if err != nil {
				return models.ModuleResult{}, fmt.Errorf("consolidation: %w", err)
			}

			var b strings.Builder
			b.WriteString("<strong>🐦 Twitter/X Analysis")
			if ticker != "" {
				b.WriteString(" - " + esc(ticker))
			}
			b.WriteString("</strong><br>")
			fmt.Fprintf(&b, "<strong>Query:</strong> \"%s\"<br>", esc(util.Ellipsize(q.Text, 100)))
			total := digest.TotalTweets
			if total == 0 {
				total = 10
			}
			fmt.Fprintf(&b, "<strong>Analyzed:</strong> %d tweets", total)
			if ticker != "" {
				b.WriteString(" for " + esc(ticker))
			}
			b.WriteString("<br><br><strong>✨ Key Market Insights</strong><br>")

			points := TweetBullets(digest.Summary)
			if len(points) == 0 {
				b.WriteString("<em>No insights available for this query.</em>")
			}
			for _, p := range points {
				b.WriteString("• " + highlightTweet(p) + "<br>")
			}
			return models.NewResult(models.ModuleTwitter, b.String(), models.ModuleNews), nil
		})
}

// TweetBullets splits a consolidated summary on "•" and drops empty points.
func TweetBullets(summary string) []string {
	return lo.FilterMap(strings.Split(summary, "•"), func(p string, _ int) (string, bool) {
		p = strings.TrimSpace(p)
		return p, p != ""
	})
}

func highlightTweet(p string) string {
	p = tweetTickerRe.ReplaceAllString(p, "<strong>$0</strong>")
	return tweetPercentRe.ReplaceAllString(p, "<strong>$0</strong>")
}
