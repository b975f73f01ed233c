package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"FinChat/internal/domain/models"
	domsvc "FinChat/internal/domain/service"
	"FinChat/pkg/logger"
)

// DemoStep names one stage of the scripted walkthrough.
type DemoStep int

const (
	StepDisclaimer DemoStep = iota
	StepIntroduction
	StepNews
	StepData
	StepEarnings
	StepValuation
	StepObservations
	StepSummary
	StepDone
)

var stepNames = [...]string{
	"disclaimer", "introduction", "news", "data", "earnings", "valuation", "observations", "summary", "done",
}

func (s DemoStep) String() string {
	if s < 0 || int(s) >= len(stepNames) {
		return "unknown"
	}
	return stepNames[s]
}

// SampleStock is a canned pick used by the walkthrough.
type SampleStock struct {
	Symbol         string
	Name           string
	Price          float64
	PE             float64
	DCFValue       float64
	Recommendation string
}

// Upside is the DCF upside in percent.
func (s SampleStock) Upside() float64 {
	if s.Price == 0 {
		return 0
	}
	return (s.DCFValue - s.Price) / s.Price * 100
}

const demoDefaultSet = "Default"

var sampleStocks = map[string][]SampleStock{
	"Technology": {
		{"AAPL", "Apple Inc.", 175.23, 28.5, 190.5, "UNDERVALUED"},
		{"MSFT", "Microsoft Corp.", 332.89, 32.1, 345.2, "UNDERVALUED"},
		{"GOOGL", "Alphabet Inc.", 134.56, 24.8, 145.3, "UNDERVALUED"},
	},
	"Healthcare": {
		{"JNJ", "Johnson & Johnson", 164.78, 22.3, 172.4, "UNDERVALUED"},
		{"PFE", "Pfizer Inc.", 42.15, 18.7, 48.6, "UNDERVALUED"},
		{"UNH", "UnitedHealth Group", 456.23, 26.4, 475.8, "UNDERVALUED"},
	},
	"Finance": {
		{"JPM", "JPMorgan Chase", 142.67, 12.8, 155.9, "UNDERVALUED"},
		{"BAC", "Bank of America", 34.89, 11.5, 38.2, "UNDERVALUED"},
		{"WFC", "Wells Fargo", 45.12, 13.2, 49.8, "UNDERVALUED"},
	},
	"Energy": {
		{"XOM", "Exxon Mobil", 89.34, 15.2, 95.7, "UNDERVALUED"},
		{"CVX", "Chevron Corp.", 142.56, 14.8, 148.9, "UNDERVALUED"},
		{"COP", "ConocoPhillips", 98.12, 12.9, 105.3, "UNDERVALUED"},
	},
	demoDefaultSet: {
		{"AAPL", "Apple Inc.", 175.23, 28.5, 190.5, "UNDERVALUED"},
		{"MSFT", "Microsoft Corp.", 332.89, 32.1, 345.2, "UNDERVALUED"},
		{"GOOGL", "Alphabet Inc.", 134.56, 24.8, 145.3, "UNDERVALUED"},
	},
}

// SampleStocks returns the canned picks for industry, or the default set.
func SampleStocks(industry string) []SampleStock {
	for name, stocks := range sampleStocks {
		if strings.EqualFold(name, strings.TrimSpace(industry)) {
			return stocks
		}
	}
	return sampleStocks[demoDefaultSet]
}

// jsNum prints a float the shortest way, e.g. 190.5 rather than 190.50.
func jsNum(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func stockLines(stocks []SampleStock, line func(SampleStock) string) string {
	return strings.Join(lo.Map(stocks, func(s SampleStock, _ int) string { return line(s) }), "<br>")
}

// Run renders the step's processing notice and its result. It has no side effects.
func (s DemoStep) Run(stocks []SampleStock) (processing, result models.ModuleResult) {
	p := func(c string) models.ModuleResult { return models.NewPlaceholder(models.ModuleDemo, c) }
	r := func(c string) models.ModuleResult { return models.NewResult(models.ModuleDemo, c) }

	switch s {
	case StepDisclaimer:
		return p(disclaimerHTML), r("<strong>🎯 Stocks Selected for Analysis</strong><br>" +
			stockLines(stocks, func(st SampleStock) string {
				return fmt.Sprintf("• <strong>%s</strong>: %s ($%s)", st.Symbol, esc(st.Name), jsNum(st.Price))
			}))
	case StepIntroduction:
		return p("<strong>🎯 Introduction & Key Factors</strong><br>Framing the key factors and decision criteria for this investment analysis..."),
			r("<strong>📑 Analysis Framework Set</strong><br>Key factors identified: Market position, financial health, growth prospects, and valuation metrics. Proceeding with comprehensive analysis.")
	case StepNews:
		return p("<strong>📰 Intelligent News Analytics</strong><br>Searching and analyzing the latest relevant stock news for selected companies..."),
			r("<strong>📈 News Analysis Complete</strong><br>Market sentiment analysis shows positive developments for selected stocks. Recent news indicates strong fundamentals.")
	case StepData:
		return p("<strong>📊 Data Analytics</strong><br>Processing financial datasets and market data for selected stocks..."),
			r("<strong>📈 Financial Data Analysis:</strong><br>" + stockLines(stocks, func(st SampleStock) string {
				return fmt.Sprintf("• <strong>%s</strong>: P/E %s, Strong fundamentals", st.Symbol, jsNum(st.PE))
			}))
	case StepEarnings:
		return p("<strong>📞 Earnings Call Analysis</strong><br>Analyzing latest earnings transcripts and management guidance..."),
			r("<strong>📊 Earnings Analysis Complete</strong><br>Management guidance indicates strong growth prospects. Earnings quality shows consistent performance across selected stocks.")
	case StepValuation:
		return p("<strong>💰 Valuation Model Selection</strong><br>Running comprehensive valuation models (DCF, P/E, PEG) to determine intrinsic values..."),
			r("<strong>📈 Valuation Analysis Results:</strong><br>" + stockLines(stocks, func(st SampleStock) string {
				return fmt.Sprintf("• <strong>%s</strong>: Current $%s → Fair Value $%s (%.1f%% upside)",
					st.Symbol, jsNum(st.Price), jsNum(st.DCFValue), st.Upside())
			}) + "<br><br><em>Analysis shows significant upside potential across recommended stocks.</em>")
	case StepObservations:
		return p("<strong>🔍 Observations & Key Insights</strong><br>Summarizing key insights from comprehensive analysis..."),
			r("<strong>💡 Key Observations:</strong><br>• Strong fundamental performance across selected stocks<br>• Positive market sentiment and news coverage<br>• Valuation models indicate significant upside potential<br>• Management guidance supports growth thesis")
	case StepSummary:
		return p("<strong>📋 Final Summary & Recommendations</strong><br>Compiling comprehensive investment recommendations..."),
			r("<strong>✅ Investment Recommendations:</strong><br>" + stockLines(stocks, func(st SampleStock) string {
				return fmt.Sprintf("• <strong>%s</strong>: %s - %.1f%% potential upside", st.Symbol, st.Recommendation, st.Upside())
			}) + "<br><br><strong>Conclusion:</strong> Based on comprehensive analysis, the selected stocks show strong investment potential with favorable risk-return profiles. Consider portfolio diversification and risk tolerance before investing.")
	}
	return models.ModuleResult{}, models.ModuleResult{}
}

// Demo drives the walkthrough one step at a time.
type Demo struct {
	delay time.Duration
	wait  func(ctx context.Context, d time.Duration) error
	log   *logger.Logger
}

func NewDemo(delay time.Duration, log *logger.Logger) *Demo {
	if log == nil {
		log = logger.Nop()
	}
	return &Demo{delay: delay, wait: sleepCtx, log: log}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run plays every step for industry and returns the step it stopped at: StepDone on completion,
// otherwise the step that was about to fire when ctx was cancelled or emitting failed.
func (d *Demo) Run(ctx context.Context, em domsvc.Emitter, industry string) (DemoStep, error) {
	stocks := SampleStocks(industry)
	for step := StepDisclaimer; step < StepDone; step++ {
		if err := ctx.Err(); err != nil {
			return step, err
		}
		processing, result := step.Run(stocks)
		if err := em.Emit(ctx, processing); err != nil {
			return step, err
		}
		if err := d.wait(ctx, d.delay); err != nil {
			return step, err
		}
		if err := em.Emit(ctx, result); err != nil {
			return step, err
		}
		if step+1 < StepDone {
			if err := d.wait(ctx, d.delay); err != nil {
				return step + 1, err
			}
		}
		d.log.Debug("demo step done", logger.String("step", step.String()))
	}
	return StepDone, nil
}
