package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"FinChat/internal/domain/models"
	domsvc "FinChat/internal/domain/service"
	"FinChat/pkg/logger"
	"FinChat/pkg/util"
)

const errValuationUnavailable = "Valuation service unavailable"

// ValuationUseCase wraps the valuation engine for both the chat handler and the HTTP route.
type ValuationUseCase struct {
	engine domsvc.ValuationEngine
	log    *logger.Logger
}

func NewValuationUseCase(engine domsvc.ValuationEngine, log *logger.Logger) *ValuationUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &ValuationUseCase{engine: engine, log: log}
}

// Analyze never fails; an engine error comes back as success=false with the cause in Details.
func (uc *ValuationUseCase) Analyze(ctx context.Context, ticker string) models.ValuationAnalysis {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	res, err := uc.engine.FullValuation(ctx, ticker)
	if err != nil {
		uc.log.Warn("valuation engine failed", logger.String("ticker", ticker), logger.Error(err))
		return models.ValuationAnalysis{Ticker: ticker, Error: errValuationUnavailable, Details: err.Error()}
	}

	out := models.ValuationAnalysis{
		Success:      true,
		Ticker:       strings.ToUpper(util.FirstNonEmpty(res.Ticker, ticker)),
		CurrentPrice: res.CurrentPrice,
		Status:       models.ValuationStatus(PreferredUpside(res.CurrentPrice, res.TargetPrice, res.UpsidePercentage)),
		AIRecommendation: &models.AIRecommendation{
			ChosenMethod:     res.Method,
			ChosenPrice:      res.TargetPrice,
			UpsidePercentage: res.UpsidePercentage,
			Recommendation:   res.Recommendation,
			Confidence:       res.Confidence,
			Rationale:        res.Rationale,
		},
		Data: &res,
	}
	if res.Details != nil {
		out.Valuations = &models.ValuationModels{DCF: res.Details.DCF, Relative: res.Details.Relative}
	}
	return out
}

// ConfidencePercent accepts either a 0..1 fraction or a percentage; missing means 70%.
func ConfidencePercent(c models.Number) float64 {
	v := c.Or(0.7)
	if v <= 1 {
		v *= 100
	}
	return v
}

func confidenceLabel(pct float64) string {
	switch {
	case pct >= 80:
		return "High"
	case pct >= 60:
		return "Medium"
	default:
		return "Low"
	}
}

// MethodLabel names the engine's chosen method for display.
func MethodLabel(method string) string {
	switch method {
	case "RelativeMedian":
		return "Relative Valuation (Median)"
	case "DCF":
		return "DCF Model"
	case "":
		return "Unknown"
	default:
		return method
	}
}

// Valuation runs the valuation engine for a known ticker and renders target, upside and model estimates.
func (h *Handlers) Valuation(ctx context.Context, em domsvc.Emitter, q models.RoutedQuery, ticker, company string) error {
	return h.run(ctx, em, models.ModuleValuation,
		fmt.Sprintf("<strong>🎯 Valuation Analysis</strong><br>Running comprehensive analysis for <strong>%s</strong>...<br><br><em>⏱️ This takes 10-15 seconds (DCF + Relative Valuation + AI)</em>",
			esc(util.FirstNonEmpty(company, ticker))),
		failure{
			prefix: "Failed to perform valuation analysis.",
			tip:    `Try "Is Tesla undervalued?" or "Should I buy AAPL?"`,
		},
		func() (models.ModuleResult, error) {
			a := h.valuation.Analyze(ctx, ticker)
			if !a.Success {
				return models.ModuleResult{}, errors.New(a.Error + ": " + a.Details)
			}
			return models.NewResult(models.ModuleValuation, RenderValuation(a), models.ModuleValuation), nil
		})
}

// RenderValuation renders the model estimates and the AI-selected target.
func RenderValuation(a models.ValuationAnalysis) string {
	res := a.Data
	current := res.CurrentPrice
	target := res.TargetPrice
	dcf, rel := res.DCFValue(), res.RelativeValue()
	upside := PreferredUpside(current, target, res.UpsidePercentage)
	confidence := ConfidencePercent(res.Confidence)

	var b strings.Builder
	fmt.Fprintf(&b, "<strong>💰 Valuation Summary for %s</strong><br><br>", esc(a.Ticker))
	b.WriteString("<strong>Model Estimates Comparison</strong><br>")
	t := newTable("Model", "Estimate", "vs Current")
	t.row("📊 DCF Model", PriceOrNA(dcf), modelUpside(current, dcf))
	t.row("📈 Relative Model", PriceOrNA(rel), modelUpside(current, rel))
	t.row("💰 Current Price", fmt.Sprintf("$%.2f", current.Or(0)), "Market Price")
	b.WriteString(t.String())

	b.WriteString("<br><strong>AI-Selected Estimate</strong><br>")
	fmt.Fprintf(&b, "Selected Method: <strong>%s</strong><br>", esc(MethodLabel(res.Method)))
	fmt.Fprintf(&b, "Target Price: <strong>$%.2f</strong> (%s %s)<br>", target.Or(0), signedPercent(upside), upsideWord(upside))
	fmt.Fprintf(&b, "Confidence: <strong>%.0f%%</strong> (%s)<br>", confidence, confidenceLabel(confidence))
	fmt.Fprintf(&b, "Status: <strong>%s</strong>", models.ValuationStatus(upside))
	if res.Rationale != "" {
		b.WriteString("<br><br><strong>AI Rationale</strong><br>" + esc(res.Rationale))
	}
	return b.String()
}

func modelUpside(current, estimate models.Number) string {
	v, ok := UpsidePercent(current, estimate)
	if !ok {
		return "N/A"
	}
	return signedPercent(v)
}

// valuationGuide is shown when a valuation question names no company.
const valuationGuide = "<strong>💡 I Need a Specific Stock</strong><br>" +
	"To run a valuation I need to know which company you mean.<br><br>" +
	"Try asking:<br>" +
	"• \"Is Tesla undervalued?\"<br>" +
	"• \"Should I buy AAPL?\"<br><br>" +
	"Looking for ideas instead? Ask \"What stock should I invest in Technology?\""
