package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"FinChat/internal/domain/models"
	domsvc "FinChat/internal/domain/service"
	"FinChat/internal/service/classifier"
	"FinChat/internal/service/keywords"
	"FinChat/internal/service/slots"
	"FinChat/pkg/logger"
)

// Industries offered when a screening request names none.
var Industries = []string{
	"Technology", "Healthcare", "FinTech", "Energy", "Consumer Goods", "Banking", "Real Estate",
	"Utilities", "Telecommunications", "Materials", "EV", "Robotaxi", "Solar", "BioTech", "Mega7",
	"Semi-conduct", "Airlines", "SaaS", "AI", "eVTOL", "Drone",
}

const (
	disclaimerHTML = "<strong>⚠️ Important Disclaimer</strong><br>This analysis is for informational purposes only and should not be considered as financial advice."

	industryPromptFallback   = "<strong>🔍 Industry Selection</strong><br>Please select an industry:"
	industryPromptClassified = "<strong>🔍 Industry Selection</strong><br>Please select an industry to focus our analysis:"

	helpHTML = "<strong>🤔 I'm not sure how to help</strong><br><br>I can assist with:<br>" +
		"• 📰 News: \"What's the latest news on Apple?\"<br>" +
		"• 💰 Valuation: \"Is Tesla undervalued?\"<br>" +
		"• 📊 Performance: \"How is Microsoft doing?\"<br>" +
		"• 📞 Earnings: \"Apple earnings summary\"<br>" +
		"• 🔍 Screening: \"What stock should I invest in Technology?\"<br><br>Please try rephrasing!"
)

// Classifier outcomes reported to the observer.
const (
	classifyOK          = "ok"
	classifyUnavailable = "unavailable"
	classifyError       = "error"
)

// Dispatcher is the single routing decision point: classify, then dispatch to exactly one
// handler, or fall through screening keywords, the keyword router and finally the help text.
type Dispatcher struct {
	classifier domsvc.Classifier
	router     *keywords.Router
	screening  *keywords.ScreeningDetector
	handlers   *Handlers
	queries    *QueryLogUseCase
	observer   domsvc.Observer
	hideNotice bool
	log        *logger.Logger
}

func NewDispatcher(
	c domsvc.Classifier,
	router *keywords.Router,
	screening *keywords.ScreeningDetector,
	handlers *Handlers,
	queries *QueryLogUseCase,
	observer domsvc.Observer,
	hideNotice bool,
	log *logger.Logger,
) *Dispatcher {
	if log == nil {
		log = logger.Nop()
	}
	return &Dispatcher{
		classifier: c,
		router:     router,
		screening:  screening,
		handlers:   handlers,
		queries:    queries,
		observer:   observer,
		hideNotice: hideNotice,
		log:        log,
	}
}

// Handle routes one user message. The returned error is only ever an emitter error.
func (d *Dispatcher) Handle(ctx context.Context, em domsvc.Emitter, q models.RoutedQuery) error {
	start := time.Now()
	res, err := d.classifier.Classify(ctx, q.Text)
	d.observeClassifier(err, time.Since(start))
	if err == nil {
		q.Classification = &res
		d.record(ctx, q, models.TierClassified, string(res.Intent), res.Ticker)
		return d.dispatch(ctx, em, q, res)
	}
	d.log.Warn("classification failed, using keyword fallback", logger.String("session", q.SessionID), logger.Error(err))
	return d.fallback(ctx, em, q)
}

func (d *Dispatcher) observeClassifier(err error, elapsed time.Duration) {
	if d.observer == nil {
		return
	}
	outcome := classifyOK
	switch {
	case errors.Is(err, classifier.ErrUnavailable):
		outcome = classifyUnavailable
	case err != nil:
		outcome = classifyError
	}
	d.observer.ObserveClassifier(outcome, elapsed)
}

func (d *Dispatcher) record(ctx context.Context, q models.RoutedQuery, tier models.Tier, intent, ticker string) {
	if d.observer != nil {
		d.observer.ObserveDispatch(string(tier), intent)
	}
	d.queries.Record(ctx, &models.QueryLog{
		SessionID: q.SessionID,
		Query:     q.Original,
		Intent:    intent,
		Tier:      tier,
		Ticker:    ticker,
		Language:  sourceLanguage(q),
	})
}

func sourceLanguage(q models.RoutedQuery) string {
	if q.SourceLanguage == "" {
		return models.SourceEnglish
	}
	return q.SourceLanguage
}

// ClassificationNotice describes what the classifier understood.
func ClassificationNotice(r models.ClassificationResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<strong>🤖 AI Understanding</strong><br>Intent: <strong>%s</strong>", r.Intent)
	if r.Ticker != "" {
		b.WriteString(" - " + esc(r.Ticker))
	}
	if r.Industry != "" {
		b.WriteString(" - " + esc(r.Industry))
	}
	b.WriteString("<br><em>" + esc(r.Rationale) + "</em>")
	return b.String()
}

// dispatch runs exactly one handler (or one guidance message) for a classified query.
// Nothing falls back from here, even when the handler fails.
func (d *Dispatcher) dispatch(ctx context.Context, em domsvc.Emitter, q models.RoutedQuery, r models.ClassificationResult) error {
	if !d.hideNotice {
		if err := em.Emit(ctx, models.NewResult(models.ModuleDispatcher, ClassificationNotice(r))); err != nil {
			return err
		}
	}

	h := d.handlers
	switch r.Intent {
	case models.IntentFDA:
		return h.FDA(ctx, em, q, r.Identifier, r.IdentifierType)
	case models.IntentTwitter:
		return h.Twitter(ctx, em, q, r.Ticker)
	case models.IntentScreening:
		if r.Industry == "" {
			return em.Emit(ctx, models.NewOptionsResult(models.ModuleScreening, industryPromptClassified, Industries))
		}
		return h.Screening(ctx, em, slots.NormalizeIndustry(r.Industry))
	case models.IntentPerformance:
		return h.Performance(ctx, em, q, r.Ticker, r.CompanyName)
	case models.IntentEarnings:
		return h.Earnings(ctx, em, q, r.Ticker)
	case models.IntentNews:
		return h.News(ctx, em, q)
	case models.IntentNewsBrief:
		return h.NewsBrief(ctx, em, q, r.Ticker, r.CompanyName)
	case models.IntentRumor:
		return h.Rumor(ctx, em, q)
	case models.IntentValuation:
		if r.Ticker == "" {
			return em.Emit(ctx, models.NewResult(models.ModuleValuation, valuationGuide))
		}
		return h.Valuation(ctx, em, q, r.Ticker, r.CompanyName)
	case models.IntentCompetitive:
		return h.Competitive(ctx, em, q, r.Ticker, r.CompanyName, r.Industry)
	default:
		return h.General(ctx, em, q)
	}
}

// fallback runs the three ordered tiers; the first one that claims the query ends the turn.
func (d *Dispatcher) fallback(ctx context.Context, em domsvc.Emitter, q models.RoutedQuery) error {
	if d.screening.Detect(q.Text) {
		industry := slots.ExtractIndustry(q.Text)
		d.record(ctx, q, models.TierFallbackScreening, string(models.IntentScreening), "")
		if err := em.Emit(ctx, models.NewResult(models.ModuleScreening, disclaimerHTML)); err != nil {
			return err
		}
		if industry == "" {
			return em.Emit(ctx, models.NewOptionsResult(models.ModuleScreening, industryPromptFallback, Industries))
		}
		return d.handlers.Screening(ctx, em, industry)
	}

	switch intent := d.router.Route(q.Text); intent {
	case models.IntentPerformance:
		d.record(ctx, q, models.TierFallbackKeyword, string(intent), "")
		return d.handlers.Performance(ctx, em, q, "", "")
	case models.IntentEarnings:
		d.record(ctx, q, models.TierFallbackKeyword, string(intent), "")
		return d.handlers.Earnings(ctx, em, q, "")
	case models.IntentNews:
		d.record(ctx, q, models.TierFallbackKeyword, string(intent), "")
		return d.handlers.News(ctx, em, q)
	}

	d.record(ctx, q, models.TierHelp, string(models.IntentNewsDefault), "")
	return em.Emit(ctx, models.NewResult(models.ModuleDispatcher, helpHTML))
}
