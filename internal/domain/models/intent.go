package models

type Intent string

const (
	IntentFDA         Intent = "FDA"
	IntentTwitter     Intent = "TWITTER"
	IntentValuation   Intent = "VALUATION"
	IntentScreening   Intent = "SCREENING"
	IntentNews        Intent = "NEWS"
	IntentNewsBrief   Intent = "NEWSBRIEF"
	IntentRumor       Intent = "RUMOR"
	IntentEarnings    Intent = "EARNINGS"
	IntentPerformance Intent = "PERFORMANCE"
	IntentCompetitive Intent = "COMPETITIVE"
	IntentGeneral     Intent = "GENERAL"

	// IntentNewsDefault is the keyword router's "no signal" answer. It is never a classifier output.
	IntentNewsDefault Intent = "NEWS_DEFAULT"
)

// ClassifiableIntents is the classifier allow-list.
var ClassifiableIntents = []Intent{
	IntentFDA, IntentTwitter, IntentValuation, IntentScreening, IntentNews, IntentNewsBrief,
	IntentRumor, IntentEarnings, IntentPerformance, IntentCompetitive, IntentGeneral,
}

// ParseIntent matches s exactly against the allow-list. Anything else is GENERAL.
func ParseIntent(s string) (Intent, bool) {
	for _, in := range ClassifiableIntents {
		if string(in) == s {
			return in, true
		}
	}
	return IntentGeneral, false
}

const (
	IdentifierTicker  = "ticker"
	IdentifierCompany = "company_name"
	IdentifierDrug    = "drug_name"
)

// ClassificationResult is created per query and consumed once by the dispatcher.
type ClassificationResult struct {
	Intent         Intent  `json:"intent"`
	Confidence     float64 `json:"confidence"`
	Identifier     string  `json:"identifier,omitempty"`
	IdentifierType string  `json:"identifier_type,omitempty"`
	Ticker         string  `json:"ticker,omitempty"`
	CompanyName    string  `json:"company_name,omitempty"`
	Industry       string  `json:"industry,omitempty"`
	Rationale      string  `json:"rationale,omitempty"`
}

// Tier names the stage of the routing pipeline that claimed a query.
type Tier string

const (
	TierClassified        Tier = "classified"
	TierFallbackScreening Tier = "fallback_screening"
	TierFallbackKeyword   Tier = "fallback_keyword"
	TierHelp              Tier = "help"
)

// RoutedQuery is one user message on its way through the pipeline.
type RoutedQuery struct {
	SessionID string
	// Text is the English routing text; Original is what the user typed.
	Text           string
	Original       string
	SourceLanguage string
	Classification *ClassificationResult
}

// Chinese reports whether the user wrote in Chinese.
func (q RoutedQuery) Chinese() bool { return q.SourceLanguage == SourceChinese }
