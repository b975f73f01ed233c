package models

// Results of the LLM-backed analyzers.

type RedFlagReport struct {
	RedFlagCount int    `json:"redflag_count"`
	Severity     string `json:"severity"`
	Summary      string `json:"summary"`
}

type EarningsSummary struct {
	Summary   string   `json:"summary"`
	Issues    []string `json:"issues"`
	Sentiment string   `json:"sentiment"`
}

type StockRecommendation struct {
	Symbol    string `json:"symbol"`
	Name      string `json:"name"`
	Rationale string `json:"rationale"`
}

type GeneralAnswer struct {
	Answer    string   `json:"answer"`
	Citations []string `json:"citations"`
}

type ForceScore struct {
	Score    Number `json:"score"`
	Analysis string `json:"analysis"`
}

type ForcesView struct {
	Forces            map[string]ForceScore `json:"forces"`
	OverallAssessment string                `json:"overall_assessment"`
}

// ForceKeys is the display order of Porter's five forces.
var ForceKeys = []string{
	"competitive_rivalry",
	"threat_of_new_entrants",
	"threat_of_substitutes",
	"supplier_power",
	"buyer_power",
}

type CompetitiveReport struct {
	Company  string     `json:"company"`
	Industry string     `json:"industry"`
	En       ForcesView `json:"en"`
	Zh       ForcesView `json:"zh"`
}

type EarningsQuery struct {
	Ticker     string        `json:"ticker"`
	Topic      EarningsTopic `json:"topic"`
	Quarter    int           `json:"quarter"`
	Year       int           `json:"year"`
	ParseError string        `json:"parse_error,omitempty"`
}

// ValuationStatus buckets an upside percentage the way the valuation summary reports it.
func ValuationStatus(upside float64) string {
	switch {
	case upside < -5:
		return "Overvalued"
	case upside > 5:
		return "Undervalued"
	default:
		return "Fairly Valued"
	}
}

// Valuation analysis, as served by /api/valuation-analysis.

type ValuationModels struct {
	DCF      *DCFValuation      `json:"dcf"`
	Relative *RelativeValuation `json:"relative"`
}

type AIRecommendation struct {
	ChosenMethod     string `json:"chosen_method"`
	ChosenPrice      Number `json:"chosen_price"`
	UpsidePercentage Number `json:"upside_percentage"`
	Recommendation   string `json:"recommendation,omitempty"`
	Confidence       Number `json:"confidence"`
	Rationale        string `json:"rationale,omitempty"`
}

type ValuationAnalysis struct {
	Success          bool                   `json:"success"`
	Ticker           string                 `json:"ticker"`
	CurrentPrice     Number                 `json:"current_price"`
	Status           string                 `json:"status,omitempty"`
	Valuations       *ValuationModels       `json:"valuations"`
	AIRecommendation *AIRecommendation      `json:"ai_recommendation,omitempty"`
	Data             *ValuationEngineResult `json:"data"`
	Details          string                 `json:"details,omitempty"`
	Error            string                 `json:"error,omitempty"`
}
