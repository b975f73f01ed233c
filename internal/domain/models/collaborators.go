package models

import (
	"encoding/json"
	"sort"
)

// News service.

type NewsSearch struct {
	NewsContent string `json:"newsContent"`
	Error       string `json:"error,omitempty"`
}

type SmartBrief struct {
	Ticker                    string `json:"ticker"`
	CurrentPrice              Number `json:"current_price"`
	Currency                  string `json:"currency"`
	ActionableInsightsSection string `json:"actionable_insights_section"`
	AnalysisSection           string `json:"analysis_section"`
	NewsSection               string `json:"news_section"`
	WordCount                 int    `json:"word_count"`
}

// SmartBriefRequest asks the brief generator to condense already fetched news.
type SmartBriefRequest struct {
	Query             string `json:"query"`
	Language          string `json:"language"`
	NewsContent       string `json:"newsContent"`
	IncludeStockPrice bool   `json:"includeStockPrice"`
	TickerSymbol      string `json:"tickerSymbol,omitempty"`
}

type SmartBriefResponse struct {
	SmartBrief *SmartBrief `json:"smartBrief"`
	Error      string      `json:"error,omitempty"`
}

type NewsBriefResponse struct {
	NewsBrief struct {
		SmartBrief *SmartBrief `json:"smartBrief"`
	} `json:"news_brief"`
	CurrentPrice Number `json:"current_price"`
	Error        string `json:"error,omitempty"`
}

type RumorReport struct {
	Analysis struct {
		FullAnalysis string `json:"fullAnalysis"`
	} `json:"_analysis"`
}

type RAGResult struct {
	Response     string `json:"response"`
	TotalSources int    `json:"totalSources"`
}

type TwitterDigest struct {
	Summary     string `json:"summary"`
	TotalTweets int    `json:"totalTweets"`
}

// Key metrics service.

type ResolvedCompany struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
	Error  string `json:"error,omitempty"`
}

type PeerCompany struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
}

type PeerList struct {
	Peers []PeerCompany `json:"peers"`
}

// TickerMetrics is metric name -> period -> value for one ticker.
type TickerMetrics struct {
	Error  string
	Series map[string]map[string]Number
}

func (t *TickerMetrics) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	t.Series = make(map[string]map[string]Number, len(raw))
	for k, v := range raw {
		if k == "error" {
			_ = json.Unmarshal(v, &t.Error)
			continue
		}
		var periods map[string]Number
		if err := json.Unmarshal(v, &periods); err != nil {
			continue
		}
		t.Series[k] = periods
	}
	return nil
}

// Value looks up one cell.
func (t TickerMetrics) Value(metric, period string) Number {
	return t.Series[metric][period]
}

// PeriodsDesc returns the periods reported for metric, newest first.
func (t TickerMetrics) PeriodsDesc(metric string) []string {
	periods := make([]string, 0, len(t.Series[metric]))
	for p := range t.Series[metric] {
		periods = append(periods, p)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(periods)))
	return periods
}

type MetricsTable map[string]TickerMetrics

type LatestQuarterBlock struct {
	Period string                   `json:"period"`
	Rows   []map[string]interface{} `json:"rows"`
}

type SeriesRow struct {
	Metric string     `json:"metric"`
	Values []*float64 `json:"values"`
}

type TimeSeriesBlock struct {
	Ticker   string      `json:"ticker"`
	Quarters []string    `json:"quarters"`
	Rows     []SeriesRow `json:"rows"`
}

type ConclusionRequest struct {
	Primary       string             `json:"primary"`
	LatestQuarter LatestQuarterBlock `json:"latest_quarter"`
	TimeSeries    TimeSeriesBlock    `json:"time_series"`
}

type PeerConclusion struct {
	ConclusionEn string `json:"conclusion_en"`
	ConclusionZh string `json:"conclusion_zh"`
	Period       string `json:"period"`
	LLM          string `json:"llm"`
}

// Valuation engine.

type ValuationEngineResult struct {
	Ticker           string            `json:"ticker"`
	CurrentPrice     Number            `json:"current_price"`
	TargetPrice      Number            `json:"target_price"`
	UpsidePercentage Number            `json:"upside_percentage"`
	Recommendation   string            `json:"recommendation,omitempty"`
	Confidence       Number            `json:"confidence"`
	Method           string            `json:"method"`
	Rationale        string            `json:"rationale,omitempty"`
	Details          *ValuationDetails `json:"details,omitempty"`
}

type ValuationDetails struct {
	DCF      *DCFValuation      `json:"dcf_valuation,omitempty"`
	Relative *RelativeValuation `json:"relative_valuation,omitempty"`
}

type DCFValuation struct {
	IntrinsicValue Number `json:"intrinsic_value"`
}

type RelativeValuation struct {
	MedianEstimate Number `json:"median_estimate"`
}

// DCFValue returns the DCF intrinsic value, if reported.
func (v ValuationEngineResult) DCFValue() Number {
	if v.Details == nil || v.Details.DCF == nil {
		return Number{}
	}
	return v.Details.DCF.IntrinsicValue
}

// RelativeValue returns the relative-valuation median, if reported.
func (v ValuationEngineResult) RelativeValue() Number {
	if v.Details == nil || v.Details.Relative == nil {
		return Number{}
	}
	return v.Details.Relative.MedianEstimate
}

// FDA calendar.

type FDADrug struct {
	Drug         string `json:"drug"`
	Indication   string `json:"indication"`
	Date         string `json:"date"`
	Event        string `json:"event"`
	Status       string `json:"status"`
	EventDetails string `json:"eventDetails"`
}

type FDACompany struct {
	Company      string    `json:"company"`
	Ticker       string    `json:"ticker"`
	Date         string    `json:"date,omitempty"`
	LatestUpdate string    `json:"latestUpdate,omitempty"`
	Drugs        []FDADrug `json:"drugs"`
}

// FDAResponse accepts data as either one company or a list of companies.
type FDAResponse struct {
	Success   bool
	Error     string
	Single    bool
	Companies []FDACompany
}

func (r *FDAResponse) UnmarshalJSON(b []byte) error {
	var raw struct {
		Success bool            `json:"success"`
		Error   string          `json:"error"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	r.Success, r.Error = raw.Success, raw.Error
	r.Companies, r.Single = nil, false
	if len(raw.Data) == 0 || string(raw.Data) == "null" {
		return nil
	}
	if raw.Data[0] == '[' {
		return json.Unmarshal(raw.Data, &r.Companies)
	}
	var one FDACompany
	if err := json.Unmarshal(raw.Data, &one); err != nil {
		return err
	}
	r.Single = true
	r.Companies = []FDACompany{one}
	return nil
}

func (r FDAResponse) MarshalJSON() ([]byte, error) {
	var data interface{} = r.Companies
	if r.Single && len(r.Companies) == 1 {
		data = r.Companies[0]
	}
	return json.Marshal(struct {
		Success bool        `json:"success"`
		Error   string      `json:"error,omitempty"`
		Data    interface{} `json:"data"`
	}{r.Success, r.Error, data})
}

// Earnings documents.

type EarningsTopic string

const (
	TopicSummary    EarningsTopic = "summary"
	TopicQA         EarningsTopic = "qa"
	TopicTranscript EarningsTopic = "transcript"
)

type LatestTranscript struct {
	Success bool   `json:"success"`
	Quarter Number `json:"quarter"`
	Year    Number `json:"year"`
}

type AIDocResponse struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type DocSection struct {
	Heading string   `json:"heading"`
	Bullets []string `json:"bullets"`
}

type SummaryDoc struct {
	Sections []DocSection `json:"sections"`
}

type QAItem struct {
	Index     int    `json:"index"`
	Question  string `json:"question"`
	Response  string `json:"response"`
	Sentiment Number `json:"sentiment"`
	Analyst   string `json:"analyst"`
	Firm      string `json:"firm"`
}

type QADoc struct {
	Conclusion string   `json:"conclusion"`
	Items      []QAItem `json:"items"`
}

type TranscriptMetadata struct {
	CompanyName           string `json:"companyName"`
	EarningsTimingDisplay string `json:"earningsTimingDisplay"`
	CallDate              string `json:"callDate"`
}

type Participant struct {
	Name    string `json:"name"`
	Role    string `json:"role"`
	Company string `json:"company"`
}

type TranscriptSegment struct {
	Speaker string `json:"speaker"`
	Role    string `json:"role"`
	Company string `json:"company"`
	Text    string `json:"text"`
}

type Transcript struct {
	Success         bool                `json:"success"`
	Error           string              `json:"error,omitempty"`
	Metadata        *TranscriptMetadata `json:"metadata,omitempty"`
	Participants    []Participant       `json:"participants"`
	TranscriptSplit []TranscriptSegment `json:"transcriptSplit"`
	Transcript      string              `json:"transcript,omitempty"`
}
