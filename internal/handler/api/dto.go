package api

// Request bodies. Defaults are applied before validation.

type ChatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message" validate:"notblank,max=4000"`
}

type IndustryRequest struct {
	SessionID string `json:"session_id"`
	Industry  string `json:"industry" validate:"notblank"`
}

type DemoRequest struct {
	SessionID string `json:"session_id"`
	Industry  string `json:"industry" default:"Technology"`
}

type ResetRequest struct {
	SessionID string `json:"session_id" validate:"notblank"`
}

type MessagesRequest struct {
	SessionID string `param:"session" validate:"notblank"`
	Lang      string `query:"lang" default:"en" validate:"oneof=en zh-CN"`
}

type SmartBriefRequest struct {
	SessionID   string `json:"session_id"`
	Query       string `json:"query" validate:"notblank"`
	NewsContent string `json:"news_content" validate:"notblank"`
}

type ClassifyRequest struct {
	Query string `json:"query" validate:"notblank"`
}

type CompetitiveRequest struct {
	CompanyName       string `json:"companyName" validate:"notblank"`
	Industry          string `json:"industry" validate:"notblank"`
	AdditionalContext string `json:"additionalContext"`
}

type QueryRequest struct {
	Query string `json:"query" validate:"notblank"`
}

type ValuationRequest struct {
	Ticker string `json:"ticker" validate:"notblank,ticker"`
	Query  string `json:"query"`
}

type RedFlagsRequest struct {
	Ticker      string `json:"ticker" validate:"notblank"`
	NewsContent string `json:"newsContent" validate:"notblank"`
}

type SummarizeRequest struct {
	Ticker          string `json:"ticker" validate:"notblank"`
	EarningsContent string `json:"earningsContent"`
}

type RecommendRequest struct {
	Industry string `json:"industry" validate:"notblank"`
}

type TranslateRequest struct {
	Text           string `json:"text" validate:"notblank"`
	TargetLanguage string `json:"targetLanguage" default:"zh-CN"`
}

type EarningsQueryRequest struct {
	Ticker  string `json:"ticker" validate:"notblank,ticker"`
	Year    int    `json:"year" validate:"required,gte=2000,lte=2100"`
	Quarter int    `json:"quarter" validate:"required,gte=1,lte=4"`
	Topic   string `json:"topic" default:"summary" validate:"oneof=summary qa transcript"`
}

type FDASearchRequest struct {
	Company string `query:"company"`
}

type FDATickerRequest struct {
	Ticker string `param:"ticker" validate:"notblank,ticker"`
}

type QueryLogsRequest struct {
	Limit  int    `query:"limit" default:"100" validate:"gte=1,lte=1000"`
	Intent string `query:"intent"`
}
