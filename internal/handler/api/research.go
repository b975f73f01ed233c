package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"FinChat/internal/domain/models"
	domsvc "FinChat/internal/domain/service"
	"FinChat/internal/service/analysis"
	"FinChat/internal/service/classifier"
	"FinChat/internal/service/llm"
	"FinChat/internal/usecase"
	xhttp "FinChat/pkg/http"
	xlogger "FinChat/pkg/logger"
)

// Translator is the part of the translation service the API exposes.
type Translator interface {
	Configured() bool
	TranslateStrict(ctx context.Context, text, target string) (string, error)
}

// Status feeds the heartbeat route.
type Status struct {
	OpenAIConfigured    bool
	ValuationConfigured bool
}

// ResearchEchoHandler exposes each analyzer and collaborator proxy on its own route.
type ResearchEchoHandler struct {
	logger     *xlogger.Logger
	classifier domsvc.Classifier
	analyst    domsvc.Analyst
	valuation  *usecase.ValuationUseCase
	fda        domsvc.FDACalendar
	earnings   *usecase.EarningsUseCase
	translator Translator
	queries    *usecase.QueryLogUseCase
	status     Status
	now        func() time.Time
}

func NewResearchEchoHandler(
	logger *xlogger.Logger,
	c domsvc.Classifier,
	analyst domsvc.Analyst,
	valuation *usecase.ValuationUseCase,
	fda domsvc.FDACalendar,
	earnings *usecase.EarningsUseCase,
	translator Translator,
	queries *usecase.QueryLogUseCase,
	status Status,
) *ResearchEchoHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &ResearchEchoHandler{
		logger:     logger,
		classifier: c,
		analyst:    analyst,
		valuation:  valuation,
		fda:        fda,
		earnings:   earnings,
		translator: translator,
		queries:    queries,
		status:     status,
		now:        time.Now,
	}
}

func (h *ResearchEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/test", h.Test)
	g.POST("/classify-intent", h.ClassifyIntent)
	g.POST("/competitive-analysis", h.Competitive)
	g.POST("/parse-earnings-query", h.ParseEarningsQuery)
	g.POST("/valuation-analysis", h.Valuation)
	g.POST("/analyze-redflags", h.RedFlags)
	g.GET("/fda/companies/:ticker", h.FDACompany)
	g.GET("/fda/companies", h.FDACompanies)
	g.POST("/summarize-earnings", h.SummarizeEarnings)
	g.POST("/recommend-stocks", h.RecommendStocks)
	g.POST("/general-qa", h.GeneralQA)
	g.POST("/earnings-fallback", h.EarningsFallback)
	g.POST("/translate", h.Translate)
	g.POST("/earnings/query", h.EarningsQuery)
	g.GET("/query-logs", h.QueryLogs)
}

// llmError maps analyzer failures: a missing key is 503 with the provider message, anything else 502.
func llmError(err error, notConfigured, failed string) *xhttp.AppError {
	if errors.Is(err, llm.ErrNotConfigured) {
		return xhttp.ServiceUnavailableError(notConfigured).WithError(err)
	}
	return xhttp.BadGatewayError(failed).WithError(err)
}

func (h *ResearchEchoHandler) Test(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"message":                  "API is working!",
		"timestamp":                h.now().UTC().Format(time.RFC3339),
		"openai_configured":        h.status.OpenAIConfigured,
		"valuation_api_configured": h.status.ValuationConfigured,
	})
}

func (h *ResearchEchoHandler) ClassifyIntent(c echo.Context) error {
	req := &ClassifyRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.classifier.Classify(c.Request().Context(), req.Query)
	switch {
	case errors.Is(err, classifier.ErrUnavailable):
		return xhttp.AppErrorResponse(c, xhttp.ServiceUnavailableError("DeepSeek API key not configured"))
	case err != nil:
		h.logger.Error("classify intent error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.BadGatewayError("Failed to classify intent").WithError(err))
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *ResearchEchoHandler) Competitive(c echo.Context) error {
	req := &CompetitiveRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	report, err := h.analyst.Competitive(c.Request().Context(), req.CompanyName, req.Industry, req.AdditionalContext)
	if err != nil {
		h.logger.Error("competitive analysis error", xlogger.String("company", req.CompanyName), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, llmError(err, "OpenAI API not configured", "Competitive analysis failed"))
	}
	return xhttp.SuccessResponse(c, report)
}

func (h *ResearchEchoHandler) ParseEarningsQuery(c echo.Context) error {
	req := &QueryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	return xhttp.SuccessResponse(c, h.analyst.ParseEarningsQuery(c.Request().Context(), req.Query))
}

func (h *ResearchEchoHandler) Valuation(c echo.Context) error {
	req := &ValuationRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	// Failures are reported in the body with success=false.
	return xhttp.SuccessResponse(c, h.valuation.Analyze(c.Request().Context(), req.Ticker))
}

func (h *ResearchEchoHandler) RedFlags(c echo.Context) error {
	req := &RedFlagsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	report, err := h.analyst.RedFlags(c.Request().Context(), req.Ticker, req.NewsContent)
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.InternalError("Red flag analysis failed").WithError(err))
	}
	return xhttp.SuccessResponse(c, report)
}

func (h *ResearchEchoHandler) FDACompany(c echo.Context) error {
	req := &FDATickerRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.fda.Company(c.Request().Context(), strings.ToUpper(req.Ticker))
	return h.fdaResponse(c, res, err)
}

func (h *ResearchEchoHandler) FDACompanies(c echo.Context) error {
	req := &FDASearchRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	ctx := c.Request().Context()
	var (
		res models.FDAResponse
		err error
	)
	if company := strings.TrimSpace(req.Company); company != "" {
		res, err = h.fda.SearchCompanies(ctx, company)
	} else {
		res, err = h.fda.ListCompanies(ctx)
	}
	return h.fdaResponse(c, res, err)
}

func (h *ResearchEchoHandler) fdaResponse(c echo.Context, res models.FDAResponse, err error) error {
	if err != nil {
		h.logger.Error("fda proxy error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError(err.Error()).WithError(err))
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *ResearchEchoHandler) SummarizeEarnings(c echo.Context) error {
	req := &SummarizeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	summary, err := h.analyst.SummarizeEarnings(c.Request().Context(), req.Ticker, req.EarningsContent)
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.InternalError("Summarization failed").WithError(err))
	}
	return xhttp.SuccessResponse(c, summary)
}

func (h *ResearchEchoHandler) RecommendStocks(c echo.Context) error {
	req := &RecommendRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	picks, err := h.analyst.RecommendStocks(c.Request().Context(), req.Industry)
	switch {
	case errors.Is(err, llm.ErrNotConfigured):
		return xhttp.AppErrorResponse(c, xhttp.ServiceUnavailableError("Perplexity API not configured"))
	case errors.Is(err, analysis.ErrNoRecommendations):
		return xhttp.AppErrorResponse(c, xhttp.InternalError("Failed to generate recommendations").WithError(err))
	case err != nil:
		h.logger.Error("recommend stocks error", xlogger.String("industry", req.Industry), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("Failed to generate recommendations").WithError(err))
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{"industry": req.Industry, "recommendations": picks})
}

func (h *ResearchEchoHandler) GeneralQA(c echo.Context) error {
	req := &QueryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	ans, err := h.analyst.GeneralQA(c.Request().Context(), req.Query)
	if err != nil {
		h.logger.Error("general qa error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, llmError(err, "Perplexity API not configured", "Failed to answer question"))
	}
	return xhttp.SuccessResponse(c, ans)
}

func (h *ResearchEchoHandler) EarningsFallback(c echo.Context) error {
	req := &QueryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	answer, err := h.analyst.EarningsFallback(c.Request().Context(), req.Query)
	if err != nil {
		h.logger.Error("earnings fallback error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, llmError(err, "DeepSeek API not configured", "Failed to analyze earnings"))
	}
	return xhttp.SuccessResponse(c, map[string]string{"answer": answer})
}

// TranslateResponse mirrors the fallback contract: a failed translation returns the original text.
type TranslateResponse struct {
	TranslatedText string `json:"translatedText"`
	OriginalText   string `json:"originalText"`
	TargetLanguage string `json:"targetLanguage"`
	Fallback       bool   `json:"fallback,omitempty"`
	Error          string `json:"error,omitempty"`
}

func (h *ResearchEchoHandler) Translate(c echo.Context) error {
	req := &TranslateRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.translator.Configured() {
		return xhttp.AppErrorResponse(c, xhttp.ServiceUnavailableError("DeepSeek API not configured"))
	}
	out := TranslateResponse{TranslatedText: req.Text, OriginalText: req.Text, TargetLanguage: req.TargetLanguage}
	translated, err := h.translator.TranslateStrict(c.Request().Context(), req.Text, req.TargetLanguage)
	if err != nil {
		h.logger.Warn("translate fell back", xlogger.String("target", req.TargetLanguage), xlogger.Error(err))
		out.Fallback = true
		out.Error = err.Error()
	} else {
		out.TranslatedText = translated
	}
	return xhttp.SuccessResponse(c, out)
}

// GeneratingResponse is returned while the document service is still producing a document.
type GeneratingResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (h *ResearchEchoHandler) EarningsQuery(c echo.Context) error {
	req := &EarningsQueryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	doc, err := h.earnings.Fetch(c.Request().Context(), usecase.EarningsRequest{
		Ticker:  req.Ticker,
		Year:    req.Year,
		Quarter: req.Quarter,
		Topic:   models.EarningsTopic(req.Topic),
		Lang:    models.SourceEnglish,
	})
	switch {
	case errors.Is(err, usecase.ErrEarningsNotFound):
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError(strings.TrimSuffix(err.Error(), ": "+usecase.ErrEarningsNotFound.Error())))
	case err != nil:
		h.logger.Error("earnings query error", xlogger.String("ticker", req.Ticker), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("Internal server error").WithError(err))
	}
	if doc.Generating != "" {
		return xhttp.MessageResponse(c, http.StatusAccepted, "generating", GeneratingResponse{
			Status:  "generating",
			Message: "Document is being generated, please try again in a few minutes.",
		})
	}
	return xhttp.SuccessResponse(c, doc)
}

func (h *ResearchEchoHandler) QueryLogs(c echo.Context) error {
	req := &QueryLogsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	logs, err := h.queries.Recent(c.Request().Context(), strings.ToUpper(strings.TrimSpace(req.Intent)), req.Limit)
	if err != nil {
		h.logger.Error("query logs error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("Failed to read query logs").WithError(err))
	}
	return xhttp.ListResponse(c, logs, int64(len(logs)))
}
