package upstream

import (
	"context"
	"strings"
	"time"

	"FinChat/internal/domain/models"
)

// ValuationClient calls the DCF + relative valuation engine.
type ValuationClient struct {
	*HTTPServiceBase
	timeout time.Duration
	mock    bool
}

func NewValuationClient(base *HTTPServiceBase, timeout time.Duration, mock bool) *ValuationClient {
	return &ValuationClient{HTTPServiceBase: base, timeout: timeout, mock: mock}
}

// FullValuation is bounded by the valuation timeout regardless of the caller's deadline.
func (c *ValuationClient) FullValuation(ctx context.Context, ticker string) (models.ValuationEngineResult, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if c.mock {
		return mockValuation(ticker), nil
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var out models.ValuationEngineResult
	err := c.PostJSON(ctx, "/api/full-valuation", map[string]string{"ticker": ticker}, &out)
	if err == nil && out.Ticker == "" {
		out.Ticker = ticker
	}
	return out, err
}

func mockValuation(ticker string) models.ValuationEngineResult {
	return models.ValuationEngineResult{
		Ticker:           ticker,
		CurrentPrice:     models.Num(100),
		TargetPrice:      models.Num(120),
		UpsidePercentage: models.Num(20),
		Recommendation:   "buy",
		Confidence:       models.Num(0.8),
		Method:           "DCF",
		Rationale:        "Mock valuation",
		Details: &models.ValuationDetails{
			DCF:      &models.DCFValuation{IntrinsicValue: models.Num(120)},
			Relative: &models.RelativeValuation{MedianEstimate: models.Num(110)},
		},
	}
}
