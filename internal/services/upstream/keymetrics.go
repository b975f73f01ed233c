package upstream

import (
	"context"

	"FinChat/internal/domain/models"
)

// KeyMetricsClient talks to the key-metrics resolver, peer finder and conclusion generator.
type KeyMetricsClient struct {
	*HTTPServiceBase
}

func NewKeyMetricsClient(base *HTTPServiceBase) *KeyMetricsClient {
	return &KeyMetricsClient{HTTPServiceBase: base}
}

func (c *KeyMetricsClient) Resolve(ctx context.Context, input string) (models.ResolvedCompany, error) {
	var out models.ResolvedCompany
	err := c.PostJSON(ctx, "/api/resolve", map[string]string{"input": input}, &out)
	return out, err
}

func (c *KeyMetricsClient) FindPeers(ctx context.Context, ticker string) (models.PeerList, error) {
	var out models.PeerList
	err := c.PostJSON(ctx, "/api/find-peers", map[string]string{"ticker": ticker}, &out)
	return out, err
}

func (c *KeyMetricsClient) GetMetrics(ctx context.Context, tickers []string) (models.MetricsTable, error) {
	var out models.MetricsTable
	err := c.PostJSON(ctx, "/api/get-metrics", map[string][]string{"tickers": tickers}, &out)
	return out, err
}

func (c *KeyMetricsClient) Conclusion(ctx context.Context, req models.ConclusionRequest) (models.PeerConclusion, error) {
	var out models.PeerConclusion
	err := c.PostJSON(ctx, "/api/peer-key-metrics-conclusion", req, &out)
	return out, err
}
