package upstream

import (
	"context"
	"net/url"
	"strings"
	"time"

	"FinChat/internal/domain/models"
	"FinChat/pkg/cache"
)

// FDAClient reads the FDA calendar. Successful answers are cached for ttl.
type FDAClient struct {
	*HTTPServiceBase
	cache cache.Service
	ttl   time.Duration
	mock  bool
}

func NewFDAClient(base *HTTPServiceBase, store cache.Service, ttl time.Duration, mock bool) *FDAClient {
	return &FDAClient{HTTPServiceBase: base, cache: store, ttl: ttl, mock: mock}
}

func (c *FDAClient) Company(ctx context.Context, ticker string) (models.FDAResponse, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if c.mock {
		return models.FDAResponse{Success: true, Single: true, Companies: []models.FDACompany{mockFDACompany(ticker)}}, nil
	}
	return c.get(ctx, cache.Key("fda", "company", ticker), "/api/companies/"+url.PathEscape(ticker), nil)
}

func (c *FDAClient) SearchCompanies(ctx context.Context, company string) (models.FDAResponse, error) {
	if c.mock {
		return models.FDAResponse{Success: true, Companies: []models.FDACompany{mockFDACompany("MOCK")}}, nil
	}
	q := url.Values{"company": {company}}
	return c.get(ctx, cache.Key("fda", "search", cache.HashKey(strings.ToLower(company))), "/api/companies/search", q)
}

func (c *FDAClient) ListCompanies(ctx context.Context) (models.FDAResponse, error) {
	if c.mock {
		return models.FDAResponse{Success: true, Companies: []models.FDACompany{mockFDACompany("MOCK")}}, nil
	}
	return c.get(ctx, cache.Key("fda", "list"), "/api/companies", nil)
}

func (c *FDAClient) get(ctx context.Context, key, path string, q url.Values) (models.FDAResponse, error) {
	return cache.GetOrLoad(ctx, c.cache, key, c.ttl, func(ctx context.Context) (models.FDAResponse, error) {
		var out models.FDAResponse
		err := c.GetJSON(ctx, path, q, &out)
		return out, err
	})
}

func mockFDACompany(ticker string) models.FDACompany {
	return models.FDACompany{
		Company: "Mock Pharma",
		Ticker:  ticker,
		Drugs:   []models.FDADrug{{Drug: "Mockimab", Indication: "Mock", Event: "PDUFA"}},
	}
}
