package upstream

import (
	"context"
	"encoding/json"

	"FinChat/internal/domain/models"
)

// NewsClient talks to the smart-news service.
type NewsClient struct {
	*HTTPServiceBase
}

func NewNewsClient(base *HTTPServiceBase) *NewsClient {
	return &NewsClient{HTTPServiceBase: base}
}

type queryBody struct {
	Query    string `json:"query"`
	Language string `json:"language"`
}

func (c *NewsClient) SearchNews(ctx context.Context, query, language string) (models.NewsSearch, error) {
	var out models.NewsSearch
	err := c.PostJSON(ctx, "/api/search-news", queryBody{query, language}, &out)
	return out, err
}

func (c *NewsClient) SearchNewsV2(ctx context.Context, query, language string) (models.NewsSearch, error) {
	var out models.NewsSearch
	err := c.PostJSON(ctx, "/api/search-news-v2", queryBody{query, language}, &out)
	return out, err
}

func (c *NewsClient) NewsBrief(ctx context.Context, ticker, query, language string) (models.NewsBriefResponse, error) {
	body := struct {
		Ticker   *string `json:"ticker"`
		Query    string  `json:"query"`
		Language string  `json:"language"`
	}{Query: query, Language: language}
	if ticker != "" {
		body.Ticker = &ticker
	}
	var out models.NewsBriefResponse
	err := c.PostJSON(ctx, "/api/newsbrief", body, &out)
	return out, err
}

func (c *NewsClient) CreateSmartBrief(ctx context.Context, req models.SmartBriefRequest) (models.SmartBriefResponse, error) {
	var out models.SmartBriefResponse
	err := c.PostJSON(ctx, "/api/create-smart-brief", req, &out)
	return out, err
}

func (c *NewsClient) DetectRumor(ctx context.Context, query, language string) (models.RumorReport, error) {
	var out models.RumorReport
	err := c.PostJSON(ctx, "/api/detect-rumor", queryBody{query, language}, &out)
	return out, err
}

func (c *NewsClient) RAGSearch(ctx context.Context, query, language string) (models.RAGResult, error) {
	var out models.RAGResult
	err := c.PostJSON(ctx, "/api/rag-search", queryBody{query, language}, &out)
	return out, err
}

// TwitterSearch returns the tweet list ("results", then "tweets", else the whole body).
func (c *NewsClient) TwitterSearch(ctx context.Context, query string, count int) (json.RawMessage, error) {
	body := struct {
		Query string `json:"query"`
		Count int    `json:"count"`
	}{query, count}

	var raw []byte
	if err := c.PostJSON(ctx, "/api/twitter-search", body, &raw); err != nil {
		return nil, err
	}

	var wrapped struct {
		Results json.RawMessage `json:"results"`
		Tweets  json.RawMessage `json:"tweets"`
	}
	if json.Unmarshal(raw, &wrapped) == nil {
		switch {
		case len(wrapped.Results) > 0 && string(wrapped.Results) != "null":
			return wrapped.Results, nil
		case len(wrapped.Tweets) > 0 && string(wrapped.Tweets) != "null":
			return wrapped.Tweets, nil
		}
	}
	return json.RawMessage(raw), nil
}

func (c *NewsClient) TwitterConsolidate(ctx context.Context, results json.RawMessage, query string) (models.TwitterDigest, error) {
	body := struct {
		TwitterResults json.RawMessage `json:"twitterResults"`
		Query          string          `json:"query"`
	}{results, query}
	var out models.TwitterDigest
	err := c.PostJSON(ctx, "/api/twitter-consolidate", body, &out)
	return out, err
}
