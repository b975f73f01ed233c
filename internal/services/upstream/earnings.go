package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"FinChat/internal/domain/models"
)

// EarningsClient reads transcripts and generated earnings documents.
type EarningsClient struct {
	*HTTPServiceBase
	mock bool
}

func NewEarningsClient(base *HTTPServiceBase, mock bool) *EarningsClient {
	return &EarningsClient{HTTPServiceBase: base, mock: mock}
}

func (c *EarningsClient) LatestTranscript(ctx context.Context, ticker string) (models.LatestTranscript, error) {
	var out models.LatestTranscript
	err := c.GetJSON(ctx, "/api/earnings/latest-transcript/"+url.PathEscape(strings.ToUpper(ticker)), nil, &out)
	return out, err
}

func (c *EarningsClient) AIDoc(ctx context.Context, ticker string, year, quarter int, topic models.EarningsTopic, lang string) (models.AIDocResponse, error) {
	if c.mock {
		data, _ := json.Marshal(models.SummaryDoc{Sections: []models.DocSection{{Heading: "Mock Section", Bullets: []string{"Mock content"}}}})
		return models.AIDocResponse{Success: true, Data: data}, nil
	}
	q := url.Values{
		"ticker":  {strings.ToUpper(ticker)},
		"year":    {strconv.Itoa(year)},
		"quarter": {fmt.Sprintf("Q%d", quarter)},
		"docType": {string(topic)},
		"lang":    {lang},
	}
	var out models.AIDocResponse
	err := c.GetJSON(ctx, "/api/earnings/ai-doc", q, &out)
	return out, err
}

func (c *EarningsClient) Transcript(ctx context.Context, ticker string, year, quarter int) (models.Transcript, error) {
	if c.mock {
		return models.Transcript{
			Success:         true,
			Participants:    []models.Participant{},
			TranscriptSplit: []models.TranscriptSegment{{Speaker: "Operator", Role: "Operator", Text: "Mock transcript line 1"}},
		}, nil
	}
	q := url.Values{
		"ticker":  {strings.ToUpper(ticker)},
		"year":    {strconv.Itoa(year)},
		"quarter": {fmt.Sprintf("Q%d", quarter)},
	}
	var out models.Transcript
	err := c.GetJSON(ctx, "/api/ninjas/transcript", q, &out)
	return out, err
}
