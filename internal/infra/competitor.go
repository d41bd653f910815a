package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// CompetitorQuoteRequest asks the external feed for average shelf prices
// of the given SKU codes.
type CompetitorQuoteRequest struct {
	Codes []string `json:"codes"`
}

// CompetitorQuote is one feed row: the average competitor price observed
// for a SKU code. Codes the feed does not track are simply absent.
type CompetitorQuote struct {
	Code         string          `json:"code"`
	AveragePrice decimal.Decimal `json:"average_price"`
	SampleSize   int             `json:"sample_size"`
}

type competitorQuoteResponse struct {
	Quotes []CompetitorQuote `json:"quotes"`
}

// CompetitorFeedClient talks to the external competitor price aggregation
// service. Feed outages must never take the engine down, so callers wrap
// every request in the circuit breaker.
type CompetitorFeedClient struct {
	feedURL    string
	httpClient *http.Client
}

func NewCompetitorFeedClient(feedURL string) *CompetitorFeedClient {
	return &CompetitorFeedClient{
		feedURL:    feedURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// FetchQuotes sends a POST to the feed and returns the quotes it knows about.
func (c *CompetitorFeedClient) FetchQuotes(ctx context.Context, codes []string) ([]CompetitorQuote, error) {
	body, err := json.Marshal(CompetitorQuoteRequest{Codes: codes})
	if err != nil {
		return nil, fmt.Errorf("competitor feed: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.feedURL+"/quotes", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("competitor feed: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("competitor feed: unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("competitor feed: returned %d", resp.StatusCode)
	}

	var result competitorQuoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("competitor feed: decode response: %w", err)
	}
	return result.Quotes, nil
}
