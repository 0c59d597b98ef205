package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/time/rate"
)

const pmMarketsURL = "https://clob.polymarket.com/markets"

// pmToken is one outcome token on a PM-style market, as returned by the
// markets listing endpoint.
type pmToken struct {
	TokenID string `json:"token_id"`
	Outcome string `json:"outcome"`
}

// pmMarket is one market as returned by the PM-style markets listing
// endpoint; only the fields used for discovery and pairing are kept.
type pmMarket struct {
	Question   string    `json:"question"`
	EndDateISO string    `json:"end_date_iso"`
	Active     bool      `json:"active"`
	Closed     bool      `json:"closed"`
	Tokens     []pmToken `json:"tokens"`
}

type pmMarketsPage struct {
	Data       []pmMarket `json:"data"`
	NextCursor string     `json:"next_cursor"`
}

// PMRESTClient fetches the open-market listing from a PM-style venue,
// paginating via next_cursor and rate-limiting outbound requests.
type PMRESTClient struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
}

// NewPMRESTClient creates a discovery REST client rate-limited to
// reqsPerSecond requests per second (burst 1).
func NewPMRESTClient(reqsPerSecond float64) *PMRESTClient {
	return &PMRESTClient{
		httpClient: &http.Client{},
		limiter:    rate.NewLimiter(rate.Limit(reqsPerSecond), 1),
		baseURL:    pmMarketsURL,
	}
}

// FetchOpenMarkets returns every active, non-closed market, following
// cursor-based pagination to completion.
func (c *PMRESTClient) FetchOpenMarkets(ctx context.Context) ([]pmMarket, error) {
	markets := make([]pmMarket, 0)
	cursor := ""

	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("pm discovery: rate limit: %w", err)
		}

		url := c.baseURL
		if cursor != "" {
			url = fmt.Sprintf("%s?next_cursor=%s", c.baseURL, cursor)
		}

		page, err := c.fetchPage(ctx, url)
		if err != nil {
			return nil, err
		}

		for _, m := range page.Data {
			if m.Active && !m.Closed {
				markets = append(markets, m)
			}
		}

		cursor = page.NextCursor
		if cursor == "" {
			return markets, nil
		}
	}
}

func (c *PMRESTClient) fetchPage(ctx context.Context, url string) (*pmMarketsPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("pm discovery: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pm discovery: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("pm discovery: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var page pmMarketsPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("pm discovery: decode: %w", err)
	}
	return &page, nil
}
