package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/time/rate"
)

const kalshiMarketsURL = "https://api.elections.kalshi.com/trade-api/v2/markets?status=open&limit=1000"

// kalshiMarket is one market as returned by the Kalshi-style markets
// listing endpoint; only the fields used for discovery and pairing are
// kept.
type kalshiMarket struct {
	Ticker         string `json:"ticker"`
	Title          string `json:"title"`
	ExpirationTime string `json:"expiration_time"`
}

type kalshiMarketsPage struct {
	Markets []kalshiMarket `json:"markets"`
	Cursor  string         `json:"cursor"`
}

// KalshiRESTClient fetches the open-market listing from a Kalshi-style
// venue, paginating via cursor and rate-limiting outbound requests.
type KalshiRESTClient struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
}

// NewKalshiRESTClient creates a discovery REST client rate-limited to
// reqsPerSecond requests per second (burst 1).
func NewKalshiRESTClient(reqsPerSecond float64) *KalshiRESTClient {
	return &KalshiRESTClient{
		httpClient: &http.Client{},
		limiter:    rate.NewLimiter(rate.Limit(reqsPerSecond), 1),
		baseURL:    kalshiMarketsURL,
	}
}

// FetchOpenMarkets returns every open market, following cursor-based
// pagination to completion.
func (c *KalshiRESTClient) FetchOpenMarkets(ctx context.Context) ([]kalshiMarket, error) {
	markets := make([]kalshiMarket, 0)
	cursor := ""

	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("kalshi discovery: rate limit: %w", err)
		}

		url := c.baseURL
		if cursor != "" {
			url = fmt.Sprintf("%s&cursor=%s", c.baseURL, cursor)
		}

		page, err := c.fetchPage(ctx, url)
		if err != nil {
			return nil, err
		}

		markets = append(markets, page.Markets...)

		cursor = page.Cursor
		if cursor == "" {
			return markets, nil
		}
	}
}

func (c *KalshiRESTClient) fetchPage(ctx context.Context, url string) (*kalshiMarketsPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("kalshi discovery: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("kalshi discovery: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("kalshi discovery: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var page kalshiMarketsPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("kalshi discovery: decode: %w", err)
	}
	return &page, nil
}
