package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/arborwatch/xvenue-arb/internal/domain"
)

// discoveryRequestsPerSecond bounds the outbound rate of the bootstrap's
// REST discovery clients; both venues' markets listings are paginated and
// can run to many pages.
const discoveryRequestsPerSecond = 5.0

// Bootstrap fetches the open-market listings from both venues, pairs them
// by title similarity within a soft expiration-time window, and returns
// the resulting set of market pairs along with the distinct PM outcome
// tokens and Kalshi tickers the stream clients need to subscribe to.
//
// Pairing happens once, at startup; there is no periodic re-discovery or
// eviction of pairs whose markets later close.
func Bootstrap(ctx context.Context, titleSimThreshold float64, timeWindowHours int, logger *slog.Logger) ([]domain.MarketPair, []string, []string, error) {
	pmClient := NewPMRESTClient(discoveryRequestsPerSecond)
	kalshiClient := NewKalshiRESTClient(discoveryRequestsPerSecond)

	logger.Info("discovery: fetching pm markets")
	pmMarkets, err := pmClient.FetchOpenMarkets(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("discovery: fetch pm markets: %w", err)
	}
	logger.Info("discovery: pm markets fetched", slog.Int("count", len(pmMarkets)))

	logger.Info("discovery: fetching kalshi markets")
	kalshiMarkets, err := kalshiClient.FetchOpenMarkets(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("discovery: fetch kalshi markets: %w", err)
	}
	logger.Info("discovery: kalshi markets fetched", slog.Int("count", len(kalshiMarkets)))

	pairs := pairMarkets(pmMarkets, kalshiMarkets, titleSimThreshold, time.Duration(timeWindowHours)*time.Hour, logger)
	logger.Info("discovery: market pairs created", slog.Int("count", len(pairs)))

	return pairs, pmTokenIDs(pairs), kalshiTickers(pairs), nil
}

// pairMarkets matches every PM market against every Kalshi market by title
// similarity, keeping pairs whose titles clear threshold and, when both
// sides report an expiration, whose expirations fall within timeWindow of
// each other.
func pairMarkets(pmMarkets []pmMarket, kalshiMarkets []kalshiMarket, threshold float64, timeWindow time.Duration, logger *slog.Logger) []domain.MarketPair {
	pairs := make([]domain.MarketPair, 0)

	for _, pm := range pmMarkets {
		yesToken, noToken, ok := pmOutcomeTokens(pm)
		if !ok {
			logger.Debug("discovery: pm market missing yes/no tokens", slog.String("question", pm.Question))
			continue
		}

		for _, k := range kalshiMarkets {
			if !IsLikelyMatch(pm.Question, k.Title, threshold) {
				continue
			}
			if !withinSoftDeadline(pm.EndDateISO, k.ExpirationTime, timeWindow) {
				continue
			}

			pairs = append(pairs, domain.MarketPair{
				PMYesToken:   yesToken,
				PMNoToken:    noToken,
				PMTitle:      pm.Question,
				KalshiTicker: k.Ticker,
				KalshiTitle:  k.Title,
			})
		}
	}
	return pairs
}

func pmOutcomeTokens(m pmMarket) (yes, no string, ok bool) {
	for _, t := range m.Tokens {
		switch t.Outcome {
		case "YES":
			yes = t.TokenID
		case "NO":
			no = t.TokenID
		}
	}
	return yes, no, yes != "" && no != ""
}

// withinSoftDeadline reports whether two ISO-8601 expiration timestamps
// are within window of each other. Either or both being absent or
// unparseable is not a rejection: the expiration check only applies when
// both sides report a usable timestamp.
func withinSoftDeadline(pmEndISO, kalshiExpISO string, window time.Duration) bool {
	if pmEndISO == "" || kalshiExpISO == "" {
		return true
	}

	pmEnd, err1 := time.Parse(time.RFC3339, pmEndISO)
	kEnd, err2 := time.Parse(time.RFC3339, kalshiExpISO)
	if err1 != nil || err2 != nil {
		return true
	}

	diff := pmEnd.Sub(kEnd)
	if diff < 0 {
		diff = -diff
	}
	return diff <= window
}

func pmTokenIDs(pairs []domain.MarketPair) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0, len(pairs)*2)
	for _, p := range pairs {
		for _, tok := range [2]string{p.PMYesToken, p.PMNoToken} {
			if _, dup := seen[tok]; !dup {
				seen[tok] = struct{}{}
				out = append(out, tok)
			}
		}
	}
	return out
}

func kalshiTickers(pairs []domain.MarketPair) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0, len(pairs))
	for _, p := range pairs {
		if _, dup := seen[p.KalshiTicker]; !dup {
			seen[p.KalshiTicker] = struct{}{}
			out = append(out, p.KalshiTicker)
		}
	}
	return out
}
