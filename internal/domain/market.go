// Package domain holds the types shared across the ingestion clients, the
// price caches, and the arbitrage engine: the data this system watches and
// the opportunities it detects.
package domain

// MarketPair links one logically-equivalent binary market across the two
// venues: the YES/NO outcome tokens on the Polymarket-style venue (PM), and
// the single ticker on the Kalshi-style venue that implicitly carries both
// sides.
//
// A MarketPair is immutable after construction. It is created once by the
// discovery bootstrap step and lives for the process lifetime.
type MarketPair struct {
	// PMYesToken and PMNoToken are PM's instrument keys for the YES and NO
	// outcome tokens of this market.
	PMYesToken string
	PMNoToken  string
	// PMTitle is the human-readable market title as reported by PM.
	PMTitle string

	// KalshiTicker is Kalshi's single market identifier; YES and NO are
	// implicit sides of the same ticker.
	KalshiTicker string
	// KalshiTitle is the human-readable market title as reported by Kalshi.
	KalshiTitle string
}
