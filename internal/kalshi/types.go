package kalshi

// subscribeMsg subscribes to the venue-wide ticker channel: Kalshi has no
// per-market filter on this channel, so one frame covers every ticker.
type subscribeMsg struct {
	Type    string `json:"type"`
	Channel string `json:"channel"`
}

// tickerFrame is the server->client shape for ticker-channel messages.
// Only frames with channel "ticker" and a non-empty ticker carry a quote.
type tickerFrame struct {
	Type    string  `json:"type"`
	Channel string  `json:"channel"`
	Ticker  string  `json:"ticker"`
	YesBid  float64 `json:"yes_bid"`
	YesAsk  float64 `json:"yes_ask"`
}
