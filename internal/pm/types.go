package pm

// subscribeMsg is the client->server subscription frame, sent once per
// chunk of instrument keys.
type subscribeMsg struct {
	Type      string   `json:"type"`
	AssetsIDs []string `json:"assets_ids"`
}

// frameEnvelope is decoded first to route on event_type before committing
// to the full frame shape.
type frameEnvelope struct {
	EventType string `json:"event_type"`
}

// priceFrame is the server->client shape for "book" and "price_change"
// events: only frames with a positive price and a known side produce a
// cache update. Price arrives as a JSON string on the wire.
type priceFrame struct {
	EventType string  `json:"event_type"`
	Asset     string  `json:"asset"`
	Price     float64 `json:"price,string"`
	Side      string  `json:"side"`
}
