package pricecache

import "sync"

// KalshiRecord is the last-known quote for one Kalshi market. YesBid and
// YesAsk are copied verbatim from the venue; NoBid and NoAsk are derived
// (NoBid = 1 - YesAsk, NoAsk = 1 - YesBid) so that 0 <= NoBid <= NoAsk <= 1
// whenever YesBid <= YesAsk.
type KalshiRecord struct {
	YesBid float64
	YesAsk float64
	NoBid  float64
	NoAsk  float64
}

// KalshiUpdate is a full ticker frame for one market: all four sides are
// replaced atomically.
type KalshiUpdate struct {
	YesBid float64
	YesAsk float64
}

// Kalshi is the per-venue price cache for the Kalshi-style venue. Unlike PM,
// a Kalshi update replaces the whole record rather than merging per-side,
// because the venue publishes a complete ticker on every frame.
type Kalshi struct {
	mu      sync.RWMutex
	records map[string]KalshiRecord
}

// NewKalshi creates an empty Kalshi price cache.
func NewKalshi() *Kalshi {
	return &Kalshi{records: make(map[string]KalshiRecord)}
}

// Update replaces the record for ticker wholesale, deriving the NO side
// from the supplied YES side. A frame whose YesBid or YesAsk is zero (a
// partial ticker) is rejected and leaves the previous record untouched —
// see the Open Question resolution in DESIGN.md for why this deviates from
// applying every frame unconditionally.
func (c *Kalshi) Update(ticker string, upd KalshiUpdate) {
	if upd.YesBid <= 0 || upd.YesAsk <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.records[ticker] = KalshiRecord{
		YesBid: upd.YesBid,
		YesAsk: upd.YesAsk,
		NoBid:  1 - upd.YesAsk,
		NoAsk:  1 - upd.YesBid,
	}
}

// Lookup returns a value copy of the record for ticker. present is false if
// ticker has never been updated.
func (c *Kalshi) Lookup(ticker string) (rec KalshiRecord, present bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rec, present = c.records[ticker]
	return rec, present
}
