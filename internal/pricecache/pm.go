// Package pricecache holds the concurrent, in-memory price caches shared
// between the stream clients (single writer each) and their readers (the
// arbitrage engine, the inspection server). There is one cache shape per
// venue because the two venues' update semantics differ: PM sends one side
// per frame and the cache merges it; Kalshi sends a full ticker per frame
// and the cache replaces wholesale.
package pricecache

import "sync"

// PMRecord is the last-known top-of-book for one PM outcome token.
type PMRecord struct {
	Ask float64
	Bid float64
}

// PMUpdate is a partial update for one PM outcome token: only the sides
// that were present in the inbound frame are set. The zero value of a
// side means "not present in this update" — see PM.Update.
type PMUpdate struct {
	Ask float64
	Bid float64
}

// PM is the per-venue price cache for the Polymarket-style venue. It is a
// concurrent mapping from outcome-token id to PMRecord, guarded by a single
// mutex; the intended usage is one writer (that venue's stream client read
// loop) and many readers.
type PM struct {
	mu      sync.RWMutex
	records map[string]PMRecord
}

// NewPM creates an empty PM price cache.
func NewPM() *PM {
	return &PM{records: make(map[string]PMRecord)}
}

// Update merges a partial update into the record for tokenID. Only sides
// present in upd (strictly positive) overwrite the stored side; an absent
// (zero) side leaves the previous value untouched. This also means a "price
// == 0" frame never clears a side — see the Open Question resolution in
// DESIGN.md. Update is idempotent on identical input and safe to call from
// exactly one goroutine at a time (enforced by the caller, the read loop),
// concurrently with Lookup from any number of goroutines.
func (c *PM) Update(tokenID string, upd PMUpdate) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec := c.records[tokenID]
	if upd.Ask > 0 {
		rec.Ask = upd.Ask
	}
	if upd.Bid > 0 {
		rec.Bid = upd.Bid
	}
	c.records[tokenID] = rec
}

// Lookup returns a value copy of the record for tokenID. present is false
// if tokenID has never been updated; that is not an error — callers skip
// the pair for the current tick.
func (c *PM) Lookup(tokenID string) (rec PMRecord, present bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rec, present = c.records[tokenID]
	return rec, present
}
