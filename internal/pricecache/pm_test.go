package pricecache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPM_Update_MergesOnlyPresentSides(t *testing.T) {
	cache := NewPM()

	cache.Update("token-1", PMUpdate{Ask: 0.60})
	rec, ok := cache.Lookup("token-1")
	assert.True(t, ok)
	assert.Equal(t, 0.60, rec.Ask)
	assert.Equal(t, 0.0, rec.Bid)

	cache.Update("token-1", PMUpdate{Bid: 0.58})
	rec, ok = cache.Lookup("token-1")
	assert.True(t, ok)
	assert.Equal(t, 0.60, rec.Ask, "ask must survive a bid-only update")
	assert.Equal(t, 0.58, rec.Bid)
}

func TestPM_Update_ZeroSideNeverClears(t *testing.T) {
	cache := NewPM()
	cache.Update("token-1", PMUpdate{Ask: 0.60, Bid: 0.58})

	cache.Update("token-1", PMUpdate{Ask: 0, Bid: 0.59})

	rec, ok := cache.Lookup("token-1")
	assert.True(t, ok)
	assert.Equal(t, 0.60, rec.Ask, "zero ask must not clear the previous ask")
	assert.Equal(t, 0.59, rec.Bid)
}

func TestPM_Lookup_UnknownToken(t *testing.T) {
	cache := NewPM()
	_, ok := cache.Lookup("unknown")
	assert.False(t, ok)
}
