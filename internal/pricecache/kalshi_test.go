package pricecache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKalshi_Update_DerivesNoSide(t *testing.T) {
	cache := NewKalshi()
	cache.Update("TICKER-1", KalshiUpdate{YesBid: 0.40, YesAsk: 0.45})

	rec, ok := cache.Lookup("TICKER-1")
	assert.True(t, ok)
	assert.Equal(t, 0.40, rec.YesBid)
	assert.Equal(t, 0.45, rec.YesAsk)
	assert.InDelta(t, 0.55, rec.NoBid, 1e-9)
	assert.InDelta(t, 0.60, rec.NoAsk, 1e-9)
}

func TestKalshi_Update_RejectsPartialFrame(t *testing.T) {
	cache := NewKalshi()
	cache.Update("TICKER-1", KalshiUpdate{YesBid: 0.40, YesAsk: 0.45})

	cache.Update("TICKER-1", KalshiUpdate{YesBid: 0, YesAsk: 0.50})

	rec, ok := cache.Lookup("TICKER-1")
	assert.True(t, ok)
	assert.Equal(t, 0.45, rec.YesAsk, "a partial frame must leave the previous record untouched")
}

func TestKalshi_Update_WholesaleReplace(t *testing.T) {
	cache := NewKalshi()
	cache.Update("TICKER-1", KalshiUpdate{YesBid: 0.40, YesAsk: 0.45})
	cache.Update("TICKER-1", KalshiUpdate{YesBid: 0.70, YesAsk: 0.72})

	rec, ok := cache.Lookup("TICKER-1")
	assert.True(t, ok)
	assert.Equal(t, 0.70, rec.YesBid)
	assert.Equal(t, 0.72, rec.YesAsk)
	assert.InDelta(t, 0.28, rec.NoBid, 1e-9)
	assert.InDelta(t, 0.30, rec.NoAsk, 1e-9)
}
