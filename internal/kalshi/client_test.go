package kalshi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arborwatch/xvenue-arb/internal/pricecache"
)

func newTestClient() *Client {
	return &Client{cache: pricecache.NewKalshi(), updates: make(chan Update, updateBufferSize)}
}

func TestHandleFrame_UpdatesCacheAndPublishes(t *testing.T) {
	c := newTestClient()
	c.handleFrame([]byte(`{"type":"ticker","channel":"ticker","ticker":"X-1","yes_bid":0.40,"yes_ask":0.45}`))

	rec, ok := c.cache.Lookup("X-1")
	require.True(t, ok)
	assert.Equal(t, 0.40, rec.YesBid)
	assert.InDelta(t, 0.55, rec.NoBid, 1e-9)

	select {
	case upd := <-c.updates:
		assert.Equal(t, "X-1", upd.Ticker)
		assert.Equal(t, 0.45, upd.Record.YesAsk)
	default:
		t.Fatal("expected an update on the channel")
	}
}

func TestHandleFrame_IgnoresNonTickerChannel(t *testing.T) {
	c := newTestClient()
	c.handleFrame([]byte(`{"type":"subscribed","channel":"orderbook_snapshot","ticker":"X-1"}`))

	_, ok := c.cache.Lookup("X-1")
	assert.False(t, ok)
}

func TestHandleFrame_IgnoresEmptyTicker(t *testing.T) {
	c := newTestClient()
	c.handleFrame([]byte(`{"type":"ticker","channel":"ticker","ticker":"","yes_bid":0.4,"yes_ask":0.45}`))

	select {
	case <-c.updates:
		t.Fatal("expected no update for an empty ticker")
	default:
	}
}

func TestIsEnabled_FalseWithoutSigner(t *testing.T) {
	c := newTestClient()
	assert.False(t, c.IsEnabled())
}

func TestNew_DisabledWithoutCredentials(t *testing.T) {
	c := New(Config{Cache: pricecache.NewKalshi()})
	assert.False(t, c.IsEnabled())
}
