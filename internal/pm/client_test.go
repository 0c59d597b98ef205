package pm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arborwatch/xvenue-arb/internal/pricecache"
)

func newTestClient() *Client {
	return New(Config{Cache: pricecache.NewPM()})
}

func TestHandleFrame_SellUpdatesAsk(t *testing.T) {
	c := newTestClient()
	c.handleFrame([]byte(`{"event_type":"book","asset":"tok-1","price":"0.42","side":"sell"}`))

	rec, ok := c.cache.Lookup("tok-1")
	require.True(t, ok)
	assert.Equal(t, 0.42, rec.Ask)
	assert.Equal(t, 0.0, rec.Bid)
}

func TestHandleFrame_BuyUpdatesBid(t *testing.T) {
	c := newTestClient()
	c.handleFrame([]byte(`{"event_type":"price_change","asset":"tok-1","price":"0.38","side":"buy"}`))

	rec, ok := c.cache.Lookup("tok-1")
	require.True(t, ok)
	assert.Equal(t, 0.38, rec.Bid)
}

func TestHandleFrame_IgnoresUnknownEventType(t *testing.T) {
	c := newTestClient()
	c.handleFrame([]byte(`{"event_type":"last_trade_price","asset":"tok-1","price":"0.50","side":"sell"}`))

	_, ok := c.cache.Lookup("tok-1")
	assert.False(t, ok)
}

func TestHandleFrame_IgnoresZeroPrice(t *testing.T) {
	c := newTestClient()
	c.handleFrame([]byte(`{"event_type":"book","asset":"tok-1","price":"0","side":"sell"}`))

	_, ok := c.cache.Lookup("tok-1")
	assert.False(t, ok)
}

func TestHandleFrame_PublishesToUpdatesChannel(t *testing.T) {
	c := newTestClient()
	c.handleFrame([]byte(`{"event_type":"book","asset":"tok-1","price":"0.42","side":"sell"}`))

	select {
	case upd := <-c.Updates():
		assert.Equal(t, "tok-1", upd.TokenID)
		assert.Equal(t, 0.42, upd.Record.Ask)
	default:
		t.Fatal("expected an update on the channel")
	}
}

func TestHandleFrame_MalformedJSONIsIgnored(t *testing.T) {
	c := newTestClient()
	assert.NotPanics(t, func() {
		c.handleFrame([]byte(`not json`))
	})
}
