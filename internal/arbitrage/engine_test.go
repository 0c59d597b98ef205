package arbitrage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arborwatch/xvenue-arb/internal/domain"
	"github.com/arborwatch/xvenue-arb/internal/pricecache"
)

func newTestEngine(t *testing.T, pairs []domain.MarketPair, edgeThreshold float64, kalshiEnabled bool) (*Engine, *pricecache.PM, *pricecache.Kalshi) {
	t.Helper()
	pmCache := pricecache.NewPM()
	kalshiCache := pricecache.NewKalshi()
	e := New(Config{
		Pairs:         pairs,
		PMCache:       pmCache,
		KalshiCache:   kalshiCache,
		KalshiEnabled: func() bool { return kalshiEnabled },
		EdgeThreshold: edgeThreshold,
	})
	return e, pmCache, kalshiCache
}

func samplePair() domain.MarketPair {
	return domain.MarketPair{
		PMYesToken:   "yes-token",
		PMNoToken:    "no-token",
		PMTitle:      "Will X happen?",
		KalshiTicker: "X-TICKER",
		KalshiTitle:  "Will X happen?",
	}
}

func TestTick_FindsOpportunityAboveThreshold(t *testing.T) {
	pair := samplePair()
	e, pmCache, kalshiCache := newTestEngine(t, []domain.MarketPair{pair}, 1.0, true)

	pmCache.Update(pair.PMYesToken, pricecache.PMUpdate{Ask: 0.40})
	pmCache.Update(pair.PMNoToken, pricecache.PMUpdate{Ask: 0.40})
	kalshiCache.Update(pair.KalshiTicker, pricecache.KalshiUpdate{YesBid: 0.55, YesAsk: 0.58})

	e.tick()

	snapshot := e.Snapshot()
	require.NotEmpty(t, snapshot.Opportunities)
	for _, opp := range snapshot.Opportunities {
		assert.GreaterOrEqual(t, opp.EdgePctTurn, 1.0)
		assert.Equal(t, pair.PMTitle, opp.PMTitle)
		assert.Equal(t, pair.KalshiTicker, opp.KalshiTicker)
	}
}

func TestTick_BelowThresholdProducesNothing(t *testing.T) {
	pair := samplePair()
	e, pmCache, kalshiCache := newTestEngine(t, []domain.MarketPair{pair}, 50.0, true)

	pmCache.Update(pair.PMYesToken, pricecache.PMUpdate{Ask: 0.50})
	pmCache.Update(pair.PMNoToken, pricecache.PMUpdate{Ask: 0.50})
	kalshiCache.Update(pair.KalshiTicker, pricecache.KalshiUpdate{YesBid: 0.49, YesAsk: 0.51})

	e.tick()

	snapshot := e.Snapshot()
	assert.Empty(t, snapshot.Opportunities)
}

func TestTick_SkipsPairsMissingPMQuotes(t *testing.T) {
	pair := samplePair()
	e, _, kalshiCache := newTestEngine(t, []domain.MarketPair{pair}, 0.0, true)

	kalshiCache.Update(pair.KalshiTicker, pricecache.KalshiUpdate{YesBid: 0.40, YesAsk: 0.42})

	e.tick()

	assert.Empty(t, e.Snapshot().Opportunities)
}

func TestTick_KalshiDisabledProducesNothing(t *testing.T) {
	pair := samplePair()
	e, pmCache, kalshiCache := newTestEngine(t, []domain.MarketPair{pair}, 0.0, false)

	pmCache.Update(pair.PMYesToken, pricecache.PMUpdate{Ask: 0.40})
	pmCache.Update(pair.PMNoToken, pricecache.PMUpdate{Ask: 0.40})
	kalshiCache.Update(pair.KalshiTicker, pricecache.KalshiUpdate{YesBid: 0.40, YesAsk: 0.42})

	e.tick()

	assert.Empty(t, e.Snapshot().Opportunities)
}

func TestTick_SortsDescendingByEdge(t *testing.T) {
	cheap := domain.MarketPair{PMYesToken: "y1", PMNoToken: "n1", PMTitle: "cheap", KalshiTicker: "K1", KalshiTitle: "cheap"}
	rich := domain.MarketPair{PMYesToken: "y2", PMNoToken: "n2", PMTitle: "rich", KalshiTicker: "K2", KalshiTitle: "rich"}
	e, pmCache, kalshiCache := newTestEngine(t, []domain.MarketPair{cheap, rich}, 0.5, true)

	pmCache.Update(cheap.PMYesToken, pricecache.PMUpdate{Ask: 0.45})
	pmCache.Update(cheap.PMNoToken, pricecache.PMUpdate{Ask: 0.45})
	kalshiCache.Update(cheap.KalshiTicker, pricecache.KalshiUpdate{YesBid: 0.50, YesAsk: 0.52})

	pmCache.Update(rich.PMYesToken, pricecache.PMUpdate{Ask: 0.30})
	pmCache.Update(rich.PMNoToken, pricecache.PMUpdate{Ask: 0.30})
	kalshiCache.Update(rich.KalshiTicker, pricecache.KalshiUpdate{YesBid: 0.55, YesAsk: 0.58})

	e.tick()

	snapshot := e.Snapshot()
	require.GreaterOrEqual(t, len(snapshot.Opportunities), 2)
	for i := 1; i < len(snapshot.Opportunities); i++ {
		assert.GreaterOrEqual(t, snapshot.Opportunities[i-1].EdgePctTurn, snapshot.Opportunities[i].EdgePctTurn)
	}
}

func TestTick_OpportunityIDIsStableAcrossTicks(t *testing.T) {
	pair := samplePair()
	e, pmCache, kalshiCache := newTestEngine(t, []domain.MarketPair{pair}, 1.0, true)

	pmCache.Update(pair.PMYesToken, pricecache.PMUpdate{Ask: 0.40})
	pmCache.Update(pair.PMNoToken, pricecache.PMUpdate{Ask: 0.40})
	kalshiCache.Update(pair.KalshiTicker, pricecache.KalshiUpdate{YesBid: 0.55, YesAsk: 0.58})

	e.tick()
	first := e.Snapshot()
	require.NotEmpty(t, first.Opportunities)

	e.tick()
	second := e.Snapshot()
	require.NotEmpty(t, second.Opportunities)

	assert.Equal(t, first.Opportunities[0].ID, second.Opportunities[0].ID,
		"the same still-qualifying pair+combo must keep the same opportunity id across ticks")
}

func TestSnapshot_ReturnsIndependentCopy(t *testing.T) {
	pair := samplePair()
	e, pmCache, kalshiCache := newTestEngine(t, []domain.MarketPair{pair}, 0.0, true)
	pmCache.Update(pair.PMYesToken, pricecache.PMUpdate{Ask: 0.40})
	pmCache.Update(pair.PMNoToken, pricecache.PMUpdate{Ask: 0.40})
	kalshiCache.Update(pair.KalshiTicker, pricecache.KalshiUpdate{YesBid: 0.50, YesAsk: 0.52})
	e.tick()

	snap1 := e.Snapshot()
	require.NotEmpty(t, snap1.Opportunities)
	snap1.Opportunities[0].PMTitle = "mutated"

	snap2 := e.Snapshot()
	assert.NotEqual(t, "mutated", snap2.Opportunities[0].PMTitle)
}
