// Package arbitrage computes cross-venue covering combinations on a fixed
// tick and publishes a sorted, capped snapshot for readers.
package arbitrage

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/arborwatch/xvenue-arb/internal/domain"
	"github.com/arborwatch/xvenue-arb/internal/metrics"
	"github.com/arborwatch/xvenue-arb/internal/pricecache"
)

const tickInterval = 1 * time.Second

// maxOpportunities bounds the snapshot so a quiet-market backlog of stale
// opportunities never grows without limit.
const maxOpportunities = 1000

// Engine re-evaluates every configured MarketPair on each tick, looks up
// both venues' caches, and publishes a sorted snapshot of opportunities
// that clear the edge threshold.
//
// Prices, edges and the threshold are float64 and are compared with a
// plain >= and no rounding. An edge that lands exactly on the threshold
// can therefore fall on either side of it by floating-point error (on the
// order of 1e-15).
type Engine struct {
	mu       sync.RWMutex
	snapshot domain.Snapshot

	pairs         []domain.MarketPair
	pmCache       *pricecache.PM
	kalshiCache   *pricecache.Kalshi
	kalshiEnabled func() bool
	edgeThreshold float64
	logger        *slog.Logger
}

// Config configures an Engine.
type Config struct {
	Pairs         []domain.MarketPair
	PMCache       *pricecache.PM
	KalshiCache   *pricecache.Kalshi
	KalshiEnabled func() bool
	EdgeThreshold float64
	Logger        *slog.Logger
}

// New creates an Engine with an empty initial snapshot.
func New(cfg Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		pairs:         cfg.Pairs,
		pmCache:       cfg.PMCache,
		kalshiCache:   cfg.KalshiCache,
		kalshiEnabled: cfg.KalshiEnabled,
		edgeThreshold: cfg.EdgeThreshold,
		logger:        logger.With(slog.String("component", "arbitrage_engine")),
	}
}

// Run ticks once a second until ctx is cancelled, recomputing and
// publishing a fresh snapshot on every tick.
func (e *Engine) Run(ctx context.Context) {
	e.logger.Info("arbitrage engine starting", slog.Int("pairs", len(e.pairs)), slog.Float64("threshold", e.edgeThreshold))
	metrics.SetArbPairs(len(e.pairs))

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("arbitrage engine stopping")
			return
		case <-ticker.C:
			e.tick()
		}
	}
}

// Snapshot returns the most recently published set of opportunities.
func (e *Engine) Snapshot() domain.Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := domain.Snapshot{
		Opportunities: make([]domain.Opportunity, len(e.snapshot.Opportunities)),
		GeneratedAt:   e.snapshot.GeneratedAt,
	}
	copy(out.Opportunities, e.snapshot.Opportunities)
	return out
}

func (e *Engine) tick() {
	now := time.Now()
	found := make([]domain.Opportunity, 0, 64)

	kalshiEnabled := e.kalshiEnabled == nil || e.kalshiEnabled()

	for _, pair := range e.pairs {
		yesAsk, yesOk := e.pmAsk(pair.PMYesToken)
		noAsk, noOk := e.pmAsk(pair.PMNoToken)
		if !yesOk || !noOk {
			continue
		}

		if !kalshiEnabled {
			continue
		}
		kRec, kOk := e.kalshiCache.Lookup(pair.KalshiTicker)
		if !kOk || kRec.YesBid <= 0 || kRec.YesAsk <= 0 {
			continue
		}

		if opp, ok := e.evaluateCombo(now, pair, domain.ComboPMYesKalshiNo, yesAsk+kRec.NoAsk, yesAsk, noAsk, kRec); ok {
			found = append(found, opp)
		}
		if opp, ok := e.evaluateCombo(now, pair, domain.ComboKalshiYesPMNo, kRec.YesAsk+noAsk, yesAsk, noAsk, kRec); ok {
			found = append(found, opp)
		}
	}

	sort.SliceStable(found, func(i, j int) bool {
		return found[i].EdgePctTurn > found[j].EdgePctTurn
	})
	if len(found) > maxOpportunities {
		found = found[:maxOpportunities]
	}

	e.mu.Lock()
	e.snapshot = domain.Snapshot{Opportunities: found, GeneratedAt: now}
	e.mu.Unlock()

	metrics.UpdateCurrentOpportunities(len(found))
	if len(found) > 0 {
		metrics.UpdateBestEdge(found[0].EdgePctTurn)
	} else {
		metrics.UpdateBestEdge(0)
	}
}

func (e *Engine) pmAsk(tokenID string) (float64, bool) {
	rec, ok := e.pmCache.Lookup(tokenID)
	if !ok || rec.Ask <= 0 {
		return 0, false
	}
	return rec.Ask, true
}

// opportunityID derives a stable identifier for a pair+combo. It is the
// same value on every tick for as long as that combination keeps
// qualifying, so callers (the /arbs API, the opportunity-alerting loop)
// can recognize "the same opportunity, still open" rather than seeing a
// fresh ID each second.
func opportunityID(kalshiTicker string, combo domain.ComboTag) string {
	return uuid.NewSHA1(uuid.Nil, []byte(kalshiTicker+"|"+string(combo))).String()
}

// evaluateCombo builds an Opportunity for one covering combination if its
// ROI on turnover clears the configured threshold.
func (e *Engine) evaluateCombo(now time.Time, pair domain.MarketPair, combo domain.ComboTag, totalCost, pmYesAsk, pmNoAsk float64, kRec pricecache.KalshiRecord) (domain.Opportunity, bool) {
	if totalCost <= 0 {
		return domain.Opportunity{}, false
	}
	edgeAbs := 1.0 - totalCost
	edgePctTurn := (edgeAbs / totalCost) * 100.0
	if edgePctTurn < e.edgeThreshold {
		return domain.Opportunity{}, false
	}

	metrics.RecordOpportunityFound()
	return domain.Opportunity{
		ID:           opportunityID(pair.KalshiTicker, combo),
		Timestamp:    now,
		Combo:        combo,
		EdgeAbs:      edgeAbs,
		EdgePctTurn:  edgePctTurn,
		TotalCost:    totalCost,
		PMTitle:      pair.PMTitle,
		PMYesAsk:     pmYesAsk,
		PMNoAsk:      pmNoAsk,
		KalshiTicker: pair.KalshiTicker,
		KalshiTitle:  pair.KalshiTitle,
		KalshiYesBid: kRec.YesBid,
		KalshiYesAsk: kRec.YesAsk,
		KalshiNoBid:  kRec.NoBid,
		KalshiNoAsk:  kRec.NoAsk,
	}, true
}
