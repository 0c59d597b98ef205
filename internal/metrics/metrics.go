// Package metrics holds the process-wide Prometheus collectors. They are
// package-level singletons registered against the default registry at
// import time, matching the rest of this codebase's preference for one
// shared registry over per-component ones; internal/server exposes them
// at /metrics via promhttp.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ArbPairsTotal tracks the number of market pairs currently being
	// watched for arbitrage.
	ArbPairsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "arb_pairs_total",
		Help: "Total number of market pairs being monitored for arbitrage",
	})

	// WSReconnectsTotal counts reconnect attempts per stream client.
	WSReconnectsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arb_ws_reconnects_total",
		Help: "Total number of WebSocket reconnection attempts",
	}, []string{"source"})

	// OpportunitiesFoundTotal counts every opportunity that ever cleared
	// the threshold, regardless of whether it survived to be reported.
	OpportunitiesFoundTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arb_opps_found_total",
		Help: "Total number of arbitrage opportunities found",
	})

	// HTTPRequestsTotal counts inspection-server requests by path and
	// response code.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"path", "code"})

	// WSConnectionStatus is 1 while a stream client is in the Reading
	// state, 0 otherwise.
	WSConnectionStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "arb_ws_connection_status",
		Help: "WebSocket connection status (1 = connected, 0 = disconnected)",
	}, []string{"source"})

	// PriceUpdatesTotal counts accepted price updates per stream client.
	PriceUpdatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arb_price_updates_total",
		Help: "Total number of price updates received",
	}, []string{"source"})

	// CurrentOpportunitiesGauge mirrors the length of the engine's last
	// published snapshot.
	CurrentOpportunitiesGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "arb_current_opportunities",
		Help: "Current number of active arbitrage opportunities",
	})

	// BestEdgeGauge mirrors the highest edge_pct_turn in the last
	// published snapshot, or 0 when it is empty.
	BestEdgeGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "arb_best_edge_pct",
		Help: "Best current arbitrage edge percentage",
	})

	// VenueDisabled is set once per stream client at construction time and
	// never changes afterward. It is 1 if the client started without usable
	// credentials (a declared Disabled state) and 0 otherwise, so it
	// discriminates "disabled by configuration" from "enabled but not yet
	// connected", which WSConnectionStatus alone cannot: that gauge simply
	// has no series for a source until the first dial attempt.
	VenueDisabled = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "arb_venue_disabled",
		Help: "Whether a stream venue was constructed in a permanently disabled state (1) or not (0)",
	}, []string{"source"})
)

// RecordWSReconnect increments the reconnect counter for source.
func RecordWSReconnect(source string) {
	WSReconnectsTotal.WithLabelValues(source).Inc()
}

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(path, code string) {
	HTTPRequestsTotal.WithLabelValues(path, code).Inc()
}

// SetWSConnectionStatus sets the connection gauge for source.
func SetWSConnectionStatus(source string, connected bool) {
	val := 0.0
	if connected {
		val = 1.0
	}
	WSConnectionStatus.WithLabelValues(source).Set(val)
}

// RecordPriceUpdate increments the price-update counter for source.
func RecordPriceUpdate(source string) {
	PriceUpdatesTotal.WithLabelValues(source).Inc()
}

// RecordOpportunityFound increments the lifetime opportunities-found
// counter by one.
func RecordOpportunityFound() {
	OpportunitiesFoundTotal.Inc()
}

// UpdateCurrentOpportunities sets the current-opportunities gauge.
func UpdateCurrentOpportunities(count int) {
	CurrentOpportunitiesGauge.Set(float64(count))
}

// UpdateBestEdge sets the best-edge gauge.
func UpdateBestEdge(edgePct float64) {
	BestEdgeGauge.Set(edgePct)
}

// SetArbPairs sets the monitored-pairs gauge.
func SetArbPairs(count int) {
	ArbPairsTotal.Set(float64(count))
}

// SetVenueDisabled records whether source started in a permanently
// disabled state. Call once, at construction.
func SetVenueDisabled(source string, disabled bool) {
	val := 0.0
	if disabled {
		val = 1.0
	}
	VenueDisabled.WithLabelValues(source).Set(val)
}
