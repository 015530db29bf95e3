// Package metrics provides Prometheus instrumentation for the storefront
// client: feed traffic, catalog cache behaviour, and game outcomes.
//
// Expose them from any debug HTTP listener with Handler():
//
//	mux.Handle("/metrics", metrics.Handler())
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// FeedFetches counts successful one-shot snapshot fetches.
	FeedFetches = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "kankarej",
		Subsystem: "feed",
		Name:      "fetches_total",
		Help:      "Successful one-shot feed fetches.",
	})

	// FeedFetchErrors counts timed-out or failed fetches.
	FeedFetchErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "kankarej",
		Subsystem: "feed",
		Name:      "fetch_errors_total",
		Help:      "Failed or timed-out feed fetches.",
	})

	// CatalogFills counts snapshot fills (fetch + flatten + shuffle).
	CatalogFills = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "kankarej",
		Subsystem: "catalog",
		Name:      "fills_total",
		Help:      "Times the product snapshot was fetched and shuffled.",
	})

	// CatalogPages counts pages served from the memoized snapshot.
	CatalogPages = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "kankarej",
		Subsystem: "catalog",
		Name:      "pages_total",
		Help:      "Product pages served from the memoized snapshot.",
	})

	// GameRounds counts finished rounds by outcome ("won", "lost").
	GameRounds = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kankarej",
		Subsystem: "game",
		Name:      "rounds_total",
		Help:      "Finished game rounds by outcome.",
	}, []string{"outcome"})

	// GameMatches counts pair evaluations by result ("match", "mismatch").
	GameMatches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kankarej",
		Subsystem: "game",
		Name:      "matches_total",
		Help:      "Pair evaluations by result.",
	}, []string{"result"})

	// ScoreWrites counts synchronous persisted-score writes.
	ScoreWrites = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "kankarej",
		Subsystem: "score",
		Name:      "writes_total",
		Help:      "Synchronous writes to the persisted score store.",
	})
)

var registry = prometheus.NewRegistry()

func init() {
	registry.MustRegister(
		FeedFetches,
		FeedFetchErrors,
		CatalogFills,
		CatalogPages,
		GameRounds,
		GameMatches,
		ScoreWrites,
		collectors.NewGoCollector(),
	)
}

// Handler serves the metrics endpoint.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// Register adds custom collectors to the client registry.
func Register(cs ...prometheus.Collector) {
	registry.MustRegister(cs...)
}
