// Package metrics holds the Prometheus collectors for Nexus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var CacheHits = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "nexus_cache_hits_total",
		Help: "fresh cache reads",
	},
	[]string{"cache"},
)

var CacheMisses = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "nexus_cache_misses_total",
		Help: "cache reads that were missing or stale",
	},
	[]string{"cache"},
)

var StaleDiscards = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "nexus_cache_stale_discards_total",
		Help: "fetch results dropped because a newer fetch or invalidation happened",
	},
	[]string{"cache"},
)

var FetchErrors = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "nexus_fetch_errors_total",
		Help: "failed fetches per resource",
	},
	[]string{"resource"},
)

var MalformedResponses = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "nexus_malformed_responses_total",
		Help: "responses with an unexpected shape",
	},
	[]string{"resource"},
)

var WatchlistMutations = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "nexus_watchlist_mutations_total",
		Help: "watchlist adds and removes",
	},
	[]string{"op", "result"},
)

var FeedSubscribers = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "nexus_feed_subscribers",
		Help: "open live feed connections",
	},
)

// Registry holds every Nexus collector plus the Go runtime collector.
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(CacheHits)
	Registry.MustRegister(CacheMisses)
	Registry.MustRegister(StaleDiscards)
	Registry.MustRegister(FetchErrors)
	Registry.MustRegister(MalformedResponses)
	Registry.MustRegister(WatchlistMutations)
	Registry.MustRegister(FeedSubscribers)
	Registry.MustRegister(collectors.NewGoCollector())
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
