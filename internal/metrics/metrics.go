package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_cache_lookups_total",
			Help: "Cache lookups by result (fresh, stale, expired, miss, malformed)",
		},
		[]string{"result"},
	)

	CacheWriteErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_cache_write_errors_total",
			Help: "Cache writes dropped by stage (encode, backend)",
		},
		[]string{"stage"},
	)

	ProxyAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_proxy_attempts_total",
			Help: "Content proxy attempts by proxy and outcome",
		},
		[]string{"proxy", "outcome"},
	)

	SourceRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_source_requests_total",
			Help: "Remote source requests by source and outcome",
		},
		[]string{"source", "outcome"},
	)

	Resolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_resolutions_total",
			Help: "Resolved results by domain and fallback tier",
		},
		[]string{"domain", "tier"},
	)

	Refreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_background_refreshes_total",
			Help: "Background refreshes by domain and outcome",
		},
		[]string{"domain", "outcome"},
	)

	LoadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "folio_load_duration_seconds",
			Help:    "Duration of remote loads per domain",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"domain"},
	)
)

func RecordCacheLookup(result string) {
	CacheLookups.WithLabelValues(result).Inc()
}

func RecordCacheWriteError(stage string) {
	CacheWriteErrors.WithLabelValues(stage).Inc()
}

func RecordProxyAttempt(proxy, outcome string) {
	ProxyAttempts.WithLabelValues(proxy, outcome).Inc()
}

func RecordSourceRequest(source, outcome string) {
	SourceRequests.WithLabelValues(source, outcome).Inc()
}

func RecordResolution(domain, tier string) {
	Resolutions.WithLabelValues(domain, tier).Inc()
}

func RecordRefresh(domain, outcome string) {
	Refreshes.WithLabelValues(domain, outcome).Inc()
}

func ObserveLoad(domain string, seconds float64) {
	LoadDuration.WithLabelValues(domain).Observe(seconds)
}
