// Package metrics holds the Prometheus collectors for feed ranking and the
// score cache.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Label values.
const (
	ViewerAnonymous     = "anonymous"
	ViewerAuthenticated = "authenticated"

	OutcomeOK     = "ok"
	OutcomeCached = "cached"
	OutcomeEmpty  = "empty"
	OutcomeError  = "error"

	NamespaceFeed     = "feed"
	NamespaceTrending = "trending"
)

// FeedMetrics groups the collectors. A nil *FeedMetrics records nothing.
type FeedMetrics struct {
	Requests        *prometheus.CounterVec
	RequestDuration prometheus.Histogram
	Candidates      *prometheus.HistogramVec
	CacheLookups    *prometheus.CounterVec
}

// NewFeedMetrics registers the collectors on reg.
func NewFeedMetrics(reg prometheus.Registerer) *FeedMetrics {
	factory := promauto.With(reg)
	return &FeedMetrics{
		Requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vidfeed_feed_requests_total",
				Help: "Total feed requests by viewer kind and outcome",
			},
			[]string{"viewer", "outcome"},
		),
		RequestDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "vidfeed_feed_request_duration_seconds",
				Help:    "Duration of feed ranking in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
		),
		Candidates: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "vidfeed_feed_candidates",
				Help:    "Candidates in the score map after each ranking pass",
				Buckets: []float64{0, 10, 25, 50, 100, 150, 200, 300},
			},
			[]string{"pass"},
		),
		CacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vidfeed_score_cache_lookups_total",
				Help: "Score cache lookups by namespace and result",
			},
			[]string{"namespace", "result"},
		),
	}
}

// ObserveRequest records one finished feed request.
func (m *FeedMetrics) ObserveRequest(viewer, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(viewer, outcome).Inc()
	m.RequestDuration.Observe(elapsed.Seconds())
}

// ObserveCandidates records the score map size after a pass.
func (m *FeedMetrics) ObserveCandidates(pass string, n int) {
	if m == nil {
		return
	}
	m.Candidates.WithLabelValues(pass).Observe(float64(n))
}

// CacheLookup records a cache hit or miss.
func (m *FeedMetrics) CacheLookup(namespace string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(namespace, result).Inc()
}
