package querycache

import "github.com/prometheus/client_golang/prometheus"

var (
	lookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mbaay_query_cache_lookups_total",
			Help: "Cache reads by result (hit, miss, shared, abandoned).",
		},
		[]string{"result"},
	)
	fetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mbaay_query_cache_fetches_total",
			Help: "Fetches whose result was stored, by outcome.",
		},
		[]string{"outcome"},
	)
	discarded = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mbaay_query_cache_discarded_total",
		Help: "Fetch results dropped because a later fetch was issued or the cache closed.",
	})
	invalidations = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mbaay_query_cache_invalidations_total",
		Help: "Entries returned to idle by Invalidate.",
	})
)

func init() {
	prometheus.MustRegister(lookups, fetches, discarded, invalidations)
}
