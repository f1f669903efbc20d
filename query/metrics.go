package query

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the engine's Prometheus collectors. A nil *Metrics records nothing.
type Metrics struct {
	queries       *prometheus.CounterVec
	duration      prometheus.Histogram
	rowsFlattened prometheus.Counter
	cache         *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg when it is not nil
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docsql",
			Name:      "queries_total",
			Help:      "Total number of executed queries by outcome.",
		}, []string{"status"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "docsql",
			Name:      "query_duration_seconds",
			Help:      "Time spent executing queries.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		rowsFlattened: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "docsql",
			Name:      "rows_flattened_total",
			Help:      "Total number of rows produced by flattening input documents.",
		}),
		cache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docsql",
			Name:      "query_cache_total",
			Help:      "Compiled query cache lookups by result.",
		}, []string{"result"}),
	}

	if reg != nil {
		reg.MustRegister(m.queries, m.duration, m.rowsFlattened, m.cache)
	}
	return m
}

func (m *Metrics) observeQuery(err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.queries.WithLabelValues(status).Inc()
	m.duration.Observe(elapsed.Seconds())
}

func (m *Metrics) addRows(n int) {
	if m == nil {
		return
	}
	m.rowsFlattened.Add(float64(n))
}

func (m *Metrics) cacheLookup(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cache.WithLabelValues("hit").Inc()
	} else {
		m.cache.WithLabelValues("miss").Inc()
	}
}
