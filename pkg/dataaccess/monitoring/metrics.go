package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DatabaseLatency is the duration of database queries.
	DatabaseLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "dataaccess_database_latency",
			Help: "Duration of database queries",
		},
		[]string{"dal", "query", "backend"},
	)

	// DatabaseTotalRequests is the total number of database requests.
	DatabaseTotalRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataaccess_database_total_requests",
			Help: "Total number of database requests",
		},
		[]string{"dal", "query", "backend"},
	)

	// DatabaseErrors is the total number of failed database requests.
	DatabaseErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataaccess_database_errors",
			Help: "Total number of failed database requests",
		},
		[]string{"dal", "query", "backend"},
	)
)

// Observe counts a request and starts its latency timer. Call the returned
// function with the request error once the request is done.
func Observe(dal, query, backend string) func(err error) {
	DatabaseTotalRequests.WithLabelValues(dal, query, backend).Inc()
	t := prometheus.NewTimer(DatabaseLatency.WithLabelValues(dal, query, backend))
	return func(err error) {
		t.ObserveDuration()
		if err != nil {
			DatabaseErrors.WithLabelValues(dal, query, backend).Inc()
		}
	}
}
