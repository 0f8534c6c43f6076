// Package metrics provides the Prometheus registry and the leaderboard gauges for the Idalon client.
// Request and pagination metrics are defined in their respective packages (client, pagination,
// ratelimit) to keep them next to the code that records them.
//
// This package also documents every metric the module exports.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry used by the Idalon client.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Leaderboard gauges, refreshed by the CLI watch mode.
var (
	LeaderboardMedian = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "idalon_leaderboard_median_seconds",
		Help: "Median time of the first leaderboard page by resource",
	}, []string{"resource"})

	LeaderboardAverage = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "idalon_leaderboard_average_seconds",
		Help: "Average time of the first leaderboard page by resource",
	}, []string{"resource"})

	LeaderboardRecords = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "idalon_leaderboard_records",
		Help: "Number of timed records on the first leaderboard page by resource",
	}, []string{"resource"})

	LeaderboardRefreshErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "idalon_leaderboard_refresh_errors_total",
		Help: "Total failed leaderboard refreshes by resource",
	}, []string{"resource"})
)

// ObserveLeaderboard publishes the statistics of one leaderboard page.
func ObserveLeaderboard(resource string, median, average float64, records int) {
	LeaderboardMedian.WithLabelValues(resource).Set(median)
	LeaderboardAverage.WithLabelValues(resource).Set(average)
	LeaderboardRecords.WithLabelValues(resource).Set(float64(records))
}

// Handler serves the default registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - idalon_requests_total{resource, status} (Counter): Requests by resource and HTTP status
//   - idalon_request_duration_seconds{resource} (Histogram): Request duration by resource
//   - idalon_transport_errors_total{class} (Counter): Errors by class (client, server, rate_limit, circuit_open, network)
//
// Fetch and Pagination Metrics (pkg/pagination):
//   - idalon_errors_total{kind} (Counter): Failed fetches by kind (fetch, parse, bad_status)
//   - idalon_pages_total{resource} (Counter): Pages yielded by paginators
//   - idalon_pagination_end_total{resource, reason} (Counter): Finished paginations (total, empty, error)
//
// Rate Limit Metrics (pkg/ratelimit):
//   - idalon_rate_limit_remaining (Gauge): Requests remaining in the current window
//   - idalon_rate_limit_blocks_total (Counter): Requests blocked due to a critical budget
//   - idalon_rate_limit_throttles_total (Counter): Requests delayed due to a low budget
//
// Leaderboard Metrics (pkg/metrics, CLI watch mode):
//   - idalon_leaderboard_median_seconds{resource} (Gauge)
//   - idalon_leaderboard_average_seconds{resource} (Gauge)
//   - idalon_leaderboard_records{resource} (Gauge)
//   - idalon_leaderboard_refresh_errors_total{resource} (Counter)
//
// Example Prometheus Queries:
//
//   # Fetch error rate by kind
//   sum by (kind) (rate(idalon_errors_total[5m]))
//
//   # Paginations ended by a failed request
//   rate(idalon_pagination_end_total{reason="error"}[1h])
//
//   # Request budget running low
//   idalon_rate_limit_remaining < 10
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(idalon_request_duration_seconds_bucket[5m]))
