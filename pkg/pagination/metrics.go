package pagination

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for fetches and pagination.
var (
	fetchErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "idalon_errors_total",
		Help: "Total failed fetches by error kind",
	}, []string{"kind"})

	pagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "idalon_pages_total",
		Help: "Total pages yielded by paginators by resource",
	}, []string{"resource"})

	paginationEndTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "idalon_pagination_end_total",
		Help: "Total finished paginations by resource and reason",
	}, []string{"resource", "reason"}) // reason: "total", "empty", "error"
)
