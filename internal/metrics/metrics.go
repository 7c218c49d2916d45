package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pushkind_orders_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pushkind_orders_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	OrdersCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pushkind_orders_orders_created_total",
			Help: "Total number of orders created",
		},
	)

	PriceResolutionFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pushkind_orders_price_resolution_failures_total",
			Help: "Price resolutions that ended without a price",
		},
		[]string{"reason"},
	)
)
