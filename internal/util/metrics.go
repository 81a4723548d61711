package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersPlacedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shop_orders_placed_total",
		Help: "Total number of orders placed",
	})

	OrdersRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shop_orders_rejected_total",
		Help: "Total number of rejected order attempts",
	}, []string{"reason"})

	OrdersCancelledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shop_orders_cancelled_total",
		Help: "Total number of cancelled orders",
	})

	OrderNumberRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shop_order_number_retries_total",
		Help: "Total number of order number regenerations after a unique conflict",
	})

	OrderPlacementLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "shop_order_placement_latency_seconds",
		Help:    "Latency of the order placement transaction",
		Buckets: prometheus.DefBuckets,
	})

	OfferCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shop_offer_cache_hits_total",
		Help: "Featured offer resolutions served from cache",
	})

	OfferCacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shop_offer_cache_misses_total",
		Help: "Featured offer resolutions that fell through to the database",
	})

	EmailsSentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shop_emails_sent_total",
		Help: "Total number of confirmation emails sent",
	})

	EmailsFailedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shop_emails_failed_total",
		Help: "Total number of confirmation emails that failed to send",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
