package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PaymentChallenges counts 402 challenges served, by network.
	PaymentChallenges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "openfacilitator_payment_challenges_total",
			Help: "Total number of 402 payment challenges served",
		},
		[]string{"network"},
	)

	// Settlements counts settlement attempts by network and outcome
	// (success|verify_failed|settle_failed|malformed).
	Settlements = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "openfacilitator_settlements_total",
			Help: "Total number of settlement attempts",
		},
		[]string{"network", "outcome"},
	)

	// WebhookDeliveries counts webhook delivery attempts by result (success|failure).
	WebhookDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "openfacilitator_webhook_deliveries_total",
			Help: "Total number of webhook delivery attempts",
		},
		[]string{"result"},
	)

	// ProxyForwardLatency measures origin forwarding latency for proxy resources.
	ProxyForwardLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "openfacilitator_proxy_forward_seconds",
			Help:    "Latency of origin forward calls",
			Buckets: prometheus.DefBuckets,
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "openfacilitator_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
