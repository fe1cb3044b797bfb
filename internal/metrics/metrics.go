// Package metrics exposes the Prometheus series the client updates during a run:
//
//	bot_orders_total{status}            – order acknowledgments by status code
//	bot_order_ack_latency_seconds{ack}  – send→ack latency, labeled by ack index
//	bot_price_updates_total             – book-ticker updates accepted
//	bot_ws_reconnects_total{session}    – reconnect attempts per session
//	bot_auth_failures_total             – rejected login attempts
//
// Served at /metrics by the HTTP listener started in cmd/bot.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	OrderAcks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_orders_total",
			Help: "Order acknowledgments by status code",
		},
		[]string{"status"},
	)

	AckLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bot_order_ack_latency_seconds",
			Help:    "Latency from order send to acknowledgment",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		},
		[]string{"ack"},
	)

	PriceUpdates = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_price_updates_total",
			Help: "Accepted book-ticker updates",
		},
	)

	Reconnects = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_ws_reconnects_total",
			Help: "WebSocket reconnect attempts",
		},
		[]string{"session"},
	)

	AuthFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_auth_failures_total",
			Help: "Rejected login attempts",
		},
	)
)

func init() {
	prometheus.MustRegister(OrderAcks, AckLatency, PriceUpdates, Reconnects, AuthFailures)
}

// Handler returns the /metrics handler in Prometheus text exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}
