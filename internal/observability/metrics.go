package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	GatewayRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_requests_total",
			Help: "Backend calls issued by the gateway, by call and outcome",
		},
		[]string{"call", "outcome"},
	)

	GatewayDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_request_duration_seconds",
			Help:    "Round trip latency of backend calls",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"call"},
	)

	EmbeddingsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "embeddings_total",
			Help: "Total product chunks embedded",
		},
	)
)

// Register adds the collectors to reg.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(GatewayRequests, GatewayDuration, EmbeddingsTotal)
}

func Start(port string) {
	Register(prometheus.DefaultRegisterer)
	http.Handle("/metrics", promhttp.Handler())
	go http.ListenAndServe(":"+port, nil)
}
