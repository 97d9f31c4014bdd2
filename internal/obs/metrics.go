package obs

import "github.com/prometheus/client_golang/prometheus"

var (
	BackendRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pos_backend_requests_total",
			Help: "Backend service calls by operation and outcome",
		},
		[]string{"op", "outcome"},
	)
	BackendRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pos_backend_request_duration_seconds",
			Help:    "Backend service call latency by operation",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)
)

func init() {
	prometheus.MustRegister(BackendRequests, BackendRequestDuration)
}

// ObserveBackendCall records one backend call outcome.
func ObserveBackendCall(op string, seconds float64, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	BackendRequests.WithLabelValues(op, outcome).Inc()
	BackendRequestDuration.WithLabelValues(op).Observe(seconds)
}
