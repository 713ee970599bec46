package monitor

import "github.com/prometheus/client_golang/prometheus"

var (
	// OpsRequestsTotal 操作服务请求指标
	OpsRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "screener_ops_requests_total",
			Help: "Total number of operations requests served.",
		},
		[]string{"method"},
	)
	OpsRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "screener_ops_request_duration_seconds",
			Help:    "Time taken to serve each operations method.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.2, 0.5, 1.0, 2.0, 5.0},
		},
		[]string{"method"},
	)
	OpsFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "screener_ops_failures_total",
			Help: "Total number of failed operations by error kind.",
		},
		[]string{"method", "kind"},
	)
)

func init() {
	prometheus.MustRegister(
		OpsRequestsTotal,
		OpsRequestDuration,
		OpsFailuresTotal,
	)
}
