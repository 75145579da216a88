package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	APILatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "montesim",
			Subsystem: "api",
			Name:      "latency_seconds",
			Help:      "Latency of simulation endpoints",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"endpoint"},
	)

	APIErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "montesim",
			Subsystem: "api",
			Name:      "errors_total",
			Help:      "Errors by simulation endpoint and error kind",
		},
		[]string{"endpoint", "kind"},
	)
)

// Register adds the endpoint collectors to reg once per process.
func Register(reg prometheus.Registerer) {
	once.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		reg.MustRegister(APILatency, APIErrors)
	})
}
