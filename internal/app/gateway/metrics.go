package gateway

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	QueueDepth prometheus.Gauge
	Jobs       *prometheus.CounterVec
}

var metrics = &Metrics{
	QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
		Subsystem: "gateway",
		Name:      "queue_depth",
	}),
	Jobs: prometheus.NewCounterVec(prometheus.CounterOpts{
		Subsystem: "gateway",
		Name:      "jobs_total",
	}, []string{"outcome"}),
}

func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(metrics.QueueDepth)
	reg.MustRegister(metrics.Jobs)
}
