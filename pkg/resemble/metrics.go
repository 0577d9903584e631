package resemble

import (
	appmetrics "app/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	ClipQueryTime prometheus.Histogram
	ClipErrors    *prometheus.CounterVec
}

var metrics = &Metrics{
	ClipQueryTime: prometheus.NewHistogram(prometheus.HistogramOpts{
		Subsystem: "resemble",
		Name:      "request_seconds",
		Buckets:   appmetrics.RequestSecondsBuckets,
	}),
	ClipErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
		Subsystem: "resemble",
		Name:      "errors_total",
	}, []string{"err_code"}),
}

func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(metrics.ClipQueryTime)
	reg.MustRegister(metrics.ClipErrors)
}
