package metrics

import (
	"app/internal/app/gateway"
	"app/pkg/resemble"

	"github.com/prometheus/client_golang/prometheus"
)

func RegisterMetrics(reg prometheus.Registerer) {
	resemble.RegisterMetrics(reg)
	gateway.RegisterMetrics(reg)
}
