package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var RequestSecondsBuckets = prometheus.ExponentialBuckets(0.05, 2, 12)
