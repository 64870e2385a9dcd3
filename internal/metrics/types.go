package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service is the Prometheus-backed Metrics implementation.
type Service struct {
	ProfileBuilds        prometheus.Counter
	ProfileFailures      prometheus.Counter
	ProfileBuildDuration prometheus.Histogram
	AnalyticsQueries     prometheus.Counter
	StoreFailures        prometheus.Counter
	StartupTimeSeconds   prometheus.Gauge
}
