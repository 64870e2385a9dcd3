package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the application from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncProfileBuilds()
	IncProfileFailures()
	ObserveProfileBuildDuration(duration float64)
	IncAnalyticsQueries()
	IncStoreFailures()
	SetStartupTime(duration float64)
}
