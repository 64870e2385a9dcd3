package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		ProfileBuilds: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "serveit_profile_builds_total",
			Help: "The total number of player profile builds attempted.",
		}),
		ProfileFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "serveit_profile_failures_total",
			Help: "The total number of player profile builds that failed.",
		}),
		ProfileBuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "serveit_profile_build_duration_seconds",
			Help:    "The duration of individual profile builds.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		AnalyticsQueries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "serveit_analytics_queries_total",
			Help: "The total number of analytics endpoint queries served.",
		}),
		StoreFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "serveit_store_failures_total",
			Help: "The total number of store queries that failed.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "serveit_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.ProfileBuilds,
		s.ProfileFailures,
		s.ProfileBuildDuration,
		s.AnalyticsQueries,
		s.StoreFailures,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncProfileBuilds() {
	s.ProfileBuilds.Inc()
}

func (s *Service) IncProfileFailures() {
	s.ProfileFailures.Inc()
}

func (s *Service) ObserveProfileBuildDuration(duration float64) {
	s.ProfileBuildDuration.Observe(duration)
}

func (s *Service) IncAnalyticsQueries() {
	s.AnalyticsQueries.Inc()
}

func (s *Service) IncStoreFailures() {
	s.StoreFailures.Inc()
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
