package http

import (
	"net/http"

	"github.com/serveit-app/serveit/internal/config"
	"github.com/serveit-app/serveit/internal/metrics"
	"github.com/serveit-app/serveit/internal/odds"
	"github.com/serveit-app/serveit/internal/profile"
	"github.com/serveit-app/serveit/internal/tennis"
)

type Server struct {
	Store          tennis.PlayerStore
	Odds           odds.OddsStore
	Profile        *profile.Service
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Cfg            config.Config
	Router         *http.ServeMux

	// handler is the router wrapped with the CORS layer.
	handler http.Handler
}
