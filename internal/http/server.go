package http

import (
	"net/http"

	"github.com/rs/cors"
	"github.com/serveit-app/serveit/internal/config"
	"github.com/serveit-app/serveit/internal/metrics"
	"github.com/serveit-app/serveit/internal/odds"
	"github.com/serveit-app/serveit/internal/profile"
	"github.com/serveit-app/serveit/internal/tennis"
)

func NewServer(store tennis.PlayerStore, oddsStore odds.OddsStore, profileSvc *profile.Service, metricsSvc metrics.Metrics, metricsHandler http.Handler, cfg config.Config) *Server {
	server := &Server{
		Store:          store,
		Odds:           oddsStore,
		Profile:        profileSvc,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		Router:         http.NewServeMux(),
	}

	server.routes()

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
	})
	server.handler = c.Handler(server.Router)
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// This makes it easy to add more middlewares in the future, like an
	// authentication middleware.
	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("/health", Chain(s.HealthCheckHandler(), requestIDMiddleware, paramsMiddleware))

	s.Router.Handle("/api/player/data", Chain(s.PlayerDataHandler(), requestIDMiddleware, paramsMiddleware))
	s.Router.Handle("/api/players/search", Chain(s.SearchPlayersHandler(), requestIDMiddleware, paramsMiddleware))
	s.Router.Handle("/api/players/streaks", Chain(s.StreaksHandler(), requestIDMiddleware, paramsMiddleware))
	s.Router.Handle("/api/players/performance-by-surface", Chain(s.SurfacePerformanceHandler(), requestIDMiddleware, paramsMiddleware))
	s.Router.Handle("/api/players/time-series-analysis", Chain(s.TimeSeriesHandler(), requestIDMiddleware, paramsMiddleware))
	s.Router.Handle("/api/players/underdog", Chain(s.UnderdogHandler(), requestIDMiddleware, paramsMiddleware))
	s.Router.Handle("/api/players/worst-favorite", Chain(s.WorstFavoriteHandler(), requestIDMiddleware, paramsMiddleware))
	s.Router.Handle("/api/players/paginated", Chain(s.PaginatedPlayersHandler(), requestIDMiddleware, paramsMiddleware))

	s.Router.Handle("/api/odds/analysis", Chain(s.OddsAnalysisHandler(), requestIDMiddleware, paramsMiddleware))
	s.Router.Handle("/api/odds/synthetic_score", Chain(s.SyntheticScoreHandler(), requestIDMiddleware, paramsMiddleware))
	s.Router.Handle("/api/odds/factor_strategy", Chain(s.FactorStrategyHandler(), requestIDMiddleware, paramsMiddleware))
	s.Router.Handle("/api/odds/vanilla_pnl", Chain(s.VanillaPnLHandler(), requestIDMiddleware, paramsMiddleware))

	s.Router.Handle("/api/dashboard/top-players", Chain(s.TopPlayersHandler(), requestIDMiddleware, paramsMiddleware))
	s.Router.Handle("/api/dashboard/random-player", Chain(s.RandomPlayerHandler(), requestIDMiddleware, paramsMiddleware))

	s.Router.Handle("/api/tables/players", Chain(s.TablePlayersHandler(), requestIDMiddleware, paramsMiddleware))
	s.Router.Handle("/api/tables/tourneys", Chain(s.TableTourneysHandler(), requestIDMiddleware, paramsMiddleware))
	s.Router.Handle("/api/tables/matches", Chain(s.TableMatchesHandler(), requestIDMiddleware, paramsMiddleware))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}
