package http

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/serveit-app/serveit/internal/odds"
	"github.com/serveit-app/serveit/internal/tennis"
)

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to encode response", "error", err)
	}
}

// storeError maps store errors onto HTTP statuses. Unknown ids are 404s,
// rejected filter/sort/factor input is a 400, anything else is a 500 and
// counts as a store failure.
func (s *Server) storeError(w http.ResponseWriter, query string, err error) {
	switch {
	case errors.Is(err, tennis.ErrPlayerNotFound), errors.Is(err, sql.ErrNoRows):
		http.Error(w, "Player not found", http.StatusNotFound)
	case errors.Is(err, tennis.ErrInvalidField),
		errors.Is(err, odds.ErrUnknownFactor),
		errors.Is(err, odds.ErrBadWeights):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		log.Error("Query failed", "query", query, "error", err)
		s.Metrics.IncStoreFailures()
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// requirePlayerID parses the player_id query parameter, writing a 400 and
// returning false if it is missing or not a positive integer.
func requirePlayerID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.URL.Query().Get("player_id")
	if raw == "" {
		http.Error(w, "Player ID is required", http.StatusBadRequest)
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "Invalid player ID", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func queryInt(q url.Values, key string, fallback int) int {
	raw := q.Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

// PlayerDataHandler serves the aggregated player profile document.
func (s *Server) PlayerDataHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID, ok := requirePlayerID(w, r)
		if !ok {
			return
		}
		doc, err := s.Profile.BuildProfile(r.Context(), playerID)
		if err != nil {
			s.storeError(w, "player profile", err)
			return
		}
		writeJSON(w, http.StatusOK, doc)
	}
}

func (s *Server) SearchPlayersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		term := strings.TrimSpace(r.URL.Query().Get("term"))
		if term == "" {
			http.Error(w, "Search term is required", http.StatusBadRequest)
			return
		}
		players, err := s.Store.SearchPlayers(r.Context(), term, queryInt(r.URL.Query(), "limit", 10))
		if err != nil {
			s.storeError(w, "player search", err)
			return
		}
		writeJSON(w, http.StatusOK, players)
	}
}

func (s *Server) StreaksHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filter := tennis.StreakFilter{
			PlayerName: q.Get("player_name"),
			MinLength:  queryInt(q, "streak_length", 3),
			StreakType: q.Get("streak_type"),
			StartDate:  q.Get("start_date"),
			EndDate:    q.Get("end_date"),
		}
		if raw := q.Get("player_id"); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || id <= 0 {
				http.Error(w, "Invalid player ID", http.StatusBadRequest)
				return
			}
			filter.PlayerID = id
		}
		if filter.StreakType != "" && filter.StreakType != "W" && filter.StreakType != "L" {
			http.Error(w, "streak_type must be W or L", http.StatusBadRequest)
			return
		}
		s.Metrics.IncAnalyticsQueries()
		runs, err := s.Store.StreakLeaders(r.Context(), filter)
		if err != nil {
			s.storeError(w, "streak leaders", err)
			return
		}
		writeJSON(w, http.StatusOK, runs)
	}
}

func (s *Server) SurfacePerformanceHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filter := tennis.SurfaceFilter{
			PlayerName: q.Get("player_name"),
			Surface:    q.Get("surface"),
			MinMatches: queryInt(q, "min_matches", 10),
			StartDate:  q.Get("start_date"),
			EndDate:    q.Get("end_date"),
		}
		if raw := q.Get("player_id"); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || id <= 0 {
				http.Error(w, "Invalid player ID", http.StatusBadRequest)
				return
			}
			filter.PlayerID = id
		}
		s.Metrics.IncAnalyticsQueries()
		stats, err := s.Store.SurfacePerformance(r.Context(), filter)
		if err != nil {
			s.storeError(w, "surface performance", err)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

func (s *Server) TimeSeriesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filter := tennis.TimeSeriesFilter{
			PlayerName:  q.Get("player_name"),
			Surface:     q.Get("surface"),
			StartDate:   q.Get("start_date"),
			EndDate:     q.Get("end_date"),
			Seasonality: q.Get("seasonality"),
		}
		s.Metrics.IncAnalyticsQueries()
		points, err := s.Store.TimeSeries(r.Context(), filter)
		if err != nil {
			s.storeError(w, "time series", err)
			return
		}
		writeJSON(w, http.StatusOK, points)
	}
}

// marketFilterFromQuery parses the shared underdog / worst-favorite filters.
func marketFilterFromQuery(q url.Values) (odds.MarketFilter, error) {
	filter := odds.MarketFilter{
		Surface:      q.Get("surface"),
		TourneyID:    q.Get("tournament_id"),
		TourneyLevel: q.Get("tournament_level"),
	}
	if raw := q.Get("is_atp"); raw != "" {
		isATP, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, fmt.Errorf("invalid is_atp value %q", raw)
		}
		filter.IsATP = &isATP
	}
	for _, raw := range q["player_id"] {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return filter, fmt.Errorf("invalid player ID %q", raw)
		}
		filter.PlayerIDs = append(filter.PlayerIDs, id)
	}
	return filter, nil
}

func (s *Server) UnderdogHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := marketFilterFromQuery(r.URL.Query())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.Metrics.IncAnalyticsQueries()
		underdogs, err := s.Odds.Underdogs(r.Context(), filter)
		if err != nil {
			s.storeError(w, "underdogs", err)
			return
		}
		writeJSON(w, http.StatusOK, underdogs)
	}
}

func (s *Server) WorstFavoriteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := marketFilterFromQuery(r.URL.Query())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.Metrics.IncAnalyticsQueries()
		favorites, err := s.Odds.WorstFavorites(r.Context(), filter)
		if err != nil {
			s.storeError(w, "worst favorites", err)
			return
		}
		writeJSON(w, http.StatusOK, favorites)
	}
}

// paginatedPlayersRequest is the POST body of the players search grid. Every
// filter value arrives as a string and matches as a substring.
type paginatedPlayersRequest struct {
	PlayerID          string `json:"player_id"`
	Name              string `json:"name"`
	Hand              string `json:"hand"`
	DOB               string `json:"dob"`
	IOC               string `json:"ioc"`
	Height            string `json:"height"`
	IsATP             string `json:"is_atp"`
	SortColumn        string `json:"sort_column"`
	SortDirection     string `json:"sort_direction"`
	Limit             int    `json:"limit_count"`
	Offset            int    `json:"offset_count"`
	IncludeHistorical bool   `json:"include_historical"`
}

func (s *Server) PaginatedPlayersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var body paginatedPlayersRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		req := tennis.ListRequest{PageSize: body.Limit}
		if req.PageSize <= 0 {
			req.PageSize = 25
		}
		if body.Offset > 0 {
			req.Page = body.Offset / req.PageSize
		}
		for _, f := range []tennis.FilterItem{
			{Field: "player_id", Value: body.PlayerID},
			{Field: "name", Value: body.Name},
			{Field: "hand", Value: body.Hand},
			{Field: "dob", Value: body.DOB},
			{Field: "ioc", Value: body.IOC},
			{Field: "height", Value: body.Height},
			{Field: "is_atp", Value: body.IsATP},
		} {
			if f.Value != "" {
				req.Filters = append(req.Filters, f)
			}
		}
		if body.SortColumn != "" {
			req.Sorts = []tennis.SortItem{{Field: body.SortColumn, Sort: body.SortDirection}}
		}

		page, err := s.Store.ListPlayers(r.Context(), req, body.IncludeHistorical)
		if err != nil {
			s.storeError(w, "paginated players", err)
			return
		}
		writeJSON(w, http.StatusOK, page)
	}
}

func (s *Server) OddsAnalysisHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var filter odds.AnalysisFilter
		if err := json.NewDecoder(r.Body).Decode(&filter); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		s.Metrics.IncAnalyticsQueries()
		analysis, err := s.Odds.MakerAnalysis(r.Context(), filter)
		if err != nil {
			s.storeError(w, "odds maker analysis", err)
			return
		}
		writeJSON(w, http.StatusOK, analysis)
	}
}

func (s *Server) SyntheticScoreHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filter := odds.SyntheticFilter{
			PlayerName: q.Get("player_name"),
			Surface:    q.Get("surface"),
			MinMatches: queryInt(q, "min_matches", 10),
		}
		if raw := q.Get("player_id"); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || id <= 0 {
				http.Error(w, "Invalid player ID", http.StatusBadRequest)
				return
			}
			filter.PlayerID = id
		}
		s.Metrics.IncAnalyticsQueries()
		scores, err := s.Odds.SyntheticScores(r.Context(), filter)
		if err != nil {
			s.storeError(w, "synthetic scores", err)
			return
		}
		writeJSON(w, http.StatusOK, scores)
	}
}

func (s *Server) FactorStrategyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		fields := strings.Split(q.Get("fields"), ",")
		if len(fields) == 1 && fields[0] == "" {
			http.Error(w, "At least one factor field is required", http.StatusBadRequest)
			return
		}
		var weights []float64
		for _, raw := range strings.Split(q.Get("weights"), ",") {
			weight, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil {
				http.Error(w, "Invalid weight value", http.StatusBadRequest)
				return
			}
			weights = append(weights, weight)
		}
		year, err := strconv.Atoi(q.Get("year"))
		if err != nil {
			http.Error(w, "A valid year is required", http.StatusBadRequest)
			return
		}
		s.Metrics.IncAnalyticsQueries()
		result, err := s.Odds.FactorStrategyPnL(r.Context(), fields, weights, year)
		if err != nil {
			s.storeError(w, "factor strategy", err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func (s *Server) VanillaPnLHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID, ok := requirePlayerID(w, r)
		if !ok {
			return
		}
		s.Metrics.IncAnalyticsQueries()
		result, err := s.Odds.VanillaPnL(r.Context(), playerID)
		if err != nil {
			s.storeError(w, "vanilla pnl", err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func (s *Server) TopPlayersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		startYear := queryInt(q, "startYear", 2017)
		endYear := queryInt(q, "endYear", time.Now().Year())
		if startYear > endYear {
			http.Error(w, "start_year must not be after end_year", http.StatusBadRequest)
			return
		}
		rows, err := s.Store.TopPlayersByYear(r.Context(), startYear, endYear)
		if err != nil {
			s.storeError(w, "top players", err)
			return
		}
		writeJSON(w, http.StatusOK, rows)
	}
}

func (s *Server) RandomPlayerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := s.Store.RandomPlayer(r.Context())
		if err != nil {
			s.storeError(w, "random player", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int64{"player_id": id})
	}
}

// parseListRequest decodes the data-grid models the table endpoints receive
// as JSON-encoded query parameters.
func parseListRequest(q url.Values) (tennis.ListRequest, error) {
	var req tennis.ListRequest
	if raw := q.Get("paginationModel"); raw != "" {
		var pm struct {
			Page     int `json:"page"`
			PageSize int `json:"pageSize"`
		}
		if err := json.Unmarshal([]byte(raw), &pm); err != nil {
			return req, fmt.Errorf("invalid paginationModel")
		}
		req.Page, req.PageSize = pm.Page, pm.PageSize
	}
	if raw := q.Get("filterModel"); raw != "" {
		var fm struct {
			Items []tennis.FilterItem `json:"items"`
		}
		if err := json.Unmarshal([]byte(raw), &fm); err != nil {
			return req, fmt.Errorf("invalid filterModel")
		}
		req.Filters = fm.Items
	}
	if raw := q.Get("sortModel"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Sorts); err != nil {
			return req, fmt.Errorf("invalid sortModel")
		}
	}
	return req, nil
}

func (s *Server) TablePlayersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := parseListRequest(r.URL.Query())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		includeHistorical := r.URL.Query().Get("include_historical") == "true"
		page, err := s.Store.ListPlayers(r.Context(), req, includeHistorical)
		if err != nil {
			s.storeError(w, "players table", err)
			return
		}
		writeJSON(w, http.StatusOK, page)
	}
}

func (s *Server) TableTourneysHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := parseListRequest(r.URL.Query())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		page, err := s.Store.ListTourneys(r.Context(), req)
		if err != nil {
			s.storeError(w, "tourneys table", err)
			return
		}
		writeJSON(w, http.StatusOK, page)
	}
}

func (s *Server) TableMatchesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := parseListRequest(r.URL.Query())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		page, err := s.Store.ListMatches(r.Context(), req)
		if err != nil {
			s.storeError(w, "matches table", err)
			return
		}
		writeJSON(w, http.StatusOK, page)
	}
}
