package http

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/serveit-app/serveit/internal/config"
	"github.com/serveit-app/serveit/internal/metrics"
	"github.com/serveit-app/serveit/internal/odds"
	"github.com/serveit-app/serveit/internal/profile"
	"github.com/serveit-app/serveit/internal/tennis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestServer(t *testing.T) (*Server, *tennis.MockStore, *odds.MockStore, *metrics.Mock) {
	t.Helper()
	store := tennis.NewMock()
	oddsStore := odds.NewMock()
	metricsSvc := metrics.NewMock()
	profileSvc := profile.New(store, metricsSvc)
	cfg := config.Config{CORS: config.CORSConfig{AllowedOrigins: []string{"*"}}}
	srv := NewServer(store, oddsStore, profileSvc, metricsSvc, http.NotFoundHandler(), cfg)
	return srv, store, oddsStore, metricsSvc
}

func doRequest(srv *Server, method, target string, body []byte) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestHealthCheckHandler(t *testing.T) {
	srv, _, _, _ := setupTestServer(t)

	rec := doRequest(srv, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK!", rec.Body.String())
}

func TestPlayerDataHandler(t *testing.T) {
	srv, store, _, _ := setupTestServer(t)
	store.GetPlayerInfoFunc = func(ctx context.Context, playerID int64) (*tennis.PlayerInfo, error) {
		return &tennis.PlayerInfo{PlayerID: playerID, Name: "Rod Laver"}, nil
	}
	store.GetMatchHistoryFunc = func(ctx context.Context, playerID int64) ([]tennis.RankHistoryPoint, error) {
		return []tennis.RankHistoryPoint{
			{Date: "2021-02-01", Rank: 3, RankPoints: 4000, Win: true},
			{Date: "2021-02-03", Rank: 2, RankPoints: 4500, Win: false},
		}, nil
	}

	rec := doRequest(srv, http.MethodGet, "/api/player/data?player_id=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var doc profile.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	require.Len(t, doc.PlayerInfo, 1)
	assert.Equal(t, "Rod Laver", doc.PlayerInfo[0].Name)
	assert.Equal(t, 2, doc.MatchesPlayed)
	assert.Equal(t, 1, doc.Wins)
	assert.Equal(t, "02-01-2021", doc.RankHistory[0].MatchDate)
}

func TestPlayerDataHandler_ValidatesPlayerID(t *testing.T) {
	srv, store, _, _ := setupTestServer(t)

	rec := doRequest(srv, http.MethodGet, "/api/player/data", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(srv, http.MethodGet, "/api/player/data?player_id=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(srv, http.MethodGet, "/api/player/data?player_id=-4", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Malformed ids never reach the store.
	assert.Empty(t, store.GetPlayerInfoCalls)
}

func TestPlayerDataHandler_UnknownPlayer(t *testing.T) {
	srv, _, _, _ := setupTestServer(t)

	// The mock returns ErrPlayerNotFound by default.
	rec := doRequest(srv, http.MethodGet, "/api/player/data?player_id=999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSearchPlayersHandler(t *testing.T) {
	srv, store, _, _ := setupTestServer(t)
	store.SearchPlayersFunc = func(ctx context.Context, term string, limit int) ([]tennis.PlayerSummary, error) {
		return []tennis.PlayerSummary{{PlayerID: 2, Name: "Bjorn Borg"}}, nil
	}

	rec := doRequest(srv, http.MethodGet, "/api/players/search?term=borg", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var players []tennis.PlayerSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &players))
	require.Len(t, players, 1)
	assert.Equal(t, "Bjorn Borg", players[0].Name)
	assert.Equal(t, []string{"borg"}, store.SearchPlayersCalls)
}

func TestSearchPlayersHandler_RequiresTerm(t *testing.T) {
	srv, _, _, _ := setupTestServer(t)

	rec := doRequest(srv, http.MethodGet, "/api/players/search", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStreaksHandler_PassesFilter(t *testing.T) {
	srv, store, _, metricsSvc := setupTestServer(t)

	params := url.Values{}
	params.Set("player_name", "laver")
	params.Set("streak_length", "5")
	params.Set("streak_type", "W")
	params.Set("start_date", "2020-01-01")

	rec := doRequest(srv, http.MethodGet, "/api/players/streaks?"+params.Encode(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, store.StreakLeadersCalls, 1)
	filter := store.StreakLeadersCalls[0]
	assert.Equal(t, "laver", filter.PlayerName)
	assert.Equal(t, 5, filter.MinLength)
	assert.Equal(t, "W", filter.StreakType)
	assert.Equal(t, "2020-01-01", filter.StartDate)
	assert.Equal(t, 1, metricsSvc.AnalyticsQueryCalls)
}

func TestStreaksHandler_RejectsBadStreakType(t *testing.T) {
	srv, store, _, _ := setupTestServer(t)

	rec := doRequest(srv, http.MethodGet, "/api/players/streaks?streak_type=X", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, store.StreakLeadersCalls)
}

func TestPaginatedPlayersHandler(t *testing.T) {
	srv, store, _, _ := setupTestServer(t)
	var gotReq tennis.ListRequest
	var gotHistorical bool
	store.ListPlayersFunc = func(ctx context.Context, req tennis.ListRequest, includeHistorical bool) (*tennis.PlayerPage, error) {
		gotReq = req
		gotHistorical = includeHistorical
		return &tennis.PlayerPage{Players: []tennis.PlayerRow{{PlayerID: 1, Name: "Rod Laver"}}, Total: 1}, nil
	}

	body := []byte(`{"name":"laver","sort_column":"dob","sort_direction":"desc","limit_count":50,"offset_count":100}`)
	rec := doRequest(srv, http.MethodPost, "/api/players/paginated", body)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, 50, gotReq.PageSize)
	assert.Equal(t, 2, gotReq.Page)
	require.Len(t, gotReq.Filters, 1)
	assert.Equal(t, tennis.FilterItem{Field: "name", Value: "laver"}, gotReq.Filters[0])
	require.Len(t, gotReq.Sorts, 1)
	assert.Equal(t, tennis.SortItem{Field: "dob", Sort: "desc"}, gotReq.Sorts[0])
	assert.False(t, gotHistorical)
}

func TestPaginatedPlayersHandler_RejectsGet(t *testing.T) {
	srv, _, _, _ := setupTestServer(t)

	rec := doRequest(srv, http.MethodGet, "/api/players/paginated", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestOddsAnalysisHandler(t *testing.T) {
	srv, _, oddsStore, _ := setupTestServer(t)
	oddsStore.MakerAnalysisFunc = func(ctx context.Context, filter odds.AnalysisFilter) ([]odds.MakerAnalysis, error) {
		return []odds.MakerAnalysis{{OddsMaker: "B365", TotalBets: 2, AvgOdds: 2.15}}, nil
	}

	body := []byte(`{"odds_maker":"B365","min_odds":1.5}`)
	rec := doRequest(srv, http.MethodPost, "/api/odds/analysis", body)
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, oddsStore.MakerAnalysisCalls, 1)
	assert.Equal(t, "B365", oddsStore.MakerAnalysisCalls[0].OddsMaker)
	assert.Equal(t, 1.5, oddsStore.MakerAnalysisCalls[0].MinOdds)
}

func TestFactorStrategyHandler(t *testing.T) {
	srv, _, oddsStore, _ := setupTestServer(t)
	oddsStore.FactorStrategyPnLFunc = func(ctx context.Context, fields []string, weights []float64, year int) (*odds.FactorPnL, error) {
		assert.Equal(t, []string{"ace", "df"}, fields)
		assert.Equal(t, []float64{1, -0.5}, weights)
		assert.Equal(t, 2021, year)
		return &odds.FactorPnL{ProfitLoss: 0.8, BetsPlaced: 2}, nil
	}

	rec := doRequest(srv, http.MethodGet, "/api/odds/factor_strategy?fields=ace,df&weights=1,-0.5&year=2021", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var result odds.FactorPnL
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 2, result.BetsPlaced)
}

func TestFactorStrategyHandler_Validation(t *testing.T) {
	srv, _, oddsStore, _ := setupTestServer(t)

	rec := doRequest(srv, http.MethodGet, "/api/odds/factor_strategy?weights=1&year=2021", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(srv, http.MethodGet, "/api/odds/factor_strategy?fields=ace&weights=1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	oddsStore.FactorStrategyPnLFunc = func(ctx context.Context, fields []string, weights []float64, year int) (*odds.FactorPnL, error) {
		return nil, odds.ErrUnknownFactor
	}
	rec = doRequest(srv, http.MethodGet, "/api/odds/factor_strategy?fields=bogus&weights=1&year=2021", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVanillaPnLHandler_NoHistoryIs404(t *testing.T) {
	srv, _, oddsStore, _ := setupTestServer(t)
	oddsStore.VanillaPnLFunc = func(ctx context.Context, playerID int64) (*odds.PnLResult, error) {
		return nil, sql.ErrNoRows
	}

	rec := doRequest(srv, http.MethodGet, "/api/odds/vanilla_pnl?player_id=999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRandomPlayerHandler(t *testing.T) {
	srv, store, _, _ := setupTestServer(t)
	store.RandomPlayerFunc = func(ctx context.Context) (int64, error) {
		return 42, nil
	}

	rec := doRequest(srv, http.MethodGet, "/api/dashboard/random-player", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]int64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(42), resp["player_id"])
}

func TestTablePlayersHandler_ParsesGridModels(t *testing.T) {
	srv, store, _, _ := setupTestServer(t)
	var gotReq tennis.ListRequest
	store.ListPlayersFunc = func(ctx context.Context, req tennis.ListRequest, includeHistorical bool) (*tennis.PlayerPage, error) {
		gotReq = req
		return &tennis.PlayerPage{Players: []tennis.PlayerRow{}}, nil
	}

	params := url.Values{}
	params.Set("paginationModel", `{"page":2,"pageSize":50}`)
	params.Set("filterModel", `{"items":[{"field":"name","value":"borg"}]}`)
	params.Set("sortModel", `[{"field":"dob","sort":"desc"}]`)

	rec := doRequest(srv, http.MethodGet, "/api/tables/players?"+params.Encode(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, 2, gotReq.Page)
	assert.Equal(t, 50, gotReq.PageSize)
	require.Len(t, gotReq.Filters, 1)
	assert.Equal(t, "borg", gotReq.Filters[0].Value)
	require.Len(t, gotReq.Sorts, 1)
	assert.Equal(t, "desc", gotReq.Sorts[0].Sort)
}

func TestTablePlayersHandler_BadModelIs400(t *testing.T) {
	srv, _, _, _ := setupTestServer(t)

	rec := doRequest(srv, http.MethodGet, "/api/tables/players?paginationModel=not-json", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTableMatchesHandler_InvalidSortFieldIs400(t *testing.T) {
	srv, store, _, _ := setupTestServer(t)
	store.ListMatchesFunc = func(ctx context.Context, req tennis.ListRequest) (*tennis.MatchPage, error) {
		return nil, tennis.ErrInvalidField
	}

	params := url.Values{}
	params.Set("sortModel", `[{"field":"w_ace; DROP TABLE players","sort":"asc"}]`)
	rec := doRequest(srv, http.MethodGet, "/api/tables/matches?"+params.Encode(), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStoreFailureIs500AndCounted(t *testing.T) {
	srv, store, _, metricsSvc := setupTestServer(t)
	store.SurfacePerformanceFunc = func(ctx context.Context, filter tennis.SurfaceFilter) ([]tennis.SurfaceStats, error) {
		return nil, errors.New("disk on fire")
	}

	rec := doRequest(srv, http.MethodGet, "/api/players/performance-by-surface", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, 1, metricsSvc.StoreFailureCalls)
}

func TestCORSHeadersApplied(t *testing.T) {
	srv, _, _, _ := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
