package tennis

import (
	"context"
	"sync"
)

// MockStore is a mock implementation of the PlayerStore interface for
// testing. It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	GetPlayerInfoFunc         func(ctx context.Context, playerID int64) (*PlayerInfo, error)
	GetMatchHistoryFunc       func(ctx context.Context, playerID int64) ([]RankHistoryPoint, error)
	GetSurfaceBreakdownFunc   func(ctx context.Context, playerID int64) ([]SurfaceRecord, error)
	GetOpponentAggregatesFunc func(ctx context.Context, playerID int64, minMatches int) ([]OpponentRecord, error)
	SearchPlayersFunc         func(ctx context.Context, term string, limit int) ([]PlayerSummary, error)
	TopPlayersByYearFunc      func(ctx context.Context, startYear, endYear int) ([]TopPlayersRow, error)
	RandomPlayerFunc          func(ctx context.Context) (int64, error)
	StreakLeadersFunc         func(ctx context.Context, filter StreakFilter) ([]StreakRun, error)
	SurfacePerformanceFunc    func(ctx context.Context, filter SurfaceFilter) ([]SurfaceStats, error)
	TimeSeriesFunc            func(ctx context.Context, filter TimeSeriesFilter) ([]TimeSeriesPoint, error)
	ListPlayersFunc           func(ctx context.Context, req ListRequest, includeHistorical bool) (*PlayerPage, error)
	ListTourneysFunc          func(ctx context.Context, req ListRequest) (*TourneyPage, error)
	ListMatchesFunc           func(ctx context.Context, req ListRequest) (*MatchPage, error)

	// Call records
	GetPlayerInfoCalls         []int64
	GetMatchHistoryCalls       []int64
	GetSurfaceBreakdownCalls   []int64
	GetOpponentAggregatesCalls []struct {
		PlayerID   int64
		MinMatches int
	}
	SearchPlayersCalls []string
	StreakLeadersCalls []StreakFilter
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

// Reset clears all call records.
func (m *MockStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetPlayerInfoCalls = nil
	m.GetMatchHistoryCalls = nil
	m.GetSurfaceBreakdownCalls = nil
	m.GetOpponentAggregatesCalls = nil
	m.SearchPlayersCalls = nil
	m.StreakLeadersCalls = nil
}

func (m *MockStore) GetPlayerInfo(ctx context.Context, playerID int64) (*PlayerInfo, error) {
	m.mu.Lock()
	m.GetPlayerInfoCalls = append(m.GetPlayerInfoCalls, playerID)
	m.mu.Unlock()
	if m.GetPlayerInfoFunc != nil {
		return m.GetPlayerInfoFunc(ctx, playerID)
	}
	return nil, ErrPlayerNotFound
}

func (m *MockStore) GetMatchHistory(ctx context.Context, playerID int64) ([]RankHistoryPoint, error) {
	m.mu.Lock()
	m.GetMatchHistoryCalls = append(m.GetMatchHistoryCalls, playerID)
	m.mu.Unlock()
	if m.GetMatchHistoryFunc != nil {
		return m.GetMatchHistoryFunc(ctx, playerID)
	}
	return nil, nil
}

func (m *MockStore) GetSurfaceBreakdown(ctx context.Context, playerID int64) ([]SurfaceRecord, error) {
	m.mu.Lock()
	m.GetSurfaceBreakdownCalls = append(m.GetSurfaceBreakdownCalls, playerID)
	m.mu.Unlock()
	if m.GetSurfaceBreakdownFunc != nil {
		return m.GetSurfaceBreakdownFunc(ctx, playerID)
	}
	return nil, nil
}

func (m *MockStore) GetOpponentAggregates(ctx context.Context, playerID int64, minMatches int) ([]OpponentRecord, error) {
	m.mu.Lock()
	m.GetOpponentAggregatesCalls = append(m.GetOpponentAggregatesCalls, struct {
		PlayerID   int64
		MinMatches int
	}{playerID, minMatches})
	m.mu.Unlock()
	if m.GetOpponentAggregatesFunc != nil {
		return m.GetOpponentAggregatesFunc(ctx, playerID, minMatches)
	}
	return nil, nil
}

func (m *MockStore) SearchPlayers(ctx context.Context, term string, limit int) ([]PlayerSummary, error) {
	m.mu.Lock()
	m.SearchPlayersCalls = append(m.SearchPlayersCalls, term)
	m.mu.Unlock()
	if m.SearchPlayersFunc != nil {
		return m.SearchPlayersFunc(ctx, term, limit)
	}
	return nil, nil
}

func (m *MockStore) TopPlayersByYear(ctx context.Context, startYear, endYear int) ([]TopPlayersRow, error) {
	if m.TopPlayersByYearFunc != nil {
		return m.TopPlayersByYearFunc(ctx, startYear, endYear)
	}
	return nil, nil
}

func (m *MockStore) RandomPlayer(ctx context.Context) (int64, error) {
	if m.RandomPlayerFunc != nil {
		return m.RandomPlayerFunc(ctx)
	}
	return 0, ErrPlayerNotFound
}

func (m *MockStore) StreakLeaders(ctx context.Context, filter StreakFilter) ([]StreakRun, error) {
	m.mu.Lock()
	m.StreakLeadersCalls = append(m.StreakLeadersCalls, filter)
	m.mu.Unlock()
	if m.StreakLeadersFunc != nil {
		return m.StreakLeadersFunc(ctx, filter)
	}
	return nil, nil
}

func (m *MockStore) SurfacePerformance(ctx context.Context, filter SurfaceFilter) ([]SurfaceStats, error) {
	if m.SurfacePerformanceFunc != nil {
		return m.SurfacePerformanceFunc(ctx, filter)
	}
	return nil, nil
}

func (m *MockStore) TimeSeries(ctx context.Context, filter TimeSeriesFilter) ([]TimeSeriesPoint, error) {
	if m.TimeSeriesFunc != nil {
		return m.TimeSeriesFunc(ctx, filter)
	}
	return nil, nil
}

func (m *MockStore) ListPlayers(ctx context.Context, req ListRequest, includeHistorical bool) (*PlayerPage, error) {
	if m.ListPlayersFunc != nil {
		return m.ListPlayersFunc(ctx, req, includeHistorical)
	}
	return &PlayerPage{Players: []PlayerRow{}}, nil
}

func (m *MockStore) ListTourneys(ctx context.Context, req ListRequest) (*TourneyPage, error) {
	if m.ListTourneysFunc != nil {
		return m.ListTourneysFunc(ctx, req)
	}
	return &TourneyPage{Tourneys: []TourneyRow{}}, nil
}

func (m *MockStore) ListMatches(ctx context.Context, req ListRequest) (*MatchPage, error) {
	if m.ListMatchesFunc != nil {
		return m.ListMatchesFunc(ctx, req)
	}
	return &MatchPage{Matches: []MatchRow{}}, nil
}
