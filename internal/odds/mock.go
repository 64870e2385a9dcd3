package odds

import (
	"context"
	"sync"
)

// MockStore is a mock implementation of the OddsStore interface for
// testing. It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	MakerAnalysisFunc     func(ctx context.Context, filter AnalysisFilter) ([]MakerAnalysis, error)
	VanillaPnLFunc        func(ctx context.Context, playerID int64) (*PnLResult, error)
	SyntheticScoresFunc   func(ctx context.Context, filter SyntheticFilter) ([]SyntheticScore, error)
	FactorStrategyPnLFunc func(ctx context.Context, fields []string, weights []float64, year int) (*FactorPnL, error)
	UnderdogsFunc         func(ctx context.Context, filter MarketFilter) ([]Underdog, error)
	WorstFavoritesFunc    func(ctx context.Context, filter MarketFilter) ([]FallenFavorite, error)

	// Call records
	MakerAnalysisCalls []AnalysisFilter
	VanillaPnLCalls    []int64
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

func (m *MockStore) MakerAnalysis(ctx context.Context, filter AnalysisFilter) ([]MakerAnalysis, error) {
	m.mu.Lock()
	m.MakerAnalysisCalls = append(m.MakerAnalysisCalls, filter)
	m.mu.Unlock()
	if m.MakerAnalysisFunc != nil {
		return m.MakerAnalysisFunc(ctx, filter)
	}
	return nil, nil
}

func (m *MockStore) VanillaPnL(ctx context.Context, playerID int64) (*PnLResult, error) {
	m.mu.Lock()
	m.VanillaPnLCalls = append(m.VanillaPnLCalls, playerID)
	m.mu.Unlock()
	if m.VanillaPnLFunc != nil {
		return m.VanillaPnLFunc(ctx, playerID)
	}
	return &PnLResult{}, nil
}

func (m *MockStore) SyntheticScores(ctx context.Context, filter SyntheticFilter) ([]SyntheticScore, error) {
	if m.SyntheticScoresFunc != nil {
		return m.SyntheticScoresFunc(ctx, filter)
	}
	return nil, nil
}

func (m *MockStore) FactorStrategyPnL(ctx context.Context, fields []string, weights []float64, year int) (*FactorPnL, error) {
	if m.FactorStrategyPnLFunc != nil {
		return m.FactorStrategyPnLFunc(ctx, fields, weights, year)
	}
	return &FactorPnL{}, nil
}

func (m *MockStore) Underdogs(ctx context.Context, filter MarketFilter) ([]Underdog, error) {
	if m.UnderdogsFunc != nil {
		return m.UnderdogsFunc(ctx, filter)
	}
	return nil, nil
}

func (m *MockStore) WorstFavorites(ctx context.Context, filter MarketFilter) ([]FallenFavorite, error) {
	if m.WorstFavoritesFunc != nil {
		return m.WorstFavoritesFunc(ctx, filter)
	}
	return nil, nil
}
