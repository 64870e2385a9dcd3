package odds

import "context"

// OddsStore defines the read-only interface over the betting market data.
type OddsStore interface {
	MakerAnalysis(ctx context.Context, filter AnalysisFilter) ([]MakerAnalysis, error)
	VanillaPnL(ctx context.Context, playerID int64) (*PnLResult, error)
	SyntheticScores(ctx context.Context, filter SyntheticFilter) ([]SyntheticScore, error)
	FactorStrategyPnL(ctx context.Context, fields []string, weights []float64, year int) (*FactorPnL, error)
	Underdogs(ctx context.Context, filter MarketFilter) ([]Underdog, error)
	WorstFavorites(ctx context.Context, filter MarketFilter) ([]FallenFavorite, error)
}
