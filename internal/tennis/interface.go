package tennis

import "context"

// PlayerStore defines the read-only interface over the tennis schema.
// Every operation binds its inputs as SQL parameters; none interpolate
// caller-controlled data into query text.
type PlayerStore interface {
	// Profile accessors.
	GetPlayerInfo(ctx context.Context, playerID int64) (*PlayerInfo, error)
	GetMatchHistory(ctx context.Context, playerID int64) ([]RankHistoryPoint, error)
	GetSurfaceBreakdown(ctx context.Context, playerID int64) ([]SurfaceRecord, error)
	GetOpponentAggregates(ctx context.Context, playerID int64, minMatches int) ([]OpponentRecord, error)

	// Search and dashboard.
	SearchPlayers(ctx context.Context, term string, limit int) ([]PlayerSummary, error)
	TopPlayersByYear(ctx context.Context, startYear, endYear int) ([]TopPlayersRow, error)
	RandomPlayer(ctx context.Context) (int64, error)

	// Analytics leaderboards.
	StreakLeaders(ctx context.Context, filter StreakFilter) ([]StreakRun, error)
	SurfacePerformance(ctx context.Context, filter SurfaceFilter) ([]SurfaceStats, error)
	TimeSeries(ctx context.Context, filter TimeSeriesFilter) ([]TimeSeriesPoint, error)

	// Paginated data tables.
	ListPlayers(ctx context.Context, req ListRequest, includeHistorical bool) (*PlayerPage, error)
	ListTourneys(ctx context.Context, req ListRequest) (*TourneyPage, error)
	ListMatches(ctx context.Context, req ListRequest) (*MatchPage, error)
}
