package odds

import (
	"database/sql"
	"errors"
	"time"
)

// store handles all read queries over the betting odds tables.
type store struct {
	db *sql.DB
}

const queryTimeout = 15 * time.Second

var (
	// ErrUnknownFactor is returned when a factor-strategy field is not in
	// the serve-stat allow-list.
	ErrUnknownFactor = errors.New("unknown factor field")
	// ErrBadWeights is returned when the weights cannot be paired with the
	// requested fields.
	ErrBadWeights = errors.New("fields and weights must pair up")
)

// AnalysisFilter narrows the odds-maker analysis.
type AnalysisFilter struct {
	OddsMaker string  `json:"odds_maker"`
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
	MinOdds   float64 `json:"min_odds"`
	MaxOdds   float64 `json:"max_odds"`
	MinRank   int     `json:"min_rank"`
	MaxRank   int     `json:"max_rank"`
}

// MakerAnalysis summarises one odds maker's book: volume, average price,
// price variance and how often the quoted player actually won.
type MakerAnalysis struct {
	OddsMaker string  `json:"odds_maker"`
	TotalBets int     `json:"total_bets"`
	AvgOdds   float64 `json:"avg_odds"`
	Variance  float64 `json:"variance"`
	HitRate   float64 `json:"hit_rate"`
}

// PnLResult is the outcome of a betting strategy for one player or book.
type PnLResult struct {
	PlayerID   int64   `json:"player_id,omitempty"`
	PlayerName string  `json:"player_name,omitempty"`
	ProfitLoss float64 `json:"profit_loss"`
}

// SyntheticFilter narrows the synthetic-score query.
type SyntheticFilter struct {
	PlayerID   int64
	PlayerName string
	Surface    string
	MinMatches int
}

// SyntheticScore is the derived serve-stat proxy metric per player and
// surface: first-serve points won plus second-serve points won minus
// double faults, accumulated over all matches.
type SyntheticScore struct {
	PlayerID   int64  `json:"player_id"`
	PlayerName string `json:"player_name"`
	Surface    string `json:"surface"`
	Score      int    `json:"synthetic_score"`
}

// MarketFilter narrows the underdog / worst-favorite queries.
type MarketFilter struct {
	Surface      string
	TourneyID    string
	TourneyLevel string
	IsATP        *bool
	PlayerIDs    []int64
}

// Underdog counts how often a player won while priced above even money.
type Underdog struct {
	PlayerID   int64   `json:"player_id"`
	PlayerName string  `json:"player_name"`
	TimesBeat  int     `json:"times_beat_the_odds"`
	WinPct     float64 `json:"underdog_win_percentage"`
}

// FallenFavorite counts how often a player lost while priced at or below
// even money.
type FallenFavorite struct {
	PlayerID   int64   `json:"player_id"`
	PlayerName string  `json:"player_name"`
	TimesLost  int     `json:"times_lost_as_favorite"`
	LossPct    float64 `json:"favorite_loss_percentage"`
}

// FactorPnL is the evaluated profit of a caller-weighted factor strategy.
type FactorPnL struct {
	ProfitLoss float64 `json:"profit_loss"`
	BetsPlaced int     `json:"bets_placed"`
}
