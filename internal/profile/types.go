package profile

import (
	"github.com/serveit-app/serveit/internal/metrics"
	"github.com/serveit-app/serveit/internal/tennis"
)

// Service assembles player profiles from the tennis store.
type Service struct {
	store   tennis.PlayerStore
	metrics metrics.Metrics
}

// minOpponentMatches is the floor below which a head-to-head record is too
// thin to call someone a best or worst opponent.
const minOpponentMatches = 3

// Document is the JSON contract the player profile page consumes. Field
// names and shapes match what the charts expect; dates are mm-dd-yyyy
// display strings and win flags are 0/1.
type Document struct {
	PlayerInfo         []PlayerInfo           `json:"playerInfo"`
	RankHistory        []RankHistoryEntry     `json:"rankHistory"`
	MatchesPlayed      int                    `json:"matchesPlayed"`
	Wins               int                    `json:"wins"`
	Losses             int                    `json:"losses"`
	SurfacePerformance []tennis.SurfaceRecord `json:"surfacePerformance"`
	HighestRank        int                    `json:"highestRank"`
	CurrentRank        int                    `json:"currentRank"`
	HighestRankPoints  int                    `json:"highestRankPoints"`
	CurrentRankPoints  int                    `json:"currentRankPoints"`
	BestOpponent       *OpponentEntry         `json:"bestOpponent"`
	WorstOpponent      *OpponentEntry         `json:"worstOpponent"`
	LongestWinStreak   int                    `json:"longestWinStreak"`
	LongestLossStreak  int                    `json:"longestLossStreak"`
}

// PlayerInfo is the bio block of the profile document.
type PlayerInfo struct {
	PlayerID int64  `json:"player_id"`
	Name     string `json:"name"`
	Country  string `json:"country"`
	Hand     string `json:"hand"`
	DOB      string `json:"dob"`
	Height   int    `json:"height"`
	IsATP    bool   `json:"is_atp"`
}

// RankHistoryEntry is one point of the rank line chart.
type RankHistoryEntry struct {
	MatchDate        string `json:"match_date"`
	PlayerRank       int    `json:"player_rank"`
	PlayerRankPoints int    `json:"player_rank_points"`
	Win              int    `json:"win"`
}

// OpponentEntry is one head-to-head record with the ratio rounded for
// display.
type OpponentEntry struct {
	Opponent      string  `json:"opponent"`
	WinsAgainst   int     `json:"wins_against"`
	LossesAgainst int     `json:"losses_against"`
	MatchesPlayed int     `json:"matches_played"`
	WinLossRatio  float64 `json:"win_loss_ratio"`
}
