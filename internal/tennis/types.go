package tennis

import (
	"database/sql"
	"errors"
	"time"
)

// store handles all read queries against the tennis schema.
type store struct {
	db *sql.DB
}

// queryTimeout bounds every accessor call so a stuck query surfaces as an
// error instead of hanging the request.
const queryTimeout = 15 * time.Second

var (
	// ErrPlayerNotFound is returned when a player id matches no row.
	ErrPlayerNotFound = errors.New("player not found")
	// ErrInvalidField is returned when a caller-supplied filter or sort
	// column is not in the allow-list for the queried table.
	ErrInvalidField = errors.New("invalid field")
)

// PlayerInfo is one row from the players table.
type PlayerInfo struct {
	PlayerID int64  `json:"player_id"`
	Name     string `json:"name"`
	Country  string `json:"country"`
	Hand     string `json:"hand"`
	DOB      string `json:"dob"`
	Height   int    `json:"height"`
	IsATP    bool   `json:"is_atp"`
}

// RankHistoryPoint is one match from the player's perspective: the query
// annotates rank, points and outcome for whichever side the player was on.
// Date is ISO yyyy-mm-dd; formatting for display happens in the profile layer.
// A missing rank snapshot is stored as 0.
type RankHistoryPoint struct {
	Date       string
	Rank       int
	RankPoints int
	Win        bool
}

// SurfaceRecord is the win/loss count on one surface.
type SurfaceRecord struct {
	Surface string `json:"surface"`
	Wins    int    `json:"wins"`
	Losses  int    `json:"losses"`
}

// OpponentRecord aggregates the head-to-head record against one opponent.
type OpponentRecord struct {
	Opponent      string  `json:"opponent"`
	Wins          int     `json:"wins_against"`
	Losses        int     `json:"losses_against"`
	MatchesPlayed int     `json:"matches_played"`
	WinRatio      float64 `json:"win_loss_ratio"`
}

// PlayerSummary is a search result row.
type PlayerSummary struct {
	PlayerID int64  `json:"player_id"`
	Name     string `json:"name"`
}

// StreakFilter narrows the streak leaderboard.
type StreakFilter struct {
	PlayerID   int64
	PlayerName string
	MinLength  int
	StreakType string
	StartDate  string
	EndDate    string
}

// StreakRun is a maximal run of same-outcome matches for one player.
type StreakRun struct {
	PlayerID   int64  `json:"player_id"`
	PlayerName string `json:"player_name"`
	StreakType string `json:"streak_type"`
	Length     int    `json:"streak_length"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
}

// SurfaceFilter narrows the surface performance query.
type SurfaceFilter struct {
	PlayerID   int64
	PlayerName string
	Surface    string
	MinMatches int
	StartDate  string
	EndDate    string
}

// SurfaceStats is aggregate performance for one player on one surface.
type SurfaceStats struct {
	PlayerID         int64   `json:"player_id"`
	Name             string  `json:"name"`
	Surface          string  `json:"surface"`
	TotalMatches     int     `json:"total_matches"`
	MatchesWon       int     `json:"matches_won"`
	AvgAces          float64 `json:"avg_aces"`
	AvgDoubleFaults  float64 `json:"avg_double_faults"`
	AvgFirstServesIn float64 `json:"avg_first_serves_in"`
	WinPercentage    float64 `json:"win_loss_percentage"`
}

// TimeSeriesFilter narrows the time-series query. Seasonality is one of
// "monthly", "yearly" or "" (daily).
type TimeSeriesFilter struct {
	PlayerName  string
	Surface     string
	StartDate   string
	EndDate     string
	Seasonality string
}

// TimeSeriesPoint is one period of a player's serve performance.
type TimeSeriesPoint struct {
	PlayerID        int64   `json:"player_id"`
	Name            string  `json:"name"`
	Period          string  `json:"period"`
	Surface         string  `json:"surface"`
	AvgAces         float64 `json:"avg_aces"`
	AvgDoubleFaults float64 `json:"avg_double_faults"`
	MatchesWon      int     `json:"matches_won"`
	TotalMatches    int     `json:"total_matches_played"`
}

// TopPlayersRow holds the top ten players by best rank for one year,
// shaped for the rank-bump chart.
type TopPlayersRow struct {
	Year   int     `json:"year"`
	Rank1  *string `json:"rank1"`
	Rank2  *string `json:"rank2"`
	Rank3  *string `json:"rank3"`
	Rank4  *string `json:"rank4"`
	Rank5  *string `json:"rank5"`
	Rank6  *string `json:"rank6"`
	Rank7  *string `json:"rank7"`
	Rank8  *string `json:"rank8"`
	Rank9  *string `json:"rank9"`
	Rank10 *string `json:"rank10"`
}

// DisplayDate converts an ISO yyyy-mm-dd date to the mm-dd-yyyy form the
// dashboard renders. Unparseable input is passed through unchanged.
func DisplayDate(iso string) string {
	t, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return iso
	}
	return t.Format("01-02-2006")
}
