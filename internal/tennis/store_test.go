package tennis

import (
	"context"
	"database/sql"
	"testing"

	"github.com/serveit-app/serveit/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestStore creates an in-memory database with a small fixture:
// four players, two tournaments and five matches.
//
// Player 1's chronology: W, W, L, W, L with rank snapshots 5, 4, 3, 3, 2.
func setupTestStore(t *testing.T) (PlayerStore, *sql.DB, func()) {
	t.Helper()

	db, teardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)

	players := []struct {
		id     int64
		name   string
		hand   string
		dob    string
		ioc    string
		height int
	}{
		{1, "Rod Laver", "L", "1938-08-09", "AUS", 173},
		{2, "Bjorn Borg", "R", "1956-06-06", "SWE", 180},
		{3, "John McEnroe", "L", "1959-02-16", "USA", 180},
		{4, "Ghost Player", "R", "1900-01-01", "FRA", 175},
	}
	for _, p := range players {
		_, err := db.Exec(`INSERT INTO players (player_id, name, hand, dob, ioc, height, is_atp) VALUES (?, ?, ?, ?, ?, ?, 1)`,
			p.id, p.name, p.hand, p.dob, p.ioc, p.height)
		require.NoError(t, err)
	}

	_, err = db.Exec(`INSERT INTO tourneys (tourney_id, tourney_name, surface, num_match, tourney_level, best_of) VALUES
		('2021-001', 'Melbourne Open', 'Hard', 2, 'G', 5),
		('2021-002', 'Paris Open', 'Clay', 3, 'G', 5)`)
	require.NoError(t, err)

	matches := []struct {
		tourneyID             string
		matchNum              int
		date                  string
		winner, loser         int64
		wName, lName          string
		wRank, lRank          int
		wPoints, lPoints      int
	}{
		{"2021-001", 1, "2021-01-05", 1, 2, "Rod Laver", "Bjorn Borg", 5, 2, 3000, 4000},
		{"2021-001", 2, "2021-01-07", 1, 3, "Rod Laver", "John McEnroe", 4, 7, 3100, 2000},
		{"2021-002", 1, "2021-05-10", 2, 1, "Bjorn Borg", "Rod Laver", 2, 3, 4100, 3200},
		{"2021-002", 2, "2021-05-12", 1, 2, "Rod Laver", "Bjorn Borg", 3, 2, 3300, 4100},
		{"2021-002", 3, "2021-05-14", 2, 1, "Bjorn Borg", "Rod Laver", 1, 2, 4300, 3500},
	}
	for _, m := range matches {
		_, err := db.Exec(`INSERT INTO tourney_matches
			(tourney_id, match_num, tourney_date, winner_id, loser_id, winner_name, loser_name,
			 winner_rank, loser_rank, winner_rank_points, loser_rank_points, score, minutes,
			 w_ace, w_df, w_1stIn, l_ace, l_df, l_1stIn)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, '6-4 6-4', 120, 10, 2, 40, 5, 4, 35)`,
			m.tourneyID, m.matchNum, m.date, m.winner, m.loser, m.wName, m.lName,
			m.wRank, m.lRank, m.wPoints, m.lPoints)
		require.NoError(t, err)
	}

	return New(db), db, teardown
}

func TestGetPlayerInfo(t *testing.T) {
	store, _, teardown := setupTestStore(t)
	defer teardown()

	info, err := store.GetPlayerInfo(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), info.PlayerID)
	assert.Equal(t, "Rod Laver", info.Name)
	assert.Equal(t, "AUS", info.Country)
	assert.Equal(t, "L", info.Hand)
	assert.Equal(t, "1938-08-09", info.DOB)
	assert.True(t, info.IsATP)
}

func TestGetPlayerInfo_NotFound(t *testing.T) {
	store, _, teardown := setupTestStore(t)
	defer teardown()

	_, err := store.GetPlayerInfo(context.Background(), 999)
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestGetMatchHistory_PerspectiveAndOrder(t *testing.T) {
	store, _, teardown := setupTestStore(t)
	defer teardown()

	history, err := store.GetMatchHistory(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, history, 5)

	wantWins := []bool{true, true, false, true, false}
	wantRanks := []int{5, 4, 3, 3, 2}
	wantDates := []string{"2021-01-05", "2021-01-07", "2021-05-10", "2021-05-12", "2021-05-14"}
	for i, p := range history {
		assert.Equal(t, wantWins[i], p.Win, "outcome at index %d", i)
		assert.Equal(t, wantRanks[i], p.Rank, "rank at index %d", i)
		assert.Equal(t, wantDates[i], p.Date, "date at index %d", i)
	}
}

// addSameDayMatches appends three matches for player 1, all played on
// 2021-07-01 across two tournaments, inserted in scrambled order so only
// the (tourney_id, match_num) tiebreak can produce the right sequence:
// 2021-010 #1 (win), 2021-010 #2 (win), 2021-011 #1 (loss).
func addSameDayMatches(t *testing.T, db *sql.DB) {
	t.Helper()

	_, err := db.Exec(`INSERT INTO tourneys (tourney_id, tourney_name, surface, num_match, tourney_level, best_of) VALUES
		('2021-010', 'Bastad Open', 'Clay', 2, 'A', 3),
		('2021-011', 'Umag Open', 'Clay', 1, 'A', 3)`)
	require.NoError(t, err)

	sameDay := []struct {
		tourneyID     string
		matchNum      int
		winner, loser int64
		wName, lName  string
	}{
		{"2021-011", 1, 3, 1, "John McEnroe", "Rod Laver"},
		{"2021-010", 2, 1, 3, "Rod Laver", "John McEnroe"},
		{"2021-010", 1, 1, 2, "Rod Laver", "Bjorn Borg"},
	}
	for _, m := range sameDay {
		_, err := db.Exec(`INSERT INTO tourney_matches
			(tourney_id, match_num, tourney_date, winner_id, loser_id, winner_name, loser_name,
			 winner_rank, loser_rank, winner_rank_points, loser_rank_points, score, minutes)
			VALUES (?, ?, '2021-07-01', ?, ?, ?, ?, 2, 3, 3600, 3400, '6-4 6-4', 95)`,
			m.tourneyID, m.matchNum, m.winner, m.loser, m.wName, m.lName)
		require.NoError(t, err)
	}
}

func TestGetMatchHistory_SameDayTiebreak(t *testing.T) {
	store, db, teardown := setupTestStore(t)
	defer teardown()
	addSameDayMatches(t, db)

	history, err := store.GetMatchHistory(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, history, 8)

	// The tail is the same-day block, ordered by tournament then match
	// number, not by insertion order.
	wantWins := []bool{true, true, false}
	for i, win := range wantWins {
		p := history[5+i]
		assert.Equal(t, "2021-07-01", p.Date, "date at index %d", 5+i)
		assert.Equal(t, win, p.Win, "outcome at index %d", 5+i)
	}
}

func TestStreakLeaders_SameDayTiebreak(t *testing.T) {
	store, db, teardown := setupTestStore(t)
	defer teardown()
	addSameDayMatches(t, db)

	// The two same-day wins only form one run of length two when the
	// window orders them by (tourney_id, match_num).
	streaks, err := store.StreakLeaders(context.Background(), StreakFilter{
		PlayerID:   1,
		MinLength:  2,
		StreakType: "W",
		StartDate:  "2021-07-01",
	})
	require.NoError(t, err)
	require.Len(t, streaks, 1)
	assert.Equal(t, 2, streaks[0].Length)
	assert.Equal(t, "2021-07-01", streaks[0].StartDate)
	assert.Equal(t, "2021-07-01", streaks[0].EndDate)
}

func TestGetSurfaceBreakdown(t *testing.T) {
	store, _, teardown := setupTestStore(t)
	defer teardown()

	breakdown, err := store.GetSurfaceBreakdown(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, breakdown, 2)

	// Ordered by surface name: Clay before Hard.
	assert.Equal(t, SurfaceRecord{Surface: "Clay", Wins: 1, Losses: 2}, breakdown[0])
	assert.Equal(t, SurfaceRecord{Surface: "Hard", Wins: 2, Losses: 0}, breakdown[1])
}

func TestGetOpponentAggregates_MinMatchesFloor(t *testing.T) {
	store, _, teardown := setupTestStore(t)
	defer teardown()

	// Player 1 faced Borg four times and McEnroe once; the floor of three
	// must exclude McEnroe.
	records, err := store.GetOpponentAggregates(context.Background(), 1, 3)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Bjorn Borg", records[0].Opponent)
	assert.Equal(t, 2, records[0].Wins)
	assert.Equal(t, 2, records[0].Losses)
	assert.Equal(t, 4, records[0].MatchesPlayed)
	assert.InDelta(t, 0.5, records[0].WinRatio, 1e-9)

	// Lowering the floor brings McEnroe in.
	records, err = store.GetOpponentAggregates(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestSearchPlayers(t *testing.T) {
	store, _, teardown := setupTestStore(t)
	defer teardown()

	results, err := store.SearchPlayers(context.Background(), "bor", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Bjorn Borg", results[0].Name)
}

func TestStreakLeaders(t *testing.T) {
	store, _, teardown := setupTestStore(t)
	defer teardown()

	streaks, err := store.StreakLeaders(context.Background(), StreakFilter{MinLength: 2})
	require.NoError(t, err)
	require.Len(t, streaks, 1)
	assert.Equal(t, int64(1), streaks[0].PlayerID)
	assert.Equal(t, "W", streaks[0].StreakType)
	assert.Equal(t, 2, streaks[0].Length)
	assert.Equal(t, "2021-01-05", streaks[0].StartDate)
	assert.Equal(t, "2021-01-07", streaks[0].EndDate)
}

func TestStreakLeaders_TypeFilter(t *testing.T) {
	store, _, teardown := setupTestStore(t)
	defer teardown()

	streaks, err := store.StreakLeaders(context.Background(), StreakFilter{MinLength: 1, StreakType: "L", PlayerID: 3})
	require.NoError(t, err)
	require.Len(t, streaks, 1)
	assert.Equal(t, "John McEnroe", streaks[0].PlayerName)
	assert.Equal(t, 1, streaks[0].Length)
}

func TestSurfacePerformance(t *testing.T) {
	store, _, teardown := setupTestStore(t)
	defer teardown()

	stats, err := store.SurfacePerformance(context.Background(), SurfaceFilter{PlayerID: 1, Surface: "Clay"})
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, 3, stats[0].TotalMatches)
	assert.Equal(t, 1, stats[0].MatchesWon)
	assert.InDelta(t, 100.0/3.0, stats[0].WinPercentage, 1e-6)

	// A floor above the match count filters the row out.
	stats, err = store.SurfacePerformance(context.Background(), SurfaceFilter{PlayerID: 1, Surface: "Clay", MinMatches: 4})
	require.NoError(t, err)
	assert.Empty(t, stats)
}

func TestTimeSeries_Monthly(t *testing.T) {
	store, _, teardown := setupTestStore(t)
	defer teardown()

	points, err := store.TimeSeries(context.Background(), TimeSeriesFilter{PlayerName: "Laver", Seasonality: "monthly"})
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, "2021-01", points[0].Period)
	assert.Equal(t, 2, points[0].TotalMatches)
	assert.Equal(t, "2021-05", points[1].Period)
	assert.Equal(t, 3, points[1].TotalMatches)
}

func TestTimeSeries_RejectsUnknownSeasonality(t *testing.T) {
	store, _, teardown := setupTestStore(t)
	defer teardown()

	_, err := store.TimeSeries(context.Background(), TimeSeriesFilter{Seasonality: "weekly; DROP TABLE players"})
	assert.ErrorIs(t, err, ErrInvalidField)
}

func TestTopPlayersByYear(t *testing.T) {
	store, _, teardown := setupTestStore(t)
	defer teardown()

	rowsByYear, err := store.TopPlayersByYear(context.Background(), 2020, 2022)
	require.NoError(t, err)
	require.Len(t, rowsByYear, 1)
	assert.Equal(t, 2021, rowsByYear[0].Year)
	// Borg's best snapshot is rank 1, Laver's is rank 2.
	require.NotNil(t, rowsByYear[0].Rank1)
	assert.Equal(t, "Bjorn Borg", *rowsByYear[0].Rank1)
	require.NotNil(t, rowsByYear[0].Rank2)
	assert.Equal(t, "Rod Laver", *rowsByYear[0].Rank2)
}

func TestRandomPlayer_RequiresTenMatches(t *testing.T) {
	store, _, teardown := setupTestStore(t)
	defer teardown()

	// The fixture has no player with ten matches.
	_, err := store.RandomPlayer(context.Background())
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestListPlayers_ExcludesHistoricalByDefault(t *testing.T) {
	store, _, teardown := setupTestStore(t)
	defer teardown()

	page, err := store.ListPlayers(context.Background(), ListRequest{PageSize: 25}, false)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)

	page, err = store.ListPlayers(context.Background(), ListRequest{PageSize: 25}, true)
	require.NoError(t, err)
	assert.Equal(t, 4, page.Total)
	for _, p := range page.Players {
		if p.PlayerID == 4 {
			assert.True(t, p.IsHistorical)
		} else {
			assert.False(t, p.IsHistorical)
		}
	}
}

func TestListPlayers_SortAndFilter(t *testing.T) {
	store, _, teardown := setupTestStore(t)
	defer teardown()

	page, err := store.ListPlayers(context.Background(), ListRequest{
		PageSize: 25,
		Filters:  []FilterItem{{Field: "ioc", Value: "AUS"}},
		Sorts:    []SortItem{{Field: "name", Sort: "desc"}},
	}, true)
	require.NoError(t, err)
	require.Len(t, page.Players, 1)
	assert.Equal(t, "Rod Laver", page.Players[0].Name)
	assert.Equal(t, "08-09-1938", page.Players[0].DOB)
}

func TestListPlayers_RejectsUnknownSortColumn(t *testing.T) {
	store, _, teardown := setupTestStore(t)
	defer teardown()

	_, err := store.ListPlayers(context.Background(), ListRequest{
		Sorts: []SortItem{{Field: "name; DROP TABLE players", Sort: "asc"}},
	}, false)
	assert.ErrorIs(t, err, ErrInvalidField)

	_, err = store.ListPlayers(context.Background(), ListRequest{
		Sorts: []SortItem{{Field: "name", Sort: "asc, (SELECT 1)"}},
	}, false)
	assert.ErrorIs(t, err, ErrInvalidField)
}

func TestListMatches_Pagination(t *testing.T) {
	store, _, teardown := setupTestStore(t)
	defer teardown()

	page, err := store.ListMatches(context.Background(), ListRequest{
		PageSize: 2,
		Sorts:    []SortItem{{Field: "tourney_date", Sort: "asc"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 5, page.Total)
	require.Len(t, page.Matches, 2)
	assert.Equal(t, "01-05-2021", page.Matches[0].TourneyDate)
	assert.Equal(t, "Melbourne Open", page.Matches[0].TourneyName)

	page2, err := store.ListMatches(context.Background(), ListRequest{
		Page:     2,
		PageSize: 2,
		Sorts:    []SortItem{{Field: "tourney_date", Sort: "asc"}},
	})
	require.NoError(t, err)
	require.Len(t, page2.Matches, 1)
	assert.Equal(t, "05-14-2021", page2.Matches[0].TourneyDate)
}

func TestListTourneys(t *testing.T) {
	store, _, teardown := setupTestStore(t)
	defer teardown()

	page, err := store.ListTourneys(context.Background(), ListRequest{
		Filters: []FilterItem{{Field: "surface", Value: "Clay"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
	require.Len(t, page.Tourneys, 1)
	assert.Equal(t, "Paris Open", page.Tourneys[0].Name)
}
