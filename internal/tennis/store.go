package tennis

import (
	"context"
	"database/sql"
	"fmt"
)

// New creates a new PlayerStore backed by the given database handle.
func New(db *sql.DB) PlayerStore {
	return &store{db: db}
}

// GetPlayerInfo returns the bio row for one player, or ErrPlayerNotFound.
func (s *store) GetPlayerInfo(ctx context.Context, playerID int64) (*PlayerInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	row := s.db.QueryRowContext(ctx, `
		SELECT p.player_id, COALESCE(p.name, ''), COALESCE(p.ioc, ''), COALESCE(p.hand, ''),
		       COALESCE(p.dob, ''), COALESCE(p.height, 0), p.is_atp
		FROM players p
		WHERE p.player_id = ?`, playerID)

	var info PlayerInfo
	err := row.Scan(&info.PlayerID, &info.Name, &info.Country, &info.Hand, &info.DOB, &info.Height, &info.IsATP)
	if err == sql.ErrNoRows {
		return nil, ErrPlayerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("player info query: %w", err)
	}
	return &info, nil
}

// GetMatchHistory returns every match the player appeared in, annotated from
// the player's perspective and ordered chronologically. Same-day matches are
// ordered by tournament and match number so downstream streak computation is
// deterministic.
func (s *store) GetMatchHistory(ctx context.Context, playerID int64) ([]RankHistoryPoint, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT
			m.tourney_date,
			CASE WHEN m.winner_id = ? THEN COALESCE(m.winner_rank, 0) ELSE COALESCE(m.loser_rank, 0) END,
			CASE WHEN m.winner_id = ? THEN COALESCE(m.winner_rank_points, 0) ELSE COALESCE(m.loser_rank_points, 0) END,
			CASE WHEN m.winner_id = ? THEN 1 ELSE 0 END
		FROM tourney_matches m
		WHERE m.winner_id = ? OR m.loser_id = ?
		ORDER BY m.tourney_date, m.tourney_id, m.match_num`,
		playerID, playerID, playerID, playerID, playerID)
	if err != nil {
		return nil, fmt.Errorf("match history query: %w", err)
	}
	defer rows.Close()

	var history []RankHistoryPoint
	for rows.Next() {
		var p RankHistoryPoint
		var win int
		if err := rows.Scan(&p.Date, &p.Rank, &p.RankPoints, &win); err != nil {
			return nil, fmt.Errorf("match history scan: %w", err)
		}
		p.Win = win == 1
		history = append(history, p)
	}
	return history, rows.Err()
}

// GetSurfaceBreakdown returns the player's win/loss count per surface.
func (s *store) GetSurfaceBreakdown(ctx context.Context, playerID int64) ([]SurfaceRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT
			t.surface,
			SUM(CASE WHEN m.winner_id = ? THEN 1 ELSE 0 END),
			SUM(CASE WHEN m.loser_id = ? THEN 1 ELSE 0 END)
		FROM tourneys t
		JOIN tourney_matches m ON t.tourney_id = m.tourney_id
		WHERE m.winner_id = ? OR m.loser_id = ?
		GROUP BY t.surface
		ORDER BY t.surface`,
		playerID, playerID, playerID, playerID)
	if err != nil {
		return nil, fmt.Errorf("surface breakdown query: %w", err)
	}
	defer rows.Close()

	var breakdown []SurfaceRecord
	for rows.Next() {
		var r SurfaceRecord
		if err := rows.Scan(&r.Surface, &r.Wins, &r.Losses); err != nil {
			return nil, fmt.Errorf("surface breakdown scan: %w", err)
		}
		breakdown = append(breakdown, r)
	}
	return breakdown, rows.Err()
}

// GetOpponentAggregates returns the head-to-head record against every
// opponent the player has faced at least minMatches times, ordered by
// opponent name for reproducibility.
func (s *store) GetOpponentAggregates(ctx context.Context, playerID int64, minMatches int) ([]OpponentRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT
			COALESCE(p.name, ''),
			SUM(CASE WHEN m.winner_id = ? THEN 1 ELSE 0 END),
			SUM(CASE WHEN m.loser_id = ? THEN 1 ELSE 0 END),
			COUNT(*),
			CAST(SUM(CASE WHEN m.winner_id = ? THEN 1 ELSE 0 END) AS REAL) / COUNT(*)
		FROM players p
		JOIN tourney_matches m
			ON (m.winner_id = ? AND m.loser_id = p.player_id)
			OR (m.loser_id = ? AND m.winner_id = p.player_id)
		GROUP BY p.player_id, p.name
		HAVING COUNT(*) >= ?
		ORDER BY p.name`,
		playerID, playerID, playerID, playerID, playerID, minMatches)
	if err != nil {
		return nil, fmt.Errorf("opponent aggregates query: %w", err)
	}
	defer rows.Close()

	var records []OpponentRecord
	for rows.Next() {
		var r OpponentRecord
		if err := rows.Scan(&r.Opponent, &r.Wins, &r.Losses, &r.MatchesPlayed, &r.WinRatio); err != nil {
			return nil, fmt.Errorf("opponent aggregates scan: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// SearchPlayers returns players whose name contains the term.
func (s *store) SearchPlayers(ctx context.Context, term string, limit int) ([]PlayerSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT player_id, name
		FROM players
		WHERE name LIKE ?
		ORDER BY name
		LIMIT ?`, "%"+term+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("player search query: %w", err)
	}
	defer rows.Close()

	var results []PlayerSummary
	for rows.Next() {
		var p PlayerSummary
		if err := rows.Scan(&p.PlayerID, &p.Name); err != nil {
			return nil, fmt.Errorf("player search scan: %w", err)
		}
		results = append(results, p)
	}
	return results, rows.Err()
}

// TopPlayersByYear returns, per year, the ten players with the best rank
// snapshot that year. Feeds the rank-bump chart.
func (s *store) TopPlayersByYear(ctx context.Context, startYear, endYear int) ([]TopPlayersRow, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		WITH ranked_players AS (
			SELECT
				CAST(strftime('%Y', m.tourney_date) AS INTEGER) AS year,
				p.player_id,
				p.name,
				ROW_NUMBER() OVER (
					PARTITION BY strftime('%Y', m.tourney_date)
					ORDER BY MIN(CASE WHEN m.winner_id = p.player_id THEN m.winner_rank ELSE m.loser_rank END)
				) AS rank_order
			FROM tourney_matches m
			JOIN players p ON p.player_id IN (m.winner_id, m.loser_id)
			WHERE CAST(strftime('%Y', m.tourney_date) AS INTEGER) BETWEEN ? AND ?
			  AND (
				(m.winner_id = p.player_id AND m.winner_rank <= 10)
				OR
				(m.loser_id = p.player_id AND m.loser_rank <= 10)
			  )
			GROUP BY year, p.player_id, p.name
		)
		SELECT
			year,
			MAX(CASE WHEN rank_order = 1 THEN name END),
			MAX(CASE WHEN rank_order = 2 THEN name END),
			MAX(CASE WHEN rank_order = 3 THEN name END),
			MAX(CASE WHEN rank_order = 4 THEN name END),
			MAX(CASE WHEN rank_order = 5 THEN name END),
			MAX(CASE WHEN rank_order = 6 THEN name END),
			MAX(CASE WHEN rank_order = 7 THEN name END),
			MAX(CASE WHEN rank_order = 8 THEN name END),
			MAX(CASE WHEN rank_order = 9 THEN name END),
			MAX(CASE WHEN rank_order = 10 THEN name END)
		FROM ranked_players
		WHERE rank_order <= 10
		GROUP BY year
		ORDER BY year DESC`, startYear, endYear)
	if err != nil {
		return nil, fmt.Errorf("top players query: %w", err)
	}
	defer rows.Close()

	var result []TopPlayersRow
	for rows.Next() {
		var r TopPlayersRow
		if err := rows.Scan(&r.Year, &r.Rank1, &r.Rank2, &r.Rank3, &r.Rank4, &r.Rank5,
			&r.Rank6, &r.Rank7, &r.Rank8, &r.Rank9, &r.Rank10); err != nil {
			return nil, fmt.Errorf("top players scan: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// RandomPlayer returns the id of a random player with at least ten matches,
// used by the dashboard's "surprise me" profile link.
func (s *store) RandomPlayer(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var id int64
	err := s.db.QueryRowContext(ctx, `
		SELECT player_id
		FROM (
			SELECT winner_id AS player_id FROM tourney_matches
			UNION ALL
			SELECT loser_id AS player_id FROM tourney_matches
		)
		GROUP BY player_id
		HAVING COUNT(*) >= 10
		ORDER BY RANDOM()
		LIMIT 1`).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, ErrPlayerNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("random player query: %w", err)
	}
	return id, nil
}

// StreakLeaders computes every win/loss streak across all players with a
// windowed gap-and-island query and returns the ones passing the filter,
// longest first.
func (s *store) StreakLeaders(ctx context.Context, filter StreakFilter) ([]StreakRun, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	minLength := filter.MinLength
	if minLength <= 0 {
		minLength = 3
	}

	query := `
		WITH match_results AS (
			SELECT tourney_id, match_num, tourney_date, winner_id AS player_id, 'W' AS result
			FROM tourney_matches
			UNION ALL
			SELECT tourney_id, match_num, tourney_date, loser_id AS player_id, 'L' AS result
			FROM tourney_matches
		),
		ranked_results AS (
			SELECT player_id, tourney_date, result,
			       ROW_NUMBER() OVER (PARTITION BY player_id ORDER BY tourney_date, tourney_id, match_num) AS seq
			FROM match_results
		),
		streak_starts AS (
			SELECT player_id, tourney_date, result, seq,
			       CASE WHEN result = LAG(result) OVER (PARTITION BY player_id ORDER BY seq) THEN 0 ELSE 1 END AS streak_start
			FROM ranked_results
		),
		streak_groups AS (
			SELECT player_id, tourney_date, result,
			       SUM(streak_start) OVER (PARTITION BY player_id ORDER BY seq) AS streak_id
			FROM streak_starts
		),
		player_streaks AS (
			SELECT player_id, result, MIN(tourney_date) AS start_date, MAX(tourney_date) AS end_date, COUNT(*) AS streak_length
			FROM streak_groups
			GROUP BY player_id, result, streak_id
		)
		SELECT ps.player_id, COALESCE(pl.name, ''), ps.result, ps.streak_length, ps.start_date, ps.end_date
		FROM player_streaks ps
		LEFT JOIN players pl ON pl.player_id = ps.player_id
		WHERE ps.streak_length >= ?`

	args := []any{minLength}

	if filter.PlayerID != 0 {
		query += ` AND ps.player_id = ?`
		args = append(args, filter.PlayerID)
	}
	if filter.PlayerName != "" {
		query += ` AND pl.name LIKE ?`
		args = append(args, "%"+filter.PlayerName+"%")
	}
	if filter.StreakType != "" {
		query += ` AND ps.result = ?`
		args = append(args, filter.StreakType)
	}
	if filter.StartDate != "" {
		query += ` AND ps.start_date >= ?`
		args = append(args, filter.StartDate)
	}
	if filter.EndDate != "" {
		query += ` AND ps.end_date <= ?`
		args = append(args, filter.EndDate)
	}

	query += ` ORDER BY ps.streak_length DESC, ps.player_id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("streak leaders query: %w", err)
	}
	defer rows.Close()

	var streaks []StreakRun
	for rows.Next() {
		var run StreakRun
		if err := rows.Scan(&run.PlayerID, &run.PlayerName, &run.StreakType, &run.Length, &run.StartDate, &run.EndDate); err != nil {
			return nil, fmt.Errorf("streak leaders scan: %w", err)
		}
		streaks = append(streaks, run)
	}
	return streaks, rows.Err()
}

// SurfacePerformance aggregates serve stats and win percentage per player
// and surface.
func (s *store) SurfacePerformance(ctx context.Context, filter SurfaceFilter) ([]SurfaceStats, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		SELECT
			p.player_id, COALESCE(p.name, ''), t.surface,
			COUNT(*),
			SUM(CASE WHEN m.winner_id = p.player_id THEN 1 ELSE 0 END),
			AVG(COALESCE(m.w_ace, 0)),
			AVG(COALESCE(m.w_df, 0)),
			AVG(COALESCE(m.w_1stIn, 0)),
			SUM(CASE WHEN m.winner_id = p.player_id THEN 1 ELSE 0 END) * 100.0 / COUNT(*)
		FROM players p
		JOIN tourney_matches m ON p.player_id = m.winner_id OR p.player_id = m.loser_id
		JOIN tourneys t ON m.tourney_id = t.tourney_id
		WHERE 1 = 1`

	var args []any
	if filter.PlayerID != 0 {
		query += ` AND p.player_id = ?`
		args = append(args, filter.PlayerID)
	}
	if filter.PlayerName != "" {
		query += ` AND p.name LIKE ?`
		args = append(args, "%"+filter.PlayerName+"%")
	}
	if filter.Surface != "" {
		query += ` AND t.surface = ?`
		args = append(args, filter.Surface)
	}
	if filter.StartDate != "" {
		query += ` AND m.tourney_date >= ?`
		args = append(args, filter.StartDate)
	}
	if filter.EndDate != "" {
		query += ` AND m.tourney_date <= ?`
		args = append(args, filter.EndDate)
	}

	query += ` GROUP BY p.player_id, p.name, t.surface`

	if filter.MinMatches > 0 {
		query += ` HAVING COUNT(*) >= ?`
		args = append(args, filter.MinMatches)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("surface performance query: %w", err)
	}
	defer rows.Close()

	var stats []SurfaceStats
	for rows.Next() {
		var st SurfaceStats
		if err := rows.Scan(&st.PlayerID, &st.Name, &st.Surface, &st.TotalMatches, &st.MatchesWon,
			&st.AvgAces, &st.AvgDoubleFaults, &st.AvgFirstServesIn, &st.WinPercentage); err != nil {
			return nil, fmt.Errorf("surface performance scan: %w", err)
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

// periodExprs maps a seasonality keyword to the grouping expression. Only
// values from this map are ever spliced into query text.
var periodExprs = map[string]string{
	"monthly": `strftime('%Y-%m', m.tourney_date)`,
	"yearly":  `strftime('%Y', m.tourney_date)`,
	"":        `m.tourney_date`,
}

// TimeSeries aggregates a player's serve performance per period.
func (s *store) TimeSeries(ctx context.Context, filter TimeSeriesFilter) ([]TimeSeriesPoint, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	periodExpr, ok := periodExprs[filter.Seasonality]
	if !ok {
		return nil, fmt.Errorf("%w: seasonality %q", ErrInvalidField, filter.Seasonality)
	}

	query := `
		SELECT
			p.player_id,
			COALESCE(p.name, ''),
			` + periodExpr + ` AS period,
			t.surface,
			AVG(CASE WHEN m.winner_id = p.player_id THEN COALESCE(m.w_ace, 0) ELSE COALESCE(m.l_ace, 0) END),
			AVG(CASE WHEN m.winner_id = p.player_id THEN COALESCE(m.w_df, 0) ELSE COALESCE(m.l_df, 0) END),
			SUM(CASE WHEN m.winner_id = p.player_id THEN 1 ELSE 0 END),
			COUNT(*)
		FROM tourney_matches m
		JOIN players p ON p.player_id IN (m.winner_id, m.loser_id)
		JOIN tourneys t ON m.tourney_id = t.tourney_id
		WHERE 1 = 1`

	var args []any
	if filter.PlayerName != "" {
		query += ` AND p.name LIKE ?`
		args = append(args, "%"+filter.PlayerName+"%")
	}
	if filter.Surface != "" {
		query += ` AND t.surface = ?`
		args = append(args, filter.Surface)
	}
	if filter.StartDate != "" {
		query += ` AND m.tourney_date >= ?`
		args = append(args, filter.StartDate)
	}
	if filter.EndDate != "" {
		query += ` AND m.tourney_date <= ?`
		args = append(args, filter.EndDate)
	}

	query += ` GROUP BY p.player_id, p.name, t.surface, period ORDER BY period ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("time series query: %w", err)
	}
	defer rows.Close()

	var points []TimeSeriesPoint
	for rows.Next() {
		var pt TimeSeriesPoint
		if err := rows.Scan(&pt.PlayerID, &pt.Name, &pt.Period, &pt.Surface,
			&pt.AvgAces, &pt.AvgDoubleFaults, &pt.MatchesWon, &pt.TotalMatches); err != nil {
			return nil, fmt.Errorf("time series scan: %w", err)
		}
		points = append(points, pt)
	}
	return points, rows.Err()
}
