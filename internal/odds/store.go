package odds

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// New creates a new OddsStore backed by the given database handle.
func New(db *sql.DB) OddsStore {
	return &store{db: db}
}

// MakerAnalysis aggregates every book's bets: volume, average price, price
// variance and hit rate (how often the quoted player won).
func (s *store) MakerAnalysis(ctx context.Context, filter AnalysisFilter) ([]MakerAnalysis, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	// Variance as E[x^2] - E[x]^2; SQLite has no VAR_POP.
	query := `
		SELECT
			o.odds_maker,
			COUNT(*),
			AVG(o.odds),
			AVG(o.odds * o.odds) - AVG(o.odds) * AVG(o.odds),
			SUM(CASE WHEN o.player_id = m.winner_id THEN 1 ELSE 0 END) * 100.0 / COUNT(*)
		FROM odds o
		JOIN tourney_matches m ON o.tourney_id = m.tourney_id AND o.match_num = m.match_num
		WHERE 1 = 1`

	var args []any
	if filter.OddsMaker != "" {
		query += ` AND o.odds_maker = ?`
		args = append(args, filter.OddsMaker)
	}
	if filter.StartDate != "" {
		query += ` AND m.tourney_date >= ?`
		args = append(args, filter.StartDate)
	}
	if filter.EndDate != "" {
		query += ` AND m.tourney_date <= ?`
		args = append(args, filter.EndDate)
	}
	if filter.MinOdds > 0 {
		query += ` AND o.odds >= ?`
		args = append(args, filter.MinOdds)
	}
	if filter.MaxOdds > 0 {
		query += ` AND o.odds <= ?`
		args = append(args, filter.MaxOdds)
	}
	// Rank bounds apply to the quoted player's rank snapshot at match time.
	rankExpr := `CASE WHEN o.player_id = m.winner_id THEN m.winner_rank ELSE m.loser_rank END`
	if filter.MinRank > 0 {
		query += ` AND ` + rankExpr + ` >= ?`
		args = append(args, filter.MinRank)
	}
	if filter.MaxRank > 0 {
		query += ` AND ` + rankExpr + ` <= ?`
		args = append(args, filter.MaxRank)
	}

	query += ` GROUP BY o.odds_maker ORDER BY o.odds_maker`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("maker analysis query: %w", err)
	}
	defer rows.Close()

	var result []MakerAnalysis
	for rows.Next() {
		var a MakerAnalysis
		if err := rows.Scan(&a.OddsMaker, &a.TotalBets, &a.AvgOdds, &a.Variance, &a.HitRate); err != nil {
			return nil, fmt.Errorf("maker analysis scan: %w", err)
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

// VanillaPnL is the naive always-bet-on-this-player strategy: the player's
// overall win percentage.
func (s *store) VanillaPnL(ctx context.Context, playerID int64) (*PnLResult, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	row := s.db.QueryRowContext(ctx, `
		SELECT
			p.player_id,
			COALESCE(p.name, ''),
			SUM(CASE WHEN m.winner_id = p.player_id THEN 1 ELSE 0 END) * 100.0 / COUNT(*)
		FROM players p
		JOIN tourney_matches m ON p.player_id = m.winner_id OR p.player_id = m.loser_id
		WHERE p.player_id = ?
		GROUP BY p.player_id`, playerID)

	var r PnLResult
	err := row.Scan(&r.PlayerID, &r.PlayerName, &r.ProfitLoss)
	if err == sql.ErrNoRows {
		return nil, sql.ErrNoRows
	}
	if err != nil {
		return nil, fmt.Errorf("vanilla pnl query: %w", err)
	}
	return &r, nil
}

// SyntheticScores accumulates the fixed serve-stat proxy per player and
// surface, always from the player's own side of the match.
func (s *store) SyntheticScores(ctx context.Context, filter SyntheticFilter) ([]SyntheticScore, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		SELECT
			p.player_id, COALESCE(p.name, ''), t.surface,
			SUM(CASE WHEN m.winner_id = p.player_id
				THEN COALESCE(m.w_1stWon, 0) + COALESCE(m.w_2ndWon, 0) - COALESCE(m.w_df, 0)
				ELSE COALESCE(m.l_1stWon, 0) + COALESCE(m.l_2ndWon, 0) - COALESCE(m.l_df, 0) END)
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

	query += ` GROUP BY p.player_id, t.surface`

	if filter.MinMatches > 0 {
		query += ` HAVING COUNT(*) >= ?`
		args = append(args, filter.MinMatches)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("synthetic score query: %w", err)
	}
	defer rows.Close()

	var result []SyntheticScore
	for rows.Next() {
		var sc SyntheticScore
		if err := rows.Scan(&sc.PlayerID, &sc.PlayerName, &sc.Surface, &sc.Score); err != nil {
			return nil, fmt.Errorf("synthetic score scan: %w", err)
		}
		result = append(result, sc)
	}
	return result, rows.Err()
}

// factorColumns maps caller-facing factor names to serve-stat column
// suffixes. Only values from this map are spliced into query text.
var factorColumns = map[string]string{
	"ace":           "ace",
	"df":            "df",
	"svpt":          "svpt",
	"1stIn":         "1stIn",
	"1stWon":        "1stWon",
	"2ndWon":        "2ndWon",
	"SvGms":         "SvGms",
	"bpSaved":       "bpSaved",
	"bpFaced":       "bpFaced",
	"1st_serve_won": "1stWon",
	"2nd_serve_won": "2ndWon",
	"double_faults": "df",
}

// FactorStrategyPnL evaluates a backtest: accumulate each player's
// caller-weighted serve-stat score over matches before the given year, then
// for every later match with a market quote, bet on the side with the
// higher accumulated score. A winning bet pays the quoted odds, a losing
// bet costs the stake.
func (s *store) FactorStrategyPnL(ctx context.Context, fields []string, weights []float64, year int) (*FactorPnL, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if len(fields) == 0 || len(fields) != len(weights) {
		return nil, ErrBadWeights
	}

	var winnerTerms, loserTerms []string
	for i, field := range fields {
		col, ok := factorColumns[field]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownFactor, field)
		}
		w := weights[i]
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, fmt.Errorf("%w: weight %v", ErrBadWeights, w)
		}
		lit := strconv.FormatFloat(w, 'f', -1, 64)
		winnerTerms = append(winnerTerms, fmt.Sprintf("COALESCE(w_%s, 0) * %s", col, lit))
		loserTerms = append(loserTerms, fmt.Sprintf("COALESCE(l_%s, 0) * %s", col, lit))
	}

	query := `
		WITH match_scores AS (
			SELECT tourney_id, match_num, tourney_date, winner_id AS player_id,
			       (` + strings.Join(winnerTerms, " + ") + `) AS score
			FROM tourney_matches
			UNION ALL
			SELECT tourney_id, match_num, tourney_date, loser_id AS player_id,
			       (` + strings.Join(loserTerms, " + ") + `) AS score
			FROM tourney_matches
		),
		accumulated AS (
			SELECT player_id, SUM(score) AS acc
			FROM match_scores
			WHERE CAST(strftime('%Y', tourney_date) AS INTEGER) < ?
			GROUP BY player_id
		),
		strategy AS (
			SELECT m.tourney_id, m.match_num, m.winner_id,
			       CASE WHEN p1.acc > p2.acc THEN m.winner_id ELSE m.loser_id END AS bet_on
			FROM tourney_matches m
			JOIN accumulated p1 ON m.winner_id = p1.player_id
			JOIN accumulated p2 ON m.loser_id = p2.player_id
			WHERE CAST(strftime('%Y', m.tourney_date) AS INTEGER) >= ?
		)
		SELECT COALESCE(SUM(CASE WHEN s.bet_on = s.winner_id THEN o.odds ELSE -1 END), 0), COUNT(*)
		FROM strategy s
		JOIN odds o ON o.tourney_id = s.tourney_id AND o.match_num = s.match_num AND o.player_id = s.bet_on`

	var result FactorPnL
	if err := s.db.QueryRowContext(ctx, query, year, year).Scan(&result.ProfitLoss, &result.BetsPlaced); err != nil {
		return nil, fmt.Errorf("factor strategy query: %w", err)
	}
	return &result, nil
}

// marketClauses appends the shared underdog/favorite filters.
func marketClauses(query string, filter MarketFilter, args []any) (string, []any) {
	if filter.Surface != "" {
		query += ` AND t.surface = ?`
		args = append(args, filter.Surface)
	}
	if filter.TourneyID != "" {
		query += ` AND t.tourney_id = ?`
		args = append(args, filter.TourneyID)
	}
	if filter.TourneyLevel != "" {
		query += ` AND t.tourney_level = ?`
		args = append(args, filter.TourneyLevel)
	}
	if filter.IsATP != nil {
		query += ` AND p.is_atp = ?`
		args = append(args, *filter.IsATP)
	}
	if len(filter.PlayerIDs) > 0 {
		query += ` AND p.player_id IN (?` + strings.Repeat(", ?", len(filter.PlayerIDs)-1) + `)`
		for _, id := range filter.PlayerIDs {
			args = append(args, id)
		}
	}
	return query, args
}

// Underdogs lists players by how often they won while quoted above even
// money, with the win rate over all their long-odds quotes.
func (s *store) Underdogs(ctx context.Context, filter MarketFilter) ([]Underdog, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		SELECT
			p.player_id,
			COALESCE(p.name, ''),
			COUNT(*),
			COUNT(*) * 100.0 / (
				SELECT COUNT(*)
				FROM odds o2
				JOIN tourney_matches m2 ON o2.tourney_id = m2.tourney_id AND o2.match_num = m2.match_num
				WHERE o2.player_id = p.player_id AND o2.odds > 2
			)
		FROM players p
		JOIN odds o ON p.player_id = o.player_id
		JOIN tourney_matches m ON o.tourney_id = m.tourney_id AND o.match_num = m.match_num
		JOIN tourneys t ON m.tourney_id = t.tourney_id
		WHERE o.odds > 2 AND m.winner_id = p.player_id`

	query, args := marketClauses(query, filter, nil)
	query += `
		GROUP BY p.player_id
		ORDER BY COUNT(*) DESC, p.player_id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("underdog query: %w", err)
	}
	defer rows.Close()

	var result []Underdog
	for rows.Next() {
		var u Underdog
		if err := rows.Scan(&u.PlayerID, &u.PlayerName, &u.TimesBeat, &u.WinPct); err != nil {
			return nil, fmt.Errorf("underdog scan: %w", err)
		}
		result = append(result, u)
	}
	return result, rows.Err()
}

// WorstFavorites lists players by how often they lost while quoted at or
// below even money. Only players with more than three such losses qualify.
func (s *store) WorstFavorites(ctx context.Context, filter MarketFilter) ([]FallenFavorite, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		WITH favorite_losses AS (
			SELECT
				p.player_id,
				COALESCE(p.name, '') AS player_name,
				COUNT(*) AS times_lost,
				COUNT(*) * 100.0 / (
					SELECT COUNT(*)
					FROM odds o2
					JOIN tourney_matches m2 ON o2.tourney_id = m2.tourney_id AND o2.match_num = m2.match_num
					WHERE o2.player_id = p.player_id AND o2.odds <= 2
				) AS loss_pct
			FROM players p
			JOIN odds o ON p.player_id = o.player_id
			JOIN tourney_matches m ON o.tourney_id = m.tourney_id AND o.match_num = m.match_num
			JOIN tourneys t ON m.tourney_id = t.tourney_id
			WHERE o.odds <= 2 AND m.winner_id != p.player_id`

	query, args := marketClauses(query, filter, nil)
	query += `
			GROUP BY p.player_id, p.name
		)
		SELECT player_id, player_name, times_lost, loss_pct
		FROM favorite_losses
		WHERE times_lost > 3
		ORDER BY loss_pct DESC, player_id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("worst favorite query: %w", err)
	}
	defer rows.Close()

	var result []FallenFavorite
	for rows.Next() {
		var f FallenFavorite
		if err := rows.Scan(&f.PlayerID, &f.PlayerName, &f.TimesLost, &f.LossPct); err != nil {
			return nil, fmt.Errorf("worst favorite scan: %w", err)
		}
		result = append(result, f)
	}
	return result, rows.Err()
}
