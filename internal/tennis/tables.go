package tennis

import (
	"context"
	"fmt"
	"strings"
)

// ListRequest is the pagination/filter/sort model sent by the data-grid
// frontend. Filter and sort fields are validated against per-table
// allow-lists before any query text is assembled.
type ListRequest struct {
	Page     int
	PageSize int
	Filters  []FilterItem
	Sorts    []SortItem
}

type FilterItem struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

type SortItem struct {
	Field string `json:"field"`
	Sort  string `json:"sort"`
}

// PlayerRow is one row of the players data table.
type PlayerRow struct {
	PlayerID     int64  `json:"player_id"`
	Name         string `json:"name"`
	Hand         string `json:"hand"`
	DOB          string `json:"dob"`
	Country      string `json:"ioc"`
	Height       int    `json:"height"`
	IsATP        bool   `json:"is_atp"`
	IsHistorical bool   `json:"is_historical"`
}

type PlayerPage struct {
	Players []PlayerRow `json:"players"`
	Total   int         `json:"total"`
}

// TourneyRow is one row of the tournaments data table.
type TourneyRow struct {
	ID       string `json:"id"`
	Name     string `json:"tourney_name"`
	Surface  string `json:"surface"`
	NumMatch int    `json:"num_match"`
	Level    string `json:"tourney_level"`
	BestOf   int    `json:"best_of"`
}

type TourneyPage struct {
	Tourneys []TourneyRow `json:"tourneys"`
	Total    int          `json:"total"`
}

// MatchRow is one row of the matches data table.
type MatchRow struct {
	WinnerName        string `json:"winner_name"`
	WinnerRank        int    `json:"winner_rank"`
	LoserName         string `json:"loser_name"`
	LoserRank         int    `json:"loser_rank"`
	Score             string `json:"score"`
	TourneyName       string `json:"tourney_name"`
	TourneyDate       string `json:"tourney_date"`
	Minutes           int    `json:"minutes"`
	WinnerAces        int    `json:"winner_aces"`
	LoserAces         int    `json:"loser_aces"`
	WinnerDoubleFault int    `json:"winner_double_faults"`
	LoserDoubleFault  int    `json:"loser_double_faults"`
}

type MatchPage struct {
	Matches []MatchRow `json:"matches"`
	Total   int        `json:"total"`
}

// Per-table allow-lists mapping exposed field names to real columns.
// Anything not listed here is rejected, never interpolated.
var (
	playerColumns = map[string]string{
		"player_id": "p.player_id",
		"name":      "p.name",
		"hand":      "p.hand",
		"dob":       "p.dob",
		"ioc":       "p.ioc",
		"height":    "p.height",
		"is_atp":    "p.is_atp",
	}
	tourneyColumns = map[string]string{
		"tourney_id":    "tourney_id",
		"tourney_name":  "tourney_name",
		"surface":       "surface",
		"num_match":     "num_match",
		"tourney_level": "tourney_level",
		"best_of":       "best_of",
	}
	matchColumns = map[string]string{
		"winner_name":  "m.winner_name",
		"winner_rank":  "m.winner_rank",
		"loser_name":   "m.loser_name",
		"loser_rank":   "m.loser_rank",
		"score":        "m.score",
		"tourney_name": "t.tourney_name",
		"tourney_date": "m.tourney_date",
		"minutes":      "m.minutes",
	}
)

// buildClauses turns a ListRequest into WHERE/ORDER BY fragments with bound
// arguments, validating every field against the allow-list.
func buildClauses(req ListRequest, columns map[string]string) (where string, order string, args []any, err error) {
	var sb strings.Builder
	for _, f := range req.Filters {
		if strings.TrimSpace(f.Value) == "" {
			continue
		}
		col, ok := columns[f.Field]
		if !ok {
			return "", "", nil, fmt.Errorf("%w: filter column %q", ErrInvalidField, f.Field)
		}
		sb.WriteString(" AND " + col + " LIKE ?")
		args = append(args, "%"+f.Value+"%")
	}

	var orders []string
	for _, s := range req.Sorts {
		col, ok := columns[s.Field]
		if !ok {
			return "", "", nil, fmt.Errorf("%w: sort column %q", ErrInvalidField, s.Field)
		}
		dir := "ASC"
		switch strings.ToLower(s.Sort) {
		case "", "asc":
		case "desc":
			dir = "DESC"
		default:
			return "", "", nil, fmt.Errorf("%w: sort direction %q", ErrInvalidField, s.Sort)
		}
		orders = append(orders, col+" "+dir)
	}
	if len(orders) > 0 {
		order = " ORDER BY " + strings.Join(orders, ", ")
	}
	return sb.String(), order, args, nil
}

func (req ListRequest) limitOffset() (int, int) {
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 25
	}
	page := req.Page
	if page < 0 {
		page = 0
	}
	return pageSize, page * pageSize
}

// ListPlayers returns one page of the players table plus the total count.
// Historical players (no recorded matches) are excluded unless requested.
func (s *store) ListPlayers(ctx context.Context, req ListRequest, includeHistorical bool) (*PlayerPage, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	where, order, args, err := buildClauses(req, playerColumns)
	if err != nil {
		return nil, err
	}

	base := `
		FROM players p
		LEFT JOIN (
			SELECT winner_id AS player_id FROM tourney_matches
			UNION
			SELECT loser_id AS player_id FROM tourney_matches
		) pm ON p.player_id = pm.player_id
		WHERE p.name IS NOT NULL AND p.dob IS NOT NULL` + where
	if !includeHistorical {
		base += ` AND pm.player_id IS NOT NULL`
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT p.player_id) `+base, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("players count query: %w", err)
	}

	limit, offset := req.limitOffset()
	dataArgs := append(append([]any{}, args...), limit, offset)
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT
			p.player_id, COALESCE(p.name, ''), COALESCE(p.hand, ''), COALESCE(p.dob, ''),
			COALESCE(p.ioc, ''), COALESCE(p.height, 0), p.is_atp,
			CASE WHEN pm.player_id IS NULL THEN 1 ELSE 0 END AS is_historical
		`+base+order+` LIMIT ? OFFSET ?`, dataArgs...)
	if err != nil {
		return nil, fmt.Errorf("players page query: %w", err)
	}
	defer rows.Close()

	page := &PlayerPage{Players: []PlayerRow{}, Total: total}
	for rows.Next() {
		var r PlayerRow
		var historical int
		if err := rows.Scan(&r.PlayerID, &r.Name, &r.Hand, &r.DOB, &r.Country, &r.Height, &r.IsATP, &historical); err != nil {
			return nil, fmt.Errorf("players page scan: %w", err)
		}
		r.DOB = DisplayDate(r.DOB)
		r.IsHistorical = historical == 1
		page.Players = append(page.Players, r)
	}
	return page, rows.Err()
}

// ListTourneys returns one page of the tournaments table plus the total count.
func (s *store) ListTourneys(ctx context.Context, req ListRequest) (*TourneyPage, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	where, order, args, err := buildClauses(req, tourneyColumns)
	if err != nil {
		return nil, err
	}

	base := ` FROM tourneys WHERE tourney_name IS NOT NULL` + where

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*)`+base, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("tourneys count query: %w", err)
	}

	limit, offset := req.limitOffset()
	dataArgs := append(append([]any{}, args...), limit, offset)
	rows, err := s.db.QueryContext(ctx, `
		SELECT tourney_id, COALESCE(tourney_name, ''), COALESCE(surface, ''), num_match, COALESCE(tourney_level, ''), best_of
		`+base+order+` LIMIT ? OFFSET ?`, dataArgs...)
	if err != nil {
		return nil, fmt.Errorf("tourneys page query: %w", err)
	}
	defer rows.Close()

	page := &TourneyPage{Tourneys: []TourneyRow{}, Total: total}
	for rows.Next() {
		var r TourneyRow
		if err := rows.Scan(&r.ID, &r.Name, &r.Surface, &r.NumMatch, &r.Level, &r.BestOf); err != nil {
			return nil, fmt.Errorf("tourneys page scan: %w", err)
		}
		page.Tourneys = append(page.Tourneys, r)
	}
	return page, rows.Err()
}

// ListMatches returns one page of the matches table plus the total count.
func (s *store) ListMatches(ctx context.Context, req ListRequest) (*MatchPage, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	where, order, args, err := buildClauses(req, matchColumns)
	if err != nil {
		return nil, err
	}

	base := `
		FROM tourney_matches m
		JOIN tourneys t ON m.tourney_id = t.tourney_id
		WHERE 1 = 1` + where

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*)`+base, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("matches count query: %w", err)
	}

	limit, offset := req.limitOffset()
	dataArgs := append(append([]any{}, args...), limit, offset)
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			COALESCE(m.winner_name, ''), COALESCE(m.winner_rank, 0),
			COALESCE(m.loser_name, ''), COALESCE(m.loser_rank, 0),
			COALESCE(m.score, ''), COALESCE(t.tourney_name, ''), m.tourney_date,
			COALESCE(m.minutes, 0),
			COALESCE(m.w_ace, 0), COALESCE(m.l_ace, 0),
			COALESCE(m.w_df, 0), COALESCE(m.l_df, 0)
		`+base+order+` LIMIT ? OFFSET ?`, dataArgs...)
	if err != nil {
		return nil, fmt.Errorf("matches page query: %w", err)
	}
	defer rows.Close()

	page := &MatchPage{Matches: []MatchRow{}, Total: total}
	for rows.Next() {
		var r MatchRow
		if err := rows.Scan(&r.WinnerName, &r.WinnerRank, &r.LoserName, &r.LoserRank, &r.Score,
			&r.TourneyName, &r.TourneyDate, &r.Minutes,
			&r.WinnerAces, &r.LoserAces, &r.WinnerDoubleFault, &r.LoserDoubleFault); err != nil {
			return nil, fmt.Errorf("matches page scan: %w", err)
		}
		r.TourneyDate = DisplayDate(r.TourneyDate)
		page.Matches = append(page.Matches, r)
	}
	return page, rows.Err()
}
