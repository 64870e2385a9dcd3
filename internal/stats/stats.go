// Package stats holds the pure metric calculators used by the player
// profile: streak detection, rank extremes and best/worst opponent
// selection. Everything here is side-effect free and operates on rows
// already fetched by the tennis store.
package stats

import "github.com/serveit-app/serveit/internal/tennis"

// RankUnavailable marks a rank or points value that cannot be derived from
// an empty match history.
const RankUnavailable = 0

// Streaks holds the longest consecutive run per outcome kind.
type Streaks struct {
	LongestWin  int
	LongestLoss int
}

// ComputeStreaks scans the chronologically ordered match history once and
// returns the longest win and loss runs. An empty history yields zero
// lengths, not an error.
func ComputeStreaks(history []tennis.RankHistoryPoint) Streaks {
	var s Streaks
	currentWin, currentLoss := 0, 0
	for _, match := range history {
		if match.Win {
			currentWin++
			currentLoss = 0
		} else {
			currentLoss++
			currentWin = 0
		}
		if currentWin > s.LongestWin {
			s.LongestWin = currentWin
		}
		if currentLoss > s.LongestLoss {
			s.LongestLoss = currentLoss
		}
	}
	return s
}

// RankExtremes holds the best (lowest) rank ever held, plus the rank and
// points from the most recent match. Values are RankUnavailable when the
// history is empty or carries no rank snapshots.
type RankExtremes struct {
	HighestRank       int
	CurrentRank       int
	HighestRankPoints int
	CurrentRankPoints int
}

// ComputeRankExtremes derives rank extremes from the ordered history.
// Matches with no recorded rank snapshot (stored as 0) are skipped when
// searching for the best rank, since ordinal ranks start at 1.
func ComputeRankExtremes(history []tennis.RankHistoryPoint) RankExtremes {
	extremes := RankExtremes{
		HighestRank:       RankUnavailable,
		CurrentRank:       RankUnavailable,
		HighestRankPoints: RankUnavailable,
		CurrentRankPoints: RankUnavailable,
	}
	if len(history) == 0 {
		return extremes
	}

	for _, match := range history {
		if match.Rank > 0 && (extremes.HighestRank == RankUnavailable || match.Rank < extremes.HighestRank) {
			extremes.HighestRank = match.Rank
		}
		if match.RankPoints > extremes.HighestRankPoints {
			extremes.HighestRankPoints = match.RankPoints
		}
	}

	last := history[len(history)-1]
	extremes.CurrentRank = last.Rank
	extremes.CurrentRankPoints = last.RankPoints
	return extremes
}

// BestAndWorstOpponent picks the most and least favourable head-to-head
// records. Best is the highest win ratio, ties broken by higher match
// count, then opponent name ascending so the result is reproducible.
// Worst mirrors the direction on ratio. Both are nil when the aggregate
// set is empty.
func BestAndWorstOpponent(records []tennis.OpponentRecord) (best, worst *tennis.OpponentRecord) {
	for i := range records {
		r := &records[i]
		if best == nil || betterThan(r, best) {
			best = r
		}
		if worst == nil || worseThan(r, worst) {
			worst = r
		}
	}
	return best, worst
}

func betterThan(a, b *tennis.OpponentRecord) bool {
	if a.WinRatio != b.WinRatio {
		return a.WinRatio > b.WinRatio
	}
	if a.MatchesPlayed != b.MatchesPlayed {
		return a.MatchesPlayed > b.MatchesPlayed
	}
	return a.Opponent < b.Opponent
}

func worseThan(a, b *tennis.OpponentRecord) bool {
	if a.WinRatio != b.WinRatio {
		return a.WinRatio < b.WinRatio
	}
	if a.MatchesPlayed != b.MatchesPlayed {
		return a.MatchesPlayed > b.MatchesPlayed
	}
	return a.Opponent < b.Opponent
}
