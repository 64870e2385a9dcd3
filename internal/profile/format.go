package profile

import (
	"math"

	"github.com/serveit-app/serveit/internal/stats"
	"github.com/serveit-app/serveit/internal/tennis"
)

// formatDocument projects the raw rows and derived metrics onto the JSON
// contract the charts consume. Only display values are reshaped here: dates
// become mm-dd-yyyy strings and opponent ratios are rounded to two
// decimals; everything else keeps its stored precision.
func formatDocument(info *tennis.PlayerInfo, history []tennis.RankHistoryPoint, surfaces []tennis.SurfaceRecord, opponents []tennis.OpponentRecord) *Document {
	streaks := stats.ComputeStreaks(history)
	extremes := stats.ComputeRankExtremes(history)
	best, worst := stats.BestAndWorstOpponent(opponents)

	rankHistory := make([]RankHistoryEntry, 0, len(history))
	wins := 0
	for _, p := range history {
		entry := RankHistoryEntry{
			MatchDate:        tennis.DisplayDate(p.Date),
			PlayerRank:       p.Rank,
			PlayerRankPoints: p.RankPoints,
		}
		if p.Win {
			entry.Win = 1
			wins++
		}
		rankHistory = append(rankHistory, entry)
	}

	if surfaces == nil {
		surfaces = []tennis.SurfaceRecord{}
	}

	return &Document{
		PlayerInfo: []PlayerInfo{{
			PlayerID: info.PlayerID,
			Name:     info.Name,
			Country:  info.Country,
			Hand:     info.Hand,
			DOB:      tennis.DisplayDate(info.DOB),
			Height:   info.Height,
			IsATP:    info.IsATP,
		}},
		RankHistory:        rankHistory,
		MatchesPlayed:      len(history),
		Wins:               wins,
		Losses:             len(history) - wins,
		SurfacePerformance: surfaces,
		HighestRank:        extremes.HighestRank,
		CurrentRank:        extremes.CurrentRank,
		HighestRankPoints:  extremes.HighestRankPoints,
		CurrentRankPoints:  extremes.CurrentRankPoints,
		BestOpponent:       opponentEntry(best),
		WorstOpponent:      opponentEntry(worst),
		LongestWinStreak:   streaks.LongestWin,
		LongestLossStreak:  streaks.LongestLoss,
	}
}

func opponentEntry(r *tennis.OpponentRecord) *OpponentEntry {
	if r == nil {
		return nil
	}
	return &OpponentEntry{
		Opponent:      r.Opponent,
		WinsAgainst:   r.Wins,
		LossesAgainst: r.Losses,
		MatchesPlayed: r.MatchesPlayed,
		WinLossRatio:  math.Round(r.WinRatio*100) / 100,
	}
}
