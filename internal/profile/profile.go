// Package profile orchestrates the queries behind the player profile page
// and merges their results into a single response document.
package profile

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/serveit-app/serveit/internal/metrics"
	"github.com/serveit-app/serveit/internal/tennis"
	"golang.org/x/sync/errgroup"
)

// New creates a profile service on top of the given store.
func New(store tennis.PlayerStore, metricsSvc metrics.Metrics) *Service {
	return &Service{store: store, metrics: metricsSvc}
}

// BuildProfile assembles the full profile document for one player.
//
// The player-info query runs first: an unknown id short-circuits before any
// dependent query is issued. The remaining queries have no dependency on
// each other and run concurrently. The build is atomic: the first failure
// aborts the whole document so the dashboard never renders a profile with
// silently missing sections.
func (s *Service) BuildProfile(ctx context.Context, playerID int64) (*Document, error) {
	start := time.Now()
	s.metrics.IncProfileBuilds()

	info, err := s.store.GetPlayerInfo(ctx, playerID)
	if err != nil {
		s.metrics.IncProfileFailures()
		return nil, err
	}

	var (
		history   []tennis.RankHistoryPoint
		surfaces  []tennis.SurfaceRecord
		opponents []tennis.OpponentRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		history, err = s.store.GetMatchHistory(gctx, playerID)
		return err
	})
	g.Go(func() error {
		var err error
		surfaces, err = s.store.GetSurfaceBreakdown(gctx, playerID)
		return err
	})
	g.Go(func() error {
		var err error
		opponents, err = s.store.GetOpponentAggregates(gctx, playerID, minOpponentMatches)
		return err
	})
	if err := g.Wait(); err != nil {
		s.metrics.IncProfileFailures()
		return nil, fmt.Errorf("building profile for player %d: %w", playerID, err)
	}

	doc := formatDocument(info, history, surfaces, opponents)

	duration := time.Since(start)
	s.metrics.ObserveProfileBuildDuration(duration.Seconds())
	log.Debug("Profile built", "playerID", playerID, "matches", len(history), "duration_ms", duration.Milliseconds())
	return doc, nil
}
