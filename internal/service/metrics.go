package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/freedom_case_2/opsmetrics/internal/models"
	"github.com/freedom_case_2/opsmetrics/internal/utils"
)

const (
	// PlaceholderFirstResponseMinutes is reported until first-response tracking exists.
	PlaceholderFirstResponseMinutes = 30.0
	// FirstContactSharePct estimates cases resolved on first contact as a share of closed cases.
	FirstContactSharePct = 15
)

type MetricsService struct {
	Cases     CaseStore
	Surveys   SurveyStore
	FollowUps FollowUpStore
	Logger    zerolog.Logger
	Now       func() time.Time
}

// ComputeGeneralMetrics aggregates dashboard figures for cases created inside window,
// optionally restricted to one site. Every sub-query runs concurrently and the first
// failure aborts the whole computation.
func (s *MetricsService) ComputeGeneralMetrics(ctx context.Context, window models.Window, siteID string) (models.DashboardMetrics, error) {
	ctx, span := startSpan(ctx, "metrics.compute_general")
	defer span.End()

	if err := validateWindow(window, false); err != nil {
		return models.DashboardMetrics{}, err
	}
	start := time.Now()
	base := scope(window, siteID)
	slaCutoff := clock(s.Now).Add(-SLAThreshold)

	openFilter := base
	openFilter.States = models.OpenCaseStates
	closedFilter := base
	closedFilter.States = []models.CaseState{models.CaseStateClosed}
	resolvedFilter := base
	resolvedFilter.ClosedWithTimestamp = true
	breachFilter := openFilter
	breachFilter.CreatedBefore = &slaCutoff

	active := true
	inactive := false

	var (
		open, closed, total, breached int
		stateCounts                   []models.StateCount
		completed                     []models.Survey
		surveys                       int
		resolved                      []models.CaseTimes
		activeFollowUps, noResponse   int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.Cases.CountCases(gctx, openFilter)
		open = n
		return storeErr("count open cases", err)
	})
	g.Go(func() error {
		n, err := s.Cases.CountCases(gctx, closedFilter)
		closed = n
		return storeErr("count closed cases", err)
	})
	g.Go(func() error {
		n, err := s.Cases.CountCases(gctx, base)
		total = n
		return storeErr("count cases", err)
	})
	g.Go(func() error {
		n, err := s.Cases.CountCases(gctx, breachFilter)
		breached = n
		return storeErr("count sla breached cases", err)
	})
	g.Go(func() error {
		rows, err := s.Cases.CountCasesByState(gctx, base)
		stateCounts = rows
		return storeErr("count cases by state", err)
	})
	g.Go(func() error {
		rows, err := s.Cases.ListClosedCaseTimes(gctx, resolvedFilter)
		resolved = rows
		return storeErr("list resolution times", err)
	})
	g.Go(func() error {
		rows, err := s.Surveys.ListCompletedSurveys(gctx, base)
		completed = rows
		return storeErr("list completed surveys", err)
	})
	g.Go(func() error {
		n, err := s.Surveys.CountSurveys(gctx, models.SurveyFilter{Case: base})
		surveys = n
		return storeErr("count surveys", err)
	})
	g.Go(func() error {
		n, err := s.FollowUps.CountFollowUps(gctx, models.FollowUpFilter{Case: base, Active: &active})
		activeFollowUps = n
		return storeErr("count active follow-ups", err)
	})
	g.Go(func() error {
		n, err := s.FollowUps.CountFollowUps(gctx, models.FollowUpFilter{Case: base, Active: &inactive, Outcome: models.FollowUpOutcomeNoResponse})
		noResponse = n
		return storeErr("count unanswered follow-ups", err)
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return models.DashboardMetrics{}, err
	}

	var byState models.StateBreakdown
	for _, sc := range stateCounts {
		byState.Add(sc.State, sc.Count)
	}

	m := models.DashboardMetrics{
		OpenCases:                open,
		ClosedCases:              closed,
		TotalCases:               total,
		ByState:                  byState,
		AvgSatisfaction:          utils.Round2(meanOverall(completed)),
		SurveyResponseRate:       utils.Round2(utils.Percent(len(completed), surveys, 0)),
		AvgResolutionHours:       utils.Round2(meanResolutionHours(resolved)),
		AvgFirstResponseMinutes:  PlaceholderFirstResponseMinutes,
		ResolvedOnFirstContact:   closed * FirstContactSharePct / 100,
		SLABreachedCases:         breached,
		SLACompliancePct:         utils.Round2(utils.Percent(total-breached, total, 100)),
		ActiveFollowUps:          activeFollowUps,
		FollowUpsWithoutResponse: noResponse,
	}

	s.Logger.Debug().
		Str("site_id", siteID).
		Int("total_cases", total).
		Dur("elapsed", time.Since(start)).
		Msg("general metrics computed")
	return m, nil
}

func meanOverall(surveys []models.Survey) float64 {
	values := make([]float64, 0, len(surveys))
	for _, sv := range surveys {
		values = append(values, sv.OverallAverage)
	}
	return utils.Mean(values)
}

func meanResolutionHours(rows []models.CaseTimes) float64 {
	values := make([]float64, 0, len(rows))
	for _, r := range rows {
		values = append(values, r.ClosedAt.Sub(r.CreatedAt).Hours())
	}
	return utils.Mean(values)
}
