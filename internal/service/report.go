package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/freedom_case_2/opsmetrics/internal/models"
	"github.com/freedom_case_2/opsmetrics/internal/utils"
)

const TopCategoryLimit = 10

type ReportService struct {
	Metrics *MetricsService
	Cases   CaseStore
	Surveys SurveyStore
	Logger  zerolog.Logger
	Now     func() time.Time
}

// Generate composes the periodic report for window, optionally restricted to one site.
// Per-site and per-assignee figures come from their own scoped queries rather than from
// slices of the summary aggregate.
func (s *ReportService) Generate(ctx context.Context, window models.Window, siteID string) (models.Report, error) {
	if err := validateWindow(window, true); err != nil {
		return models.Report{}, err
	}

	ctx, span := startSpan(ctx, "report.generate")
	defer span.End()

	start := time.Now()
	base := scope(window, siteID)
	report := models.Report{
		Period:      models.ReportPeriod{Start: *window.Start, End: *window.End},
		GeneratedAt: clock(s.Now).UTC(),
	}
	if siteID != "" {
		report.SiteID = &siteID
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		m, err := s.Metrics.ComputeGeneralMetrics(gctx, window, siteID)
		report.Summary = m
		return err
	})
	g.Go(func() error {
		rows, err := s.bySite(gctx, base)
		report.BySite = rows
		return err
	})
	g.Go(func() error {
		rows, err := s.byAssignee(gctx, base)
		report.ByAssignee = rows
		return err
	})
	g.Go(func() error {
		rows, err := s.topCategories(gctx, base)
		report.TopCategories = rows
		return err
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return models.Report{}, err
	}

	s.Logger.Info().
		Time("from", *window.Start).
		Time("to", *window.End).
		Str("site_id", siteID).
		Int("sites", len(report.BySite)).
		Int("assignees", len(report.ByAssignee)).
		Dur("elapsed", time.Since(start)).
		Msg("report generated")
	return report, nil
}

func (s *ReportService) bySite(ctx context.Context, base models.CaseFilter) ([]models.SiteBreakdown, error) {
	sites, err := s.Cases.ListCaseSites(ctx, base)
	if err != nil {
		return nil, storeErr("list report sites", err)
	}

	rows := make([]models.SiteBreakdown, len(sites))
	g, gctx := errgroup.WithContext(ctx)
	for i, site := range sites {
		rows[i] = models.SiteBreakdown{SiteID: site.ID, SiteName: site.Name}
		f := base
		f.SiteID = site.ID
		row := &rows[i]

		g.Go(func() error {
			n, err := s.Cases.CountCases(gctx, f)
			row.Total = n
			return storeErr("count site cases", err)
		})
		g.Go(func() error {
			open := f
			open.States = models.OpenCaseStates
			n, err := s.Cases.CountCases(gctx, open)
			row.Open = n
			return storeErr("count site open cases", err)
		})
		g.Go(func() error {
			closed := f
			closed.States = []models.CaseState{models.CaseStateClosed}
			n, err := s.Cases.CountCases(gctx, closed)
			row.Closed = n
			return storeErr("count site closed cases", err)
		})
		g.Go(func() error {
			surveys, err := s.Surveys.ListCompletedSurveys(gctx, f)
			row.AvgSatisfaction = utils.Round2(meanOverall(surveys))
			return storeErr("list site surveys", err)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *ReportService) byAssignee(ctx context.Context, base models.CaseFilter) ([]models.AssigneeBreakdown, error) {
	scoped := base
	scoped.HasAssignee = true
	assignees, err := s.Cases.ListCaseAssignees(ctx, scoped)
	if err != nil {
		return nil, storeErr("list report assignees", err)
	}

	rows := make([]models.AssigneeBreakdown, len(assignees))
	g, gctx := errgroup.WithContext(ctx)
	for i, a := range assignees {
		rows[i] = models.AssigneeBreakdown{AssigneeID: a.ID, AssigneeName: a.Name}
		f := base
		f.AssigneeID = a.ID
		row := &rows[i]

		g.Go(func() error {
			n, err := s.Cases.CountCases(gctx, f)
			row.Total = n
			return storeErr("count assignee cases", err)
		})
		g.Go(func() error {
			closed := f
			closed.States = []models.CaseState{models.CaseStateClosed}
			n, err := s.Cases.CountCases(gctx, closed)
			row.Resolved = n
			return storeErr("count assignee resolved cases", err)
		})
		g.Go(func() error {
			surveys, err := s.Surveys.ListCompletedSurveys(gctx, f)
			row.AvgSatisfaction = utils.Round2(meanOverall(surveys))
			return storeErr("list assignee surveys", err)
		})
		g.Go(func() error {
			resolved := f
			resolved.ClosedWithTimestamp = true
			times, err := s.Cases.ListClosedCaseTimes(gctx, resolved)
			row.AvgResolutionHours = utils.Round2(meanResolutionHours(times))
			return storeErr("list assignee resolution times", err)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].Pending = rows[i].Total - rows[i].Resolved
	}
	return rows, nil
}

func (s *ReportService) topCategories(ctx context.Context, base models.CaseFilter) ([]models.CategoryShare, error) {
	counts, err := s.Cases.TopCategories(ctx, base, TopCategoryLimit)
	if err != nil {
		return nil, storeErr("top categories", err)
	}
	return CategoryShares(counts), nil
}

// CategoryShares converts category counts into percentages of the returned subset,
// so the shares always add up to 100 across the rows shown.
func CategoryShares(counts []models.CategoryCount) []models.CategoryShare {
	if len(counts) > TopCategoryLimit {
		counts = counts[:TopCategoryLimit]
	}
	var sum int
	for _, c := range counts {
		sum += c.Count
	}
	out := make([]models.CategoryShare, 0, len(counts))
	for _, c := range counts {
		out = append(out, models.CategoryShare{
			Category:   c.Category,
			Count:      c.Count,
			Percentage: utils.Round2(utils.Percent(c.Count, sum, 0)),
		})
	}
	return out
}
