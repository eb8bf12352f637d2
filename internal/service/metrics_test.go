package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freedom_case_2/opsmetrics/internal/models"
)

var (
	siteNorth = models.Site{ID: "site-n", Name: "Norte"}
	siteSouth = models.Site{ID: "site-s", Name: "Sur"}
	techAna   = models.Assignee{ID: "tech-ana", Name: "Ana"}
	techLuis  = models.Assignee{ID: "tech-luis", Name: "Luis"}
)

func juneWindow() models.Window {
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	return models.Window{Start: &start, End: &end}
}

func newCase(id string, site models.Site, tech *models.Assignee, state models.CaseState, created time.Time, resolveAfter time.Duration) models.Case {
	c := models.Case{
		ID:        id,
		Number:    "CASE-" + id,
		SiteID:    site.ID,
		Site:      site,
		Category:  "plumbing",
		State:     state,
		Priority:  models.CasePriorityMedium,
		CreatedAt: created,
	}
	if tech != nil {
		c.AssigneeID = &tech.ID
		c.Assignee = tech
	}
	if state == models.CaseStateClosed {
		c.ClosedAt = ptr(created.Add(resolveAfter))
	}
	return c
}

func mixedCaseStore() *memStore {
	return &memStore{cases: []models.Case{
		newCase("1", siteNorth, &techAna, models.CaseStateClosed, time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC), 2*time.Hour),
		newCase("2", siteNorth, &techAna, models.CaseStateClosed, time.Date(2024, 6, 11, 8, 0, 0, 0, time.UTC), 4*time.Hour),
		newCase("3", siteSouth, nil, models.CaseStateNew, testNow.Add(-50*time.Hour), 0),
	}}
}

func newMetricsService(store *memStore) *MetricsService {
	return &MetricsService{Cases: store, Surveys: store, FollowUps: store, Logger: zerolog.Nop(), Now: fixedNow}
}

func TestComputeGeneralMetricsMixedStates(t *testing.T) {
	svc := newMetricsService(mixedCaseStore())

	m, err := svc.ComputeGeneralMetrics(context.Background(), juneWindow(), "")
	require.NoError(t, err)

	assert.Equal(t, 3, m.TotalCases)
	assert.Equal(t, 2, m.ClosedCases)
	assert.Equal(t, 1, m.OpenCases)
	assert.Equal(t, 3.0, m.AvgResolutionHours)
	assert.Equal(t, 1, m.SLABreachedCases)
	assert.Equal(t, 66.67, m.SLACompliancePct)
	assert.Equal(t, models.StateBreakdown{New: 1, Closed: 2}, m.ByState)
}

func TestComputeGeneralMetricsStateBucketsSumToTotal(t *testing.T) {
	base := time.Date(2024, 6, 2, 9, 0, 0, 0, time.UTC)
	states := []models.CaseState{
		models.CaseStateNew, models.CaseStateAssigned, models.CaseStateInProgress,
		models.CaseStateOnVisit, models.CaseStateAwaitingParts, models.CaseStateClosed,
		models.CaseStateInProgress, models.CaseStateClosed,
	}
	store := &memStore{}
	for i, st := range states {
		store.cases = append(store.cases, newCase(string(rune('a'+i)), siteNorth, nil, st, base.Add(time.Duration(i)*time.Hour), time.Hour))
	}
	svc := newMetricsService(store)

	for _, siteID := range []string{"", siteNorth.ID, siteSouth.ID} {
		m, err := svc.ComputeGeneralMetrics(context.Background(), juneWindow(), siteID)
		require.NoError(t, err)
		assert.Equal(t, m.TotalCases, m.ByState.Total(), "site %q", siteID)
		assert.Equal(t, m.TotalCases, m.OpenCases+m.ClosedCases, "site %q", siteID)
	}
}

func TestComputeGeneralMetricsIsIdempotent(t *testing.T) {
	svc := newMetricsService(mixedCaseStore())
	first, err := svc.ComputeGeneralMetrics(context.Background(), juneWindow(), "")
	require.NoError(t, err)
	second, err := svc.ComputeGeneralMetrics(context.Background(), juneWindow(), "")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestComputeGeneralMetricsEmptyScope(t *testing.T) {
	svc := newMetricsService(&memStore{})

	m, err := svc.ComputeGeneralMetrics(context.Background(), models.Window{}, "")
	require.NoError(t, err)

	assert.Equal(t, 0, m.TotalCases)
	assert.Equal(t, 100.0, m.SLACompliancePct)
	assert.Equal(t, 0.0, m.AvgSatisfaction)
	assert.Equal(t, 0.0, m.SurveyResponseRate)
	assert.Equal(t, 0.0, m.AvgResolutionHours)
	assert.Equal(t, models.StateBreakdown{}, m.ByState)
	assert.Equal(t, PlaceholderFirstResponseMinutes, m.AvgFirstResponseMinutes)
}

func TestComputeGeneralMetricsSurveysAndFollowUps(t *testing.T) {
	store := mixedCaseStore()
	store.surveys = []models.Survey{
		{ID: "s1", CaseID: "1", State: models.SurveyStateCompleted, OverallAverage: 4.5},
		{ID: "s2", CaseID: "2", State: models.SurveyStateCompleted, OverallAverage: 3},
		{ID: "s3", CaseID: "3", State: models.SurveyStatePending},
	}
	store.followUps = []models.FollowUp{
		{ID: "f1", CaseID: "1", Active: true},
		{ID: "f2", CaseID: "2", Active: false, Outcome: ptr(models.FollowUpOutcomeNoResponse)},
		{ID: "f3", CaseID: "3", Active: false, Outcome: ptr("resolved")},
	}
	svc := newMetricsService(store)

	m, err := svc.ComputeGeneralMetrics(context.Background(), juneWindow(), "")
	require.NoError(t, err)

	assert.Equal(t, 3.75, m.AvgSatisfaction)
	assert.Equal(t, 66.67, m.SurveyResponseRate)
	assert.Equal(t, 1, m.ActiveFollowUps)
	assert.Equal(t, 1, m.FollowUpsWithoutResponse)
}

func TestComputeGeneralMetricsFirstContactRoundsDown(t *testing.T) {
	store := &memStore{}
	created := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 13; i++ {
		store.cases = append(store.cases, newCase(string(rune('a'+i)), siteNorth, nil, models.CaseStateClosed, created, time.Hour))
	}
	svc := newMetricsService(store)

	m, err := svc.ComputeGeneralMetrics(context.Background(), juneWindow(), "")
	require.NoError(t, err)
	assert.Equal(t, 1, m.ResolvedOnFirstContact)
}

func TestComputeGeneralMetricsSiteFilter(t *testing.T) {
	svc := newMetricsService(mixedCaseStore())

	m, err := svc.ComputeGeneralMetrics(context.Background(), juneWindow(), siteSouth.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, m.TotalCases)
	assert.Equal(t, 1, m.SLABreachedCases)
	assert.Equal(t, 0.0, m.SLACompliancePct)
}

func TestComputeGeneralMetricsStoreFailureAbortsCall(t *testing.T) {
	boom := errors.New("connection reset")
	store := mixedCaseStore()
	store.failOn = map[string]error{"CountCasesByState": boom}
	svc := newMetricsService(store)

	m, err := svc.ComputeGeneralMetrics(context.Background(), juneWindow(), "")
	require.Error(t, err)
	assert.Equal(t, models.DashboardMetrics{}, m)

	var se *StoreError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "count cases by state", se.Op)
	assert.ErrorIs(t, err, boom)
}

func TestComputeGeneralMetricsRejectsInvertedWindow(t *testing.T) {
	w := juneWindow()
	w.Start, w.End = w.End, w.Start
	store := mixedCaseStore()

	_, err := newMetricsService(store).ComputeGeneralMetrics(context.Background(), w, "")
	var ve ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Zero(t, store.totalCalls())
}
