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

func newCaseService(store *memStore) *CaseService {
	return &CaseService{Cases: store, Logger: zerolog.Nop(), Now: fixedNow}
}

func TestListCasesDerivedFields(t *testing.T) {
	store := mixedCaseStore()
	// persisted flag disagrees with the recomputed rule on purpose
	store.cases[0].SLABreached = true

	list, err := newCaseService(store).ListCases(context.Background(), models.CaseFilter{}, models.Page{})
	require.NoError(t, err)
	require.Len(t, list.Items, 3)
	assert.Equal(t, 3, list.Total)
	assert.Equal(t, 1, list.Page)
	assert.Equal(t, models.DefaultCasePageSize, list.PageSize)

	byID := map[string]models.CaseView{}
	for _, v := range list.Items {
		byID[v.ID] = v
	}

	closed := byID["2"]
	require.NotNil(t, closed.ResolutionMinutes)
	assert.Equal(t, 240.0, *closed.ResolutionMinutes)
	assert.False(t, closed.SLABreached)
	assert.Equal(t, "Ana", closed.Assignee.Name)
	assert.Equal(t, "Norte", closed.Site.Name)

	flagged := byID["1"]
	assert.False(t, flagged.SLABreached)
	assert.True(t, flagged.StoredSLAFlag)

	open := byID["3"]
	assert.Nil(t, open.ResolutionMinutes)
	assert.True(t, open.SLABreached)
	assert.Nil(t, open.Assignee)
}

func TestListCasesOrderedByCreationDesc(t *testing.T) {
	list, err := newCaseService(mixedCaseStore()).ListCases(context.Background(), models.CaseFilter{}, models.Page{Page: 1, Size: 10})
	require.NoError(t, err)
	for i := 1; i < len(list.Items); i++ {
		assert.False(t, list.Items[i].CreatedAt.After(list.Items[i-1].CreatedAt))
	}
	assert.Equal(t, "3", list.Items[0].ID)
}

func TestListCasesFiltersAndPagination(t *testing.T) {
	svc := newCaseService(mixedCaseStore())

	list, err := svc.ListCases(context.Background(), models.CaseFilter{States: []models.CaseState{models.CaseStateClosed}}, models.Page{Page: 2, Size: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, list.Total)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "1", list.Items[0].ID)

	list, err = svc.ListCases(context.Background(), models.CaseFilter{AssigneeID: techAna.ID, SiteID: siteNorth.ID}, models.Page{})
	require.NoError(t, err)
	assert.Equal(t, 2, list.Total)
}

func TestListAllCasesUsesExportCap(t *testing.T) {
	list, err := newCaseService(mixedCaseStore()).ListAllCases(context.Background(), models.CaseFilter{})
	require.NoError(t, err)
	assert.Equal(t, models.ExportRowCap, list.PageSize)
	assert.Len(t, list.Items, 3)
}

func TestListCasesRejectsUnknownState(t *testing.T) {
	store := mixedCaseStore()
	_, err := newCaseService(store).ListCases(context.Background(), models.CaseFilter{States: []models.CaseState{"archived"}}, models.Page{})
	var ve ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "estado", ve.Field)
	assert.Zero(t, store.totalCalls())
}

func TestListCasesWrapsStoreError(t *testing.T) {
	store := mixedCaseStore()
	store.failOn = map[string]error{"ListCases": errors.New("timeout")}
	_, err := newCaseService(store).ListCases(context.Background(), models.CaseFilter{}, models.Page{})
	var se *StoreError
	require.ErrorAs(t, err, &se)
}

func TestSLABreachedBoundary(t *testing.T) {
	c := models.Case{State: models.CaseStateInProgress, CreatedAt: testNow.Add(-SLAThreshold)}
	assert.False(t, SLABreached(c, testNow), "exactly 48h is not breached")

	c.CreatedAt = testNow.Add(-SLAThreshold - time.Minute)
	assert.True(t, SLABreached(c, testNow))

	c.State = models.CaseStateClosed
	assert.False(t, SLABreached(c, testNow))
}
