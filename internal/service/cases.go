package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/freedom_case_2/opsmetrics/internal/models"
	"github.com/freedom_case_2/opsmetrics/internal/utils"
)

type CaseService struct {
	Cases  CaseStore
	Logger zerolog.Logger
	Now    func() time.Time
}

func (s *CaseService) ListCases(ctx context.Context, filter models.CaseFilter, page models.Page) (models.CaseList, error) {
	ctx, span := startSpan(ctx, "cases.list")
	defer span.End()

	if err := validateCaseFilter(filter); err != nil {
		return models.CaseList{}, err
	}
	page = page.Normalize(models.DefaultCasePageSize)

	rows, total, err := s.Cases.ListCases(ctx, filter, page)
	if err != nil {
		span.RecordError(err)
		return models.CaseList{}, storeErr("list cases", err)
	}

	now := clock(s.Now)
	items := make([]models.CaseView, 0, len(rows))
	for _, c := range rows {
		items = append(items, caseView(c, now))
	}
	return models.CaseList{Items: items, Total: total, Page: page.Page, PageSize: page.Size}, nil
}

// ListAllCases returns up to ExportRowCap cases for bulk exports.
func (s *CaseService) ListAllCases(ctx context.Context, filter models.CaseFilter) (models.CaseList, error) {
	return s.ListCases(ctx, filter, models.Page{Page: 1, Size: models.ExportRowCap})
}

func caseView(c models.Case, now time.Time) models.CaseView {
	v := models.CaseView{
		ID:                c.ID,
		Number:            c.Number,
		Category:          c.Category,
		Subcategory:       c.Subcategory,
		State:             c.State,
		Priority:          c.Priority,
		CreatedAt:         c.CreatedAt,
		ClosedAt:          c.ClosedAt,
		SatisfactionScore: c.SatisfactionScore,
		Site:              c.Site,
		Assignee:          c.Assignee,
		SLABreached:       SLABreached(c, now),
		StoredSLAFlag:     c.SLABreached,
	}
	if c.State == models.CaseStateClosed && c.ClosedAt != nil {
		minutes := utils.Round2(c.ClosedAt.Sub(c.CreatedAt).Minutes())
		v.ResolutionMinutes = &minutes
	}
	return v
}

// SLABreached reports whether c is still not closed more than SLAThreshold after creation.
func SLABreached(c models.Case, now time.Time) bool {
	return c.State != models.CaseStateClosed && now.Sub(c.CreatedAt) > SLAThreshold
}

func validateCaseFilter(f models.CaseFilter) error {
	for _, st := range f.States {
		if !st.Valid() {
			return ValidationError{Field: "estado", Message: "unknown case state " + string(st)}
		}
	}
	if f.Priority != "" && !f.Priority.Valid() {
		return ValidationError{Field: "prioridad", Message: "unknown priority " + string(f.Priority)}
	}
	return validateWindow(f.Window, false)
}

func validateWindow(w models.Window, required bool) error {
	if required && !w.Complete() {
		return ValidationError{Field: "window", Message: "both start and end dates are required"}
	}
	if w.Complete() && !w.Start.Before(*w.End) {
		return ValidationError{Field: "window", Message: "start must be before end"}
	}
	return nil
}
