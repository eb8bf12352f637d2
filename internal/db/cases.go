package db

import (
	"context"
	"fmt"
	"time"

	"github.com/freedom_case_2/opsmetrics/internal/models"
)

func (s *Store) CountCases(ctx context.Context, f models.CaseFilter) (int, error) {
	wheres, args := caseWheres(f, nil)
	return s.count(ctx, `SELECT COUNT(*) FROM cases c`+whereClause(wheres), args)
}

func (s *Store) CountCasesByState(ctx context.Context, f models.CaseFilter) ([]models.StateCount, error) {
	wheres, args := caseWheres(f, nil)
	query := `SELECT c.state::text, COUNT(*) FROM cases c` + whereClause(wheres) + ` GROUP BY c.state`

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.StateCount
	for rows.Next() {
		var (
			state string
			n     int
		)
		if err := rows.Scan(&state, &n); err != nil {
			return nil, err
		}
		out = append(out, models.StateCount{State: models.CaseState(state), Count: n})
	}
	return out, rows.Err()
}

func (s *Store) ListCases(ctx context.Context, f models.CaseFilter, page models.Page) ([]models.Case, int, error) {
	wheres, args := caseWheres(f, nil)
	where := whereClause(wheres)

	total, err := s.count(ctx, `SELECT COUNT(*) FROM cases c`+where, args)
	if err != nil {
		return nil, 0, err
	}

	query := `SELECT c.id, c.case_number, c.site_id, c.assignee_id, c.category, COALESCE(c.subcategory, ''),
		c.state::text, c.priority::text, c.created_at, c.closed_at, c.sla_breached, c.satisfaction_score::float8,
		s.name, a.name, a.email
		FROM cases c
		JOIN sites s ON s.id = c.site_id
		LEFT JOIN assignees a ON a.id = c.assignee_id` + where
	query += " ORDER BY c.created_at DESC LIMIT $" + fmt.Sprint(len(args)+1) + " OFFSET $" + fmt.Sprint(len(args)+2)
	args = append(args, page.Size, page.Offset())

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []models.Case{}
	for rows.Next() {
		var (
			c             models.Case
			state         string
			priority      string
			assigneeName  *string
			assigneeEmail *string
		)
		if err := rows.Scan(&c.ID, &c.Number, &c.SiteID, &c.AssigneeID, &c.Category, &c.Subcategory,
			&state, &priority, &c.CreatedAt, &c.ClosedAt, &c.SLABreached, &c.SatisfactionScore,
			&c.Site.Name, &assigneeName, &assigneeEmail); err != nil {
			return nil, 0, err
		}
		c.State = models.CaseState(state)
		c.Priority = models.CasePriority(priority)
		c.Site.ID = c.SiteID
		if c.AssigneeID != nil {
			c.Assignee = &models.Assignee{ID: *c.AssigneeID, Name: derefString(assigneeName), Email: derefString(assigneeEmail)}
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func (s *Store) ListClosedCaseTimes(ctx context.Context, f models.CaseFilter) ([]models.CaseTimes, error) {
	f.ClosedWithTimestamp = true
	wheres, args := caseWheres(f, nil)
	rows, err := s.Pool.Query(ctx, `SELECT c.created_at, c.closed_at FROM cases c`+whereClause(wheres), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.CaseTimes
	for rows.Next() {
		var (
			created time.Time
			closed  time.Time
		)
		if err := rows.Scan(&created, &closed); err != nil {
			return nil, err
		}
		out = append(out, models.CaseTimes{CreatedAt: created, ClosedAt: closed})
	}
	return out, rows.Err()
}

func (s *Store) TopCategories(ctx context.Context, f models.CaseFilter, limit int) ([]models.CategoryCount, error) {
	wheres, args := caseWheres(f, nil)
	args = append(args, limit)
	query := `SELECT c.category, COUNT(*) AS n FROM cases c` + whereClause(wheres) +
		` GROUP BY c.category ORDER BY n DESC, c.category ASC LIMIT $` + fmt.Sprint(len(args))

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.CategoryCount
	for rows.Next() {
		var cc models.CategoryCount
		if err := rows.Scan(&cc.Category, &cc.Count); err != nil {
			return nil, err
		}
		out = append(out, cc)
	}
	return out, rows.Err()
}

func (s *Store) ListCaseSites(ctx context.Context, f models.CaseFilter) ([]models.Site, error) {
	wheres, args := caseWheres(f, nil)
	query := `SELECT DISTINCT s.id, s.name FROM cases c JOIN sites s ON s.id = c.site_id` +
		whereClause(wheres) + ` ORDER BY s.name ASC, s.id ASC`

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Site
	for rows.Next() {
		var site models.Site
		if err := rows.Scan(&site.ID, &site.Name); err != nil {
			return nil, err
		}
		out = append(out, site)
	}
	return out, rows.Err()
}

func (s *Store) ListCaseAssignees(ctx context.Context, f models.CaseFilter) ([]models.Assignee, error) {
	wheres, args := caseWheres(f, nil)
	query := `SELECT DISTINCT a.id, a.name, COALESCE(a.email, '') FROM cases c JOIN assignees a ON a.id = c.assignee_id` +
		whereClause(wheres) + ` ORDER BY a.name ASC, a.id ASC`

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Assignee
	for rows.Next() {
		var a models.Assignee
		if err := rows.Scan(&a.ID, &a.Name, &a.Email); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
