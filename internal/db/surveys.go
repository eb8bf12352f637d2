package db

import (
	"context"
	"fmt"

	"github.com/freedom_case_2/opsmetrics/internal/models"
)

func (s *Store) CountSurveys(ctx context.Context, f models.SurveyFilter) (int, error) {
	wheres, args := caseWheres(f.Case, nil)
	if f.State != "" {
		args = append(args, string(f.State))
		wheres = append(wheres, fmt.Sprintf("sv.state::text = $%d", len(args)))
	}
	return s.count(ctx, `SELECT COUNT(*) FROM surveys sv JOIN cases c ON c.id = sv.case_id`+whereClause(wheres), args)
}

func (s *Store) ListCompletedSurveys(ctx context.Context, f models.CaseFilter) ([]models.Survey, error) {
	wheres, args := caseWheres(f, nil)
	args = append(args, string(models.SurveyStateCompleted))
	wheres = append(wheres, fmt.Sprintf("sv.state::text = $%d", len(args)))

	query := `SELECT sv.id, sv.case_id, c.case_number, sv.state::text,
		sv.service_quality::float8, sv.response_time::float8, sv.technician_attention::float8, sv.overall_average::float8,
		sv.comment, sv.responded_at
		FROM surveys sv
		JOIN cases c ON c.id = sv.case_id` + whereClause(wheres) + `
		ORDER BY sv.responded_at DESC NULLS LAST, sv.id ASC`

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Survey
	for rows.Next() {
		var (
			sv    models.Survey
			state string
		)
		if err := rows.Scan(&sv.ID, &sv.CaseID, &sv.CaseNumber, &state,
			&sv.ServiceQuality, &sv.ResponseTime, &sv.TechnicianAttention, &sv.OverallAverage,
			&sv.Comment, &sv.RespondedAt); err != nil {
			return nil, err
		}
		sv.State = models.SurveyState(state)
		out = append(out, sv)
	}
	return out, rows.Err()
}

func (s *Store) CountFollowUps(ctx context.Context, f models.FollowUpFilter) (int, error) {
	wheres, args := caseWheres(f.Case, nil)
	if f.Active != nil {
		args = append(args, *f.Active)
		wheres = append(wheres, fmt.Sprintf("fu.active = $%d", len(args)))
	}
	if f.Outcome != "" {
		args = append(args, f.Outcome)
		wheres = append(wheres, fmt.Sprintf("fu.outcome = $%d", len(args)))
	}
	return s.count(ctx, `SELECT COUNT(*) FROM follow_ups fu JOIN cases c ON c.id = fu.case_id`+whereClause(wheres), args)
}
