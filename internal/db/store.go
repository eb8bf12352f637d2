package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/freedom_case_2/opsmetrics/internal/models"
)

type Store struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	s.Pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}

// caseWheres renders f as SQL conditions over the cases table aliased "c",
// appending bind values to args.
func caseWheres(f models.CaseFilter, args []any) ([]string, []any) {
	var wheres []string
	if len(f.States) > 0 {
		states := make([]string, 0, len(f.States))
		for _, st := range f.States {
			states = append(states, string(st))
		}
		args = append(args, states)
		wheres = append(wheres, fmt.Sprintf("c.state::text = ANY($%d)", len(args)))
	}
	if f.SiteID != "" {
		args = append(args, f.SiteID)
		wheres = append(wheres, fmt.Sprintf("c.site_id = $%d", len(args)))
	}
	if f.AssigneeID != "" {
		args = append(args, f.AssigneeID)
		wheres = append(wheres, fmt.Sprintf("c.assignee_id = $%d", len(args)))
	}
	if f.HasAssignee {
		wheres = append(wheres, "c.assignee_id IS NOT NULL")
	}
	if f.Priority != "" {
		args = append(args, string(f.Priority))
		wheres = append(wheres, fmt.Sprintf("c.priority::text = $%d", len(args)))
	}
	if f.Window.Start != nil {
		args = append(args, *f.Window.Start)
		wheres = append(wheres, fmt.Sprintf("c.created_at >= $%d", len(args)))
	}
	if f.Window.End != nil {
		args = append(args, *f.Window.End)
		wheres = append(wheres, fmt.Sprintf("c.created_at < $%d", len(args)))
	}
	if f.CreatedBefore != nil {
		args = append(args, *f.CreatedBefore)
		wheres = append(wheres, fmt.Sprintf("c.created_at < $%d", len(args)))
	}
	if f.ClosedWithTimestamp {
		wheres = append(wheres, "c.state::text = 'closed' AND c.closed_at IS NOT NULL")
	}
	return wheres, args
}

func whereClause(wheres []string) string {
	if len(wheres) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(wheres, " AND ")
}

func (s *Store) count(ctx context.Context, query string, args []any) (int, error) {
	var n int
	if err := s.Pool.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
