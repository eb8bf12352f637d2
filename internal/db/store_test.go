package db

import (
	"context"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/freedom_case_2/opsmetrics/internal/models"
)

func TestCaseWheresEmpty(t *testing.T) {
	wheres, args := caseWheres(models.CaseFilter{}, nil)
	if len(wheres) != 0 || len(args) != 0 {
		t.Fatalf("expected no conditions, got %v %v", wheres, args)
	}
	if whereClause(wheres) != "" {
		t.Fatalf("expected empty where clause")
	}
}

func TestCaseWheresPlaceholdersAreSequential(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	f := models.CaseFilter{
		States:     []models.CaseState{models.CaseStateNew, models.CaseStateClosed},
		SiteID:     "site-1",
		AssigneeID: "tech-1",
		Priority:   models.CasePriorityHigh,
		Window:     models.Window{Start: &start, End: &end},
	}
	wheres, args := caseWheres(f, nil)

	want := []string{
		"c.state::text = ANY($1)",
		"c.site_id = $2",
		"c.assignee_id = $3",
		"c.priority::text = $4",
		"c.created_at >= $5",
		"c.created_at < $6",
	}
	if !reflect.DeepEqual(wheres, want) {
		t.Fatalf("unexpected conditions:\n got %v\nwant %v", wheres, want)
	}
	if len(args) != 6 {
		t.Fatalf("expected 6 args, got %d", len(args))
	}
	if states, ok := args[0].([]string); !ok || len(states) != 2 || states[1] != "closed" {
		t.Fatalf("unexpected state arg: %#v", args[0])
	}
}

func TestCaseWheresContinuesExistingArgs(t *testing.T) {
	cutoff := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	wheres, args := caseWheres(models.CaseFilter{CreatedBefore: &cutoff, ClosedWithTimestamp: true, HasAssignee: true}, []any{"x"})
	want := []string{
		"c.assignee_id IS NOT NULL",
		"c.created_at < $2",
		"c.state::text = 'closed' AND c.closed_at IS NOT NULL",
	}
	if !reflect.DeepEqual(wheres, want) {
		t.Fatalf("unexpected conditions: %v", wheres)
	}
	if len(args) != 2 {
		t.Fatalf("expected 2 args, got %d", len(args))
	}
}

func TestStoreIntegration(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	store, err := New(ctx, url)
	if err != nil {
		t.Fatalf("db connect: %v", err)
	}
	defer store.Close()

	total, err := store.CountCases(ctx, models.CaseFilter{})
	if err != nil {
		t.Fatalf("count cases: %v", err)
	}
	states, err := store.CountCasesByState(ctx, models.CaseFilter{})
	if err != nil {
		t.Fatalf("count by state: %v", err)
	}
	var sum int
	for _, sc := range states {
		sum += sc.Count
	}
	if sum != total {
		t.Fatalf("state buckets sum to %d, total is %d", sum, total)
	}

	items, listed, err := store.ListCases(ctx, models.CaseFilter{}, models.Page{Page: 1, Size: 5})
	if err != nil {
		t.Fatalf("list cases: %v", err)
	}
	if listed != total {
		t.Fatalf("list total %d differs from count %d", listed, total)
	}
	for i := 1; i < len(items); i++ {
		if items[i].CreatedAt.After(items[i-1].CreatedAt) {
			t.Fatalf("cases not ordered by creation desc")
		}
	}
}
