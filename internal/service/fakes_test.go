package service

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/freedom_case_2/opsmetrics/internal/docstore"
	"github.com/freedom_case_2/opsmetrics/internal/models"
)

// memStore is an in-memory relational store honouring the same filter semantics as db.Store.
type memStore struct {
	cases     []models.Case
	surveys   []models.Survey
	followUps []models.FollowUp
	failOn    map[string]error

	mu    sync.Mutex
	calls map[string]int
}

func (m *memStore) hit(method string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = map[string]int{}
	}
	m.calls[method]++
	return m.failOn[method]
}

func (m *memStore) totalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int
	for _, c := range m.calls {
		n += c
	}
	return n
}

func matchCase(c models.Case, f models.CaseFilter) bool {
	if len(f.States) > 0 && !slices.Contains(f.States, c.State) {
		return false
	}
	if f.SiteID != "" && c.SiteID != f.SiteID {
		return false
	}
	if f.AssigneeID != "" && (c.AssigneeID == nil || *c.AssigneeID != f.AssigneeID) {
		return false
	}
	if f.HasAssignee && c.AssigneeID == nil {
		return false
	}
	if f.Priority != "" && c.Priority != f.Priority {
		return false
	}
	if !f.Window.Contains(c.CreatedAt) {
		return false
	}
	if f.CreatedBefore != nil && !c.CreatedAt.Before(*f.CreatedBefore) {
		return false
	}
	if f.ClosedWithTimestamp && (c.State != models.CaseStateClosed || c.ClosedAt == nil) {
		return false
	}
	return true
}

func (m *memStore) filterCases(f models.CaseFilter) []models.Case {
	var out []models.Case
	for _, c := range m.cases {
		if matchCase(c, f) {
			out = append(out, c)
		}
	}
	return out
}

func (m *memStore) caseByID(id string) (models.Case, bool) {
	for _, c := range m.cases {
		if c.ID == id {
			return c, true
		}
	}
	return models.Case{}, false
}

func (m *memStore) CountCases(ctx context.Context, f models.CaseFilter) (int, error) {
	if err := m.hit("CountCases"); err != nil {
		return 0, err
	}
	return len(m.filterCases(f)), nil
}

func (m *memStore) CountCasesByState(ctx context.Context, f models.CaseFilter) ([]models.StateCount, error) {
	if err := m.hit("CountCasesByState"); err != nil {
		return nil, err
	}
	counts := map[models.CaseState]int{}
	for _, c := range m.filterCases(f) {
		counts[c.State]++
	}
	var out []models.StateCount
	for st, n := range counts {
		out = append(out, models.StateCount{State: st, Count: n})
	}
	return out, nil
}

func (m *memStore) ListCases(ctx context.Context, f models.CaseFilter, page models.Page) ([]models.Case, int, error) {
	if err := m.hit("ListCases"); err != nil {
		return nil, 0, err
	}
	rows := m.filterCases(f)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })
	total := len(rows)
	from := page.Offset()
	if from > total {
		from = total
	}
	to := from + page.Size
	if to > total {
		to = total
	}
	return rows[from:to], total, nil
}

func (m *memStore) ListClosedCaseTimes(ctx context.Context, f models.CaseFilter) ([]models.CaseTimes, error) {
	if err := m.hit("ListClosedCaseTimes"); err != nil {
		return nil, err
	}
	f.ClosedWithTimestamp = true
	var out []models.CaseTimes
	for _, c := range m.filterCases(f) {
		out = append(out, models.CaseTimes{CreatedAt: c.CreatedAt, ClosedAt: *c.ClosedAt})
	}
	return out, nil
}

func (m *memStore) TopCategories(ctx context.Context, f models.CaseFilter, limit int) ([]models.CategoryCount, error) {
	if err := m.hit("TopCategories"); err != nil {
		return nil, err
	}
	counts := map[string]int{}
	for _, c := range m.filterCases(f) {
		counts[c.Category]++
	}
	var out []models.CategoryCount
	for cat, n := range counts {
		out = append(out, models.CategoryCount{Category: cat, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Category < out[j].Category
		}
		return out[i].Count > out[j].Count
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) ListCaseSites(ctx context.Context, f models.CaseFilter) ([]models.Site, error) {
	if err := m.hit("ListCaseSites"); err != nil {
		return nil, err
	}
	seen := map[string]models.Site{}
	for _, c := range m.filterCases(f) {
		seen[c.SiteID] = c.Site
	}
	var out []models.Site
	for _, s := range seen {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memStore) ListCaseAssignees(ctx context.Context, f models.CaseFilter) ([]models.Assignee, error) {
	if err := m.hit("ListCaseAssignees"); err != nil {
		return nil, err
	}
	seen := map[string]models.Assignee{}
	for _, c := range m.filterCases(f) {
		if c.Assignee != nil {
			seen[c.Assignee.ID] = *c.Assignee
		}
	}
	var out []models.Assignee
	for _, a := range seen {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memStore) CountSurveys(ctx context.Context, f models.SurveyFilter) (int, error) {
	if err := m.hit("CountSurveys"); err != nil {
		return 0, err
	}
	var n int
	for _, sv := range m.surveys {
		c, ok := m.caseByID(sv.CaseID)
		if !ok || !matchCase(c, f.Case) {
			continue
		}
		if f.State != "" && sv.State != f.State {
			continue
		}
		n++
	}
	return n, nil
}

func (m *memStore) ListCompletedSurveys(ctx context.Context, f models.CaseFilter) ([]models.Survey, error) {
	if err := m.hit("ListCompletedSurveys"); err != nil {
		return nil, err
	}
	var out []models.Survey
	for _, sv := range m.surveys {
		c, ok := m.caseByID(sv.CaseID)
		if !ok || !matchCase(c, f) || sv.State != models.SurveyStateCompleted {
			continue
		}
		out = append(out, sv)
	}
	return out, nil
}

func (m *memStore) CountFollowUps(ctx context.Context, f models.FollowUpFilter) (int, error) {
	if err := m.hit("CountFollowUps"); err != nil {
		return 0, err
	}
	var n int
	for _, fu := range m.followUps {
		c, ok := m.caseByID(fu.CaseID)
		if !ok || !matchCase(c, f.Case) {
			continue
		}
		if f.Active != nil && fu.Active != *f.Active {
			continue
		}
		if f.Outcome != "" && (fu.Outcome == nil || *fu.Outcome != f.Outcome) {
			continue
		}
		n++
	}
	return n, nil
}

// memDocs is an in-memory conversation/message store.
type memDocs struct {
	conversations []models.Conversation
	messages      []models.Message
	err           error
}

func (d *memDocs) ListConversations(ctx context.Context, f models.ConversationFilter, page models.Page) ([]models.Conversation, int, error) {
	if d.err != nil {
		return nil, 0, d.err
	}
	var rows []models.Conversation
	for _, c := range d.conversations {
		if f.Phone != "" && c.Phone != f.Phone {
			continue
		}
		if f.State != "" && c.State != f.State {
			continue
		}
		if f.Escalated != nil && c.Escalated != *f.Escalated {
			continue
		}
		if !f.Window.Contains(c.LastActivity) {
			continue
		}
		rows = append(rows, c)
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].LastActivity.After(rows[j].LastActivity) })
	total := len(rows)
	from := min(page.Offset(), total)
	to := min(from+page.Size, total)
	return rows[from:to], total, nil
}

func (d *memDocs) GetConversation(ctx context.Context, phone string) (models.Conversation, error) {
	if d.err != nil {
		return models.Conversation{}, d.err
	}
	for _, c := range d.conversations {
		if c.Phone == phone {
			return c, nil
		}
	}
	return models.Conversation{}, docstore.ErrNotFound
}

func (d *memDocs) RecentMessages(ctx context.Context, phone string, limit int) ([]models.Message, error) {
	if d.err != nil {
		return nil, d.err
	}
	var rows []models.Message
	for _, msg := range d.messages {
		if msg.Phone == phone {
			rows = append(rows, msg)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].SentAt.After(rows[j].SentAt) })
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

func ptr[T any](v T) *T { return &v }
