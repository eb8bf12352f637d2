package models

import "time"

// Window is a half-open [Start, End) range. A nil bound leaves that side open.
type Window struct {
	Start *time.Time
	End   *time.Time
}

func (w Window) Complete() bool {
	return w.Start != nil && w.End != nil
}

func (w Window) Contains(t time.Time) bool {
	if w.Start != nil && t.Before(*w.Start) {
		return false
	}
	if w.End != nil && !t.Before(*w.End) {
		return false
	}
	return true
}

const (
	DefaultCasePageSize         = 50
	DefaultConversationPageSize = 20
	// ExportRowCap bounds "unpaginated" case retrieval for bulk exports.
	ExportRowCap = 10000
)

type Page struct {
	Page int
	Size int
}

func (p Page) Normalize(defaultSize int) Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Size < 1 {
		p.Size = defaultSize
	}
	return p
}

func (p Page) Offset() int {
	return (p.Page - 1) * p.Size
}

// CaseFilter scopes relational queries. Zero values mean unfiltered.
type CaseFilter struct {
	States        []CaseState
	SiteID        string
	AssigneeID    string
	Priority      CasePriority
	Window        Window
	CreatedBefore *time.Time
	// ClosedWithTimestamp keeps only closed cases carrying a closure timestamp.
	ClosedWithTimestamp bool
	// HasAssignee drops cases without an assignee.
	HasAssignee bool
}

type SurveyFilter struct {
	Case  CaseFilter
	State SurveyState
}

type FollowUpFilter struct {
	Case    CaseFilter
	Active  *bool
	Outcome string
}

type ConversationFilter struct {
	Phone     string
	State     ConversationState
	Escalated *bool
	Window    Window
}
