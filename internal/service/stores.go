package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/freedom_case_2/opsmetrics/internal/models"
)

// SLAThreshold is the age after which a case that is not closed counts as breached.
const SLAThreshold = 48 * time.Hour

type CaseStore interface {
	CountCases(ctx context.Context, f models.CaseFilter) (int, error)
	CountCasesByState(ctx context.Context, f models.CaseFilter) ([]models.StateCount, error)
	ListCases(ctx context.Context, f models.CaseFilter, page models.Page) ([]models.Case, int, error)
	ListClosedCaseTimes(ctx context.Context, f models.CaseFilter) ([]models.CaseTimes, error)
	TopCategories(ctx context.Context, f models.CaseFilter, limit int) ([]models.CategoryCount, error)
	ListCaseSites(ctx context.Context, f models.CaseFilter) ([]models.Site, error)
	ListCaseAssignees(ctx context.Context, f models.CaseFilter) ([]models.Assignee, error)
}

type SurveyStore interface {
	CountSurveys(ctx context.Context, f models.SurveyFilter) (int, error)
	// ListCompletedSurveys returns completed surveys, most recent response first.
	ListCompletedSurveys(ctx context.Context, f models.CaseFilter) ([]models.Survey, error)
}

type FollowUpStore interface {
	CountFollowUps(ctx context.Context, f models.FollowUpFilter) (int, error)
}

type ConversationStore interface {
	ListConversations(ctx context.Context, f models.ConversationFilter, page models.Page) ([]models.Conversation, int, error)
	GetConversation(ctx context.Context, phone string) (models.Conversation, error)
}

type MessageStore interface {
	// RecentMessages returns up to limit messages for phone, newest first.
	RecentMessages(ctx context.Context, phone string, limit int) ([]models.Message, error)
}

var tracer = otel.Tracer("github.com/freedom_case_2/opsmetrics/internal/service")

func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return tracer.Start(ctx, name)
}

func clock(now func() time.Time) time.Time {
	if now == nil {
		return time.Now()
	}
	return now()
}

// scope builds the case filter shared by every aggregate over a window and optional site.
func scope(window models.Window, siteID string) models.CaseFilter {
	return models.CaseFilter{Window: window, SiteID: siteID}
}
