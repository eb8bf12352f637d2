package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/freedom_case_2/opsmetrics/internal/docstore"
	"github.com/freedom_case_2/opsmetrics/internal/models"
	"github.com/freedom_case_2/opsmetrics/internal/utils"
)

const (
	// MessageHistoryLimit caps the messages loaded per conversation.
	MessageHistoryLimit   = 100
	LastMessagePreviewLen = 100
)

type ConversationService struct {
	Conversations ConversationStore
	Messages      MessageStore
	Logger        zerolog.Logger
}

func (s *ConversationService) ListConversations(ctx context.Context, filter models.ConversationFilter, page models.Page) (models.ConversationList, error) {
	ctx, span := startSpan(ctx, "conversations.list")
	defer span.End()

	if filter.State != "" && !filter.State.Valid() {
		return models.ConversationList{}, ValidationError{Field: "estado", Message: "unknown conversation state " + string(filter.State)}
	}
	if err := validateWindow(filter.Window, false); err != nil {
		return models.ConversationList{}, err
	}
	filter.Phone = strings.TrimSpace(filter.Phone)
	page = page.Normalize(models.DefaultConversationPageSize)

	convs, total, err := s.Conversations.ListConversations(ctx, filter, page)
	if err != nil {
		span.RecordError(err)
		return models.ConversationList{}, storeErr("list conversations", err)
	}

	items := make([]models.ConversationView, len(convs))
	g, gctx := errgroup.WithContext(ctx)
	for i, c := range convs {
		g.Go(func() error {
			view, err := s.assemble(gctx, c)
			if err != nil {
				return err
			}
			items[i] = view
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return models.ConversationList{}, err
	}
	return models.ConversationList{Items: items, Total: total, Page: page.Page, PageSize: page.Size}, nil
}

func (s *ConversationService) GetConversation(ctx context.Context, phone string) (models.ConversationView, error) {
	ctx, span := startSpan(ctx, "conversations.get")
	defer span.End()

	phone = strings.TrimSpace(phone)
	if phone == "" {
		return models.ConversationView{}, ValidationError{Field: "telefono", Message: "phone is required"}
	}
	conv, err := s.Conversations.GetConversation(ctx, phone)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return models.ConversationView{}, fmt.Errorf("conversation %s: %w", phone, ErrNotFound)
		}
		span.RecordError(err)
		return models.ConversationView{}, storeErr("get conversation", err)
	}
	return s.assemble(ctx, conv)
}

func (s *ConversationService) assemble(ctx context.Context, c models.Conversation) (models.ConversationView, error) {
	recent, err := s.Messages.RecentMessages(ctx, c.Phone, MessageHistoryLimit)
	if err != nil {
		return models.ConversationView{}, storeErr("load messages for "+c.Phone, err)
	}
	if len(recent) > MessageHistoryLimit {
		recent = recent[:MessageHistoryLimit]
	}
	return assembleView(c, recent), nil
}

// assembleView merges a conversation with its newest-first message window.
// The preview is taken from the last entry of that window, i.e. the oldest
// message inside the bounded history.
func assembleView(c models.Conversation, newestFirst []models.Message) models.ConversationView {
	view := models.ConversationView{
		Conversation:  c,
		TotalMessages: len(newestFirst),
		Messages:      make([]models.Message, len(newestFirst)),
	}
	if n := len(newestFirst); n > 0 {
		view.LastMessage = utils.TruncateRunes(newestFirst[n-1].Content, LastMessagePreviewLen)
	}
	copy(view.Messages, newestFirst)
	slices.Reverse(view.Messages)
	return view
}
