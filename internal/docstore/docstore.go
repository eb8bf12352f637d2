// Package docstore reads conversations and messages from the document store.
// Conversations are keyed by phone number and messages join on the same field.
package docstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/freedom_case_2/opsmetrics/internal/models"
)

var ErrNotFound = errors.New("document not found")

const (
	DriverMongo  = "mongo"
	DriverArango = "arango"

	ConversationsCollection = "conversations"
	MessagesCollection      = "messages"
)

type Store interface {
	ListConversations(ctx context.Context, f models.ConversationFilter, page models.Page) ([]models.Conversation, int, error)
	GetConversation(ctx context.Context, phone string) (models.Conversation, error)
	RecentMessages(ctx context.Context, phone string, limit int) ([]models.Message, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

type Config struct {
	Driver string

	MongoURI      string
	MongoDatabase string

	ArangoURL      string
	ArangoUsername string
	ArangoPassword string
	ArangoDatabase string
}

// Open connects to the configured document store.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case DriverMongo, "":
		return NewMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
	case DriverArango:
		return NewArango(ctx, ArangoConfig{
			URL:      cfg.ArangoURL,
			Username: cfg.ArangoUsername,
			Password: cfg.ArangoPassword,
			Database: cfg.ArangoDatabase,
		})
	default:
		return nil, fmt.Errorf("unknown document store driver %q", cfg.Driver)
	}
}
