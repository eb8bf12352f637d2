package docstore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/freedom_case_2/opsmetrics/internal/models"
)

type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewMongo(ctx context.Context, uri string, database string) (*Mongo, error) {
	if uri == "" {
		return nil, errors.New("mongo URI is required")
	}
	if database == "" {
		return nil, errors.New("mongo database name is required")
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	return &Mongo{client: client, db: client.Database(database)}, nil
}

func (m *Mongo) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func (m *Mongo) ListConversations(ctx context.Context, f models.ConversationFilter, page models.Page) ([]models.Conversation, int, error) {
	coll := m.db.Collection(ConversationsCollection)
	query := conversationQuery(f)

	total, err := coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count conversations: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "lastActivity", Value: -1}}).
		SetSkip(int64(page.Offset())).
		SetLimit(int64(page.Size))
	cursor, err := coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find conversations: %w", err)
	}
	defer cursor.Close(ctx)

	out := []models.Conversation{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, 0, fmt.Errorf("decode conversations: %w", err)
	}
	return out, int(total), nil
}

func (m *Mongo) GetConversation(ctx context.Context, phone string) (models.Conversation, error) {
	var c models.Conversation
	err := m.db.Collection(ConversationsCollection).FindOne(ctx, bson.M{"phone": phone}).Decode(&c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Conversation{}, ErrNotFound
		}
		return models.Conversation{}, fmt.Errorf("find conversation: %w", err)
	}
	return c, nil
}

func (m *Mongo) RecentMessages(ctx context.Context, phone string, limit int) ([]models.Message, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "sentAt", Value: -1}}).
		SetLimit(int64(limit))
	cursor, err := m.db.Collection(MessagesCollection).Find(ctx, bson.M{"phone": phone}, opts)
	if err != nil {
		return nil, fmt.Errorf("find messages: %w", err)
	}
	defer cursor.Close(ctx)

	out := []models.Message{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	return out, nil
}

func conversationQuery(f models.ConversationFilter) bson.M {
	query := bson.M{}
	if f.Phone != "" {
		query["phone"] = f.Phone
	}
	if f.State != "" {
		query["state"] = string(f.State)
	}
	if f.Escalated != nil {
		query["escalated"] = *f.Escalated
	}
	activity := bson.M{}
	if f.Window.Start != nil {
		activity["$gte"] = *f.Window.Start
	}
	if f.Window.End != nil {
		activity["$lt"] = *f.Window.End
	}
	if len(activity) > 0 {
		query["lastActivity"] = activity
	}
	return query
}
