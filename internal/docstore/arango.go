package docstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/arangodb/go-driver/v2/arangodb"
	"github.com/arangodb/go-driver/v2/connection"

	"github.com/freedom_case_2/opsmetrics/internal/models"
)

type ArangoConfig struct {
	URL      string
	Username string
	Password string
	Database string
}

func (c ArangoConfig) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("arangodb URL is required")
	}
	if c.Username == "" {
		return fmt.Errorf("arangodb username is required")
	}
	if c.Database == "" {
		return fmt.Errorf("arangodb database name is required")
	}
	return nil
}

type Arango struct {
	client arangodb.Client
	db     arangodb.Database
}

type arangoConversation struct {
	Phone            string    `json:"phone"`
	State            string    `json:"state"`
	Stage            string    `json:"stage"`
	Escalated        bool      `json:"escalated"`
	EscalationReason string    `json:"escalationReason"`
	CaseID           string    `json:"caseId"`
	LastActivity     time.Time `json:"lastActivity"`
}

func (d arangoConversation) model() models.Conversation {
	return models.Conversation{
		Phone:            d.Phone,
		State:            models.ConversationState(d.State),
		Stage:            models.ConversationStage(d.Stage),
		Escalated:        d.Escalated,
		EscalationReason: d.EscalationReason,
		CaseID:           d.CaseID,
		LastActivity:     d.LastActivity,
	}
}

type arangoMessage struct {
	Phone         string    `json:"phone"`
	Direction     string    `json:"direction"`
	Sender        string    `json:"sender"`
	Content       string    `json:"content"`
	DeliveryState string    `json:"deliveryState"`
	SentAt        time.Time `json:"sentAt"`
}

func (d arangoMessage) model() models.Message {
	return models.Message{
		Phone:     d.Phone,
		Direction: models.MessageDirection(d.Direction),
		Sender:    models.MessageSender(d.Sender),
		Content:   d.Content,
		Delivery:  models.DeliveryState(d.DeliveryState),
		SentAt:    d.SentAt,
	}
}

func NewArango(ctx context.Context, cfg ArangoConfig) (*Arango, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("arangodb config: %w", err)
	}

	endpoint := connection.NewRoundRobinEndpoints([]string{cfg.URL})
	conn := connection.NewHttp2Connection(connection.DefaultHTTP2ConfigurationWrapper(endpoint, true))
	if err := conn.SetAuthentication(connection.NewBasicAuth(cfg.Username, cfg.Password)); err != nil {
		return nil, fmt.Errorf("arangodb auth: %w", err)
	}

	client := arangodb.NewClient(conn)
	db, err := client.GetDatabase(ctx, cfg.Database, nil)
	if err != nil {
		return nil, fmt.Errorf("get database: %w", err)
	}
	return &Arango{client: client, db: db}, nil
}

func (a *Arango) Ping(ctx context.Context) error {
	_, err := a.client.Version(ctx)
	return err
}

func (a *Arango) Close(ctx context.Context) error {
	return nil
}

func (a *Arango) ListConversations(ctx context.Context, f models.ConversationFilter, page models.Page) ([]models.Conversation, int, error) {
	filters, bindVars := arangoConversationFilter(f)

	countQuery := `RETURN LENGTH(FOR c IN ` + ConversationsCollection + filters + ` RETURN 1)`
	var total int
	if err := a.readOne(ctx, countQuery, bindVars, &total); err != nil {
		return nil, 0, fmt.Errorf("count conversations: %w", err)
	}

	listVars := map[string]any{"offset": page.Offset(), "size": page.Size}
	for k, v := range bindVars {
		listVars[k] = v
	}
	query := `FOR c IN ` + ConversationsCollection + filters + `
		SORT DATE_TIMESTAMP(c.lastActivity) DESC
		LIMIT @offset, @size
		RETURN c`

	cursor, err := a.db.Query(ctx, query, &arangodb.QueryOptions{BindVars: listVars})
	if err != nil {
		return nil, 0, fmt.Errorf("execute query: %w", err)
	}
	defer cursor.Close()

	out := []models.Conversation{}
	for cursor.HasMore() {
		var doc arangoConversation
		if _, err := cursor.ReadDocument(ctx, &doc); err != nil {
			return nil, 0, fmt.Errorf("read document: %w", err)
		}
		out = append(out, doc.model())
	}
	return out, total, nil
}

func (a *Arango) GetConversation(ctx context.Context, phone string) (models.Conversation, error) {
	query := `FOR c IN ` + ConversationsCollection + ` FILTER c.phone == @phone LIMIT 1 RETURN c`
	var doc arangoConversation
	if err := a.readOne(ctx, query, map[string]any{"phone": phone}, &doc); err != nil {
		return models.Conversation{}, err
	}
	return doc.model(), nil
}

func (a *Arango) RecentMessages(ctx context.Context, phone string, limit int) ([]models.Message, error) {
	query := `FOR m IN ` + MessagesCollection + `
		FILTER m.phone == @phone
		SORT DATE_TIMESTAMP(m.sentAt) DESC
		LIMIT @limit
		RETURN m`
	cursor, err := a.db.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]any{"phone": phone, "limit": limit},
	})
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer cursor.Close()

	out := []models.Message{}
	for cursor.HasMore() {
		var doc arangoMessage
		if _, err := cursor.ReadDocument(ctx, &doc); err != nil {
			return nil, fmt.Errorf("read document: %w", err)
		}
		out = append(out, doc.model())
	}
	return out, nil
}

// readOne decodes the first result of query into dst, or returns ErrNotFound.
func (a *Arango) readOne(ctx context.Context, query string, bindVars map[string]any, dst any) error {
	cursor, err := a.db.Query(ctx, query, &arangodb.QueryOptions{BindVars: bindVars})
	if err != nil {
		return fmt.Errorf("execute query: %w", err)
	}
	defer cursor.Close()

	if !cursor.HasMore() {
		return ErrNotFound
	}
	if _, err := cursor.ReadDocument(ctx, dst); err != nil {
		return fmt.Errorf("read document: %w", err)
	}
	return nil
}

func arangoConversationFilter(f models.ConversationFilter) (string, map[string]any) {
	var clauses []string
	bindVars := map[string]any{}
	if f.Phone != "" {
		bindVars["phone"] = f.Phone
		clauses = append(clauses, "c.phone == @phone")
	}
	if f.State != "" {
		bindVars["state"] = string(f.State)
		clauses = append(clauses, "c.state == @state")
	}
	if f.Escalated != nil {
		bindVars["escalated"] = *f.Escalated
		clauses = append(clauses, "c.escalated == @escalated")
	}
	if f.Window.Start != nil {
		bindVars["from"] = f.Window.Start.UnixMilli()
		clauses = append(clauses, "DATE_TIMESTAMP(c.lastActivity) >= @from")
	}
	if f.Window.End != nil {
		bindVars["to"] = f.Window.End.UnixMilli()
		clauses = append(clauses, "DATE_TIMESTAMP(c.lastActivity) < @to")
	}
	if len(clauses) == 0 {
		return "", bindVars
	}
	return " FILTER " + strings.Join(clauses, " AND "), bindVars
}
