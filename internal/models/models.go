package models

import "time"

type CaseState string

const (
	CaseStateNew           CaseState = "new"
	CaseStateAssigned      CaseState = "assigned"
	CaseStateInProgress    CaseState = "in_progress"
	CaseStateOnVisit       CaseState = "on_visit"
	CaseStateAwaitingParts CaseState = "awaiting_parts"
	CaseStateClosed        CaseState = "closed"
)

// OpenCaseStates lists every state that counts as an open case.
var OpenCaseStates = []CaseState{
	CaseStateNew,
	CaseStateAssigned,
	CaseStateInProgress,
	CaseStateOnVisit,
	CaseStateAwaitingParts,
}

func (s CaseState) Valid() bool {
	switch s {
	case CaseStateNew, CaseStateAssigned, CaseStateInProgress, CaseStateOnVisit, CaseStateAwaitingParts, CaseStateClosed:
		return true
	}
	return false
}

func (s CaseState) Open() bool {
	return s.Valid() && s != CaseStateClosed
}

type CasePriority string

const (
	CasePriorityLow    CasePriority = "low"
	CasePriorityMedium CasePriority = "medium"
	CasePriorityHigh   CasePriority = "high"
	CasePriorityUrgent CasePriority = "urgent"
)

func (p CasePriority) Valid() bool {
	switch p {
	case CasePriorityLow, CasePriorityMedium, CasePriorityHigh, CasePriorityUrgent:
		return true
	}
	return false
}

type SurveyState string

const (
	SurveyStatePending   SurveyState = "pending"
	SurveyStateCompleted SurveyState = "completed"
)

const FollowUpOutcomeNoResponse = "closed_without_response"

type ConversationState string

const (
	ConversationStateActive             ConversationState = "active"
	ConversationStateAwaitingUser       ConversationState = "awaiting_user"
	ConversationStateAwaitingTechnician ConversationState = "awaiting_technician"
	ConversationStateClosed             ConversationState = "closed"
)

func (s ConversationState) Valid() bool {
	switch s {
	case ConversationStateActive, ConversationStateAwaitingUser, ConversationStateAwaitingTechnician, ConversationStateClosed:
		return true
	}
	return false
}

type ConversationStage string

const (
	ConversationStageInitial       ConversationStage = "initial"
	ConversationStageGatheringInfo ConversationStage = "gathering_info"
	ConversationStageProcessing    ConversationStage = "processing"
	ConversationStageFollowingUp   ConversationStage = "following_up"
	ConversationStageCompleted     ConversationStage = "completed"
)

type MessageDirection string

const (
	MessageInbound  MessageDirection = "inbound"
	MessageOutbound MessageDirection = "outbound"
)

type MessageSender string

const (
	SenderBot    MessageSender = "bot"
	SenderHuman  MessageSender = "human"
	SenderSystem MessageSender = "system"
)

type DeliveryState string

const (
	DeliverySending   DeliveryState = "sending"
	DeliverySent      DeliveryState = "sent"
	DeliveryDelivered DeliveryState = "delivered"
	DeliveryRead      DeliveryState = "read"
	DeliveryFailed    DeliveryState = "failed"
)

type Site struct {
	ID   string `json:"id"`
	Name string `json:"nombre"`
}

type Assignee struct {
	ID    string `json:"id"`
	Name  string `json:"nombre"`
	Email string `json:"email,omitempty"`
}

// Case is a service case row joined with its site and assignee.
type Case struct {
	ID                string       `json:"id"`
	Number            string       `json:"numeroCaso"`
	SiteID            string       `json:"sitioId"`
	AssigneeID        *string      `json:"asignadoId"`
	Category          string       `json:"categoria"`
	Subcategory       string       `json:"subcategoria"`
	State             CaseState    `json:"estado"`
	Priority          CasePriority `json:"prioridad"`
	CreatedAt         time.Time    `json:"fechaCreacion"`
	ClosedAt          *time.Time   `json:"fechaCierre"`
	SLABreached       bool         `json:"slaVencido"`
	SatisfactionScore *float64     `json:"calificacion"`

	Site     Site      `json:"sitio"`
	Assignee *Assignee `json:"asignado"`
}

type Survey struct {
	ID                  string      `json:"id"`
	CaseID              string      `json:"casoId"`
	CaseNumber          string      `json:"numeroCaso"`
	State               SurveyState `json:"estado"`
	ServiceQuality      float64     `json:"calidadServicio"`
	ResponseTime        float64     `json:"tiempoRespuesta"`
	TechnicianAttention float64     `json:"atencionTecnico"`
	OverallAverage      float64     `json:"promedioGeneral"`
	Comment             *string     `json:"comentario"`
	RespondedAt         *time.Time  `json:"fechaRespuesta"`
}

type FollowUp struct {
	ID      string  `json:"id"`
	CaseID  string  `json:"casoId"`
	Active  bool    `json:"activo"`
	Outcome *string `json:"resultado"`
}

type Conversation struct {
	Phone            string            `json:"telefono" bson:"phone"`
	State            ConversationState `json:"estado" bson:"state"`
	Stage            ConversationStage `json:"etapa" bson:"stage"`
	Escalated        bool              `json:"escalada" bson:"escalated"`
	EscalationReason string            `json:"motivoEscalamiento,omitempty" bson:"escalationReason,omitempty"`
	CaseID           string            `json:"casoId,omitempty" bson:"caseId,omitempty"`
	LastActivity     time.Time         `json:"ultimaActividad" bson:"lastActivity"`
}

type Message struct {
	Phone     string           `json:"telefono" bson:"phone"`
	Direction MessageDirection `json:"direccion" bson:"direction"`
	Sender    MessageSender    `json:"remitente" bson:"sender"`
	Content   string           `json:"contenido" bson:"content"`
	Delivery  DeliveryState    `json:"estadoEntrega" bson:"deliveryState"`
	SentAt    time.Time        `json:"fechaEnvio" bson:"sentAt"`
}
