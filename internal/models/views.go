package models

import "time"

// StateBreakdown has one bucket per case state so absent states still read as zero.
type StateBreakdown struct {
	New           int `json:"nuevo"`
	Assigned      int `json:"asignado"`
	InProgress    int `json:"enProceso"`
	OnVisit       int `json:"enVisita"`
	AwaitingParts int `json:"esperandoRepuestos"`
	Closed        int `json:"cerrado"`
}

// Add increments the bucket for state. Unknown states are ignored.
func (b *StateBreakdown) Add(state CaseState, n int) {
	switch state {
	case CaseStateNew:
		b.New += n
	case CaseStateAssigned:
		b.Assigned += n
	case CaseStateInProgress:
		b.InProgress += n
	case CaseStateOnVisit:
		b.OnVisit += n
	case CaseStateAwaitingParts:
		b.AwaitingParts += n
	case CaseStateClosed:
		b.Closed += n
	}
}

func (b StateBreakdown) Total() int {
	return b.New + b.Assigned + b.InProgress + b.OnVisit + b.AwaitingParts + b.Closed
}

type DashboardMetrics struct {
	OpenCases                int            `json:"casosAbiertos"`
	ClosedCases              int            `json:"casosCerrados"`
	TotalCases               int            `json:"casosTotal"`
	ByState                  StateBreakdown `json:"casosPorEstado"`
	AvgSatisfaction          float64        `json:"satisfaccionPromedio"`
	SurveyResponseRate       float64        `json:"tasaRespuestaEncuestas"`
	AvgResolutionHours       float64        `json:"tiempoPromedioResolucion"`
	AvgFirstResponseMinutes  float64        `json:"tiempoPromedioPrimeraRespuesta"`
	ResolvedOnFirstContact   int            `json:"casosResueltosPrimerContacto"`
	SLABreachedCases         int            `json:"casosVencidosSLA"`
	SLACompliancePct         float64        `json:"porcentajeCumplimientoSLA"`
	ActiveFollowUps          int            `json:"seguimientosActivos"`
	FollowUpsWithoutResponse int            `json:"seguimientosSinRespuesta"`
}

type StateCount struct {
	State CaseState
	Count int
}

type CategoryCount struct {
	Category string
	Count    int
}

type CaseTimes struct {
	CreatedAt time.Time
	ClosedAt  time.Time
}

type CaseView struct {
	ID                string       `json:"id"`
	Number            string       `json:"numeroCaso"`
	Category          string       `json:"categoria"`
	Subcategory       string       `json:"subcategoria"`
	State             CaseState    `json:"estado"`
	Priority          CasePriority `json:"prioridad"`
	CreatedAt         time.Time    `json:"fechaCreacion"`
	ClosedAt          *time.Time   `json:"fechaCierre"`
	SatisfactionScore *float64     `json:"calificacion"`
	Site              Site         `json:"sitio"`
	Assignee          *Assignee    `json:"asignado"`
	// ResolutionMinutes is set only for closed cases with a closure timestamp.
	ResolutionMinutes *float64 `json:"resolutionTime,omitempty"`
	SLABreached       bool     `json:"slaBreached"`
	StoredSLAFlag     bool     `json:"slaFlagRegistrado"`
}

type CaseList struct {
	Items    []CaseView `json:"items"`
	Total    int        `json:"total"`
	Page     int        `json:"page"`
	PageSize int        `json:"pageSize"`
}

type ConversationView struct {
	Conversation
	TotalMessages int       `json:"totalMensajes"`
	LastMessage   string    `json:"lastMessage"`
	Messages      []Message `json:"mensajes"`
}

type ConversationList struct {
	Items    []ConversationView `json:"items"`
	Total    int                `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"pageSize"`
}

type ScoreDistribution struct {
	Excellent int `json:"excelente"`
	VeryGood  int `json:"muyBueno"`
	Good      int `json:"bueno"`
	Fair      int `json:"regular"`
	Poor      int `json:"malo"`
}

type HighlightedComment struct {
	CaseNumber  string     `json:"numeroCaso"`
	Score       float64    `json:"calificacion"`
	Comment     string     `json:"comentario"`
	RespondedAt *time.Time `json:"fecha"`
}

type SatisfactionSummary struct {
	TotalSurveys           int                  `json:"totalEncuestas"`
	AvgServiceQuality      float64              `json:"promedioCalidadServicio"`
	AvgResponseTime        float64              `json:"promedioTiempoRespuesta"`
	AvgTechnicianAttention float64              `json:"promedioAtencionTecnico"`
	AvgOverall             float64              `json:"promedioGeneral"`
	Distribution           ScoreDistribution    `json:"distribucion"`
	Highlights             []HighlightedComment `json:"comentariosDestacados"`
}
