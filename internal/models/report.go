package models

import "time"

// Report is the four-section payload consumed by the spreadsheet exporter.
// Section order and the column order of each row type are part of the export contract.
type Report struct {
	Period        ReportPeriod        `json:"periodo"`
	SiteID        *string             `json:"sitioId"`
	GeneratedAt   time.Time           `json:"generadoEn"`
	Summary       DashboardMetrics    `json:"resumen"`
	BySite        []SiteBreakdown     `json:"porSitio"`
	ByAssignee    []AssigneeBreakdown `json:"porAsignado"`
	TopCategories []CategoryShare     `json:"categoriasTop"`
}

type ReportPeriod struct {
	Start time.Time `json:"inicio"`
	End   time.Time `json:"fin"`
}

var SiteBreakdownColumns = []string{"Sitio", "Total", "Abiertos", "Cerrados", "Satisfacción"}

type SiteBreakdown struct {
	SiteID          string  `json:"sitioId"`
	SiteName        string  `json:"sitio"`
	Total           int     `json:"total"`
	Open            int     `json:"abiertos"`
	Closed          int     `json:"cerrados"`
	AvgSatisfaction float64 `json:"satisfaccion"`
}

func (s SiteBreakdown) Row() []any {
	return []any{s.SiteName, s.Total, s.Open, s.Closed, s.AvgSatisfaction}
}

var AssigneeBreakdownColumns = []string{"Técnico", "Total", "Resueltos", "Pendientes", "Satisfacción", "Tiempo Resolución (h)"}

type AssigneeBreakdown struct {
	AssigneeID         string  `json:"asignadoId"`
	AssigneeName       string  `json:"asignado"`
	Total              int     `json:"total"`
	Resolved           int     `json:"resueltos"`
	Pending            int     `json:"pendientes"`
	AvgSatisfaction    float64 `json:"satisfaccion"`
	AvgResolutionHours float64 `json:"tiempoResolucion"`
}

func (a AssigneeBreakdown) Row() []any {
	return []any{a.AssigneeName, a.Total, a.Resolved, a.Pending, a.AvgSatisfaction, a.AvgResolutionHours}
}

var CategoryShareColumns = []string{"Categoría", "Cantidad", "Porcentaje"}

type CategoryShare struct {
	Category   string  `json:"categoria"`
	Count      int     `json:"cantidad"`
	Percentage float64 `json:"porcentaje"`
}

func (c CategoryShare) Row() []any {
	return []any{c.Category, c.Count, c.Percentage}
}

// SummaryRows flattens the summary section into label/value pairs in export order.
func (r Report) SummaryRows() [][]any {
	m := r.Summary
	return [][]any{
		{"Casos totales", m.TotalCases},
		{"Casos abiertos", m.OpenCases},
		{"Casos cerrados", m.ClosedCases},
		{"Nuevos", m.ByState.New},
		{"Asignados", m.ByState.Assigned},
		{"En proceso", m.ByState.InProgress},
		{"En visita", m.ByState.OnVisit},
		{"Esperando repuestos", m.ByState.AwaitingParts},
		{"Cerrados", m.ByState.Closed},
		{"Satisfacción promedio", m.AvgSatisfaction},
		{"Tasa de respuesta de encuestas (%)", m.SurveyResponseRate},
		{"Tiempo promedio de resolución (h)", m.AvgResolutionHours},
		{"Tiempo promedio de primera respuesta (min)", m.AvgFirstResponseMinutes},
		{"Resueltos en primer contacto", m.ResolvedOnFirstContact},
		{"Casos vencidos SLA", m.SLABreachedCases},
		{"Cumplimiento SLA (%)", m.SLACompliancePct},
	}
}
