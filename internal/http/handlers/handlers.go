package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/freedom_case_2/opsmetrics/internal/models"
	"github.com/freedom_case_2/opsmetrics/internal/service"
)

type MetricsService interface {
	ComputeGeneralMetrics(ctx context.Context, window models.Window, siteID string) (models.DashboardMetrics, error)
}

type CaseService interface {
	ListCases(ctx context.Context, filter models.CaseFilter, page models.Page) (models.CaseList, error)
	ListAllCases(ctx context.Context, filter models.CaseFilter) (models.CaseList, error)
}

type ConversationService interface {
	ListConversations(ctx context.Context, filter models.ConversationFilter, page models.Page) (models.ConversationList, error)
	GetConversation(ctx context.Context, phone string) (models.ConversationView, error)
}

type SatisfactionService interface {
	ComputeSatisfaction(ctx context.Context, window models.Window, siteID string) (models.SatisfactionSummary, error)
}

type ReportService interface {
	Generate(ctx context.Context, window models.Window, siteID string) (models.Report, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	Metrics       MetricsService
	Cases         CaseService
	Conversations ConversationService
	Satisfaction  SatisfactionService
	Reports       ReportService
	// Dependencies checked by Healthz, keyed by name.
	Pingers   map[string]Pinger
	Validator *validator.Validate
	Logger    zerolog.Logger
}

func (h *Handler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	checks := gin.H{}
	for name, p := range h.Pingers {
		if err := p.Ping(ctx); err != nil {
			writeError(c, http.StatusServiceUnavailable, "DEPENDENCY_UNAVAILABLE", name+" unavailable", err.Error())
			return
		}
		checks[name] = "ok"
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "checks": checks})
}

// @Summary Dashboard metrics
// @Tags metrics
// @Produce json
// @Param desde query string false "Window start (RFC 3339)"
// @Param hasta query string false "Window end, exclusive (RFC 3339)"
// @Param sitioId query string false "Site ID"
// @Success 200 {object} models.DashboardMetrics
// @Failure 400 {object} map[string]any
// @Failure 500 {object} map[string]any
// @Router /api/metrics [get]
func (h *Handler) GetMetrics(c *gin.Context) {
	var q windowQuery
	if !h.bind(c, &q) {
		return
	}
	w, err := parseWindow(q.Desde, q.Hasta)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	m, err := h.Metrics.ComputeGeneralMetrics(c.Request.Context(), w, q.SitioID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// @Summary List cases
// @Tags cases
// @Produce json
// @Param estado query string false "Comma separated case states"
// @Param sitioId query string false "Site ID"
// @Param asignadoId query string false "Assignee ID"
// @Param prioridad query string false "Priority"
// @Param desde query string false "Created from (RFC 3339)"
// @Param hasta query string false "Created before (RFC 3339)"
// @Param page query int false "Page, 1-based"
// @Param pageSize query int false "Page size"
// @Success 200 {object} models.CaseList
// @Failure 400 {object} map[string]any
// @Router /api/cases [get]
func (h *Handler) CasesList(c *gin.Context) {
	var q casesQuery
	if !h.bind(c, &q) {
		return
	}
	f, err := q.filter()
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	list, err := h.Cases.ListCases(c.Request.Context(), f, q.page())
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary Export cases
// @Description Same filters as /api/cases, without pagination, capped at 10000 rows
// @Tags cases
// @Produce json
// @Success 200 {object} models.CaseList
// @Router /api/cases/export [get]
func (h *Handler) CasesExport(c *gin.Context) {
	var q casesQuery
	if !h.bind(c, &q) {
		return
	}
	f, err := q.filter()
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	list, err := h.Cases.ListAllCases(c.Request.Context(), f)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary List conversations
// @Tags conversations
// @Produce json
// @Param telefono query string false "Phone number"
// @Param estado query string false "Conversation state"
// @Param escalada query bool false "Escalated only"
// @Param desde query string false "Last activity from (RFC 3339)"
// @Param hasta query string false "Last activity before (RFC 3339)"
// @Param page query int false "Page, 1-based"
// @Param pageSize query int false "Page size"
// @Success 200 {object} models.ConversationList
// @Failure 400 {object} map[string]any
// @Router /api/conversations [get]
func (h *Handler) ConversationsList(c *gin.Context) {
	var q conversationsQuery
	if !h.bind(c, &q) {
		return
	}
	f, err := q.filter()
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	list, err := h.Conversations.ListConversations(c.Request.Context(), f, q.page())
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary Conversation detail
// @Tags conversations
// @Produce json
// @Param phone path string true "Phone number"
// @Success 200 {object} models.ConversationView
// @Failure 404 {object} map[string]any
// @Router /api/conversations/{phone} [get]
func (h *Handler) ConversationDetails(c *gin.Context) {
	view, err := h.Conversations.GetConversation(c.Request.Context(), c.Param("phone"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// @Summary Satisfaction summary
// @Tags satisfaction
// @Produce json
// @Param desde query string false "Window start (RFC 3339)"
// @Param hasta query string false "Window end, exclusive (RFC 3339)"
// @Param sitioId query string false "Site ID"
// @Success 200 {object} models.SatisfactionSummary
// @Router /api/satisfaction [get]
func (h *Handler) GetSatisfaction(c *gin.Context) {
	var q windowQuery
	if !h.bind(c, &q) {
		return
	}
	w, err := parseWindow(q.Desde, q.Hasta)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	s, err := h.Satisfaction.ComputeSatisfaction(c.Request.Context(), w, q.SitioID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// @Summary Periodic report
// @Tags reports
// @Produce json
// @Param desde query string true "Period start (RFC 3339)"
// @Param hasta query string true "Period end, exclusive (RFC 3339)"
// @Param sitioId query string false "Site ID"
// @Success 200 {object} models.Report
// @Failure 400 {object} map[string]any
// @Router /api/reports [get]
func (h *Handler) GetReport(c *gin.Context) {
	var q windowQuery
	if !h.bind(c, &q) {
		return
	}
	w, err := parseWindow(q.Desde, q.Hasta)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	r, err := h.Reports.Generate(c.Request.Context(), w, q.SitioID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// bind reads query parameters into dst and validates them, writing a 400 on failure.
func (h *Handler) bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query parameters", err.Error())
		return false
	}
	if h.Validator == nil {
		return true
	}
	if err := h.Validator.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			details := make([]gin.H, 0, len(verrs))
			for _, fe := range verrs {
				details = append(details, gin.H{"field": fe.Field(), "rule": fe.Tag(), "param": fe.Param()})
			}
			writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query parameters", details)
			return false
		}
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query parameters", err.Error())
		return false
	}
	return true
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	var ve service.ValidationError
	switch {
	case errors.As(err, &ve):
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", ve.Error(), gin.H{"field": ve.Field})
	case errors.Is(err, service.ErrNotFound):
		writeError(c, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	default:
		h.Logger.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		writeError(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to read from the data stores", err.Error())
	}
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}
