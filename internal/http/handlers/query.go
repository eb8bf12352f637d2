package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/freedom_case_2/opsmetrics/internal/models"
	"github.com/freedom_case_2/opsmetrics/internal/service"
)

type windowQuery struct {
	Desde   string `form:"desde"`
	Hasta   string `form:"hasta"`
	SitioID string `form:"sitioId" validate:"omitempty,max=64"`
}

type pageQuery struct {
	Page     int `form:"page" validate:"omitempty,min=1"`
	PageSize int `form:"pageSize" validate:"omitempty,min=1,max=500"`
}

type casesQuery struct {
	windowQuery
	pageQuery
	Estado     string `form:"estado"`
	AsignadoID string `form:"asignadoId" validate:"omitempty,max=64"`
	Prioridad  string `form:"prioridad" validate:"omitempty,oneof=low medium high urgent"`
}

type conversationsQuery struct {
	pageQuery
	Desde    string `form:"desde"`
	Hasta    string `form:"hasta"`
	Telefono string `form:"telefono" validate:"omitempty,max=32"`
	Estado   string `form:"estado"`
	Escalada string `form:"escalada" validate:"omitempty,oneof=true false"`
}

var timeLayouts = []string{time.RFC3339, "2006-01-02"}

func parseTime(field, raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, service.ValidationError{Field: field, Message: "expected an RFC 3339 timestamp or YYYY-MM-DD date"}
}

func parseWindow(desde, hasta string) (models.Window, error) {
	start, err := parseTime("desde", desde)
	if err != nil {
		return models.Window{}, err
	}
	end, err := parseTime("hasta", hasta)
	if err != nil {
		return models.Window{}, err
	}
	return models.Window{Start: start, End: end}, nil
}

func (q pageQuery) page() models.Page {
	return models.Page{Page: q.Page, Size: q.PageSize}
}

func (q casesQuery) filter() (models.CaseFilter, error) {
	w, err := parseWindow(q.Desde, q.Hasta)
	if err != nil {
		return models.CaseFilter{}, err
	}
	f := models.CaseFilter{
		SiteID:     strings.TrimSpace(q.SitioID),
		AssigneeID: strings.TrimSpace(q.AsignadoID),
		Priority:   models.CasePriority(q.Prioridad),
		Window:     w,
	}
	// estado accepts a comma separated list
	for _, s := range strings.Split(q.Estado, ",") {
		if s = strings.TrimSpace(s); s != "" {
			f.States = append(f.States, models.CaseState(s))
		}
	}
	return f, nil
}

func (q conversationsQuery) filter() (models.ConversationFilter, error) {
	w, err := parseWindow(q.Desde, q.Hasta)
	if err != nil {
		return models.ConversationFilter{}, err
	}
	f := models.ConversationFilter{
		Phone:  q.Telefono,
		State:  models.ConversationState(strings.TrimSpace(q.Estado)),
		Window: w,
	}
	if q.Escalada != "" {
		v, err := strconv.ParseBool(q.Escalada)
		if err != nil {
			return models.ConversationFilter{}, service.ValidationError{Field: "escalada", Message: "expected true or false"}
		}
		f.Escalated = &v
	}
	return f, nil
}
