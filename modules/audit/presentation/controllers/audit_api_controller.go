package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/orgkit/presence/modules/audit/domain/entities/auditlog"
	"github.com/orgkit/presence/modules/audit/services"
	"github.com/orgkit/presence/pkg/application"
	"github.com/orgkit/presence/pkg/configuration"
	"github.com/orgkit/presence/pkg/httpapi"
	"github.com/orgkit/presence/pkg/middleware"
)

type AuditAPIController struct {
	app      application.Application
	audit    *services.AuditService
	basePath string
}

func NewAuditAPIController(app application.Application) application.Controller {
	return &AuditAPIController{
		app:      app,
		audit:    app.Service(services.AuditService{}).(*services.AuditService),
		basePath: "/audit/api",
	}
}

func (c *AuditAPIController) Key() string {
	return c.basePath
}

func (c *AuditAPIController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(
		middleware.Authenticate(configuration.Use().JWTSecret),
		middleware.RequireAdmin(),
	)
	router.HandleFunc("/logs", c.List).Methods(http.MethodGet)
}

type auditLogVM struct {
	ID          uint            `json:"id"`
	ActorID     uint            `json:"actor_id"`
	ActionType  string          `json:"action_type"`
	Description string          `json:"description"`
	TargetType  string          `json:"target_type,omitempty"`
	TargetID    *uint           `json:"target_id,omitempty"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

func (c *AuditAPIController) List(w http.ResponseWriter, r *http.Request) {
	conf := configuration.Use()
	q := r.URL.Query()

	params := &auditlog.FindParams{
		ActionType: q.Get("action_type"),
		TargetType: q.Get("target_type"),
		Limit:      conf.PageSize,
	}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 {
		params.Limit = min(v, conf.MaxPageSize)
	}
	if v, err := strconv.Atoi(q.Get("offset")); err == nil && v > 0 {
		params.Offset = v
	}
	if v, err := strconv.ParseUint(q.Get("actor_id"), 10, 64); err == nil {
		id := uint(v)
		params.ActorID = &id
	}
	if v, err := time.Parse("2006-01-02", q.Get("from")); err == nil {
		params.From = &v
	}
	if v, err := time.Parse("2006-01-02", q.Get("to")); err == nil {
		params.To = &v
	}

	entries, total, err := c.audit.List(r.Context(), params)
	if err != nil {
		_ = httpapi.WriteFailure(r.Context(), w, err)
		return
	}
	vms := make([]auditLogVM, 0, len(entries))
	for _, entry := range entries {
		vms = append(vms, auditLogVM{
			ID:          entry.ID,
			ActorID:     entry.ActorID,
			ActionType:  entry.ActionType,
			Description: entry.Description,
			TargetType:  entry.TargetType,
			TargetID:    entry.TargetID,
			Metadata:    entry.Metadata,
			CreatedAt:   entry.CreatedAt,
		})
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]any{
		"logs":  vms,
		"total": total,
	})
}
