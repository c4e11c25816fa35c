package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/orgkit/presence/modules/transfer/domain/entities/transferrequest"
	"github.com/orgkit/presence/modules/transfer/services"
	"github.com/orgkit/presence/pkg/application"
	"github.com/orgkit/presence/pkg/configuration"
	"github.com/orgkit/presence/pkg/httpapi"
	"github.com/orgkit/presence/pkg/middleware"
)

type TransferAPIController struct {
	app       application.Application
	transfers *services.TransferService
	basePath  string
}

func NewTransferAPIController(app application.Application) application.Controller {
	return &TransferAPIController{
		app:       app,
		transfers: app.Service(services.TransferService{}).(*services.TransferService),
		basePath:  "/transfers/api",
	}
}

func (c *TransferAPIController) Key() string {
	return c.basePath
}

func (c *TransferAPIController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(middleware.Authenticate(configuration.Use().JWTSecret))
	router.HandleFunc("/requests", c.Create).Methods(http.MethodPost)
	router.HandleFunc("/requests/pending", c.Pending).Methods(http.MethodGet)
	router.HandleFunc("/requests/history", c.History).Methods(http.MethodGet)
	router.HandleFunc("/requests/{id:[0-9]+}/approve", c.Approve).Methods(http.MethodPost)
	router.HandleFunc("/requests/{id:[0-9]+}/reject", c.Reject).Methods(http.MethodPost)
	router.HandleFunc("/requests/{id:[0-9]+}/cancel", c.Cancel).Methods(http.MethodPost)
}

type listingVM struct {
	ID            uint       `json:"id"`
	EmployeeID    uint       `json:"employee_id"`
	EmployeeName  string     `json:"employee_name"`
	RequesterID   uint       `json:"requester_id"`
	RequesterName string     `json:"requester_name"`
	TargetType    string     `json:"target_type"`
	TargetID      uint       `json:"target_id"`
	TargetName    *string    `json:"target_name,omitempty"`
	Status        string     `json:"status"`
	Notes         *string    `json:"notes,omitempty"`
	Reason        *string    `json:"reason,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	ResolvedAt    *time.Time `json:"resolved_at,omitempty"`
	ResolvedBy    *uint      `json:"resolved_by,omitempty"`
}

func toListingVMs(listings []transferrequest.Listing) []listingVM {
	out := make([]listingVM, 0, len(listings))
	for _, l := range listings {
		out = append(out, listingVM{
			ID:            l.ID,
			EmployeeID:    l.EmployeeID,
			EmployeeName:  l.EmployeeName,
			RequesterID:   l.RequesterID,
			RequesterName: l.RequesterName,
			TargetType:    string(l.TargetType),
			TargetID:      l.TargetID,
			TargetName:    l.TargetName,
			Status:        string(l.Status),
			Notes:         l.Notes,
			Reason:        l.Reason,
			CreatedAt:     l.CreatedAt,
			ResolvedAt:    l.ResolvedAt,
			ResolvedBy:    l.ResolvedBy,
		})
	}
	return out
}

func (c *TransferAPIController) Create(w http.ResponseWriter, r *http.Request) {
	var dto transferrequest.CreateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "TRANSFER_INVALID_JSON", "invalid json", nil)
		return
	}
	id, err := c.transfers.Create(r.Context(), &dto)
	if err != nil {
		_ = httpapi.WriteFailure(r.Context(), w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, map[string]any{"id": id})
}

func (c *TransferAPIController) Pending(w http.ResponseWriter, r *http.Request) {
	listings, err := c.transfers.Pending(r.Context())
	if err != nil {
		_ = httpapi.WriteFailure(r.Context(), w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]any{"requests": toListingVMs(listings)})
}

func (c *TransferAPIController) History(w http.ResponseWriter, r *http.Request) {
	conf := configuration.Use()
	limit := conf.PageSize
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = min(v, conf.MaxPageSize)
	}
	listings, err := c.transfers.History(r.Context(), limit)
	if err != nil {
		_ = httpapi.WriteFailure(r.Context(), w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]any{"requests": toListingVMs(listings)})
}

func (c *TransferAPIController) Approve(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "TRANSFER_INVALID_ID", "invalid request id", nil)
		return
	}
	if err := c.transfers.Approve(r.Context(), uint(id)); err != nil {
		_ = httpapi.WriteFailure(r.Context(), w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (c *TransferAPIController) Reject(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "TRANSFER_INVALID_ID", "invalid request id", nil)
		return
	}
	var body struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "TRANSFER_INVALID_JSON", "invalid json", nil)
		return
	}
	if err := c.transfers.Reject(r.Context(), uint(id), body.Reason); err != nil {
		_ = httpapi.WriteFailure(r.Context(), w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (c *TransferAPIController) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "TRANSFER_INVALID_ID", "invalid request id", nil)
		return
	}
	if err := c.transfers.Cancel(r.Context(), uint(id)); err != nil {
		_ = httpapi.WriteFailure(r.Context(), w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
}
