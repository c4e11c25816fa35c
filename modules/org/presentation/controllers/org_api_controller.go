package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/orgkit/presence/modules/org/domain/unit"
	"github.com/orgkit/presence/modules/org/services"
	"github.com/orgkit/presence/pkg/application"
	"github.com/orgkit/presence/pkg/configuration"
	"github.com/orgkit/presence/pkg/httpapi"
	"github.com/orgkit/presence/pkg/middleware"
)

type OrgAPIController struct {
	app       application.Application
	hierarchy *services.HierarchyService
	basePath  string
}

func NewOrgAPIController(app application.Application) application.Controller {
	return &OrgAPIController{
		app:       app,
		hierarchy: app.Service(services.HierarchyService{}).(*services.HierarchyService),
		basePath:  "/org/api",
	}
}

func (c *OrgAPIController) Key() string {
	return c.basePath
}

func (c *OrgAPIController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(middleware.Authenticate(configuration.Use().JWTSecret))
	router.HandleFunc("/tree", c.Tree).Methods(http.MethodGet)
	router.HandleFunc("/commander", c.SetCommander).Methods(http.MethodPut)
}

type teamVM struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	CommanderID *uint  `json:"commander_id,omitempty"`
}

type sectionVM struct {
	ID          uint     `json:"id"`
	Name        string   `json:"name"`
	CommanderID *uint    `json:"commander_id,omitempty"`
	Teams       []teamVM `json:"teams"`
}

type departmentVM struct {
	ID          uint        `json:"id"`
	Name        string      `json:"name"`
	CommanderID *uint       `json:"commander_id,omitempty"`
	Sections    []sectionVM `json:"sections"`
}

func toDepartmentVMs(tree []unit.DepartmentNode) []departmentVM {
	out := make([]departmentVM, 0, len(tree))
	for _, d := range tree {
		dvm := departmentVM{ID: d.ID, Name: d.Name, CommanderID: d.CommanderID, Sections: []sectionVM{}}
		for _, s := range d.Sections {
			svm := sectionVM{ID: s.ID, Name: s.Name, CommanderID: s.CommanderID, Teams: []teamVM{}}
			for _, tm := range s.Teams {
				svm.Teams = append(svm.Teams, teamVM{ID: tm.ID, Name: tm.Name, CommanderID: tm.CommanderID})
			}
			dvm.Sections = append(dvm.Sections, svm)
		}
		out = append(out, dvm)
	}
	return out
}

func (c *OrgAPIController) Tree(w http.ResponseWriter, r *http.Request) {
	tree, err := c.hierarchy.Tree(r.Context())
	if err != nil {
		_ = httpapi.WriteFailure(r.Context(), w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]any{
		"departments": toDepartmentVMs(tree),
	})
}

type setCommanderRequest struct {
	UnitType   string `json:"unit_type"`
	UnitID     uint   `json:"unit_id"`
	EmployeeID *uint  `json:"employee_id"`
}

func (c *OrgAPIController) SetCommander(w http.ResponseWriter, r *http.Request) {
	var req setCommanderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "ORG_INVALID_JSON", "invalid json", nil)
		return
	}
	if err := c.hierarchy.SetCommander(r.Context(), unit.Type(req.UnitType), req.UnitID, req.EmployeeID); err != nil {
		_ = httpapi.WriteFailure(r.Context(), w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
}
