package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/orgkit/presence/modules/personnel/domain/aggregates/employee"
	"github.com/orgkit/presence/modules/personnel/services"
	"github.com/orgkit/presence/pkg/application"
	"github.com/orgkit/presence/pkg/configuration"
	"github.com/orgkit/presence/pkg/httpapi"
	"github.com/orgkit/presence/pkg/middleware"
)

type EmployeeAPIController struct {
	app       application.Application
	employees *services.EmployeeService
	export    *services.ExcelExportService
	basePath  string
}

func NewEmployeeAPIController(app application.Application) application.Controller {
	return &EmployeeAPIController{
		app:       app,
		employees: app.Service(services.EmployeeService{}).(*services.EmployeeService),
		export:    app.Service(services.ExcelExportService{}).(*services.ExcelExportService),
		basePath:  "/personnel/api",
	}
}

func (c *EmployeeAPIController) Key() string {
	return c.basePath
}

func (c *EmployeeAPIController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(middleware.Authenticate(configuration.Use().JWTSecret))
	router.HandleFunc("/employees", c.List).Methods(http.MethodGet)
	router.HandleFunc("/employees/export", c.Export).Methods(http.MethodGet)
	router.HandleFunc("/employees", c.Create).Methods(http.MethodPost)
	router.HandleFunc("/employees/{id:[0-9]+}", c.GetByID).Methods(http.MethodGet)
	router.HandleFunc("/employees/{id:[0-9]+}", c.Update).Methods(http.MethodPut)
	router.HandleFunc("/employees/{id:[0-9]+}", c.Delete).Methods(http.MethodDelete)
}

type statusVM struct {
	StatusTypeID uint      `json:"status_type_id"`
	Name         string    `json:"name"`
	Color        string    `json:"color,omitempty"`
	Since        time.Time `json:"since"`
}

type employeeVM struct {
	ID              uint       `json:"id"`
	FirstName       string     `json:"first_name"`
	LastName        string     `json:"last_name"`
	PersonnelNumber string     `json:"personnel_number"`
	NationalID      *string    `json:"national_id,omitempty"`
	IsAdmin         bool       `json:"is_admin"`
	IsCommander     bool       `json:"is_commander"`
	IsActive        bool       `json:"is_active"`
	BirthDate       *time.Time `json:"birth_date,omitempty"`
	ServiceType     *string    `json:"service_type,omitempty"`
	TeamID          *uint      `json:"team_id,omitempty"`
	SectionID       *uint      `json:"section_id,omitempty"`
	DepartmentID    *uint      `json:"department_id,omitempty"`
	TeamName        *string    `json:"team_name,omitempty"`
	SectionName     *string    `json:"section_name,omitempty"`
	DepartmentName  *string    `json:"department_name,omitempty"`
	Status          *statusVM  `json:"status,omitempty"`
}

func toEmployeeVM(d *employee.Details) employeeVM {
	vm := employeeVM{
		ID:              d.ID,
		FirstName:       d.FirstName,
		LastName:        d.LastName,
		PersonnelNumber: d.PersonnelNumber,
		NationalID:      d.NationalID,
		IsAdmin:         d.IsAdmin,
		IsCommander:     d.IsCommander,
		IsActive:        d.IsActive,
		BirthDate:       d.BirthDate,
		ServiceType:     d.ServiceType,
		TeamID:          d.TeamID,
		SectionID:       d.SectionID,
		DepartmentID:    d.DepartmentID,
		TeamName:        d.TeamName,
		SectionName:     d.SectionName,
		DepartmentName:  d.DepartmentName,
	}
	if d.Status != nil {
		vm.Status = &statusVM{
			StatusTypeID: d.Status.StatusTypeID,
			Name:         d.Status.Name,
			Color:        d.Status.Color,
			Since:        d.Status.Since,
		}
	}
	return vm
}

func findParamsFromQuery(r *http.Request) *employee.FindParams {
	conf := configuration.Use()
	q := r.URL.Query()

	params := &employee.FindParams{
		Query: q.Get("query"),
		Limit: conf.PageSize,
	}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 {
		params.Limit = min(v, conf.MaxPageSize)
	}
	if v, err := strconv.Atoi(q.Get("offset")); err == nil && v > 0 {
		params.Offset = v
	}
	if v, err := strconv.ParseUint(q.Get("department_id"), 10, 64); err == nil {
		id := uint(v)
		params.DepartmentID = &id
	}
	if v, err := strconv.ParseUint(q.Get("status_type_id"), 10, 64); err == nil {
		id := uint(v)
		params.StatusTypeID = &id
	}
	if q.Get("include_inactive") == "true" {
		params.IncludeInactive = true
	}
	return params
}

func (c *EmployeeAPIController) List(w http.ResponseWriter, r *http.Request) {
	params := findParamsFromQuery(r)
	items, total, err := c.employees.FindAll(r.Context(), params)
	if err != nil {
		_ = httpapi.WriteFailure(r.Context(), w, err)
		return
	}
	vms := make([]employeeVM, 0, len(items))
	for _, item := range items {
		vms = append(vms, toEmployeeVM(item))
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]any{
		"employees": vms,
		"total":     total,
	})
}

func (c *EmployeeAPIController) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "EMPLOYEE_INVALID_ID", "invalid employee id", nil)
		return
	}
	details, err := c.employees.FindByID(r.Context(), uint(id))
	if err != nil {
		_ = httpapi.WriteFailure(r.Context(), w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]any{
		"employee": toEmployeeVM(details),
		"command_scope": map[string]any{
			"kind": string(details.CommandScope.Kind),
			"id":   details.CommandScope.ID,
		},
	})
}

func (c *EmployeeAPIController) Create(w http.ResponseWriter, r *http.Request) {
	var dto employee.CreateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "EMPLOYEE_INVALID_JSON", "invalid json", nil)
		return
	}
	id, err := c.employees.Create(r.Context(), &dto)
	if err != nil {
		_ = httpapi.WriteFailure(r.Context(), w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, map[string]any{"id": id})
}

func (c *EmployeeAPIController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "EMPLOYEE_INVALID_ID", "invalid employee id", nil)
		return
	}
	var dto employee.UpdateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "EMPLOYEE_INVALID_JSON", "invalid json", nil)
		return
	}
	if err := c.employees.Update(r.Context(), uint(id), &dto); err != nil {
		_ = httpapi.WriteFailure(r.Context(), w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (c *EmployeeAPIController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "EMPLOYEE_INVALID_ID", "invalid employee id", nil)
		return
	}
	if err := c.employees.Delete(r.Context(), uint(id)); err != nil {
		_ = httpapi.WriteFailure(r.Context(), w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (c *EmployeeAPIController) Export(w http.ResponseWriter, r *http.Request) {
	params := findParamsFromQuery(r)
	params.Limit = 0
	params.Offset = 0

	data, filename, err := c.export.Roster(r.Context(), params)
	if err != nil {
		_ = httpapi.WriteFailure(r.Context(), w, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
