package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/orgkit/presence/modules/attendance/domain/entities/interval"
	"github.com/orgkit/presence/modules/attendance/services"
	"github.com/orgkit/presence/pkg/application"
	"github.com/orgkit/presence/pkg/configuration"
	"github.com/orgkit/presence/pkg/httpapi"
	"github.com/orgkit/presence/pkg/middleware"
)

type AttendanceAPIController struct {
	app        application.Application
	attendance *services.AttendanceService
	basePath   string
}

func NewAttendanceAPIController(app application.Application) application.Controller {
	return &AttendanceAPIController{
		app:        app,
		attendance: app.Service(services.AttendanceService{}).(*services.AttendanceService),
		basePath:   "/attendance/api",
	}
}

func (c *AttendanceAPIController) Key() string {
	return c.basePath
}

func (c *AttendanceAPIController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(middleware.Authenticate(configuration.Use().JWTSecret))
	router.HandleFunc("/status", c.LogStatus).Methods(http.MethodPost)
	router.HandleFunc("/status/bulk", c.BulkLogStatus).Methods(http.MethodPost)
	router.HandleFunc("/status-types", c.StatusTypes).Methods(http.MethodGet)
	router.HandleFunc("/history/{employeeId:[0-9]+}", c.History).Methods(http.MethodGet)
	router.HandleFunc("/dashboard", c.Dashboard).Methods(http.MethodGet)
	router.HandleFunc("/summary/{year:[0-9]+}/{month:[0-9]+}", c.MonthlySummary).Methods(http.MethodGet)
	router.HandleFunc("/birthdays", c.Birthdays).Methods(http.MethodGet)
}

func (c *AttendanceAPIController) LogStatus(w http.ResponseWriter, r *http.Request) {
	var dto interval.LogStatusDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "ATTENDANCE_INVALID_JSON", "invalid json", nil)
		return
	}
	if err := c.attendance.LogStatus(r.Context(), &dto); err != nil {
		_ = httpapi.WriteFailure(r.Context(), w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (c *AttendanceAPIController) BulkLogStatus(w http.ResponseWriter, r *http.Request) {
	var dtos []*interval.LogStatusDTO
	if err := json.NewDecoder(r.Body).Decode(&dtos); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "ATTENDANCE_INVALID_JSON", "invalid json", nil)
		return
	}

	results := c.attendance.BulkLogStatus(r.Context(), dtos)
	type itemVM struct {
		EmployeeID uint   `json:"employee_id"`
		OK         bool   `json:"ok"`
		Error      string `json:"error,omitempty"`
	}
	items := make([]itemVM, 0, len(results))
	failed := 0
	for _, res := range results {
		item := itemVM{EmployeeID: res.EmployeeID, OK: res.Err == nil}
		if res.Err != nil {
			item.Error = res.Err.Error()
			failed++
		}
		items = append(items, item)
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]any{
		"results": items,
		"failed":  failed,
	})
}

func (c *AttendanceAPIController) StatusTypes(w http.ResponseWriter, r *http.Request) {
	statusTypes, err := c.attendance.StatusTypes(r.Context())
	if err != nil {
		_ = httpapi.WriteFailure(r.Context(), w, err)
		return
	}
	type statusTypeVM struct {
		ID         uint   `json:"id"`
		Name       string `json:"name"`
		Color      string `json:"color"`
		IsPresence bool   `json:"is_presence"`
	}
	vms := make([]statusTypeVM, 0, len(statusTypes))
	for _, st := range statusTypes {
		vms = append(vms, statusTypeVM(st))
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]any{"status_types": vms})
}

type intervalVM struct {
	ID            uint       `json:"id"`
	EmployeeID    uint       `json:"employee_id"`
	StatusTypeID  uint       `json:"status_type_id"`
	StartDatetime time.Time  `json:"start_datetime"`
	EndDatetime   *time.Time `json:"end_datetime,omitempty"`
	Note          *string    `json:"note,omitempty"`
	ReportedBy    uint       `json:"reported_by"`
}

func (c *AttendanceAPIController) History(w http.ResponseWriter, r *http.Request) {
	employeeID, err := strconv.ParseUint(mux.Vars(r)["employeeId"], 10, 64)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "ATTENDANCE_INVALID_ID", "invalid employee id", nil)
		return
	}

	conf := configuration.Use()
	limit := conf.PageSize
	offset := 0
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = min(v, conf.MaxPageSize)
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v > 0 {
		offset = v
	}

	intervals, err := c.attendance.History(r.Context(), uint(employeeID), limit, offset)
	if err != nil {
		_ = httpapi.WriteFailure(r.Context(), w, err)
		return
	}
	vms := make([]intervalVM, 0, len(intervals))
	for _, iv := range intervals {
		vms = append(vms, intervalVM{
			ID:            iv.ID,
			EmployeeID:    iv.EmployeeID,
			StatusTypeID:  iv.StatusTypeID,
			StartDatetime: iv.StartDatetime,
			EndDatetime:   iv.EndDatetime,
			Note:          iv.Note,
			ReportedBy:    iv.ReportedBy,
		})
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]any{"intervals": vms})
}

func dashboardFiltersFromQuery(r *http.Request) *interval.DashboardFilters {
	q := r.URL.Query()
	filters := &interval.DashboardFilters{}

	parseID := func(name string) *uint {
		v, err := strconv.ParseUint(q.Get(name), 10, 64)
		if err != nil {
			return nil
		}
		id := uint(v)
		return &id
	}
	filters.DepartmentID = parseID("department_id")
	filters.SectionID = parseID("section_id")
	filters.TeamID = parseID("team_id")
	filters.StatusTypeID = parseID("status_type_id")
	if v := q.Get("service_type"); v != "" {
		filters.ServiceType = &v
	}
	if v, err := time.Parse("2006-01-02", q.Get("date")); err == nil {
		filters.Date = &v
	}
	return filters
}

func (c *AttendanceAPIController) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := c.attendance.DashboardStats(r.Context(), dashboardFiltersFromQuery(r))
	if err != nil {
		_ = httpapi.WriteFailure(r.Context(), w, err)
		return
	}
	type statVM struct {
		StatusTypeID uint   `json:"status_type_id"`
		Name         string `json:"name"`
		Color        string `json:"color"`
		Count        int64  `json:"count"`
	}
	vms := make([]statVM, 0, len(stats))
	for _, st := range stats {
		vms = append(vms, statVM(st))
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]any{"stats": vms})
}

func (c *AttendanceAPIController) MonthlySummary(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	year, err := strconv.Atoi(vars["year"])
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "ATTENDANCE_INVALID_YEAR", "invalid year", nil)
		return
	}
	month, err := strconv.Atoi(vars["month"])
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "ATTENDANCE_INVALID_MONTH", "invalid month", nil)
		return
	}

	summary, err := c.attendance.MonthlySummary(r.Context(), year, time.Month(month))
	if err != nil {
		_ = httpapi.WriteFailure(r.Context(), w, err)
		return
	}
	type rowVM struct {
		Day   int    `json:"day"`
		Name  string `json:"name"`
		Color string `json:"color"`
		Count int64  `json:"count"`
	}
	vms := make([]rowVM, 0, len(summary))
	for _, row := range summary {
		vms = append(vms, rowVM(row))
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]any{
		"year":  year,
		"month": month,
		"rows":  vms,
	})
}

func (c *AttendanceAPIController) Birthdays(w http.ResponseWriter, r *http.Request) {
	birthdays, err := c.attendance.Birthdays(r.Context())
	if err != nil {
		_ = httpapi.WriteFailure(r.Context(), w, err)
		return
	}
	type birthdayVM struct {
		EmployeeID uint   `json:"employee_id"`
		FirstName  string `json:"first_name"`
		LastName   string `json:"last_name"`
		BirthDate  string `json:"birth_date"`
		DaysUntil  int    `json:"days_until"`
	}
	vms := make([]birthdayVM, 0, len(birthdays))
	for _, b := range birthdays {
		vms = append(vms, birthdayVM{
			EmployeeID: b.EmployeeID,
			FirstName:  b.FirstName,
			LastName:   b.LastName,
			BirthDate:  b.BirthDate.Format("2006-01-02"),
			DaysUntil:  b.DaysUntil,
		})
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]any{"birthdays": vms})
}
