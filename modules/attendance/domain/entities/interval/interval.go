package interval

import (
	"context"
	"time"

	"github.com/orgkit/presence/modules/org/domain/scope"
)

// StatusType is one category from the presence catalog, for example
// "Office", "Sick" or "Leave".
type StatusType struct {
	ID         uint
	Name       string
	Color      string
	IsPresence bool
}

// AttendanceInterval is one span of a status in an employee's ledger. A
// nil EndDatetime marks the employee's current status. Each employee has
// at most one open interval at any time.
type AttendanceInterval struct {
	ID            uint
	EmployeeID    uint
	StatusTypeID  uint
	StartDatetime time.Time
	EndDatetime   *time.Time
	Note          *string
	ReportedBy    uint
	CreatedAt     time.Time
}

func (i *AttendanceInterval) IsOpen() bool {
	return i.EndDatetime == nil
}

// DashboardFilters narrows the current-status aggregation. Scope is set
// by the service from the requester's resolved visibility, never by the
// caller.
type DashboardFilters struct {
	DepartmentID *uint
	SectionID    *uint
	TeamID       *uint
	StatusTypeID *uint
	ServiceType  *string
	Date         *time.Time
	Scope        scope.Scope
}

type DashboardStat struct {
	StatusTypeID uint
	Name         string
	Color        string
	Count        int64
}

// SummaryRow is one (day, status) cell of the monthly report.
type SummaryRow struct {
	Day   int
	Name  string
	Color string
	Count int64
}

// BirthdayCandidate is a visible active employee with a known birth date.
// The service decides which candidates fall inside the upcoming window.
type BirthdayCandidate struct {
	EmployeeID uint
	FirstName  string
	LastName   string
	BirthDate  time.Time
}

type Repository interface {
	StatusTypes(ctx context.Context) ([]StatusType, error)
	CloseOpen(ctx context.Context, employeeID uint, at time.Time) error
	Insert(ctx context.Context, data *AttendanceInterval) (uint, error)
	ListByEmployee(ctx context.Context, employeeID uint, visibility scope.Scope, limit, offset int) ([]*AttendanceInterval, error)
	DeleteByEmployee(ctx context.Context, employeeID uint) error
	DashboardCounts(ctx context.Context, filters *DashboardFilters) ([]DashboardStat, error)
	MonthlySummary(ctx context.Context, year int, month time.Month) ([]SummaryRow, error)
	BirthdayCandidates(ctx context.Context, visibility scope.Scope) ([]BirthdayCandidate, error)
}
