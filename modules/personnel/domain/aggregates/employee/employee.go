package employee

import (
	"context"
	"time"

	"github.com/orgkit/presence/modules/org/domain/scope"
)

type Employee struct {
	ID                 uint
	FirstName          string
	LastName           string
	PersonnelNumber    string
	NationalID         *string
	PasswordHash       string
	MustChangePassword bool
	IsAdmin            bool
	IsCommander        bool
	IsActive           bool
	BirthDate          *time.Time
	ServiceType        *string
	TeamID             *uint
	SectionID          *uint
	DepartmentID       *uint
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (e *Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}

// CurrentStatus is the employee's open attendance interval, when any.
type CurrentStatus struct {
	StatusTypeID uint
	Name         string
	Color        string
	Since        time.Time
}

// Details is an Employee enriched for display: current status, resolved
// unit names at every level (direct section/department fallback when the
// employee has no team) and the effective command scope.
type Details struct {
	Employee
	Status         *CurrentStatus
	TeamName       *string
	SectionName    *string
	DepartmentName *string
	CommandScope   scope.Scope
}

type FindParams struct {
	Query           string
	DepartmentID    *uint
	StatusTypeID    *uint
	IncludeInactive bool
	Limit           int
	Offset          int
	Scope           scope.Scope
}

// UpdateValues is the whitelist of patchable fields; nil means unchanged.
type UpdateValues struct {
	FirstName          *string
	LastName           *string
	PersonnelNumber    *string
	NationalID         *string
	PasswordHash       *string
	MustChangePassword *bool
	IsAdmin            *bool
	IsCommander        *bool
	IsActive           *bool
	BirthDate          *time.Time
	ServiceType        *string
	TeamID             *uint
	SectionID          *uint
	DepartmentID       *uint
}

type Repository interface {
	GetByID(ctx context.Context, id uint) (*Employee, error)
	GetDetails(ctx context.Context, id uint, visibility scope.Scope) (*Details, error)
	GetAll(ctx context.Context, params *FindParams) ([]*Details, error)
	Count(ctx context.Context, params *FindParams) (int64, error)
	Create(ctx context.Context, data *Employee) (uint, error)
	Update(ctx context.Context, id uint, values *UpdateValues) error
	Delete(ctx context.Context, id uint) error
}
