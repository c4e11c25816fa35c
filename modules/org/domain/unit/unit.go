package unit

import "context"

// Type discriminates the three levels of the organizational tree.
type Type string

const (
	TypeDepartment Type = "department"
	TypeSection    Type = "section"
	TypeTeam       Type = "team"
)

func (t Type) Valid() bool {
	switch t {
	case TypeDepartment, TypeSection, TypeTeam:
		return true
	}
	return false
}

type Department struct {
	ID          uint
	Name        string
	CommanderID *uint
}

type Section struct {
	ID           uint
	DepartmentID uint
	Name         string
	CommanderID  *uint
}

type Team struct {
	ID          uint
	SectionID   uint
	Name        string
	CommanderID *uint
}

type SectionNode struct {
	Section
	Teams []Team
}

type DepartmentNode struct {
	Department
	Sections []SectionNode
}

// Commanded holds the units whose commander_id points at one employee.
// Commander authority is strictly local to the referencing unit.
type Commanded struct {
	DepartmentID *uint
	SectionID    *uint
	TeamID       *uint
}

type Repository interface {
	Tree(ctx context.Context) ([]DepartmentNode, error)
	GetDepartment(ctx context.Context, id uint) (*Department, error)
	GetSection(ctx context.Context, id uint) (*Section, error)
	GetTeam(ctx context.Context, id uint) (*Team, error)
	TeamsBySection(ctx context.Context, sectionID uint) ([]Team, error)
	SetCommander(ctx context.Context, unitType Type, unitID uint, employeeID *uint) error
	ClearCommanderRefs(ctx context.Context, employeeID uint) error
	CommandedBy(ctx context.Context, employeeID uint) (Commanded, error)
}
