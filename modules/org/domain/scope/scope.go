// Package scope expresses what a requester may see as a single
// discriminated value, translated into a SQL predicate wherever employee
// or attendance data crosses a visibility boundary.
package scope

import "fmt"

type Kind string

const (
	KindAll        Kind = "all"
	KindDepartment Kind = "department"
	KindSection    Kind = "section"
	KindTeam       Kind = "team"
	KindSelf       Kind = "self"
)

type Scope struct {
	Kind Kind
	ID   uint
}

func All() Scope                 { return Scope{Kind: KindAll} }
func Department(id uint) Scope   { return Scope{Kind: KindDepartment, ID: id} }
func Section(id uint) Scope      { return Scope{Kind: KindSection, ID: id} }
func Team(id uint) Scope         { return Scope{Kind: KindTeam, ID: id} }
func Self(employeeID uint) Scope { return Scope{Kind: KindSelf, ID: employeeID} }

// Predicate renders the scope as a filter over an employees table aliased
// as alias, consuming at most one placeholder starting at argPos. An
// employee's resolved unit is whichever of team/section/department pointer
// is populated, so unit scopes match both direct and inherited assignment.
func (s Scope) Predicate(alias string, argPos int) (string, []any) {
	switch s.Kind {
	case KindAll:
		return "TRUE", nil
	case KindDepartment:
		frag := fmt.Sprintf(
			`(%[1]s.department_id = $%[2]d
			  OR %[1]s.section_id IN (SELECT id FROM sections WHERE department_id = $%[2]d)
			  OR %[1]s.team_id IN (
			      SELECT t.id FROM teams t
			      JOIN sections s ON s.id = t.section_id
			      WHERE s.department_id = $%[2]d))`,
			alias, argPos,
		)
		return frag, []any{s.ID}
	case KindSection:
		frag := fmt.Sprintf(
			`(%[1]s.section_id = $%[2]d
			  OR %[1]s.team_id IN (SELECT id FROM teams WHERE section_id = $%[2]d))`,
			alias, argPos,
		)
		return frag, []any{s.ID}
	case KindTeam:
		return fmt.Sprintf("%s.team_id = $%d", alias, argPos), []any{s.ID}
	default:
		return fmt.Sprintf("%s.id = $%d", alias, argPos), []any{s.ID}
	}
}
