package persistence

import (
	"context"
	"errors"
	"fmt"

	gerrors "github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/orgkit/presence/modules/org/domain/unit"
	"github.com/orgkit/presence/pkg/composables"
)

var (
	ErrUnitNotFound = gerrors.New("unit not found")
)

var unitTables = map[unit.Type]string{
	unit.TypeDepartment: "departments",
	unit.TypeSection:    "sections",
	unit.TypeTeam:       "teams",
}

type PgUnitRepository struct{}

func NewUnitRepository() unit.Repository {
	return &PgUnitRepository{}
}

func (r *PgUnitRepository) Tree(ctx context.Context) ([]unit.DepartmentNode, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT id, name, commander_id
		FROM departments
		ORDER BY name, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tree []unit.DepartmentNode
	deptIdx := make(map[uint]int)
	for rows.Next() {
		var d unit.Department
		if err := rows.Scan(&d.ID, &d.Name, &d.CommanderID); err != nil {
			return nil, err
		}
		deptIdx[d.ID] = len(tree)
		tree = append(tree, unit.DepartmentNode{Department: d})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	sectionRows, err := tx.Query(ctx, `
		SELECT id, department_id, name, commander_id
		FROM sections
		ORDER BY name, id
	`)
	if err != nil {
		return nil, err
	}
	defer sectionRows.Close()

	sectionIdx := make(map[uint][2]int)
	for sectionRows.Next() {
		var s unit.Section
		if err := sectionRows.Scan(&s.ID, &s.DepartmentID, &s.Name, &s.CommanderID); err != nil {
			return nil, err
		}
		di, ok := deptIdx[s.DepartmentID]
		if !ok {
			continue
		}
		sectionIdx[s.ID] = [2]int{di, len(tree[di].Sections)}
		tree[di].Sections = append(tree[di].Sections, unit.SectionNode{Section: s})
	}
	if err := sectionRows.Err(); err != nil {
		return nil, err
	}
	sectionRows.Close()

	teamRows, err := tx.Query(ctx, `
		SELECT id, section_id, name, commander_id
		FROM teams
		ORDER BY name, id
	`)
	if err != nil {
		return nil, err
	}
	defer teamRows.Close()

	for teamRows.Next() {
		var t unit.Team
		if err := teamRows.Scan(&t.ID, &t.SectionID, &t.Name, &t.CommanderID); err != nil {
			return nil, err
		}
		idx, ok := sectionIdx[t.SectionID]
		if !ok {
			continue
		}
		section := &tree[idx[0]].Sections[idx[1]]
		section.Teams = append(section.Teams, t)
	}
	if err := teamRows.Err(); err != nil {
		return nil, err
	}
	return tree, nil
}

func (r *PgUnitRepository) GetDepartment(ctx context.Context, id uint) (*unit.Department, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	var d unit.Department
	err = tx.QueryRow(ctx,
		`SELECT id, name, commander_id FROM departments WHERE id = $1`, id,
	).Scan(&d.ID, &d.Name, &d.CommanderID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUnitNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *PgUnitRepository) GetSection(ctx context.Context, id uint) (*unit.Section, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	var s unit.Section
	err = tx.QueryRow(ctx,
		`SELECT id, department_id, name, commander_id FROM sections WHERE id = $1`, id,
	).Scan(&s.ID, &s.DepartmentID, &s.Name, &s.CommanderID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUnitNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *PgUnitRepository) GetTeam(ctx context.Context, id uint) (*unit.Team, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	var t unit.Team
	err = tx.QueryRow(ctx,
		`SELECT id, section_id, name, commander_id FROM teams WHERE id = $1`, id,
	).Scan(&t.ID, &t.SectionID, &t.Name, &t.CommanderID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUnitNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *PgUnitRepository) TeamsBySection(ctx context.Context, sectionID uint) ([]unit.Team, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
		SELECT id, section_id, name, commander_id
		FROM teams
		WHERE section_id = $1
		ORDER BY id
	`, sectionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []unit.Team
	for rows.Next() {
		var t unit.Team
		if err := rows.Scan(&t.ID, &t.SectionID, &t.Name, &t.CommanderID); err != nil {
			return nil, err
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

func (r *PgUnitRepository) SetCommander(ctx context.Context, unitType unit.Type, unitID uint, employeeID *uint) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	table, ok := unitTables[unitType]
	if !ok {
		return gerrors.Errorf("unknown unit type %q", unitType)
	}

	tag, err := tx.Exec(ctx,
		fmt.Sprintf(`UPDATE %s SET commander_id = $1 WHERE id = $2`, table),
		employeeID, unitID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUnitNotFound
	}
	return nil
}

func (r *PgUnitRepository) ClearCommanderRefs(ctx context.Context, employeeID uint) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	for _, table := range []string{"departments", "sections", "teams"} {
		if _, err := tx.Exec(ctx,
			fmt.Sprintf(`UPDATE %s SET commander_id = NULL WHERE commander_id = $1`, table),
			employeeID,
		); err != nil {
			return err
		}
	}
	return nil
}

func (r *PgUnitRepository) CommandedBy(ctx context.Context, employeeID uint) (unit.Commanded, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return unit.Commanded{}, err
	}
	var commanded unit.Commanded
	err = tx.QueryRow(ctx, `
		SELECT
			(SELECT id FROM departments WHERE commander_id = $1 ORDER BY id LIMIT 1),
			(SELECT id FROM sections WHERE commander_id = $1 ORDER BY id LIMIT 1),
			(SELECT id FROM teams WHERE commander_id = $1 ORDER BY id LIMIT 1)
	`, employeeID).Scan(&commanded.DepartmentID, &commanded.SectionID, &commanded.TeamID)
	if err != nil {
		return unit.Commanded{}, err
	}
	return commanded, nil
}
