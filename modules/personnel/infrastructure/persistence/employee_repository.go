package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	gerrors "github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/orgkit/presence/modules/org/domain/scope"
	"github.com/orgkit/presence/modules/personnel/domain/aggregates/employee"
	"github.com/orgkit/presence/modules/personnel/infrastructure/persistence/models"
	"github.com/orgkit/presence/pkg/composables"
	"github.com/orgkit/presence/pkg/repo"
)

var (
	ErrEmployeeNotFound = gerrors.New("employee not found")
)

const employeeDetailsQuery = `
	SELECT e.id, e.first_name, e.last_name, e.personnel_number, e.national_id,
	       e.password_hash, e.must_change_password, e.is_admin, e.is_commander,
	       e.is_active, e.birth_date, e.service_type, e.team_id, e.section_id,
	       e.department_id, e.created_at, e.updated_at,
	       ai.status_type_id, st.name, st.color, ai.start_datetime,
	       t.name, s.name, d.name
	FROM employees e
	LEFT JOIN teams t ON t.id = e.team_id
	LEFT JOIN sections s ON s.id = COALESCE(t.section_id, e.section_id)
	LEFT JOIN departments d ON d.id = COALESCE(s.department_id, e.department_id)
	LEFT JOIN attendance_intervals ai ON ai.employee_id = e.id AND ai.end_datetime IS NULL
	LEFT JOIN status_types st ON st.id = ai.status_type_id
`

type PgEmployeeRepository struct{}

func NewEmployeeRepository() employee.Repository {
	return &PgEmployeeRepository{}
}

func (r *PgEmployeeRepository) GetByID(ctx context.Context, id uint) (*employee.Employee, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	var row models.Employee
	err = tx.QueryRow(ctx, `
		SELECT id, first_name, last_name, personnel_number, national_id,
		       password_hash, must_change_password, is_admin, is_commander,
		       is_active, birth_date, service_type, team_id, section_id,
		       department_id, created_at, updated_at
		FROM employees
		WHERE id = $1
	`, id).Scan(
		&row.ID,
		&row.FirstName,
		&row.LastName,
		&row.PersonnelNumber,
		&row.NationalID,
		&row.PasswordHash,
		&row.MustChangePassword,
		&row.IsAdmin,
		&row.IsCommander,
		&row.IsActive,
		&row.BirthDate,
		&row.ServiceType,
		&row.TeamID,
		&row.SectionID,
		&row.DepartmentID,
		&row.CreatedAt,
		&row.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrEmployeeNotFound
	}
	if err != nil {
		return nil, err
	}
	return toDomainEmployee(&row), nil
}

func (r *PgEmployeeRepository) GetDetails(ctx context.Context, id uint, visibility scope.Scope) (*employee.Details, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	predicate, args := visibility.Predicate("e", 2)
	args = append([]any{id}, args...)

	row := tx.QueryRow(ctx, employeeDetailsQuery+` WHERE e.id = $1 AND `+predicate, args...)
	details, err := scanEmployeeDetails(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrEmployeeNotFound
	}
	if err != nil {
		return nil, err
	}
	return details, nil
}

func (r *PgEmployeeRepository) GetAll(ctx context.Context, params *employee.FindParams) ([]*employee.Details, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	if params == nil {
		params = &employee.FindParams{Scope: scope.All()}
	}

	where, args := buildEmployeeFilters(params)
	query := employeeDetailsQuery + " WHERE " + strings.Join(where, " AND ") +
		" ORDER BY e.last_name, e.first_name, e.id"
	if limitOffset := repo.FormatLimitOffset(params.Limit, params.Offset); limitOffset != "" {
		query += " " + limitOffset
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*employee.Details
	for rows.Next() {
		details, err := scanEmployeeDetails(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, details)
	}
	return results, rows.Err()
}

func (r *PgEmployeeRepository) Count(ctx context.Context, params *employee.FindParams) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	if params == nil {
		params = &employee.FindParams{Scope: scope.All()}
	}

	where, args := buildEmployeeFilters(params)
	query := `
		SELECT COUNT(*)
		FROM employees e
		LEFT JOIN teams t ON t.id = e.team_id
		LEFT JOIN sections s ON s.id = COALESCE(t.section_id, e.section_id)
		LEFT JOIN departments d ON d.id = COALESCE(s.department_id, e.department_id)
		LEFT JOIN attendance_intervals ai ON ai.employee_id = e.id AND ai.end_datetime IS NULL
		WHERE ` + strings.Join(where, " AND ")

	var count int64
	if err := tx.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PgEmployeeRepository) Create(ctx context.Context, data *employee.Employee) (uint, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}

	row := toDBEmployee(data)
	var newID uint
	err = tx.QueryRow(ctx, `
		INSERT INTO employees (
			first_name, last_name, personnel_number, national_id, password_hash,
			must_change_password, is_admin, is_commander, is_active, birth_date,
			service_type, team_id, section_id, department_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id
	`,
		row.FirstName,
		row.LastName,
		row.PersonnelNumber,
		row.NationalID,
		row.PasswordHash,
		row.MustChangePassword,
		row.IsAdmin,
		row.IsCommander,
		row.IsActive,
		row.BirthDate,
		row.ServiceType,
		row.TeamID,
		row.SectionID,
		row.DepartmentID,
	).Scan(&newID)
	if err != nil {
		return 0, gerrors.Wrap(err, "failed to create employee")
	}
	return newID, nil
}

func (r *PgEmployeeRepository) Update(ctx context.Context, id uint, values *employee.UpdateValues) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	set, args := buildEmployeeUpdate(values)
	if len(set) == 0 {
		return nil
	}
	args = append(args, id)

	tag, err := tx.Exec(ctx,
		fmt.Sprintf(`UPDATE employees SET %s, updated_at = now() WHERE id = $%d`,
			strings.Join(set, ", "), len(args)),
		args...,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}

func (r *PgEmployeeRepository) Delete(ctx context.Context, id uint) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}

func buildEmployeeFilters(params *employee.FindParams) ([]string, []any) {
	predicate, args := params.Scope.Predicate("e", 1)
	where := []string{predicate}
	argPos := len(args) + 1

	if !params.IncludeInactive {
		where = append(where, "e.is_active = TRUE")
	}
	if q := strings.TrimSpace(params.Query); q != "" {
		where = append(where, fmt.Sprintf(
			"(e.first_name ILIKE $%[1]d OR e.last_name ILIKE $%[1]d OR e.personnel_number ILIKE $%[1]d)",
			argPos,
		))
		args = append(args, "%"+q+"%")
		argPos++
	}
	if params.DepartmentID != nil {
		where = append(where, fmt.Sprintf("d.id = $%d", argPos))
		args = append(args, *params.DepartmentID)
		argPos++
	}
	if params.StatusTypeID != nil {
		where = append(where, fmt.Sprintf("ai.status_type_id = $%d", argPos))
		args = append(args, *params.StatusTypeID)
	}
	return where, args
}

func buildEmployeeUpdate(values *employee.UpdateValues) ([]string, []any) {
	var set []string
	var args []any
	add := func(column string, value any) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if values.FirstName != nil {
		add("first_name", *values.FirstName)
	}
	if values.LastName != nil {
		add("last_name", *values.LastName)
	}
	if values.PersonnelNumber != nil {
		add("personnel_number", *values.PersonnelNumber)
	}
	if values.NationalID != nil {
		add("national_id", *values.NationalID)
	}
	if values.PasswordHash != nil {
		add("password_hash", *values.PasswordHash)
	}
	if values.MustChangePassword != nil {
		add("must_change_password", *values.MustChangePassword)
	}
	if values.IsAdmin != nil {
		add("is_admin", *values.IsAdmin)
	}
	if values.IsCommander != nil {
		add("is_commander", *values.IsCommander)
	}
	if values.IsActive != nil {
		add("is_active", *values.IsActive)
	}
	if values.BirthDate != nil {
		add("birth_date", *values.BirthDate)
	}
	if values.ServiceType != nil {
		add("service_type", *values.ServiceType)
	}
	if values.TeamID != nil {
		add("team_id", *values.TeamID)
	}
	if values.SectionID != nil {
		add("section_id", *values.SectionID)
	}
	if values.DepartmentID != nil {
		add("department_id", *values.DepartmentID)
	}
	return set, args
}
