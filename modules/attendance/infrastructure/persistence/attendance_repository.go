package persistence

import (
	"context"
	"fmt"
	"strings"
	"time"

	gerrors "github.com/go-faster/errors"

	"github.com/orgkit/presence/modules/attendance/domain/entities/interval"
	"github.com/orgkit/presence/modules/attendance/infrastructure/persistence/models"
	"github.com/orgkit/presence/modules/org/domain/scope"
	"github.com/orgkit/presence/pkg/composables"
	"github.com/orgkit/presence/pkg/repo"
)

type PgAttendanceRepository struct{}

func NewAttendanceRepository() interval.Repository {
	return &PgAttendanceRepository{}
}

func (r *PgAttendanceRepository) StatusTypes(ctx context.Context) ([]interval.StatusType, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT id, name, color, is_presence
		FROM status_types
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []interval.StatusType
	for rows.Next() {
		var row models.StatusType
		if err := rows.Scan(&row.ID, &row.Name, &row.Color, &row.IsPresence); err != nil {
			return nil, err
		}
		out = append(out, interval.StatusType(row))
	}
	return out, rows.Err()
}

// CloseOpen stamps the open interval, if any. Zero affected rows is the
// normal case for an employee with no current status.
func (r *PgAttendanceRepository) CloseOpen(ctx context.Context, employeeID uint, at time.Time) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
		UPDATE attendance_intervals
		SET end_datetime = $2
		WHERE employee_id = $1 AND end_datetime IS NULL
	`, employeeID, at)
	return err
}

func (r *PgAttendanceRepository) Insert(ctx context.Context, data *interval.AttendanceInterval) (uint, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}

	var newID uint
	err = tx.QueryRow(ctx, `
		INSERT INTO attendance_intervals (
			employee_id, status_type_id, start_datetime, end_datetime, note, reported_by
		)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`,
		data.EmployeeID,
		data.StatusTypeID,
		data.StartDatetime,
		data.EndDatetime,
		data.Note,
		data.ReportedBy,
	).Scan(&newID)
	if err != nil {
		return 0, gerrors.Wrap(err, "failed to insert attendance interval")
	}
	return newID, nil
}

func (r *PgAttendanceRepository) ListByEmployee(ctx context.Context, employeeID uint, visibility scope.Scope, limit, offset int) ([]*interval.AttendanceInterval, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	predicate, args := visibility.Predicate("e", 2)
	args = append([]any{employeeID}, args...)
	query := `
		SELECT ai.id, ai.employee_id, ai.status_type_id, ai.start_datetime, ai.end_datetime,
		       ai.note, ai.reported_by, ai.created_at
		FROM attendance_intervals ai
		JOIN employees e ON e.id = ai.employee_id
		WHERE ai.employee_id = $1 AND ` + predicate + `
		ORDER BY ai.start_datetime DESC, ai.id DESC
	`
	if limitOffset := repo.FormatLimitOffset(limit, offset); limitOffset != "" {
		query += " " + limitOffset
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*interval.AttendanceInterval
	for rows.Next() {
		var row models.AttendanceInterval
		if err := rows.Scan(
			&row.ID,
			&row.EmployeeID,
			&row.StatusTypeID,
			&row.StartDatetime,
			&row.EndDatetime,
			&row.Note,
			&row.ReportedBy,
			&row.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, toDomainInterval(&row))
	}
	return out, rows.Err()
}

func (r *PgAttendanceRepository) DeleteByEmployee(ctx context.Context, employeeID uint) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `DELETE FROM attendance_intervals WHERE employee_id = $1`, employeeID)
	return err
}

func (r *PgAttendanceRepository) DashboardCounts(ctx context.Context, filters *interval.DashboardFilters) ([]interval.DashboardStat, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	if filters == nil {
		filters = &interval.DashboardFilters{Scope: scope.All()}
	}

	where, args := buildDashboardFilters(filters)
	query := `
		SELECT st.id, st.name, st.color, COUNT(ai.id)
		FROM attendance_intervals ai
		JOIN status_types st ON st.id = ai.status_type_id
		JOIN employees e ON e.id = ai.employee_id
		LEFT JOIN teams t ON t.id = e.team_id
		LEFT JOIN sections s ON s.id = COALESCE(t.section_id, e.section_id)
		LEFT JOIN departments d ON d.id = COALESCE(s.department_id, e.department_id)
		WHERE ` + strings.Join(where, " AND ") + `
		GROUP BY st.id, st.name, st.color
		ORDER BY st.id
	`

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []interval.DashboardStat
	for rows.Next() {
		var stat interval.DashboardStat
		if err := rows.Scan(&stat.StatusTypeID, &stat.Name, &stat.Color, &stat.Count); err != nil {
			return nil, err
		}
		out = append(out, stat)
	}
	return out, rows.Err()
}

func (r *PgAttendanceRepository) MonthlySummary(ctx context.Context, year int, month time.Month) ([]interval.SummaryRow, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT EXTRACT(DAY FROM gs.day)::int, st.name, st.color, COUNT(DISTINCT ai.employee_id)
		FROM generate_series(
			make_date($1, $2, 1),
			make_date($1, $2, 1) + interval '1 month' - interval '1 day',
			interval '1 day'
		) AS gs(day)
		JOIN attendance_intervals ai
			ON ai.start_datetime < gs.day + interval '1 day'
			AND (ai.end_datetime IS NULL OR ai.end_datetime >= gs.day)
		JOIN status_types st ON st.id = ai.status_type_id
		GROUP BY 1, st.name, st.color
		ORDER BY 1, st.name
	`, year, int(month))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []interval.SummaryRow
	for rows.Next() {
		var row interval.SummaryRow
		if err := rows.Scan(&row.Day, &row.Name, &row.Color, &row.Count); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *PgAttendanceRepository) BirthdayCandidates(ctx context.Context, visibility scope.Scope) ([]interval.BirthdayCandidate, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	predicate, args := visibility.Predicate("e", 1)
	rows, err := tx.Query(ctx, `
		SELECT e.id, e.first_name, e.last_name, e.birth_date
		FROM employees e
		WHERE e.is_active = TRUE AND e.birth_date IS NOT NULL AND `+predicate+`
		ORDER BY e.last_name, e.first_name
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []interval.BirthdayCandidate
	for rows.Next() {
		var c interval.BirthdayCandidate
		if err := rows.Scan(&c.EmployeeID, &c.FirstName, &c.LastName, &c.BirthDate); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func buildDashboardFilters(filters *interval.DashboardFilters) ([]string, []any) {
	predicate, args := filters.Scope.Predicate("e", 1)
	where := []string{predicate, "e.is_active = TRUE"}
	argPos := len(args) + 1

	add := func(clause string, value any) {
		where = append(where, fmt.Sprintf(clause, argPos))
		args = append(args, value)
		argPos++
	}

	if filters.Date != nil {
		add("ai.start_datetime < $%d + interval '1 day'", *filters.Date)
		where = append(where, fmt.Sprintf("(ai.end_datetime IS NULL OR ai.end_datetime >= $%d)", argPos))
		args = append(args, *filters.Date)
		argPos++
	} else {
		where = append(where, "ai.end_datetime IS NULL")
	}
	if filters.DepartmentID != nil {
		add("d.id = $%d", *filters.DepartmentID)
	}
	if filters.SectionID != nil {
		add("s.id = $%d", *filters.SectionID)
	}
	if filters.TeamID != nil {
		add("t.id = $%d", *filters.TeamID)
	}
	if filters.StatusTypeID != nil {
		add("ai.status_type_id = $%d", *filters.StatusTypeID)
	}
	if filters.ServiceType != nil {
		add("e.service_type = $%d", *filters.ServiceType)
	}
	return where, args
}

func toDomainInterval(row *models.AttendanceInterval) *interval.AttendanceInterval {
	return &interval.AttendanceInterval{
		ID:            row.ID,
		EmployeeID:    row.EmployeeID,
		StatusTypeID:  row.StatusTypeID,
		StartDatetime: row.StartDatetime,
		EndDatetime:   row.EndDatetime,
		Note:          row.Note,
		ReportedBy:    row.ReportedBy,
		CreatedAt:     row.CreatedAt,
	}
}
