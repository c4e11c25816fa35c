package persistence

import (
	"context"
	"errors"

	gerrors "github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/orgkit/presence/modules/org/domain/unit"
	"github.com/orgkit/presence/modules/transfer/domain/entities/transferrequest"
	"github.com/orgkit/presence/modules/transfer/infrastructure/persistence/models"
	"github.com/orgkit/presence/pkg/composables"
	"github.com/orgkit/presence/pkg/repo"
)

var (
	ErrTransferNotFound = gerrors.New("transfer request not found")
)

const transferListingQuery = `
	SELECT tr.id, tr.employee_id, tr.requester_id, tr.target_type, tr.target_id,
	       tr.status, tr.notes, tr.reason, tr.created_at, tr.resolved_at, tr.resolved_by,
	       e.first_name || ' ' || e.last_name,
	       req.first_name || ' ' || req.last_name,
	       CASE tr.target_type
	           WHEN 'department' THEN (SELECT name FROM departments WHERE id = tr.target_id)
	           WHEN 'section' THEN (SELECT name FROM sections WHERE id = tr.target_id)
	           WHEN 'team' THEN (SELECT name FROM teams WHERE id = tr.target_id)
	       END
	FROM transfer_requests tr
	JOIN employees e ON e.id = tr.employee_id
	JOIN employees req ON req.id = tr.requester_id
`

type PgTransferRepository struct{}

func NewTransferRepository() transferrequest.Repository {
	return &PgTransferRepository{}
}

func (r *PgTransferRepository) GetByID(ctx context.Context, id uint) (*transferrequest.TransferRequest, error) {
	return r.getOne(ctx, `WHERE id = $1`, id)
}

func (r *PgTransferRepository) GetPendingByEmployee(ctx context.Context, employeeID uint) (*transferrequest.TransferRequest, error) {
	return r.getOne(ctx, `WHERE employee_id = $1 AND status = 'pending'`, employeeID)
}

func (r *PgTransferRepository) getOne(ctx context.Context, where string, arg any) (*transferrequest.TransferRequest, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	var row models.TransferRequest
	err = tx.QueryRow(ctx, `
		SELECT id, employee_id, requester_id, target_type, target_id, status,
		       notes, reason, created_at, resolved_at, resolved_by
		FROM transfer_requests
	`+where, arg).Scan(
		&row.ID,
		&row.EmployeeID,
		&row.RequesterID,
		&row.TargetType,
		&row.TargetID,
		&row.Status,
		&row.Notes,
		&row.Reason,
		&row.CreatedAt,
		&row.ResolvedAt,
		&row.ResolvedBy,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTransferNotFound
	}
	if err != nil {
		return nil, err
	}
	return toDomainTransfer(&row), nil
}

func (r *PgTransferRepository) Create(ctx context.Context, data *transferrequest.TransferRequest) (uint, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}

	var newID uint
	err = tx.QueryRow(ctx, `
		INSERT INTO transfer_requests (employee_id, requester_id, target_type, target_id, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`,
		data.EmployeeID,
		data.RequesterID,
		string(data.TargetType),
		data.TargetID,
		string(data.Status),
		data.Notes,
	).Scan(&newID)
	if err != nil {
		return 0, gerrors.Wrap(err, "failed to create transfer request")
	}
	return newID, nil
}

func (r *PgTransferRepository) Resolve(ctx context.Context, id uint, status transferrequest.Status, resolvedBy uint, reason *string) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE transfer_requests
		SET status = $2, resolved_at = now(), resolved_by = $3, reason = COALESCE($4, reason)
		WHERE id = $1 AND status = 'pending'
	`, id, string(status), resolvedBy, reason)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTransferNotFound
	}
	return nil
}

func (r *PgTransferRepository) AssignUnit(ctx context.Context, employeeID uint, unitType unit.Type, unitID uint) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	var query string
	switch unitType {
	case unit.TypeTeam:
		query = `UPDATE employees SET team_id = $2, section_id = NULL, department_id = NULL, updated_at = now() WHERE id = $1`
	case unit.TypeSection:
		query = `UPDATE employees SET team_id = NULL, section_id = $2, department_id = NULL, updated_at = now() WHERE id = $1`
	case unit.TypeDepartment:
		query = `UPDATE employees SET team_id = NULL, section_id = NULL, department_id = $2, updated_at = now() WHERE id = $1`
	default:
		return gerrors.Errorf("unknown unit type: %s", unitType)
	}

	tag, err := tx.Exec(ctx, query, employeeID, unitID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTransferNotFound
	}
	return nil
}

func (r *PgTransferRepository) Pending(ctx context.Context) ([]transferrequest.Listing, error) {
	return r.list(ctx, transferListingQuery+` WHERE tr.status = 'pending' ORDER BY tr.created_at, tr.id`)
}

func (r *PgTransferRepository) History(ctx context.Context, limit int) ([]transferrequest.Listing, error) {
	query := transferListingQuery + ` ORDER BY tr.created_at DESC, tr.id DESC`
	if limitOffset := repo.FormatLimitOffset(limit, 0); limitOffset != "" {
		query += " " + limitOffset
	}
	return r.list(ctx, query)
}

func (r *PgTransferRepository) list(ctx context.Context, query string) ([]transferrequest.Listing, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []transferrequest.Listing
	for rows.Next() {
		var row models.TransferListing
		if err := rows.Scan(
			&row.ID,
			&row.EmployeeID,
			&row.RequesterID,
			&row.TargetType,
			&row.TargetID,
			&row.Status,
			&row.Notes,
			&row.Reason,
			&row.CreatedAt,
			&row.ResolvedAt,
			&row.ResolvedBy,
			&row.EmployeeName,
			&row.RequesterName,
			&row.TargetName,
		); err != nil {
			return nil, err
		}
		out = append(out, transferrequest.Listing{
			TransferRequest: *toDomainTransfer(&row.TransferRequest),
			EmployeeName:    row.EmployeeName,
			RequesterName:   row.RequesterName,
			TargetName:      row.TargetName,
		})
	}
	return out, rows.Err()
}

func (r *PgTransferRepository) DeleteByEmployee(ctx context.Context, employeeID uint) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `UPDATE transfer_requests SET resolved_by = NULL WHERE resolved_by = $1`, employeeID); err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `DELETE FROM transfer_requests WHERE employee_id = $1 OR requester_id = $1`, employeeID)
	return err
}

func toDomainTransfer(row *models.TransferRequest) *transferrequest.TransferRequest {
	return &transferrequest.TransferRequest{
		ID:          row.ID,
		EmployeeID:  row.EmployeeID,
		RequesterID: row.RequesterID,
		TargetType:  unit.Type(row.TargetType),
		TargetID:    row.TargetID,
		Status:      transferrequest.Status(row.Status),
		Notes:       row.Notes,
		Reason:      row.Reason,
		CreatedAt:   row.CreatedAt,
		ResolvedAt:  row.ResolvedAt,
		ResolvedBy:  row.ResolvedBy,
	}
}
