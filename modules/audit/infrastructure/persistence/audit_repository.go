package persistence

import (
	"context"
	"fmt"
	"strings"

	gerrors "github.com/go-faster/errors"

	"github.com/orgkit/presence/modules/audit/domain/entities/auditlog"
	"github.com/orgkit/presence/pkg/composables"
	"github.com/orgkit/presence/pkg/repo"
)

type PgAuditRepository struct{}

func NewAuditRepository() auditlog.Repository {
	return &PgAuditRepository{}
}

func (r *PgAuditRepository) Create(ctx context.Context, entry *auditlog.AuditLog) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO audit_logs (actor_id, action_type, description, target_type, target_id, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		entry.ActorID,
		entry.ActionType,
		entry.Description,
		entry.TargetType,
		entry.TargetID,
		entry.Metadata,
	)
	if err != nil {
		return gerrors.Wrap(err, "failed to create audit log")
	}
	return nil
}

func (r *PgAuditRepository) List(ctx context.Context, params *auditlog.FindParams) ([]*auditlog.AuditLog, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	if params == nil {
		params = &auditlog.FindParams{}
	}

	where, args := buildAuditFilters(params)
	query := `
		SELECT id, actor_id, action_type, description, target_type, target_id, metadata, created_at
		FROM audit_logs
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_at DESC, id DESC
	`
	if limitOffset := repo.FormatLimitOffset(params.Limit, params.Offset); limitOffset != "" {
		query += " " + limitOffset
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*auditlog.AuditLog
	for rows.Next() {
		var entry auditlog.AuditLog
		if err := rows.Scan(
			&entry.ID,
			&entry.ActorID,
			&entry.ActionType,
			&entry.Description,
			&entry.TargetType,
			&entry.TargetID,
			&entry.Metadata,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, &entry)
	}
	return out, rows.Err()
}

func (r *PgAuditRepository) Count(ctx context.Context, params *auditlog.FindParams) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	if params == nil {
		params = &auditlog.FindParams{}
	}

	where, args := buildAuditFilters(params)
	var count int64
	err = tx.QueryRow(ctx, `SELECT COUNT(*) FROM audit_logs WHERE `+strings.Join(where, " AND "), args...).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func buildAuditFilters(params *auditlog.FindParams) ([]string, []any) {
	where := []string{"1 = 1"}
	var args []any
	add := func(clause string, value any) {
		args = append(args, value)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}

	if params.ActorID != nil {
		add("actor_id = $%d", *params.ActorID)
	}
	if params.ActionType != "" {
		add("action_type = $%d", params.ActionType)
	}
	if params.TargetType != "" {
		add("target_type = $%d", params.TargetType)
	}
	if params.From != nil {
		add("created_at >= $%d", *params.From)
	}
	if params.To != nil {
		add("created_at <= $%d", *params.To)
	}
	return where, args
}
