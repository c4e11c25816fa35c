package auditlog

import (
	"context"
	"encoding/json"
	"time"
)

// AuditLog is one append-only record of a mutating operation. Entries
// are never updated or deleted.
type AuditLog struct {
	ID          uint
	ActorID     uint
	ActionType  string
	Description string
	TargetType  string
	TargetID    *uint
	Metadata    json.RawMessage
	CreatedAt   time.Time
}

type FindParams struct {
	ActorID    *uint
	ActionType string
	TargetType string
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

type Repository interface {
	List(ctx context.Context, params *FindParams) ([]*AuditLog, error)
	Count(ctx context.Context, params *FindParams) (int64, error)
	Create(ctx context.Context, entry *AuditLog) error
}
