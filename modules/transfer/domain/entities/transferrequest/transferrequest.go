package transferrequest

import (
	"context"
	"time"

	"github.com/orgkit/presence/modules/org/domain/unit"
)

// Status is the state of a transfer request. Pending is the only
// non-terminal state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusCancelled
}

// TransferRequest asks to move an employee to another unit. Terminal
// requests are immutable and carry who resolved them and when.
type TransferRequest struct {
	ID          uint
	EmployeeID  uint
	RequesterID uint
	TargetType  unit.Type
	TargetID    uint
	Status      Status
	Notes       *string
	Reason      *string
	CreatedAt   time.Time
	ResolvedAt  *time.Time
	ResolvedBy  *uint
}

// Listing is a request joined with display names for the pending queue
// and the history view.
type Listing struct {
	TransferRequest
	EmployeeName  string
	RequesterName string
	TargetName    *string
}

type Repository interface {
	GetByID(ctx context.Context, id uint) (*TransferRequest, error)
	GetPendingByEmployee(ctx context.Context, employeeID uint) (*TransferRequest, error)
	Create(ctx context.Context, data *TransferRequest) (uint, error)
	// Resolve moves a pending request into a terminal state. Requests
	// already resolved are not touched.
	Resolve(ctx context.Context, id uint, status Status, resolvedBy uint, reason *string) error
	// AssignUnit rewrites the employee's unit assignment to exactly the
	// given unit, clearing the other two levels.
	AssignUnit(ctx context.Context, employeeID uint, unitType unit.Type, unitID uint) error
	Pending(ctx context.Context) ([]Listing, error)
	History(ctx context.Context, limit int) ([]Listing, error)
	DeleteByEmployee(ctx context.Context, employeeID uint) error
}
