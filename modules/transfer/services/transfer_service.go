package services

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"

	orgpersistence "github.com/orgkit/presence/modules/org/infrastructure/persistence"

	"github.com/orgkit/presence/modules/org/domain/unit"
	"github.com/orgkit/presence/modules/transfer/domain/entities/transferrequest"
	"github.com/orgkit/presence/modules/transfer/infrastructure/persistence"
	"github.com/orgkit/presence/pkg/composables"
	"github.com/orgkit/presence/pkg/eventbus"
	"github.com/orgkit/presence/pkg/serrors"
)

type TransferService struct {
	repo      transferrequest.Repository
	units     unit.Repository
	publisher eventbus.EventBus
	validate  *validator.Validate
}

func NewTransferService(
	repo transferrequest.Repository,
	units unit.Repository,
	publisher eventbus.EventBus,
) *TransferService {
	return &TransferService{
		repo:      repo,
		units:     units,
		publisher: publisher,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Create opens a pending request. An employee can have only one pending
// request at a time.
func (s *TransferService) Create(ctx context.Context, dto *transferrequest.CreateDTO) (uint, error) {
	identity, err := composables.UseIdentity(ctx)
	if err != nil {
		return 0, serrors.Authorization("NO_IDENTITY", "authentication required")
	}
	if !identity.IsAdmin && !identity.IsCommander {
		return 0, serrors.Authorization("REPORTER_REQUIRED", "commander or administrator role required")
	}
	if err := s.validate.Struct(dto); err != nil {
		return 0, serrors.Validation("TRANSFER_INVALID", err.Error())
	}
	targetType := unit.Type(dto.TargetType)
	if !targetType.Valid() {
		return 0, serrors.Validation("TRANSFER_INVALID_TARGET", "unknown target type")
	}

	entity := &transferrequest.TransferRequest{
		EmployeeID:  dto.EmployeeID,
		RequesterID: identity.EmployeeID,
		TargetType:  targetType,
		TargetID:    dto.TargetID,
		Status:      transferrequest.StatusPending,
		Notes:       dto.Notes,
	}

	var newID uint
	err = composables.InTx(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.GetPendingByEmployee(txCtx, dto.EmployeeID)
		if err != nil && !errors.Is(err, persistence.ErrTransferNotFound) {
			return err
		}
		if existing != nil {
			return serrors.Conflict("TRANSFER_ALREADY_PENDING", "employee already has a pending transfer request")
		}
		id, err := s.repo.Create(txCtx, entity)
		if err != nil {
			return err
		}
		newID = id
		return nil
	})
	if err != nil {
		return 0, mapTransferErr(err)
	}

	entity.ID = newID
	s.publisher.Publish(transferrequest.CreatedEvent{Request: *entity, ActorID: identity.EmployeeID})
	return newID, nil
}

// Approve resolves the request and moves the employee. A section target
// lands on the section's lowest-id team when the section has teams, and
// on the section itself otherwise.
func (s *TransferService) Approve(ctx context.Context, requestID uint) error {
	identity, err := composables.UseIdentity(ctx)
	if err != nil {
		return serrors.Authorization("NO_IDENTITY", "authentication required")
	}
	if !identity.IsAdmin {
		return serrors.Authorization("ADMIN_REQUIRED", "administrator role required")
	}

	var resolved *transferrequest.TransferRequest
	err = composables.InTx(ctx, func(txCtx context.Context) error {
		request, err := s.repo.GetByID(txCtx, requestID)
		if err != nil {
			return err
		}
		if request.Status != transferrequest.StatusPending {
			return serrors.NotFound("TRANSFER_NOT_PENDING", "transfer request already resolved")
		}

		assignType, assignID, err := s.resolveTarget(txCtx, request.TargetType, request.TargetID)
		if err != nil {
			return err
		}
		if err := s.repo.AssignUnit(txCtx, request.EmployeeID, assignType, assignID); err != nil {
			return err
		}
		if err := s.repo.Resolve(txCtx, requestID, transferrequest.StatusApproved, identity.EmployeeID, nil); err != nil {
			return err
		}
		resolved = request
		return nil
	})
	if err != nil {
		return mapTransferErr(err)
	}

	resolved.Status = transferrequest.StatusApproved
	resolved.ResolvedBy = &identity.EmployeeID
	s.publisher.Publish(transferrequest.ResolvedEvent{Request: *resolved, ActorID: identity.EmployeeID})
	return nil
}

func (s *TransferService) Reject(ctx context.Context, requestID uint, reason string) error {
	identity, err := composables.UseIdentity(ctx)
	if err != nil {
		return serrors.Authorization("NO_IDENTITY", "authentication required")
	}
	if !identity.IsAdmin {
		return serrors.Authorization("ADMIN_REQUIRED", "administrator role required")
	}

	var resolved *transferrequest.TransferRequest
	err = composables.InTx(ctx, func(txCtx context.Context) error {
		request, err := s.repo.GetByID(txCtx, requestID)
		if err != nil {
			return err
		}
		if request.Status != transferrequest.StatusPending {
			return serrors.NotFound("TRANSFER_NOT_PENDING", "transfer request already resolved")
		}
		if err := s.repo.Resolve(txCtx, requestID, transferrequest.StatusRejected, identity.EmployeeID, &reason); err != nil {
			return err
		}
		resolved = request
		return nil
	})
	if err != nil {
		return mapTransferErr(err)
	}

	resolved.Status = transferrequest.StatusRejected
	resolved.Reason = &reason
	s.publisher.Publish(transferrequest.ResolvedEvent{Request: *resolved, ActorID: identity.EmployeeID})
	return nil
}

// Cancel is allowed only for the original requester or an admin, and
// only while the request is pending.
func (s *TransferService) Cancel(ctx context.Context, requestID uint) error {
	identity, err := composables.UseIdentity(ctx)
	if err != nil {
		return serrors.Authorization("NO_IDENTITY", "authentication required")
	}

	var resolved *transferrequest.TransferRequest
	err = composables.InTx(ctx, func(txCtx context.Context) error {
		request, err := s.repo.GetByID(txCtx, requestID)
		if err != nil {
			return err
		}
		if request.Status != transferrequest.StatusPending {
			return serrors.NotFound("TRANSFER_NOT_PENDING", "transfer request already resolved")
		}
		if !identity.IsAdmin && request.RequesterID != identity.EmployeeID {
			return serrors.Authorization("TRANSFER_NOT_REQUESTER", "only the requester or an administrator may cancel")
		}
		if err := s.repo.Resolve(txCtx, requestID, transferrequest.StatusCancelled, identity.EmployeeID, nil); err != nil {
			return err
		}
		resolved = request
		return nil
	})
	if err != nil {
		return mapTransferErr(err)
	}

	resolved.Status = transferrequest.StatusCancelled
	s.publisher.Publish(transferrequest.ResolvedEvent{Request: *resolved, ActorID: identity.EmployeeID})
	return nil
}

func (s *TransferService) Pending(ctx context.Context) ([]transferrequest.Listing, error) {
	if _, err := composables.UseIdentity(ctx); err != nil {
		return nil, serrors.Authorization("NO_IDENTITY", "authentication required")
	}
	out, err := s.repo.Pending(ctx)
	if err != nil {
		return nil, serrors.Persistence(err)
	}
	return out, nil
}

func (s *TransferService) History(ctx context.Context, limit int) ([]transferrequest.Listing, error) {
	if _, err := composables.UseIdentity(ctx); err != nil {
		return nil, serrors.Authorization("NO_IDENTITY", "authentication required")
	}
	out, err := s.repo.History(ctx, limit)
	if err != nil {
		return nil, serrors.Persistence(err)
	}
	return out, nil
}

// resolveTarget turns the requested target into the concrete unit the
// employee is assigned to. Section targets resolve deterministically to
// the lowest-id team in the section; a section without teams is assigned
// directly.
func (s *TransferService) resolveTarget(ctx context.Context, targetType unit.Type, targetID uint) (unit.Type, uint, error) {
	switch targetType {
	case unit.TypeTeam:
		if _, err := s.units.GetTeam(ctx, targetID); err != nil {
			return "", 0, err
		}
		return unit.TypeTeam, targetID, nil
	case unit.TypeSection:
		teams, err := s.units.TeamsBySection(ctx, targetID)
		if err != nil {
			return "", 0, err
		}
		if len(teams) == 0 {
			if _, err := s.units.GetSection(ctx, targetID); err != nil {
				return "", 0, err
			}
			return unit.TypeSection, targetID, nil
		}
		lowest := teams[0]
		for _, team := range teams[1:] {
			if team.ID < lowest.ID {
				lowest = team
			}
		}
		return unit.TypeTeam, lowest.ID, nil
	case unit.TypeDepartment:
		if _, err := s.units.GetDepartment(ctx, targetID); err != nil {
			return "", 0, err
		}
		return unit.TypeDepartment, targetID, nil
	}
	return "", 0, serrors.Validation("TRANSFER_INVALID_TARGET", "unknown target type")
}

func mapTransferErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, persistence.ErrTransferNotFound) {
		return serrors.NotFound("TRANSFER_NOT_FOUND", "transfer request not found")
	}
	if errors.Is(err, orgpersistence.ErrUnitNotFound) {
		return serrors.NotFound("TRANSFER_TARGET_NOT_FOUND", "target unit not found")
	}
	if _, ok := serrors.KindOf(err); ok {
		return err
	}
	return serrors.Persistence(err)
}
