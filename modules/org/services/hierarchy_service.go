package services

import (
	"context"

	"github.com/orgkit/presence/modules/org/domain/unit"
	"github.com/orgkit/presence/pkg/composables"
	"github.com/orgkit/presence/pkg/eventbus"
	"github.com/orgkit/presence/pkg/serrors"
)

type HierarchyService struct {
	units     unit.Repository
	publisher eventbus.EventBus
}

func NewHierarchyService(units unit.Repository, publisher eventbus.EventBus) *HierarchyService {
	return &HierarchyService{units: units, publisher: publisher}
}

func (s *HierarchyService) Tree(ctx context.Context) ([]unit.DepartmentNode, error) {
	return s.units.Tree(ctx)
}

// SetCommander assigns or clears a unit's commander. Overwriting a prior
// commander replaces it; the replacement is surfaced through the published
// event rather than rejected.
func (s *HierarchyService) SetCommander(ctx context.Context, unitType unit.Type, unitID uint, employeeID *uint) error {
	if !unitType.Valid() {
		return serrors.Validation("ORG_INVALID_UNIT_TYPE", "unit type must be department, section or team")
	}
	identity, err := composables.UseIdentity(ctx)
	if err != nil {
		return serrors.Authorization("ORG_IDENTITY_REQUIRED", "requester identity is required")
	}
	if !identity.IsAdmin {
		return serrors.Authorization("ORG_ADMIN_REQUIRED", "only admins may assign commanders")
	}

	err = composables.InTx(ctx, func(txCtx context.Context) error {
		return s.units.SetCommander(txCtx, unitType, unitID, employeeID)
	})
	if err != nil {
		return mapUnitErr(err)
	}

	s.publisher.Publish(unit.CommanderChangedEvent{
		UnitType:   unitType,
		UnitID:     unitID,
		EmployeeID: employeeID,
		ActorID:    identity.EmployeeID,
	})
	return nil
}
