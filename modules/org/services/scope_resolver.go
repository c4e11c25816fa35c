package services

import (
	"context"
	"errors"

	orgpersistence "github.com/orgkit/presence/modules/org/infrastructure/persistence"

	"github.com/orgkit/presence/modules/org/domain/scope"
	"github.com/orgkit/presence/modules/org/domain/unit"
	"github.com/orgkit/presence/pkg/serrors"
	"github.com/orgkit/presence/pkg/types"
)

// ScopeResolver derives the visibility scope of a requester. Every scoped
// query in the system goes through Resolve; there is no other place where
// visibility decisions are made.
type ScopeResolver struct {
	units unit.Repository
}

func NewScopeResolver(units unit.Repository) *ScopeResolver {
	return &ScopeResolver{units: units}
}

// Resolve picks the scope with precedence admin > section > team >
// department > self. A section commandership deliberately shadows any
// department link: commanding a section never widens into the parent
// department (non-bubbling).
func (r *ScopeResolver) Resolve(ctx context.Context, identity types.Identity) (scope.Scope, error) {
	if identity.IsAdmin {
		return scope.All(), nil
	}

	commanded, err := r.units.CommandedBy(ctx, identity.EmployeeID)
	if err != nil {
		return scope.Scope{}, serrors.Persistence(err)
	}

	switch {
	case commanded.SectionID != nil:
		return scope.Section(*commanded.SectionID), nil
	case commanded.TeamID != nil:
		return scope.Team(*commanded.TeamID), nil
	case commanded.DepartmentID != nil:
		return scope.Department(*commanded.DepartmentID), nil
	}
	return scope.Self(identity.EmployeeID), nil
}

func mapUnitErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, orgpersistence.ErrUnitNotFound) {
		return serrors.NotFound("ORG_UNIT_NOT_FOUND", "unit not found")
	}
	if serrors.IsKind(err, serrors.KindValidation) || serrors.IsKind(err, serrors.KindAuthorization) {
		return err
	}
	return serrors.Persistence(err)
}
