package services

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	orgservices "github.com/orgkit/presence/modules/org/services"

	"github.com/orgkit/presence/modules/org/domain/unit"
	"github.com/orgkit/presence/modules/personnel/domain/aggregates/employee"
	"github.com/orgkit/presence/modules/personnel/infrastructure/persistence"
	"github.com/orgkit/presence/pkg/composables"
	"github.com/orgkit/presence/pkg/eventbus"
	"github.com/orgkit/presence/pkg/serrors"
	"github.com/orgkit/presence/pkg/types"
)

// EmployeeDataPurger removes everything a module holds about one employee.
// The personnel service calls purgers inside the delete transaction before
// the employee row itself goes away.
type EmployeeDataPurger interface {
	DeleteByEmployee(ctx context.Context, employeeID uint) error
}

type EmployeeService struct {
	repo      employee.Repository
	units     unit.Repository
	resolver  *orgservices.ScopeResolver
	publisher eventbus.EventBus
	validate  *validator.Validate
	purgers   []EmployeeDataPurger
}

func NewEmployeeService(
	repo employee.Repository,
	units unit.Repository,
	resolver *orgservices.ScopeResolver,
	publisher eventbus.EventBus,
) *EmployeeService {
	return &EmployeeService{
		repo:      repo,
		units:     units,
		resolver:  resolver,
		publisher: publisher,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}
}

// RegisterPurger wires another module's per-employee cleanup into the
// delete cascade. Called during module registration, not concurrency safe
// afterwards.
func (s *EmployeeService) RegisterPurger(p EmployeeDataPurger) {
	s.purgers = append(s.purgers, p)
}

func (s *EmployeeService) FindByID(ctx context.Context, id uint) (*employee.Details, error) {
	identity, err := composables.UseIdentity(ctx)
	if err != nil {
		return nil, serrors.Authorization("NO_IDENTITY", "authentication required")
	}
	visibility, err := s.resolver.Resolve(ctx, identity)
	if err != nil {
		return nil, err
	}

	details, err := s.repo.GetDetails(ctx, id, visibility)
	if err != nil {
		return nil, mapEmployeeErr(err)
	}

	commandScope, err := s.resolver.Resolve(ctx, types.Identity{
		EmployeeID: details.ID,
		IsAdmin:    details.IsAdmin,
	})
	if err != nil {
		return nil, err
	}
	details.CommandScope = commandScope
	return details, nil
}

func (s *EmployeeService) FindAll(ctx context.Context, params *employee.FindParams) ([]*employee.Details, int64, error) {
	identity, err := composables.UseIdentity(ctx)
	if err != nil {
		return nil, 0, serrors.Authorization("NO_IDENTITY", "authentication required")
	}
	visibility, err := s.resolver.Resolve(ctx, identity)
	if err != nil {
		return nil, 0, err
	}

	if params == nil {
		params = &employee.FindParams{}
	}
	params.Scope = visibility

	items, err := s.repo.GetAll(ctx, params)
	if err != nil {
		return nil, 0, mapEmployeeErr(err)
	}
	total, err := s.repo.Count(ctx, params)
	if err != nil {
		return nil, 0, mapEmployeeErr(err)
	}
	return items, total, nil
}

func (s *EmployeeService) Create(ctx context.Context, dto *employee.CreateDTO) (uint, error) {
	identity, err := requireAdmin(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.validate.Struct(dto); err != nil {
		return 0, serrors.Validation("EMPLOYEE_INVALID", err.Error())
	}

	entity := &employee.Employee{
		FirstName:       dto.FirstName,
		LastName:        dto.LastName,
		PersonnelNumber: dto.PersonnelNumber,
		NationalID:      &dto.NationalID,
		IsAdmin:         dto.IsAdmin,
		IsCommander:     dto.IsCommander,
		IsActive:        true,
		BirthDate:       dto.BirthDate,
		ServiceType:     dto.ServiceType,
		TeamID:          dto.TeamID,
		SectionID:       dto.SectionID,
		DepartmentID:    dto.DepartmentID,
	}

	// Accounts that can log in get an initial password derived from the
	// national ID and must rotate it on first use.
	if dto.IsCommander || dto.IsAdmin {
		hash, err := bcrypt.GenerateFromPassword([]byte(dto.NationalID), bcrypt.DefaultCost)
		if err != nil {
			return 0, serrors.Persistence(err)
		}
		entity.PasswordHash = string(hash)
		entity.MustChangePassword = true
	}

	var newID uint
	err = composables.InTx(ctx, func(txCtx context.Context) error {
		id, err := s.repo.Create(txCtx, entity)
		if err != nil {
			return err
		}
		newID = id
		if dto.IsCommander {
			if err := s.assignCommand(txCtx, entity, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, mapEmployeeErr(err)
	}

	entity.ID = newID
	s.publisher.Publish(employee.CreatedEvent{Employee: *entity, ActorID: identity.EmployeeID})
	return newID, nil
}

func (s *EmployeeService) Update(ctx context.Context, id uint, dto *employee.UpdateDTO) error {
	identity, err := requireAdmin(ctx)
	if err != nil {
		return err
	}

	err = composables.InTx(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return err
		}

		values := dto.Values()
		if dto.IsCommander != nil && *dto.IsCommander != existing.IsCommander {
			// Credential state follows the commander flag: promotion always
			// forces a password rotation, demotion clears the pending one.
			mustChange := *dto.IsCommander
			values.MustChangePassword = &mustChange
			if *dto.IsCommander {
				if existing.PasswordHash == "" && existing.NationalID != nil {
					hash, err := bcrypt.GenerateFromPassword([]byte(*existing.NationalID), bcrypt.DefaultCost)
					if err != nil {
						return serrors.Persistence(err)
					}
					hashStr := string(hash)
					values.PasswordHash = &hashStr
				}
				updated := *existing
				applyUpdate(&updated, values)
				if err := s.assignCommand(txCtx, &updated, id); err != nil {
					return err
				}
			} else {
				if err := s.units.ClearCommanderRefs(txCtx, id); err != nil {
					return err
				}
			}
		}
		return s.repo.Update(txCtx, id, values)
	})
	if err != nil {
		return mapEmployeeErr(err)
	}

	s.publisher.Publish(employee.UpdatedEvent{EmployeeID: id, ActorID: identity.EmployeeID})
	return nil
}

func (s *EmployeeService) Delete(ctx context.Context, id uint) error {
	identity, err := requireAdmin(ctx)
	if err != nil {
		return err
	}

	var deleted *employee.Employee
	err = composables.InTx(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		deleted = existing

		for _, purger := range s.purgers {
			if err := purger.DeleteByEmployee(txCtx, id); err != nil {
				return err
			}
		}
		if err := s.units.ClearCommanderRefs(txCtx, id); err != nil {
			return err
		}
		return s.repo.Delete(txCtx, id)
	})
	if err != nil {
		return mapEmployeeErr(err)
	}

	s.publisher.Publish(employee.DeletedEvent{
		EmployeeID:      id,
		PersonnelNumber: deleted.PersonnelNumber,
		ActorID:         identity.EmployeeID,
	})
	return nil
}

// assignCommand makes the employee commander of their most specific unit.
// An existing commander on that unit is silently replaced; the replaced
// employee keeps their commander flag until an admin clears it.
func (s *EmployeeService) assignCommand(ctx context.Context, entity *employee.Employee, employeeID uint) error {
	switch {
	case entity.TeamID != nil:
		return s.units.SetCommander(ctx, unit.TypeTeam, *entity.TeamID, &employeeID)
	case entity.SectionID != nil:
		return s.units.SetCommander(ctx, unit.TypeSection, *entity.SectionID, &employeeID)
	case entity.DepartmentID != nil:
		return s.units.SetCommander(ctx, unit.TypeDepartment, *entity.DepartmentID, &employeeID)
	}
	return nil
}

func applyUpdate(target *employee.Employee, values *employee.UpdateValues) {
	if values.TeamID != nil {
		target.TeamID = values.TeamID
	}
	if values.SectionID != nil {
		target.SectionID = values.SectionID
	}
	if values.DepartmentID != nil {
		target.DepartmentID = values.DepartmentID
	}
}

func mapEmployeeErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, persistence.ErrEmployeeNotFound) {
		return serrors.NotFound("EMPLOYEE_NOT_FOUND", "employee not found")
	}
	if _, ok := serrors.KindOf(err); ok {
		return err
	}
	return serrors.Persistence(err)
}

func requireAdmin(ctx context.Context) (types.Identity, error) {
	identity, err := composables.UseIdentity(ctx)
	if err != nil {
		return types.Identity{}, serrors.Authorization("NO_IDENTITY", "authentication required")
	}
	if !identity.IsAdmin {
		return types.Identity{}, serrors.Authorization("ADMIN_REQUIRED", "administrator role required")
	}
	return identity, nil
}
