package services

import (
	"context"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	orgservices "github.com/orgkit/presence/modules/org/services"

	"github.com/orgkit/presence/modules/org/domain/scope"
	"github.com/orgkit/presence/modules/org/domain/unit"
	"github.com/orgkit/presence/modules/personnel/domain/aggregates/employee"
	"github.com/orgkit/presence/modules/personnel/infrastructure/persistence"
	"github.com/orgkit/presence/pkg/composables"
	"github.com/orgkit/presence/pkg/serrors"
	"github.com/orgkit/presence/pkg/types"
)

type mockEmployeeRepo struct {
	employee.Repository
	created    *employee.Employee
	updated    *employee.UpdateValues
	deletedID  uint
	byID       *employee.Employee
	details    *employee.Details
	allDetails []*employee.Details
	allParams  *employee.FindParams
}

func (m *mockEmployeeRepo) Create(ctx context.Context, data *employee.Employee) (uint, error) {
	m.created = data
	return 42, nil
}

func (m *mockEmployeeRepo) Update(ctx context.Context, id uint, values *employee.UpdateValues) error {
	m.updated = values
	return nil
}

func (m *mockEmployeeRepo) Delete(ctx context.Context, id uint) error {
	m.deletedID = id
	return nil
}

func (m *mockEmployeeRepo) GetByID(ctx context.Context, id uint) (*employee.Employee, error) {
	if m.byID == nil {
		return nil, persistence.ErrEmployeeNotFound
	}
	return m.byID, nil
}

func (m *mockEmployeeRepo) GetDetails(ctx context.Context, id uint, visibility scope.Scope) (*employee.Details, error) {
	return m.details, nil
}

func (m *mockEmployeeRepo) GetAll(ctx context.Context, params *employee.FindParams) ([]*employee.Details, error) {
	m.allParams = params
	return m.allDetails, nil
}

func (m *mockEmployeeRepo) Count(ctx context.Context, params *employee.FindParams) (int64, error) {
	return int64(len(m.allDetails)), nil
}

type mockUnits struct {
	unit.Repository
	commanded     unit.Commanded
	setType       unit.Type
	setUnitID     uint
	setEmployeeID *uint
	clearedID     uint
}

func (m *mockUnits) CommandedBy(ctx context.Context, employeeID uint) (unit.Commanded, error) {
	return m.commanded, nil
}

func (m *mockUnits) SetCommander(ctx context.Context, unitType unit.Type, unitID uint, employeeID *uint) error {
	m.setType = unitType
	m.setUnitID = unitID
	m.setEmployeeID = employeeID
	return nil
}

func (m *mockUnits) ClearCommanderRefs(ctx context.Context, employeeID uint) error {
	m.clearedID = employeeID
	return nil
}

type capturedBus struct {
	events []interface{}
}

func (b *capturedBus) Publish(args ...interface{})   { b.events = append(b.events, args...) }
func (b *capturedBus) Subscribe(handler interface{}) {}

func (b *capturedBus) Unsubscribe(handler interface{}) {}
func (b *capturedBus) SubscribersCount() int           { return 0 }

func txContext(t *testing.T, identity types.Identity) context.Context {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	mock.ExpectBegin()
	mock.ExpectCommit()

	ctx := composables.WithPool(context.Background(), mock)
	return composables.WithIdentity(ctx, identity)
}

func rollbackContext(t *testing.T, identity types.Identity) context.Context {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	mock.ExpectBegin()
	mock.ExpectRollback()
	ctx := composables.WithPool(context.Background(), mock)
	return composables.WithIdentity(ctx, identity)
}

func uptr(v uint) *uint { return &v }

func TestEmployeeService_CreateRequiresAdmin(t *testing.T) {
	t.Parallel()

	sut := NewEmployeeService(&mockEmployeeRepo{}, &mockUnits{}, orgservices.NewScopeResolver(&mockUnits{}), &capturedBus{})
	ctx := txContext(t, types.Identity{EmployeeID: 7})

	_, err := sut.Create(ctx, &employee.CreateDTO{
		FirstName:       "A",
		LastName:        "B",
		PersonnelNumber: "P1",
		NationalID:      "N1",
	})
	require.Error(t, err)
	assert.True(t, serrors.IsAuthorization(err))
}

func TestEmployeeService_CreateValidatesDTO(t *testing.T) {
	t.Parallel()

	sut := NewEmployeeService(&mockEmployeeRepo{}, &mockUnits{}, orgservices.NewScopeResolver(&mockUnits{}), &capturedBus{})
	ctx := txContext(t, types.Identity{EmployeeID: 1, IsAdmin: true})

	_, err := sut.Create(ctx, &employee.CreateDTO{FirstName: "A"})
	require.Error(t, err)
	assert.True(t, serrors.IsValidation(err))
}

func TestEmployeeService_CreateCommanderSeedsPassword(t *testing.T) {
	t.Parallel()

	repo := &mockEmployeeRepo{}
	units := &mockUnits{}
	bus := &capturedBus{}
	sut := NewEmployeeService(repo, units, orgservices.NewScopeResolver(units), bus)
	ctx := txContext(t, types.Identity{EmployeeID: 1, IsAdmin: true})

	id, err := sut.Create(ctx, &employee.CreateDTO{
		FirstName:       "Dana",
		LastName:        "Reyes",
		PersonnelNumber: "P-100",
		NationalID:      "1234567890",
		IsCommander:     true,
		TeamID:          uptr(9),
	})
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)

	require.NotNil(t, repo.created)
	assert.True(t, repo.created.MustChangePassword)
	assert.NoError(t, bcrypt.CompareHashAndPassword(
		[]byte(repo.created.PasswordHash), []byte("1234567890")))

	assert.Equal(t, unit.TypeTeam, units.setType)
	assert.Equal(t, uint(9), units.setUnitID)
	require.NotNil(t, units.setEmployeeID)
	assert.Equal(t, uint(42), *units.setEmployeeID)

	require.Len(t, bus.events, 1)
	created, ok := bus.events[0].(employee.CreatedEvent)
	require.True(t, ok)
	assert.Equal(t, uint(42), created.Employee.ID)
}

func TestEmployeeService_CreatePlainEmployeeHasNoPassword(t *testing.T) {
	t.Parallel()

	repo := &mockEmployeeRepo{}
	units := &mockUnits{}
	sut := NewEmployeeService(repo, units, orgservices.NewScopeResolver(units), &capturedBus{})
	ctx := txContext(t, types.Identity{EmployeeID: 1, IsAdmin: true})

	_, err := sut.Create(ctx, &employee.CreateDTO{
		FirstName:       "Noa",
		LastName:        "Lim",
		PersonnelNumber: "P-101",
		NationalID:      "555",
	})
	require.NoError(t, err)
	assert.Empty(t, repo.created.PasswordHash)
	assert.False(t, repo.created.MustChangePassword)
	assert.Nil(t, units.setEmployeeID)
}

func TestEmployeeService_UpdateDemoteClearsCommanderRefs(t *testing.T) {
	t.Parallel()

	repo := &mockEmployeeRepo{byID: &employee.Employee{
		ID:          5,
		IsCommander: true,
		TeamID:      uptr(3),
	}}
	units := &mockUnits{}
	sut := NewEmployeeService(repo, units, orgservices.NewScopeResolver(units), &capturedBus{})
	ctx := txContext(t, types.Identity{EmployeeID: 1, IsAdmin: true})

	isCommander := false
	err := sut.Update(ctx, 5, &employee.UpdateDTO{IsCommander: &isCommander})
	require.NoError(t, err)
	assert.Equal(t, uint(5), units.clearedID)
	require.NotNil(t, repo.updated)
	assert.False(t, *repo.updated.IsCommander)
	require.NotNil(t, repo.updated.MustChangePassword)
	assert.False(t, *repo.updated.MustChangePassword)
}

func TestEmployeeService_UpdatePromoteWithPasswordStillForcesReset(t *testing.T) {
	t.Parallel()

	national := "9876"
	repo := &mockEmployeeRepo{byID: &employee.Employee{
		ID:           5,
		NationalID:   &national,
		PasswordHash: "$2a$10$existinghash",
		SectionID:    uptr(2),
	}}
	units := &mockUnits{}
	sut := NewEmployeeService(repo, units, orgservices.NewScopeResolver(units), &capturedBus{})
	ctx := txContext(t, types.Identity{EmployeeID: 1, IsAdmin: true})

	isCommander := true
	err := sut.Update(ctx, 5, &employee.UpdateDTO{IsCommander: &isCommander})
	require.NoError(t, err)

	require.NotNil(t, repo.updated)
	assert.Nil(t, repo.updated.PasswordHash)
	require.NotNil(t, repo.updated.MustChangePassword)
	assert.True(t, *repo.updated.MustChangePassword)
}

func TestEmployeeService_UpdateMissingEmployeeNotFound(t *testing.T) {
	t.Parallel()

	sut := NewEmployeeService(&mockEmployeeRepo{}, &mockUnits{}, orgservices.NewScopeResolver(&mockUnits{}), &capturedBus{})
	ctx := rollbackContext(t, types.Identity{EmployeeID: 1, IsAdmin: true})

	isActive := false
	err := sut.Update(ctx, 99, &employee.UpdateDTO{IsActive: &isActive})
	require.Error(t, err)
	assert.True(t, serrors.IsNotFound(err))
}

func TestEmployeeService_UpdatePromoteSeedsPasswordOnce(t *testing.T) {
	t.Parallel()

	national := "9876"
	repo := &mockEmployeeRepo{byID: &employee.Employee{
		ID:         5,
		NationalID: &national,
		SectionID:  uptr(2),
	}}
	units := &mockUnits{}
	sut := NewEmployeeService(repo, units, orgservices.NewScopeResolver(units), &capturedBus{})
	ctx := txContext(t, types.Identity{EmployeeID: 1, IsAdmin: true})

	isCommander := true
	err := sut.Update(ctx, 5, &employee.UpdateDTO{IsCommander: &isCommander})
	require.NoError(t, err)

	require.NotNil(t, repo.updated.PasswordHash)
	require.NotNil(t, repo.updated.MustChangePassword)
	assert.True(t, *repo.updated.MustChangePassword)
	assert.Equal(t, unit.TypeSection, units.setType)
	assert.Equal(t, uint(2), units.setUnitID)
}

func TestEmployeeService_DeleteRunsCascade(t *testing.T) {
	t.Parallel()

	repo := &mockEmployeeRepo{byID: &employee.Employee{ID: 5, PersonnelNumber: "P-5"}}
	units := &mockUnits{}
	bus := &capturedBus{}
	sut := NewEmployeeService(repo, units, orgservices.NewScopeResolver(units), bus)

	var purged []uint
	sut.RegisterPurger(purgerFunc(func(ctx context.Context, employeeID uint) error {
		purged = append(purged, employeeID)
		return nil
	}))

	ctx := txContext(t, types.Identity{EmployeeID: 1, IsAdmin: true})
	require.NoError(t, sut.Delete(ctx, 5))

	assert.Equal(t, []uint{5}, purged)
	assert.Equal(t, uint(5), units.clearedID)
	assert.Equal(t, uint(5), repo.deletedID)

	require.Len(t, bus.events, 1)
	deleted, ok := bus.events[0].(employee.DeletedEvent)
	require.True(t, ok)
	assert.Equal(t, "P-5", deleted.PersonnelNumber)
}

func TestEmployeeService_FindAllAppliesViewerScope(t *testing.T) {
	t.Parallel()

	repo := &mockEmployeeRepo{}
	units := &mockUnits{commanded: unit.Commanded{SectionID: uptr(4)}}
	sut := NewEmployeeService(repo, units, orgservices.NewScopeResolver(units), &capturedBus{})
	ctx := txContext(t, types.Identity{EmployeeID: 7, IsCommander: true})

	_, _, err := sut.FindAll(ctx, &employee.FindParams{Query: "rey"})
	require.NoError(t, err)
	require.NotNil(t, repo.allParams)
	assert.Equal(t, scope.Section(4), repo.allParams.Scope)
	assert.Equal(t, "rey", repo.allParams.Query)
}

type purgerFunc func(ctx context.Context, employeeID uint) error

func (f purgerFunc) DeleteByEmployee(ctx context.Context, employeeID uint) error {
	return f(ctx, employeeID)
}
