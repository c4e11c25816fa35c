package services

import (
	"context"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orgkit/presence/modules/org/domain/unit"
	"github.com/orgkit/presence/modules/transfer/domain/entities/transferrequest"
	"github.com/orgkit/presence/modules/transfer/infrastructure/persistence"
	"github.com/orgkit/presence/pkg/composables"
	"github.com/orgkit/presence/pkg/serrors"
	"github.com/orgkit/presence/pkg/types"
)

type mockTransferRepo struct {
	transferrequest.Repository
	byID           *transferrequest.TransferRequest
	pending        *transferrequest.TransferRequest
	created        *transferrequest.TransferRequest
	resolvedStatus transferrequest.Status
	resolvedBy     uint
	resolvedReason *string
	assignedType   unit.Type
	assignedUnit   uint
	assignedEmp    uint
}

func (m *mockTransferRepo) GetByID(ctx context.Context, id uint) (*transferrequest.TransferRequest, error) {
	if m.byID == nil {
		return nil, persistence.ErrTransferNotFound
	}
	return m.byID, nil
}

func (m *mockTransferRepo) GetPendingByEmployee(ctx context.Context, employeeID uint) (*transferrequest.TransferRequest, error) {
	if m.pending == nil {
		return nil, persistence.ErrTransferNotFound
	}
	return m.pending, nil
}

func (m *mockTransferRepo) Create(ctx context.Context, data *transferrequest.TransferRequest) (uint, error) {
	m.created = data
	return 77, nil
}

func (m *mockTransferRepo) Resolve(ctx context.Context, id uint, status transferrequest.Status, resolvedBy uint, reason *string) error {
	m.resolvedStatus = status
	m.resolvedBy = resolvedBy
	m.resolvedReason = reason
	return nil
}

func (m *mockTransferRepo) AssignUnit(ctx context.Context, employeeID uint, unitType unit.Type, unitID uint) error {
	m.assignedEmp = employeeID
	m.assignedType = unitType
	m.assignedUnit = unitID
	return nil
}

type mockTransferUnits struct {
	unit.Repository
	teams []unit.Team
}

func (m *mockTransferUnits) GetTeam(ctx context.Context, id uint) (*unit.Team, error) {
	return &unit.Team{ID: id}, nil
}

func (m *mockTransferUnits) GetSection(ctx context.Context, id uint) (*unit.Section, error) {
	return &unit.Section{ID: id}, nil
}

func (m *mockTransferUnits) TeamsBySection(ctx context.Context, sectionID uint) ([]unit.Team, error) {
	return m.teams, nil
}

type nopBus struct{}

func (nopBus) Publish(args ...interface{})     {}
func (nopBus) Subscribe(handler interface{})   {}
func (nopBus) Unsubscribe(handler interface{}) {}
func (nopBus) SubscribersCount() int           { return 0 }

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

func TestTransferService_CreateConflictsOnPending(t *testing.T) {
	t.Parallel()

	repo := &mockTransferRepo{pending: &transferrequest.TransferRequest{
		ID:         1,
		EmployeeID: 8,
		Status:     transferrequest.StatusPending,
	}}
	sut := NewTransferService(repo, &mockTransferUnits{}, nopBus{})
	ctx := rollbackContext(t, types.Identity{EmployeeID: 2, IsCommander: true})

	_, err := sut.Create(ctx, &transferrequest.CreateDTO{
		EmployeeID: 8,
		TargetType: "team",
		TargetID:   3,
	})
	require.Error(t, err)
	assert.True(t, serrors.IsConflict(err))
	assert.Nil(t, repo.created)
}

func TestTransferService_CreatePending(t *testing.T) {
	t.Parallel()

	repo := &mockTransferRepo{}
	sut := NewTransferService(repo, &mockTransferUnits{}, nopBus{})
	ctx := txContext(t, types.Identity{EmployeeID: 2, IsCommander: true})

	id, err := sut.Create(ctx, &transferrequest.CreateDTO{
		EmployeeID: 8,
		TargetType: "section",
		TargetID:   4,
	})
	require.NoError(t, err)
	assert.Equal(t, uint(77), id)
	require.NotNil(t, repo.created)
	assert.Equal(t, transferrequest.StatusPending, repo.created.Status)
	assert.Equal(t, uint(2), repo.created.RequesterID)
}

func TestTransferService_CreateRejectsBadTarget(t *testing.T) {
	t.Parallel()

	sut := NewTransferService(&mockTransferRepo{}, &mockTransferUnits{}, nopBus{})
	ctx := txContext(t, types.Identity{EmployeeID: 2, IsAdmin: true})

	_, err := sut.Create(ctx, &transferrequest.CreateDTO{
		EmployeeID: 8,
		TargetType: "battalion",
		TargetID:   4,
	})
	require.Error(t, err)
	assert.True(t, serrors.IsValidation(err))
}

func TestTransferService_ApproveTeamTarget(t *testing.T) {
	t.Parallel()

	repo := &mockTransferRepo{byID: &transferrequest.TransferRequest{
		ID:         5,
		EmployeeID: 8,
		TargetType: unit.TypeTeam,
		TargetID:   3,
		Status:     transferrequest.StatusPending,
	}}
	sut := NewTransferService(repo, &mockTransferUnits{}, nopBus{})
	ctx := txContext(t, types.Identity{EmployeeID: 1, IsAdmin: true})

	require.NoError(t, sut.Approve(ctx, 5))
	assert.Equal(t, uint(8), repo.assignedEmp)
	assert.Equal(t, unit.TypeTeam, repo.assignedType)
	assert.Equal(t, uint(3), repo.assignedUnit)
	assert.Equal(t, transferrequest.StatusApproved, repo.resolvedStatus)
	assert.Equal(t, uint(1), repo.resolvedBy)
}

func TestTransferService_ApproveSectionTargetPicksLowestTeam(t *testing.T) {
	t.Parallel()

	repo := &mockTransferRepo{byID: &transferrequest.TransferRequest{
		ID:         5,
		EmployeeID: 8,
		TargetType: unit.TypeSection,
		TargetID:   4,
		Status:     transferrequest.StatusPending,
	}}
	units := &mockTransferUnits{teams: []unit.Team{{ID: 12}, {ID: 7}, {ID: 9}}}
	sut := NewTransferService(repo, units, nopBus{})
	ctx := txContext(t, types.Identity{EmployeeID: 1, IsAdmin: true})

	require.NoError(t, sut.Approve(ctx, 5))
	assert.Equal(t, unit.TypeTeam, repo.assignedType)
	assert.Equal(t, uint(7), repo.assignedUnit)
}

func TestTransferService_ApproveSectionWithoutTeamsAssignsSection(t *testing.T) {
	t.Parallel()

	repo := &mockTransferRepo{byID: &transferrequest.TransferRequest{
		ID:         5,
		EmployeeID: 8,
		TargetType: unit.TypeSection,
		TargetID:   4,
		Status:     transferrequest.StatusPending,
	}}
	sut := NewTransferService(repo, &mockTransferUnits{}, nopBus{})
	ctx := txContext(t, types.Identity{EmployeeID: 1, IsAdmin: true})

	require.NoError(t, sut.Approve(ctx, 5))
	assert.Equal(t, unit.TypeSection, repo.assignedType)
	assert.Equal(t, uint(4), repo.assignedUnit)
}

func TestTransferService_ApproveResolvedRequestFails(t *testing.T) {
	t.Parallel()

	repo := &mockTransferRepo{byID: &transferrequest.TransferRequest{
		ID:         5,
		EmployeeID: 8,
		TargetType: unit.TypeTeam,
		TargetID:   3,
		Status:     transferrequest.StatusApproved,
	}}
	sut := NewTransferService(repo, &mockTransferUnits{}, nopBus{})
	ctx := rollbackContext(t, types.Identity{EmployeeID: 1, IsAdmin: true})

	err := sut.Approve(ctx, 5)
	require.Error(t, err)
	assert.True(t, serrors.IsNotFound(err))
	assert.Zero(t, repo.assignedEmp)
}

func TestTransferService_RejectStoresReason(t *testing.T) {
	t.Parallel()

	repo := &mockTransferRepo{byID: &transferrequest.TransferRequest{
		ID:     5,
		Status: transferrequest.StatusPending,
	}}
	sut := NewTransferService(repo, &mockTransferUnits{}, nopBus{})
	ctx := txContext(t, types.Identity{EmployeeID: 1, IsAdmin: true})

	require.NoError(t, sut.Reject(ctx, 5, "position filled"))
	assert.Equal(t, transferrequest.StatusRejected, repo.resolvedStatus)
	require.NotNil(t, repo.resolvedReason)
	assert.Equal(t, "position filled", *repo.resolvedReason)
}

func TestTransferService_CancelByStrangerFails(t *testing.T) {
	t.Parallel()

	repo := &mockTransferRepo{byID: &transferrequest.TransferRequest{
		ID:          5,
		RequesterID: 2,
		Status:      transferrequest.StatusPending,
	}}
	sut := NewTransferService(repo, &mockTransferUnits{}, nopBus{})
	ctx := rollbackContext(t, types.Identity{EmployeeID: 9, IsCommander: true})

	err := sut.Cancel(ctx, 5)
	require.Error(t, err)
	assert.True(t, serrors.IsAuthorization(err))
}

func TestTransferService_CancelByRequester(t *testing.T) {
	t.Parallel()

	repo := &mockTransferRepo{byID: &transferrequest.TransferRequest{
		ID:          5,
		RequesterID: 2,
		Status:      transferrequest.StatusPending,
	}}
	sut := NewTransferService(repo, &mockTransferUnits{}, nopBus{})
	ctx := txContext(t, types.Identity{EmployeeID: 2, IsCommander: true})

	require.NoError(t, sut.Cancel(ctx, 5))
	assert.Equal(t, transferrequest.StatusCancelled, repo.resolvedStatus)
}
