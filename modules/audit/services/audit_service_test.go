package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orgkit/presence/modules/audit/domain/entities/auditlog"
	"github.com/orgkit/presence/pkg/composables"
	"github.com/orgkit/presence/pkg/serrors"
	"github.com/orgkit/presence/pkg/types"
)

type mockAuditRepo struct {
	entries []*auditlog.AuditLog
}

func (m *mockAuditRepo) Create(ctx context.Context, entry *auditlog.AuditLog) error {
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockAuditRepo) List(ctx context.Context, params *auditlog.FindParams) ([]*auditlog.AuditLog, error) {
	return m.entries, nil
}

func (m *mockAuditRepo) Count(ctx context.Context, params *auditlog.FindParams) (int64, error) {
	return int64(len(m.entries)), nil
}

func TestAuditService_ListRequiresAdmin(t *testing.T) {
	t.Parallel()

	sut := NewAuditService(&mockAuditRepo{})
	ctx := composables.WithIdentity(context.Background(), types.Identity{EmployeeID: 4, IsCommander: true})

	_, _, err := sut.List(ctx, nil)
	require.Error(t, err)
	assert.True(t, serrors.IsAuthorization(err))
}

func TestAuditService_List(t *testing.T) {
	t.Parallel()

	repo := &mockAuditRepo{}
	sut := NewAuditService(repo)
	ctx := composables.WithIdentity(context.Background(), types.Identity{EmployeeID: 1, IsAdmin: true})

	require.NoError(t, sut.Log(ctx, &auditlog.AuditLog{ActorID: 1, ActionType: "employee.created"}))

	entries, total, err := sut.List(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, entries, 1)
	assert.Equal(t, "employee.created", entries[0].ActionType)
}
