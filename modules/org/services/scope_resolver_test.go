package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orgkit/presence/modules/org/domain/scope"
	"github.com/orgkit/presence/modules/org/domain/unit"
	"github.com/orgkit/presence/pkg/types"
)

type mockUnitRepo struct {
	unit.Repository
	commanded unit.Commanded
	err       error
}

func (m *mockUnitRepo) CommandedBy(ctx context.Context, employeeID uint) (unit.Commanded, error) {
	return m.commanded, m.err
}

func ptr(v uint) *uint { return &v }

func TestScopeResolver_Admin(t *testing.T) {
	t.Parallel()

	sut := NewScopeResolver(&mockUnitRepo{commanded: unit.Commanded{TeamID: ptr(3)}})
	got, err := sut.Resolve(context.Background(), types.Identity{EmployeeID: 1, IsAdmin: true})
	require.NoError(t, err)
	assert.Equal(t, scope.All(), got)
}

func TestScopeResolver_SectionShadowsDepartment(t *testing.T) {
	t.Parallel()

	// Commanding section 5 inside department 2 must scope to the section
	// only, never widen to the department.
	sut := NewScopeResolver(&mockUnitRepo{commanded: unit.Commanded{
		SectionID:    ptr(5),
		DepartmentID: ptr(2),
	}})
	got, err := sut.Resolve(context.Background(), types.Identity{EmployeeID: 10, IsCommander: true})
	require.NoError(t, err)
	assert.Equal(t, scope.Section(5), got)
}

func TestScopeResolver_SectionBeforeTeam(t *testing.T) {
	t.Parallel()

	sut := NewScopeResolver(&mockUnitRepo{commanded: unit.Commanded{
		SectionID: ptr(5),
		TeamID:    ptr(9),
	}})
	got, err := sut.Resolve(context.Background(), types.Identity{EmployeeID: 10, IsCommander: true})
	require.NoError(t, err)
	assert.Equal(t, scope.Section(5), got)
}

func TestScopeResolver_TeamBeforeDepartment(t *testing.T) {
	t.Parallel()

	sut := NewScopeResolver(&mockUnitRepo{commanded: unit.Commanded{
		TeamID:       ptr(9),
		DepartmentID: ptr(2),
	}})
	got, err := sut.Resolve(context.Background(), types.Identity{EmployeeID: 10, IsCommander: true})
	require.NoError(t, err)
	assert.Equal(t, scope.Team(9), got)
}

func TestScopeResolver_DepartmentOnly(t *testing.T) {
	t.Parallel()

	sut := NewScopeResolver(&mockUnitRepo{commanded: unit.Commanded{DepartmentID: ptr(2)}})
	got, err := sut.Resolve(context.Background(), types.Identity{EmployeeID: 10, IsCommander: true})
	require.NoError(t, err)
	assert.Equal(t, scope.Department(2), got)
}

func TestScopeResolver_CommanderFlagWithoutUnitFallsBackToSelf(t *testing.T) {
	t.Parallel()

	sut := NewScopeResolver(&mockUnitRepo{})
	got, err := sut.Resolve(context.Background(), types.Identity{EmployeeID: 10, IsCommander: true})
	require.NoError(t, err)
	assert.Equal(t, scope.Self(10), got)
}

func TestScopeResolver_NonCommander(t *testing.T) {
	t.Parallel()

	sut := NewScopeResolver(&mockUnitRepo{})
	got, err := sut.Resolve(context.Background(), types.Identity{EmployeeID: 11})
	require.NoError(t, err)
	assert.Equal(t, scope.Self(11), got)
}
