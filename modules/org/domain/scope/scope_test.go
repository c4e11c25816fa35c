package scope_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orgkit/presence/modules/org/domain/scope"
)

func TestPredicate_All(t *testing.T) {
	t.Parallel()

	frag, args := scope.All().Predicate("e", 1)
	assert.Equal(t, "TRUE", frag)
	assert.Empty(t, args)
}

func TestPredicate_Team(t *testing.T) {
	t.Parallel()

	frag, args := scope.Team(9).Predicate("e", 3)
	assert.Equal(t, "e.team_id = $3", frag)
	require.Len(t, args, 1)
	assert.Equal(t, uint(9), args[0])
}

func TestPredicate_SectionCoversTeams(t *testing.T) {
	t.Parallel()

	frag, args := scope.Section(4).Predicate("e", 2)
	assert.Contains(t, frag, "e.section_id = $2")
	assert.Contains(t, frag, "team_id IN (SELECT id FROM teams WHERE section_id = $2)")
	require.Len(t, args, 1)
}

func TestPredicate_DepartmentCoversSectionsAndTeams(t *testing.T) {
	t.Parallel()

	frag, args := scope.Department(1).Predicate("e", 1)
	assert.Contains(t, frag, "e.department_id = $1")
	assert.Contains(t, frag, "SELECT id FROM sections WHERE department_id = $1")
	assert.Contains(t, frag, "JOIN sections s ON s.id = t.section_id")
	require.Len(t, args, 1)
}

func TestPredicate_Self(t *testing.T) {
	t.Parallel()

	frag, args := scope.Self(15).Predicate("e", 1)
	assert.Equal(t, "e.id = $1", frag)
	require.Len(t, args, 1)
	assert.Equal(t, uint(15), args[0])
}
