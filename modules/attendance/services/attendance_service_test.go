package services

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	orgservices "github.com/orgkit/presence/modules/org/services"

	"github.com/orgkit/presence/modules/attendance/domain/entities/interval"
	"github.com/orgkit/presence/modules/org/domain/scope"
	"github.com/orgkit/presence/modules/org/domain/unit"
	"github.com/orgkit/presence/pkg/composables"
	"github.com/orgkit/presence/pkg/serrors"
	"github.com/orgkit/presence/pkg/types"
)

type mockIntervalRepo struct {
	interval.Repository
	closedEmployee uint
	closedAt       time.Time
	inserted       *interval.AttendanceInterval
	insertErr      error
	candidates     []interval.BirthdayCandidate
	dashFilters    *interval.DashboardFilters
	historyScope   scope.Scope
}

func (m *mockIntervalRepo) CloseOpen(ctx context.Context, employeeID uint, at time.Time) error {
	m.closedEmployee = employeeID
	m.closedAt = at
	return nil
}

func (m *mockIntervalRepo) Insert(ctx context.Context, data *interval.AttendanceInterval) (uint, error) {
	if m.insertErr != nil {
		return 0, m.insertErr
	}
	m.inserted = data
	return 101, nil
}

func (m *mockIntervalRepo) DashboardCounts(ctx context.Context, filters *interval.DashboardFilters) ([]interval.DashboardStat, error) {
	m.dashFilters = filters
	return nil, nil
}

func (m *mockIntervalRepo) BirthdayCandidates(ctx context.Context, visibility scope.Scope) ([]interval.BirthdayCandidate, error) {
	return m.candidates, nil
}

func (m *mockIntervalRepo) ListByEmployee(ctx context.Context, employeeID uint, visibility scope.Scope, limit, offset int) ([]*interval.AttendanceInterval, error) {
	m.historyScope = visibility
	return nil, nil
}

type mockResolverUnits struct {
	unit.Repository
	commanded unit.Commanded
}

func (m *mockResolverUnits) CommandedBy(ctx context.Context, employeeID uint) (unit.Commanded, error) {
	return m.commanded, nil
}

type nopBus struct{}

func (nopBus) Publish(args ...interface{})     {}
func (nopBus) Subscribe(handler interface{})   {}
func (nopBus) Unsubscribe(handler interface{}) {}
func (nopBus) SubscribersCount() int           { return 0 }

func newService(repo interval.Repository, commanded unit.Commanded) *AttendanceService {
	return NewAttendanceService(repo, orgservices.NewScopeResolver(&mockResolverUnits{commanded: commanded}), nopBus{})
}

func txContext(t *testing.T, identity types.Identity, txs int) context.Context {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	for range txs {
		mock.ExpectBegin()
		mock.ExpectCommit()
	}

	ctx := composables.WithPool(context.Background(), mock)
	return composables.WithIdentity(ctx, identity)
}

func uptr(v uint) *uint { return &v }

func TestAttendanceService_LogStatusClosesThenInserts(t *testing.T) {
	t.Parallel()

	repo := &mockIntervalRepo{}
	sut := newService(repo, unit.Commanded{})
	at := time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)
	sut.now = func() time.Time { return at }

	ctx := txContext(t, types.Identity{EmployeeID: 3, IsCommander: true}, 1)
	err := sut.LogStatus(ctx, &interval.LogStatusDTO{EmployeeID: 8, StatusTypeID: 2})
	require.NoError(t, err)

	assert.Equal(t, uint(8), repo.closedEmployee)
	assert.Equal(t, at, repo.closedAt)
	require.NotNil(t, repo.inserted)
	assert.Equal(t, at, repo.inserted.StartDatetime)
	assert.Nil(t, repo.inserted.EndDatetime)
	assert.Equal(t, uint(3), repo.inserted.ReportedBy)
}

func TestAttendanceService_LogStatusRequiresReporter(t *testing.T) {
	t.Parallel()

	sut := newService(&mockIntervalRepo{}, unit.Commanded{})
	ctx := txContext(t, types.Identity{EmployeeID: 3}, 0)

	err := sut.LogStatus(ctx, &interval.LogStatusDTO{EmployeeID: 8, StatusTypeID: 2})
	require.Error(t, err)
	assert.True(t, serrors.IsAuthorization(err))
}

func TestAttendanceService_LogStatusRejectsMissingStatus(t *testing.T) {
	t.Parallel()

	sut := newService(&mockIntervalRepo{}, unit.Commanded{})
	ctx := txContext(t, types.Identity{EmployeeID: 3, IsAdmin: true}, 0)

	err := sut.LogStatus(ctx, &interval.LogStatusDTO{EmployeeID: 8})
	require.Error(t, err)
	assert.True(t, serrors.IsValidation(err))
}

func TestAttendanceService_BulkLogStatusContinuesPastFailures(t *testing.T) {
	t.Parallel()

	repo := &mockIntervalRepo{}
	sut := newService(repo, unit.Commanded{})
	ctx := txContext(t, types.Identity{EmployeeID: 3, IsAdmin: true}, 2)

	results := sut.BulkLogStatus(ctx, []*interval.LogStatusDTO{
		{EmployeeID: 8, StatusTypeID: 2},
		{EmployeeID: 9}, // missing status, fails validation
		{EmployeeID: 10, StatusTypeID: 1},
	})

	require.Len(t, results, 3)
	assert.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err)
	assert.NoError(t, results[2].Err)
	assert.Equal(t, uint(10), repo.inserted.EmployeeID)
}

func TestAttendanceService_BulkLogStatusSkipsEmptyEntry(t *testing.T) {
	t.Parallel()

	repo := &mockIntervalRepo{}
	sut := newService(repo, unit.Commanded{})
	ctx := txContext(t, types.Identity{EmployeeID: 3, IsAdmin: true}, 1)

	results := sut.BulkLogStatus(ctx, []*interval.LogStatusDTO{
		nil,
		{EmployeeID: 8, StatusTypeID: 2},
	})

	require.Len(t, results, 2)
	require.Error(t, results[0].Err)
	assert.True(t, serrors.IsValidation(results[0].Err))
	assert.NoError(t, results[1].Err)
	assert.Equal(t, uint(8), repo.inserted.EmployeeID)
}

func TestAttendanceService_HistoryAppliesViewerScope(t *testing.T) {
	t.Parallel()

	repo := &mockIntervalRepo{}
	sut := newService(repo, unit.Commanded{TeamID: uptr(6)})
	ctx := txContext(t, types.Identity{EmployeeID: 5, IsCommander: true}, 0)

	_, err := sut.History(ctx, 999, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, scope.Team(6), repo.historyScope)
}

func TestAttendanceService_DashboardStatsAppliesViewerScope(t *testing.T) {
	t.Parallel()

	repo := &mockIntervalRepo{}
	sut := newService(repo, unit.Commanded{TeamID: uptr(6)})
	ctx := txContext(t, types.Identity{EmployeeID: 5, IsCommander: true}, 0)

	_, err := sut.DashboardStats(ctx, nil)
	require.NoError(t, err)
	require.NotNil(t, repo.dashFilters)
	assert.Equal(t, scope.Team(6), repo.dashFilters.Scope)
}

func TestAttendanceService_MonthlySummaryRequiresAdmin(t *testing.T) {
	t.Parallel()

	sut := newService(&mockIntervalRepo{}, unit.Commanded{})
	ctx := txContext(t, types.Identity{EmployeeID: 5, IsCommander: true}, 0)

	_, err := sut.MonthlySummary(ctx, 2024, time.March)
	require.Error(t, err)
	assert.True(t, serrors.IsAuthorization(err))
}

func TestAttendanceService_BirthdaysWindow(t *testing.T) {
	t.Parallel()

	// Dec 28: a Jan 2 birthday is 5 days away across the year boundary,
	// while Jan 5 is 8 days away and falls outside the window.
	now := time.Date(2024, 12, 28, 12, 0, 0, 0, time.UTC)
	repo := &mockIntervalRepo{candidates: []interval.BirthdayCandidate{
		{EmployeeID: 1, BirthDate: time.Date(1990, 12, 28, 0, 0, 0, 0, time.UTC)},
		{EmployeeID: 2, BirthDate: time.Date(1985, 1, 2, 0, 0, 0, 0, time.UTC)},
		{EmployeeID: 3, BirthDate: time.Date(1992, 1, 5, 0, 0, 0, 0, time.UTC)},
		{EmployeeID: 4, BirthDate: time.Date(1988, 6, 15, 0, 0, 0, 0, time.UTC)},
	}}
	sut := newService(repo, unit.Commanded{})
	sut.now = func() time.Time { return now }
	ctx := txContext(t, types.Identity{EmployeeID: 5, IsAdmin: true}, 0)

	got, err := sut.Birthdays(ctx)
	require.NoError(t, err)

	ids := make([]uint, 0, len(got))
	for _, b := range got {
		ids = append(ids, b.EmployeeID)
	}
	assert.Equal(t, []uint{1, 2}, ids)
	assert.Equal(t, 0, got[0].DaysUntil)
	assert.Equal(t, 5, got[1].DaysUntil)
}

func TestDaysUntilBirthday(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		now   time.Time
		birth time.Time
		want  int
	}{
		{
			name:  "today",
			now:   time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC),
			birth: time.Date(1990, 3, 5, 0, 0, 0, 0, time.UTC),
			want:  0,
		},
		{
			name:  "eight days ahead",
			now:   time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC),
			birth: time.Date(1990, 3, 13, 0, 0, 0, 0, time.UTC),
			want:  8,
		},
		{
			name:  "wraps year end",
			now:   time.Date(2023, 12, 28, 10, 0, 0, 0, time.UTC),
			birth: time.Date(1990, 1, 2, 0, 0, 0, 0, time.UTC),
			want:  5,
		},
		{
			name:  "just passed wraps to next year",
			now:   time.Date(2023, 3, 5, 10, 0, 0, 0, time.UTC),
			birth: time.Date(1990, 3, 4, 0, 0, 0, 0, time.UTC),
			want:  364,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, daysUntilBirthday(tc.now, tc.birth))
		})
	}
}
