package persistence

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orgkit/presence/modules/attendance/domain/entities/interval"
	"github.com/orgkit/presence/pkg/composables"
)

func TestAttendanceRepository_CloseThenInsertSingleTx(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	at := time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE attendance_intervals").
		WithArgs(uint(8), at).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectQuery("INSERT INTO attendance_intervals").
		WithArgs(uint(8), uint(2), at, (*time.Time)(nil), (*string)(nil), uint(3)).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(uint(55)))
	mock.ExpectCommit()

	sut := NewAttendanceRepository()
	ctx := composables.WithPool(context.Background(), mock)

	err = composables.InTx(ctx, func(txCtx context.Context) error {
		if err := sut.CloseOpen(txCtx, 8, at); err != nil {
			return err
		}
		id, err := sut.Insert(txCtx, &interval.AttendanceInterval{
			EmployeeID:    8,
			StatusTypeID:  2,
			StartDatetime: at,
			ReportedBy:    3,
		})
		if err != nil {
			return err
		}
		assert.Equal(t, uint(55), id)
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepository_InsertFailureRollsBack(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	at := time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE attendance_intervals").
		WithArgs(uint(8), at).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectQuery("INSERT INTO attendance_intervals").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	sut := NewAttendanceRepository()
	ctx := composables.WithPool(context.Background(), mock)

	err = composables.InTx(ctx, func(txCtx context.Context) error {
		if err := sut.CloseOpen(txCtx, 8, at); err != nil {
			return err
		}
		_, err := sut.Insert(txCtx, &interval.AttendanceInterval{
			EmployeeID:    8,
			StatusTypeID:  2,
			StartDatetime: at,
			ReportedBy:    3,
		})
		return err
	})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
