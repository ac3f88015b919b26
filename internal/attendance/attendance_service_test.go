package attendance_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"worksync/internal/attendance"
	attendanceerrors "worksync/internal/attendance/errors"
	"worksync/internal/attendance/mock"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

var (
	today     = time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
	onTime    = time.Date(2026, time.March, 10, 9, 10, 0, 0, time.UTC)
	afterWork = time.Date(2026, time.March, 10, 17, 45, 0, 0, time.UTC)
)

type serviceDeps struct {
	svc     attendance.Service
	repo    *mock.MockRepository
	sqlMock sqlmock.Sqlmock
}

func setupServiceTest(t *testing.T, now time.Time) *serviceDeps {
	t.Helper()

	ctrl := gomock.NewController(t)
	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := mock.NewMockRepository(ctrl)
	svc := attendance.NewService(db, repo, attendance.DefaultSchedule())
	attendance.SetClock(svc, func() time.Time { return now })

	return &serviceDeps{svc: svc, repo: repo, sqlMock: sqlMock}
}

func expectTx(mock sqlmock.Sqlmock, commit bool) {
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func TestAttendanceService_ClockIn(t *testing.T) {
	ctx := context.Background()
	employeeID := uuid.New()

	t.Run("on time is present", func(t *testing.T) {
		d := setupServiceTest(t, onTime)
		expectTx(d.sqlMock, true)

		d.repo.EXPECT().WithTx(gomock.Any()).Return(d.repo)
		d.repo.EXPECT().FindByEmployeeAndDate(ctx, employeeID.String(), today).Return(nil, gorm.ErrRecordNotFound)
		d.repo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, a *attendance.Attendance) error {
			assert.Equal(t, employeeID, a.EmployeeID)
			assert.Equal(t, today, a.AttendanceDate)
			assert.Equal(t, attendance.StatusPresent, a.Status)
			assert.Nil(t, a.ClockOut)
			return nil
		})

		resp, err := d.svc.ClockIn(ctx, employeeID, attendance.ClockInRequest{})
		assert.NoError(t, err)
		assert.Equal(t, "PRESENT", resp.Status)
		assert.Equal(t, "2026-03-10", resp.Date)
		assert.Equal(t, "2026-03-10T09:10:00Z", *resp.ClockIn)
		assert.Nil(t, resp.ClockOut)
		assert.NoError(t, d.sqlMock.ExpectationsWereMet())
	})

	t.Run("after the late minute is late", func(t *testing.T) {
		d := setupServiceTest(t, time.Date(2026, time.March, 10, 9, 16, 0, 0, time.UTC))
		expectTx(d.sqlMock, true)

		d.repo.EXPECT().WithTx(gomock.Any()).Return(d.repo)
		d.repo.EXPECT().FindByEmployeeAndDate(ctx, employeeID.String(), today).Return(nil, gorm.ErrRecordNotFound)
		d.repo.EXPECT().Create(ctx, gomock.Any()).Return(nil)

		resp, err := d.svc.ClockIn(ctx, employeeID, attendance.ClockInRequest{})
		assert.NoError(t, err)
		assert.Equal(t, "LATE", resp.Status)
	})

	t.Run("second clock in the same day", func(t *testing.T) {
		d := setupServiceTest(t, onTime)
		expectTx(d.sqlMock, false)

		earlier := onTime.Add(-time.Hour)
		d.repo.EXPECT().WithTx(gomock.Any()).Return(d.repo)
		d.repo.EXPECT().FindByEmployeeAndDate(ctx, employeeID.String(), today).Return(&attendance.Attendance{
			ID: uuid.New(), EmployeeID: employeeID, AttendanceDate: today, ClockIn: &earlier, Status: attendance.StatusPresent,
		}, nil)

		_, err := d.svc.ClockIn(ctx, employeeID, attendance.ClockInRequest{})
		assert.ErrorIs(t, err, attendanceerrors.ErrAlreadyClockedIn)
		assert.NoError(t, d.sqlMock.ExpectationsWereMet())
	})

	t.Run("concurrent insert hits the unique index", func(t *testing.T) {
		d := setupServiceTest(t, onTime)
		expectTx(d.sqlMock, false)

		d.repo.EXPECT().WithTx(gomock.Any()).Return(d.repo)
		d.repo.EXPECT().FindByEmployeeAndDate(ctx, employeeID.String(), today).Return(nil, gorm.ErrRecordNotFound)
		d.repo.EXPECT().Create(ctx, gomock.Any()).Return(&pgconn.PgError{Code: "23505"})

		_, err := d.svc.ClockIn(ctx, employeeID, attendance.ClockInRequest{})
		assert.ErrorIs(t, err, attendanceerrors.ErrAlreadyClockedIn)
	})

	t.Run("lookup error", func(t *testing.T) {
		d := setupServiceTest(t, onTime)
		expectTx(d.sqlMock, false)

		dbErr := errors.New("db down")
		d.repo.EXPECT().WithTx(gomock.Any()).Return(d.repo)
		d.repo.EXPECT().FindByEmployeeAndDate(ctx, employeeID.String(), today).Return(nil, dbErr)

		_, err := d.svc.ClockIn(ctx, employeeID, attendance.ClockInRequest{})
		assert.ErrorIs(t, err, dbErr)
	})
}

func TestAttendanceService_ClockOut(t *testing.T) {
	ctx := context.Background()
	employeeID := uuid.New()

	open := func() *attendance.Attendance {
		in := onTime
		return &attendance.Attendance{
			ID: uuid.New(), EmployeeID: employeeID, AttendanceDate: today, ClockIn: &in, Status: attendance.StatusPresent,
		}
	}

	t.Run("success", func(t *testing.T) {
		d := setupServiceTest(t, afterWork)
		expectTx(d.sqlMock, true)

		note := "left for a client visit"
		d.repo.EXPECT().WithTx(gomock.Any()).Return(d.repo)
		d.repo.EXPECT().FindByEmployeeAndDate(ctx, employeeID.String(), today).Return(open(), nil)
		d.repo.EXPECT().Update(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, a *attendance.Attendance) error {
			assert.Equal(t, afterWork, *a.ClockOut)
			assert.False(t, a.AutoCheckedOut)
			assert.Equal(t, note, *a.Notes)
			return nil
		})

		resp, err := d.svc.ClockOut(ctx, employeeID, attendance.ClockOutRequest{Notes: &note})
		assert.NoError(t, err)
		assert.Equal(t, "2026-03-10T17:45:00Z", *resp.ClockOut)
		assert.NoError(t, d.sqlMock.ExpectationsWereMet())
	})

	t.Run("never clocked in", func(t *testing.T) {
		d := setupServiceTest(t, afterWork)
		expectTx(d.sqlMock, false)

		d.repo.EXPECT().WithTx(gomock.Any()).Return(d.repo)
		d.repo.EXPECT().FindByEmployeeAndDate(ctx, employeeID.String(), today).Return(nil, gorm.ErrRecordNotFound)

		_, err := d.svc.ClockOut(ctx, employeeID, attendance.ClockOutRequest{})
		assert.ErrorIs(t, err, attendanceerrors.ErrNotClockedIn)
	})

	t.Run("absent row cannot be clocked out", func(t *testing.T) {
		d := setupServiceTest(t, afterWork)
		expectTx(d.sqlMock, false)

		d.repo.EXPECT().WithTx(gomock.Any()).Return(d.repo)
		d.repo.EXPECT().FindByEmployeeAndDate(ctx, employeeID.String(), today).Return(&attendance.Attendance{
			ID: uuid.New(), EmployeeID: employeeID, AttendanceDate: today, Status: attendance.StatusAbsent,
		}, nil)

		_, err := d.svc.ClockOut(ctx, employeeID, attendance.ClockOutRequest{})
		assert.ErrorIs(t, err, attendanceerrors.ErrNotClockedIn)
	})

	t.Run("already clocked out", func(t *testing.T) {
		d := setupServiceTest(t, afterWork)
		expectTx(d.sqlMock, false)

		row := open()
		out := afterWork.Add(-time.Hour)
		row.ClockOut = &out
		d.repo.EXPECT().WithTx(gomock.Any()).Return(d.repo)
		d.repo.EXPECT().FindByEmployeeAndDate(ctx, employeeID.String(), today).Return(row, nil)

		_, err := d.svc.ClockOut(ctx, employeeID, attendance.ClockOutRequest{})
		assert.ErrorIs(t, err, attendanceerrors.ErrAlreadyClockedOut)
	})
}

func TestAttendanceService_GetAll(t *testing.T) {
	ctx := context.Background()
	actorID := uuid.New()

	t.Run("own records only without read all", func(t *testing.T) {
		d := setupServiceTest(t, onTime)

		d.repo.EXPECT().FindAll(ctx, attendance.ListFilter{EmployeeID: actorID.String(), Offset: 0, Limit: 10}).
			Return([]attendance.Attendance{{
				ID: uuid.New(), EmployeeID: actorID, AttendanceDate: today, Status: attendance.StatusAbsent,
				Employee: &attendance.EmployeeRef{ID: actorID, FirstName: "Dewi", LastName: "Lestari"},
			}}, int64(1), nil)

		res, total, err := d.svc.GetAll(ctx, actorID, false, attendance.ListQuery{EmployeeID: uuid.NewString()})
		assert.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, "Dewi Lestari", res[0].EmployeeName)
		assert.Nil(t, res[0].ClockIn)
	})

	t.Run("read all with filters", func(t *testing.T) {
		d := setupServiceTest(t, onTime)
		target := uuid.NewString()
		from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)

		d.repo.EXPECT().FindAll(ctx, attendance.ListFilter{EmployeeID: target, From: &from, To: &to, Offset: 20, Limit: 20}).
			Return(nil, int64(45), nil)

		_, total, err := d.svc.GetAll(ctx, actorID, true, attendance.ListQuery{
			EmployeeID: target, From: "2026-03-01", To: "2026-03-31", Page: 2, PageSize: 20,
		})
		assert.NoError(t, err)
		assert.Equal(t, int64(45), total)
	})

	t.Run("invalid date", func(t *testing.T) {
		d := setupServiceTest(t, onTime)

		_, _, err := d.svc.GetAll(ctx, actorID, false, attendance.ListQuery{From: "03/01/2026"})
		assert.ErrorIs(t, err, attendanceerrors.ErrInvalidDate)
	})

	t.Run("invalid employee filter", func(t *testing.T) {
		d := setupServiceTest(t, onTime)

		_, _, err := d.svc.GetAll(ctx, actorID, true, attendance.ListQuery{EmployeeID: "nope"})
		assert.ErrorIs(t, err, attendanceerrors.ErrInvalidID)
	})
}
