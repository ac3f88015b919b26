package attendance

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"worksync/internal/employee"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DailyCloser finishes an attendance day: open records get an automatic
// clock-out and employees who never showed up get an ABSENT row.
type DailyCloser struct {
	db        *sql.DB
	repo      Repository
	employees employee.Repository
	schedule  Schedule
	now       func() time.Time
	logger    *zap.Logger
}

func NewDailyCloser(db *sql.DB, repo Repository, employees employee.Repository, schedule Schedule, logger ...*zap.Logger) *DailyCloser {
	l := zap.L().Named("attendance.daily_close")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.daily_close")
	}
	return &DailyCloser{
		db:        db,
		repo:      repo,
		employees: employees,
		schedule:  schedule,
		now:       time.Now,
		logger:    l,
	}
}

// Run closes the current office day.
func (d *DailyCloser) Run(ctx context.Context) error {
	day := d.schedule.Day(d.now())

	closed, err := d.AutoCheckout(ctx, day)
	if err != nil {
		return fmt.Errorf("auto checkout %s: %w", day.Format(dateLayout), err)
	}

	absent, err := d.MarkAbsent(ctx, day)
	if err != nil {
		return fmt.Errorf("mark absent %s: %w", day.Format(dateLayout), err)
	}

	d.logger.Info("daily close finished",
		zap.String("day", day.Format(dateLayout)),
		zap.Int("auto_checked_out", closed),
		zap.Int64("marked_absent", absent),
	)
	return nil
}

// AutoCheckout does nothing until the checkout time plus grace has passed.
func (d *DailyCloser) AutoCheckout(ctx context.Context, day time.Time) (int, error) {
	if !d.schedule.CheckoutDue(day, d.now()) {
		d.logger.Debug("auto checkout not due", zap.String("day", day.Format(dateLayout)))
		return 0, nil
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	qtx := d.repo.WithTx(tx)

	open, err := qtx.FindOpen(ctx, day)
	if err != nil {
		return 0, err
	}

	for i := range open {
		at := d.schedule.AutoCheckoutAt(open[i])
		open[i].ClockOut = &at
		open[i].AutoCheckedOut = true
		if err := qtx.Update(ctx, &open[i]); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(open), nil
}

// MarkAbsent skips weekends. Employees on approved leave are not absent.
func (d *DailyCloser) MarkAbsent(ctx context.Context, day time.Time) (int64, error) {
	if !IsWorkday(day) {
		d.logger.Debug("mark absent skipped on weekend", zap.String("day", day.Format(dateLayout)))
		return 0, nil
	}

	active, err := d.employees.FindActive(ctx)
	if err != nil {
		return 0, err
	}
	if len(active) == 0 {
		return 0, nil
	}

	recorded, err := d.repo.RecordedEmployeeIDs(ctx, day)
	if err != nil {
		return 0, err
	}
	onLeave, err := d.repo.EmployeesOnApprovedLeave(ctx, day)
	if err != nil {
		return 0, err
	}

	ids := make([]uuid.UUID, len(active))
	for i, e := range active {
		ids[i] = e.ID
	}

	missing := PlanAbsences(ids, recorded, onLeave)
	if len(missing) == 0 {
		return 0, nil
	}

	rows := make([]Attendance, len(missing))
	for i, id := range missing {
		rows[i] = Attendance{
			ID:             uuid.New(),
			EmployeeID:     id,
			AttendanceDate: day,
			Status:         StatusAbsent,
		}
	}
	return d.repo.CreateAbsences(ctx, rows)
}
