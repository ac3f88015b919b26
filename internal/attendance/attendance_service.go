package attendance

import (
	"context"
	"database/sql"
	"errors"
	"time"

	attendanceerrors "worksync/internal/attendance/errors"
	"worksync/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

//go:generate mockgen -source=attendance_service.go -destination=mock/attendance_service_mock.go -package=mock
type Service interface {
	ClockIn(ctx context.Context, employeeID uuid.UUID, req ClockInRequest) (AttendanceResponse, error)
	ClockOut(ctx context.Context, employeeID uuid.UUID, req ClockOutRequest) (AttendanceResponse, error)
	GetAll(ctx context.Context, actorID uuid.UUID, canReadAll bool, q ListQuery) ([]AttendanceResponse, int64, error)
}

type service struct {
	db       *sql.DB
	repo     Repository
	schedule Schedule
	now      func() time.Time
	logger   *zap.Logger
}

func NewService(db *sql.DB, repo Repository, schedule Schedule, logger ...*zap.Logger) Service {
	l := zap.L().Named("attendance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.service")
	}
	return &service{
		db:       db,
		repo:     repo,
		schedule: schedule,
		now:      time.Now,
		logger:   l,
	}
}

func (s *service) ClockIn(ctx context.Context, employeeID uuid.UUID, req ClockInRequest) (AttendanceResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	now := s.now().UTC()
	day := s.schedule.Day(now)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("clock in begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return AttendanceResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	existing, err := qtx.FindByEmployeeAndDate(ctx, employeeID.String(), day)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("clock in lookup failed", zap.String("request_id", rid), zap.Error(err))
		return AttendanceResponse{}, err
	}
	if existing != nil {
		s.logger.Warn("clock in rejected",
			zap.String("request_id", rid),
			zap.String("employee_id", employeeID.String()),
			zap.String("status", string(existing.Status)),
		)
		return AttendanceResponse{}, attendanceerrors.ErrAlreadyClockedIn
	}

	row := &Attendance{
		ID:             uuid.New(),
		EmployeeID:     employeeID,
		AttendanceDate: day,
		ClockIn:        &now,
		Status:         s.schedule.StatusFor(now),
		Notes:          req.Notes,
	}

	if err := qtx.Create(ctx, row); err != nil {
		mapped := mapRepositoryError(err)
		if mapped == err {
			s.logger.Error("clock in persist failed", zap.String("request_id", rid), zap.Error(err))
		}
		return AttendanceResponse{}, mapped
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("clock in commit failed", zap.String("request_id", rid), zap.Error(err))
		return AttendanceResponse{}, err
	}

	s.logger.Info("clock in success",
		zap.String("request_id", rid),
		zap.String("employee_id", employeeID.String()),
		zap.String("status", string(row.Status)),
	)
	return mapToResponse(*row), nil
}

func (s *service) ClockOut(ctx context.Context, employeeID uuid.UUID, req ClockOutRequest) (AttendanceResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	now := s.now().UTC()
	day := s.schedule.Day(now)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("clock out begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return AttendanceResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	row, err := qtx.FindByEmployeeAndDate(ctx, employeeID.String(), day)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AttendanceResponse{}, attendanceerrors.ErrNotClockedIn
		}
		s.logger.Error("clock out lookup failed", zap.String("request_id", rid), zap.Error(err))
		return AttendanceResponse{}, err
	}
	if row.ClockIn == nil {
		return AttendanceResponse{}, attendanceerrors.ErrNotClockedIn
	}
	if row.ClockOut != nil {
		return AttendanceResponse{}, attendanceerrors.ErrAlreadyClockedOut
	}

	row.ClockOut = &now
	if req.Notes != nil {
		row.Notes = req.Notes
	}

	if err := qtx.Update(ctx, row); err != nil {
		s.logger.Error("clock out persist failed", zap.String("request_id", rid), zap.Error(err))
		return AttendanceResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("clock out commit failed", zap.String("request_id", rid), zap.Error(err))
		return AttendanceResponse{}, err
	}

	s.logger.Info("clock out success", zap.String("request_id", rid), zap.String("employee_id", employeeID.String()))
	return mapToResponse(*row), nil
}

func (s *service) GetAll(ctx context.Context, actorID uuid.UUID, canReadAll bool, q ListQuery) ([]AttendanceResponse, int64, error) {
	filter := ListFilter{EmployeeID: actorID.String()}
	if canReadAll {
		filter.EmployeeID = q.EmployeeID
		if filter.EmployeeID != "" {
			if _, err := uuid.Parse(filter.EmployeeID); err != nil {
				return nil, 0, attendanceerrors.ErrInvalidID
			}
		}
	}

	var err error
	if filter.From, err = parseOptionalDate(q.From); err != nil {
		return nil, 0, err
	}
	if filter.To, err = parseOptionalDate(q.To); err != nil {
		return nil, 0, err
	}

	page, pageSize := normalizePage(q.Page, q.PageSize)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize

	rows, total, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("get all attendances failed", zap.Error(err))
		return nil, 0, err
	}

	res := make([]AttendanceResponse, len(rows))
	for i, r := range rows {
		res[i] = mapToResponse(r)
	}
	return res, total, nil
}

func parseOptionalDate(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return nil, attendanceerrors.ErrInvalidDate
	}
	return &t, nil
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	v := t.UTC().Format(time.RFC3339)
	return &v
}

func mapToResponse(a Attendance) AttendanceResponse {
	resp := AttendanceResponse{
		ID:             a.ID.String(),
		EmployeeID:     a.EmployeeID.String(),
		Date:           a.AttendanceDate.Format(dateLayout),
		ClockIn:        formatTime(a.ClockIn),
		ClockOut:       formatTime(a.ClockOut),
		Status:         string(a.Status),
		AutoCheckedOut: a.AutoCheckedOut,
		Notes:          a.Notes,
	}
	if a.Employee != nil {
		resp.EmployeeName = a.Employee.FullName()
	}
	return resp
}
