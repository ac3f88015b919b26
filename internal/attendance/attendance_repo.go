package attendance

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const dateLayout = "2006-01-02"

type ListFilter struct {
	EmployeeID string
	From       *time.Time
	To         *time.Time
	Offset     int
	Limit      int
}

//go:generate mockgen -source=attendance_repo.go -destination=mock/attendance_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, a *Attendance) error
	FindByEmployeeAndDate(ctx context.Context, employeeID string, day time.Time) (*Attendance, error)
	FindAll(ctx context.Context, filter ListFilter) ([]Attendance, int64, error)
	Update(ctx context.Context, a *Attendance) error
	FindOpen(ctx context.Context, day time.Time) ([]Attendance, error)
	RecordedEmployeeIDs(ctx context.Context, day time.Time) ([]uuid.UUID, error)
	EmployeesOnApprovedLeave(ctx context.Context, day time.Time) ([]uuid.UUID, error)
	CreateAbsences(ctx context.Context, rows []Attendance) (int64, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) conn(ctx context.Context) *gorm.DB {
	db := r.db.WithContext(ctx)
	if r.tx != nil {
		db.Statement.ConnPool = r.tx
	}
	return db
}

func (r *repository) Create(ctx context.Context, a *Attendance) error {
	return r.conn(ctx).Create(a).Error
}

func (r *repository) FindByEmployeeAndDate(ctx context.Context, employeeID string, day time.Time) (*Attendance, error) {
	var a Attendance
	err := r.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("employee_id = ?", employeeID).
		Where("attendance_date = ?", day.Format(dateLayout)).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repository) FindAll(ctx context.Context, filter ListFilter) ([]Attendance, int64, error) {
	db := r.conn(ctx).Model(&Attendance{})
	if filter.EmployeeID != "" {
		db = db.Where("employee_id = ?", filter.EmployeeID)
	}
	if filter.From != nil {
		db = db.Where("attendance_date >= ?", filter.From.Format(dateLayout))
	}
	if filter.To != nil {
		db = db.Where("attendance_date <= ?", filter.To.Format(dateLayout))
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []Attendance
	q := db.Preload("Employee").Order("attendance_date DESC").Order("clock_in DESC")
	if filter.Limit > 0 {
		q = q.Offset(filter.Offset).Limit(filter.Limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *repository) Update(ctx context.Context, a *Attendance) error {
	return r.conn(ctx).Omit("Employee").Save(a).Error
}

func (r *repository) FindOpen(ctx context.Context, day time.Time) ([]Attendance, error) {
	var rows []Attendance
	err := r.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("attendance_date = ?", day.Format(dateLayout)).
		Where("clock_in IS NOT NULL AND clock_out IS NULL").
		Find(&rows).Error
	return rows, err
}

func (r *repository) RecordedEmployeeIDs(ctx context.Context, day time.Time) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.conn(ctx).
		Model(&Attendance{}).
		Where("attendance_date = ?", day.Format(dateLayout)).
		Pluck("employee_id", &ids).Error
	return ids, err
}

func (r *repository) EmployeesOnApprovedLeave(ctx context.Context, day time.Time) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	d := day.Format(dateLayout)
	err := r.conn(ctx).
		Table("leave_requests").
		Distinct("requested_by").
		Where("deleted_at IS NULL").
		Where("status = ?", "approved").
		Where("start_date <= ? AND end_date >= ?", d, d).
		Pluck("requested_by", &ids).Error
	return ids, err
}

// CreateAbsences skips employees that got a row in the meantime.
func (r *repository) CreateAbsences(ctx context.Context, rows []Attendance) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	res := r.conn(ctx).
		Omit("Employee").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "employee_id"}, {Name: "attendance_date"}},
			DoNothing: true,
		}).
		Create(&rows)
	return res.RowsAffected, res.Error
}
