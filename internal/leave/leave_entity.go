package leave

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LeaveType string

const (
	TypeSick   LeaveType = "sick"
	TypeAnnual LeaveType = "annual"
	TypeCasual LeaveType = "casual"
)

func (t LeaveType) Valid() bool {
	return t == TypeSick || t == TypeAnnual || t == TypeCasual
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

type Leave struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RequestedBy uuid.UUID `gorm:"type:uuid;not null;index:idx_leaves_owner_dates;index:idx_leaves_owner_status"`

	LeaveType LeaveType `gorm:"type:varchar(20);not null"`
	Reason    string    `gorm:"type:varchar(500);not null"`
	StartDate time.Time `gorm:"type:date;not null;index:idx_leaves_owner_dates"`
	EndDate   time.Time `gorm:"type:date;not null;index:idx_leaves_owner_dates"`
	TotalDays int       `gorm:"type:int;not null;default:1"`

	Status          Status     `gorm:"type:varchar(20);not null;default:'pending';index:idx_leaves_owner_status"`
	ApprovedBy      *uuid.UUID `gorm:"type:uuid"`
	ApprovedAt      *time.Time
	RejectionReason *string `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index:idx_leaves_deleted_at"`
}

func (Leave) TableName() string {
	return "leave_requests"
}

func (l Leave) IsOwnedBy(id uuid.UUID) bool {
	return l.RequestedBy == id
}
