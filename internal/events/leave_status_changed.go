package events

import "time"

const (
	LeaveStatusChangedTopic = "worksync.leave.status.v1"
	LeaveStatusChangedType  = "leave.status_changed"
	LeaveAggregateType      = "leave_request"
)

type LeaveStatusChangedEvent struct {
	EventType       string    `json:"event_type"`
	LeaveID         string    `json:"leave_id"`
	EmployeeID      string    `json:"employee_id"`
	LeaveType       string    `json:"leave_type"`
	StartDate       string    `json:"start_date"`
	EndDate         string    `json:"end_date"`
	TotalDays       int       `json:"total_days"`
	Status          string    `json:"status"`
	RejectionReason *string   `json:"rejection_reason,omitempty"`
	ChangedBy       string    `json:"changed_by"`
	OccurredAt      time.Time `json:"occurred_at"`
}
