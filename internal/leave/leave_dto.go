package leave

// Create and update bodies carry no binding tags: the eligibility gate
// produces the field messages itself.
type CreateLeaveRequest struct {
	LeaveType string `json:"leaveType"`
	Reason    string `json:"reason"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

func (r CreateLeaveRequest) input() LeaveInput {
	return LeaveInput{
		LeaveType: r.LeaveType,
		Reason:    r.Reason,
		StartDate: r.StartDate,
		EndDate:   r.EndDate,
	}
}

// UpdateLeaveRequest patches only the fields present in the body.
type UpdateLeaveRequest struct {
	LeaveType *string `json:"leaveType"`
	Reason    *string `json:"reason"`
	StartDate *string `json:"startDate"`
	EndDate   *string `json:"endDate"`
}

// merge overlays the patch on the stored leave.
func (r UpdateLeaveRequest) merge(l Leave) LeaveInput {
	in := LeaveInput{
		LeaveType: string(l.LeaveType),
		Reason:    l.Reason,
		StartDate: FormatDate(l.StartDate),
		EndDate:   FormatDate(l.EndDate),
	}
	if r.LeaveType != nil {
		in.LeaveType = *r.LeaveType
	}
	if r.Reason != nil {
		in.Reason = *r.Reason
	}
	if r.StartDate != nil {
		in.StartDate = *r.StartDate
	}
	if r.EndDate != nil {
		in.EndDate = *r.EndDate
	}
	return in
}

type ChangeStatusRequest struct {
	Status          string  `json:"sts" binding:"required,oneof=approved rejected pending cancelled"`
	RejectionReason *string `json:"rejectionReason" binding:"omitempty,max=500"`
}

type ListQuery struct {
	EmployeeID string
	Status     string
	Page       int
	PageSize   int
}

type LeaveResponse struct {
	ID              string  `json:"id"`
	LeaveType       string  `json:"leaveType"`
	Reason          string  `json:"reason"`
	StartDate       string  `json:"startDate"`
	EndDate         string  `json:"endDate"`
	TotalDays       int     `json:"totalDays"`
	Status          string  `json:"status"`
	RequestedBy     string  `json:"requestedBy"`
	ApprovedBy      *string `json:"approvedBy"`
	ApprovedAt      *string `json:"approvedAt,omitempty"`
	RejectionReason *string `json:"rejectionReason,omitempty"`
	CreatedAt       string  `json:"createdAt"`
	UpdatedAt       string  `json:"updatedAt"`
}

type BalanceItem struct {
	LeaveType   string `json:"leaveType"`
	Entitlement int    `json:"entitlement"`
	Used        int    `json:"used"`
	Remaining   int    `json:"remaining"`
	Usage       string `json:"usage"`
}

type BalanceResponse struct {
	Year           int           `json:"year"`
	Items          []BalanceItem `json:"items"`
	TotalUsed      int           `json:"totalUsed"`
	TotalAllowed   int           `json:"totalAllowed"`
	TotalRemaining int           `json:"totalRemaining"`
}
