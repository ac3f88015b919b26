package attendance

type ClockInRequest struct {
	Notes *string `json:"notes" binding:"omitempty,max=500"`
}

type ClockOutRequest struct {
	Notes *string `json:"notes" binding:"omitempty,max=500"`
}

type ListQuery struct {
	EmployeeID string
	From       string
	To         string
	Page       int
	PageSize   int
}

type AttendanceResponse struct {
	ID             string  `json:"id"`
	EmployeeID     string  `json:"employeeId"`
	EmployeeName   string  `json:"employeeName,omitempty"`
	Date           string  `json:"date"`
	ClockIn        *string `json:"clockIn"`
	ClockOut       *string `json:"clockOut"`
	Status         string  `json:"status"`
	AutoCheckedOut bool    `json:"autoCheckedOut"`
	Notes          *string `json:"notes,omitempty"`
}
