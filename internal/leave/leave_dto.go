package leave

type SubmitLeaveRequest struct {
	EmployeeID  string  `json:"employee_id" binding:"required"`
	LeaveTypeID int     `json:"leave_type_id" binding:"required"`
	StartDate   string  `json:"start_date" binding:"required"`
	Days        int     `json:"days" binding:"required,min=1"`
	Reason      string  `json:"reason" binding:"required"`
	Attachment  *string `json:"attachment"`
}

type ApplicationResponse struct {
	LeaveID      string  `json:"leave_id"`
	EmployeeID   string  `json:"employee_id"`
	LeaveTypeID  int     `json:"leave_type_id"`
	StartDate    string  `json:"start_date"`
	EndDate      string  `json:"end_date"`
	NumberOfDays int     `json:"number_of_days"`
	Reason       string  `json:"reason"`
	Attachment   *string `json:"attachment,omitempty"`
	Status       string  `json:"status"`
	DateApplied  string  `json:"date_applied"`
}

type StatusCountsResponse struct {
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
}
