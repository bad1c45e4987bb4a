package approval

type DecideRequest struct {
	Decision string  `json:"decision" binding:"required,oneof=Approved Rejected"`
	Remarks  *string `json:"remarks"`
}

type ApprovalResponse struct {
	ApprovalID   string  `json:"approval_id"`
	LeaveID      string  `json:"leave_id"`
	ApproverID   string  `json:"approver_id"`
	ApproverRole string  `json:"approver_role"`
	Decision     string  `json:"decision"`
	Remarks      *string `json:"remarks,omitempty"`
	DecidedAt    string  `json:"decided_at"`
}
