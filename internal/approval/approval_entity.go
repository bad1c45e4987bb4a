package approval

import "time"

// Approval is the immutable audit record of a decision. Exactly one exists
// per decided application, enforced by a unique constraint on LeaveID, and
// no code path updates a row after insertion.
type Approval struct {
	ApprovalID   string    `gorm:"column:ApprovalID;type:char(10);primaryKey"`
	LeaveID      string    `gorm:"column:LeaveID;type:char(6);not null;uniqueIndex:uq_approval_leave"`
	ApproverID   string    `gorm:"column:EmployeeApproverID;type:varchar(20);not null"`
	ApproverRole string    `gorm:"column:ApproverRole;type:varchar(20);not null"`
	Decision     string    `gorm:"column:Decision;type:varchar(10);not null"`
	Remarks      *string   `gorm:"column:Remarks;type:text"`
	DecidedAt    time.Time `gorm:"column:DecidedAt;not null"`
}

func (Approval) TableName() string { return "leaveapproval" }
