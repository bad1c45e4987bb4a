package leave

import "time"

const (
	StatusPending  = "Pending"
	StatusApproved = "Approved"
	StatusRejected = "Rejected"
)

// Application is a single leave request. The LeaveID is a 6-digit numeric
// string allocated at submission. Status only ever moves from Pending to one
// of the terminal values, and only through the approval workflow.
type Application struct {
	LeaveID      string    `gorm:"column:LeaveID;type:char(6);primaryKey"`
	EmployeeID   string    `gorm:"column:EmployeeID;type:varchar(20);not null;index:idx_leave_employee"`
	LeaveTypeID  int       `gorm:"column:LeaveTypeID;not null"`
	StartDate    time.Time `gorm:"column:StartDate;type:date;not null"`
	EndDate      time.Time `gorm:"column:EndDate;type:date;not null"`
	NumberOfDays int       `gorm:"column:NumberOfDays;not null"`
	Reason       string    `gorm:"column:Reason;type:text"`
	Attachment   *string   `gorm:"column:Attachment;type:varchar(255)"`
	Status       string    `gorm:"column:Status;type:varchar(10);not null;default:'Pending';index:idx_leave_status"`
	DateApplied  time.Time `gorm:"column:DateApplied;type:date;not null"`
}

func (Application) TableName() string { return "leaveapplication" }

// Type is a row of the leavetype lookup table. Only the "Sick" and
// "Vacation" types are backed by credit balances.
type Type struct {
	LeaveTypeID int    `gorm:"column:LeaveTypeID;primaryKey"`
	TypeName    string `gorm:"column:TypeName;type:varchar(50);not null"`
}

func (Type) TableName() string { return "leavetype" }

func IsTerminal(status string) bool {
	return status == StatusApproved || status == StatusRejected
}
