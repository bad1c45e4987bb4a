package employee

import "time"

const (
	TypeTeaching    = "Teaching"
	TypeNonTeaching = "Non-Teaching"
)

// Employee is the directory record. PositionID doubles as the accrual rate
// tier, which is why employment changes must settle the ledger first.
type Employee struct {
	EmployeeID    string    `gorm:"column:EmployeeID;type:varchar(20);primaryKey"`
	FirstName     string    `gorm:"column:FirstName;type:varchar(50);not null"`
	MiddleName    *string   `gorm:"column:MiddleName;type:varchar(50)"`
	LastName      string    `gorm:"column:LastName;type:varchar(50);not null"`
	Email         string    `gorm:"column:Email;type:varchar(100);not null;uniqueIndex:uq_employee_email"`
	ContactNumber string    `gorm:"column:ContactNumber;type:varchar(20)"`
	DepartmentID  int       `gorm:"column:DepartmentID;not null"`
	PositionID    int       `gorm:"column:PositionID;not null"`
	DateHired     time.Time `gorm:"column:DateHired;type:date;not null"`
	IsTeaching    bool      `gorm:"column:isTeaching;not null"`
}

func (Employee) TableName() string { return "employee" }
