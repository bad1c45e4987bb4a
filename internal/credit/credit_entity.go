package credit

import (
	"time"

	"github.com/shopspring/decimal"
)

// Credit is the per-employee ledger row: accumulated sick and vacation day
// balances in fractional day units, and the moment accrual was last settled.
// Balances are unbounded in both directions; deductions may drive them
// negative and nothing clamps them.
type Credit struct {
	EmployeeID  string          `gorm:"column:EmployeeID;type:varchar(20);primaryKey"`
	Sick        decimal.Decimal `gorm:"column:sick;type:numeric(10,4);not null"`
	Vacation    decimal.Decimal `gorm:"column:vacation;type:numeric(10,4);not null"`
	LastUpdated time.Time       `gorm:"column:lastUpdated;not null"`
}

func (Credit) TableName() string { return "leavecredits" }
