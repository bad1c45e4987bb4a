package credit

import "github.com/shopspring/decimal"

type Snapshot struct {
	EmployeeID  string          `json:"employee_id"`
	Sick        decimal.Decimal `json:"sick"`
	Vacation    decimal.Decimal `json:"vacation"`
	LastUpdated string          `json:"last_updated"`
}

type UsedDaysResponse struct {
	EmployeeID string `json:"employee_id"`
	UsedDays   int64  `json:"used_days"`
}
