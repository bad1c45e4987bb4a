package credit

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Monthly accrual rates in days per month, keyed by position tier. The
// yearly entitlements (5/10, 10/15, 15/20 days) are spread over twelve
// months; decimals keep the twelfths exact across repeated accruals.
type Rates struct {
	Sick     decimal.Decimal
	Vacation decimal.Decimal
}

var twelve = decimal.NewFromInt(12)

func perMonth(daysPerYear int64) decimal.Decimal {
	return decimal.NewFromInt(daysPerYear).Div(twelve)
}

var tierRates = map[int]Rates{
	1: {Sick: perMonth(5), Vacation: perMonth(10)},
	2: {Sick: perMonth(10), Vacation: perMonth(15)},
	3: {Sick: perMonth(15), Vacation: perMonth(20)},
	4: {Sick: perMonth(10), Vacation: perMonth(15)},
}

var defaultRates = Rates{Sick: perMonth(5), Vacation: perMonth(10)}

// RatesForTier returns the monthly rates for a position tier, falling back
// to the entry-level rates for unknown tiers.
func RatesForTier(tier int) Rates {
	if r, ok := tierRates[tier]; ok {
		return r
	}
	return defaultRates
}

const (
	ColumnSick     = "sick"
	ColumnVacation = "vacation"
)

// BalanceColumn maps a leave type name to its ledger column. Type names are
// matched by substring, case-insensitively, so "Sick Leave" still lands on
// the sick balance. Types without a balance ("Emergency", "Maternity", ...)
// report ok=false and are approved without any ledger effect.
func BalanceColumn(typeName string) (string, bool) {
	lower := strings.ToLower(typeName)
	switch {
	case strings.Contains(lower, "sick"):
		return ColumnSick, true
	case strings.Contains(lower, "vacation"):
		return ColumnVacation, true
	default:
		return "", false
	}
}
