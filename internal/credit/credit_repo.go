package credit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AccrualData is what accrual needs from the employee directory.
type AccrualData struct {
	HireDate     time.Time
	PositionTier int
}

//go:generate mockgen -source=credit_repo.go -destination=mock/credit_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	FindByEmployee(ctx context.Context, employeeID string) (*Credit, error)
	Create(ctx context.Context, c *Credit) error
	AddAccrual(ctx context.Context, employeeID string, sick, vacation decimal.Decimal, settledAt time.Time) error
	Deduct(ctx context.Context, employeeID, column string, days decimal.Decimal) error
	AccrualData(ctx context.Context, employeeID string) (*AccrualData, error)
	UsedDays(ctx context.Context, employeeID string) (int64, error)
}

type repository struct {
	db    *gorm.DB
	sqlDB *sql.DB
	tx    *sql.Tx
}

func NewRepository(db *gorm.DB, sqlDB *sql.DB) Repository {
	return &repository{db: db, sqlDB: sqlDB}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, sqlDB: r.sqlDB, tx: tx}
}

func (r *repository) FindByEmployee(ctx context.Context, employeeID string) (*Credit, error) {
	if r.tx != nil {
		return r.findByEmployeeTx(ctx, employeeID)
	}
	var c Credit
	err := r.db.WithContext(ctx).
		First(&c, `"EmployeeID" = ?`, employeeID).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// findByEmployeeTx reads through the transaction so a settlement sees its
// own lazily created row.
func (r *repository) findByEmployeeTx(ctx context.Context, employeeID string) (*Credit, error) {
	query := `SELECT "EmployeeID", sick, vacation, "lastUpdated" FROM leavecredits WHERE "EmployeeID" = $1`
	var c Credit
	err := r.tx.QueryRowContext(ctx, query, employeeID).
		Scan(&c.EmployeeID, &c.Sick, &c.Vacation, &c.LastUpdated)
	if err == sql.ErrNoRows {
		return nil, gorm.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repository) Create(ctx context.Context, c *Credit) error {
	query := `
        INSERT INTO leavecredits ("EmployeeID", sick, vacation, "lastUpdated")
        VALUES ($1, $2, $3, $4)
    `
	_, err := r.execer().ExecContext(ctx, query, c.EmployeeID, c.Sick, c.Vacation, c.LastUpdated)
	return err
}

func (r *repository) AddAccrual(ctx context.Context, employeeID string, sick, vacation decimal.Decimal, settledAt time.Time) error {
	query := `
        UPDATE leavecredits
        SET sick = sick + $2, vacation = vacation + $3, "lastUpdated" = $4
        WHERE "EmployeeID" = $1
    `
	_, err := r.execer().ExecContext(ctx, query, employeeID, sick, vacation, settledAt)
	return err
}

// Deduct subtracts approved days from one balance column. The settlement
// timestamp is deliberately left untouched: spending credit is not an
// accrual event.
func (r *repository) Deduct(ctx context.Context, employeeID, column string, days decimal.Decimal) error {
	switch column {
	case ColumnSick, ColumnVacation:
	default:
		return fmt.Errorf("unknown credit column: %s", column)
	}

	query := fmt.Sprintf(`UPDATE leavecredits SET %s = %s - $2 WHERE "EmployeeID" = $1`, column, column)
	res, err := r.execer().ExecContext(ctx, query, employeeID, days)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *repository) AccrualData(ctx context.Context, employeeID string) (*AccrualData, error) {
	var row struct {
		DateHired  time.Time
		PositionID int
	}
	err := r.db.WithContext(ctx).
		Table("employee").
		Select(`"DateHired" as date_hired, "PositionID" as position_id`).
		Where(`"EmployeeID" = ?`, employeeID).
		Take(&row).Error
	if err != nil {
		return nil, err
	}
	return &AccrualData{HireDate: row.DateHired, PositionTier: row.PositionID}, nil
}

func (r *repository) UsedDays(ctx context.Context, employeeID string) (int64, error) {
	var total sql.NullInt64
	err := r.db.WithContext(ctx).
		Table("leaveapplication").
		Select(`COALESCE(SUM("NumberOfDays"), 0)`).
		Where(`"EmployeeID" = ?`, employeeID).
		Where(`"Status" = ?`, "Approved").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total.Int64, nil
}

func (r *repository) execer() interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
} {
	if r.tx != nil {
		return r.tx
	}
	return r.sqlDB
}
