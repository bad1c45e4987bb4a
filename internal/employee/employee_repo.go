package employee

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

//go:generate mockgen -source=employee_repo.go -destination=mock/employee_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	FindByID(ctx context.Context, employeeID string) (*Employee, error)
	UpdateEmployment(ctx context.Context, employeeID string, positionID, departmentID int, isTeaching bool) error
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

func (r *repository) FindByID(ctx context.Context, employeeID string) (*Employee, error) {
	var e Employee
	err := r.db.WithContext(ctx).
		First(&e, `"EmployeeID" = ?`, employeeID).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// UpdateEmployment mutates the rate-affecting fields. It always runs inside
// the employment-change transaction, after the ledger settlement.
func (r *repository) UpdateEmployment(ctx context.Context, employeeID string, positionID, departmentID int, isTeaching bool) error {
	query := `
        UPDATE employee
        SET "PositionID" = $2, "DepartmentID" = $3, "isTeaching" = $4
        WHERE "EmployeeID" = $1
    `
	res, err := r.execer().ExecContext(ctx, query, employeeID, positionID, departmentID, isTeaching)
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

func (r *repository) execer() interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
} {
	if r.tx != nil {
		return r.tx
	}
	return r.sqlDB
}
