package approval

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

// DecisionData is what the deduction step needs about an application.
type DecisionData struct {
	EmployeeID   string
	TypeName     string
	NumberOfDays int
}

//go:generate mockgen -source=approval_repo.go -destination=mock/approval_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Insert(ctx context.Context, a *Approval) error
	FindByLeaveID(ctx context.Context, leaveID string) (*Approval, error)
	DecisionData(ctx context.Context, leaveID string) (*DecisionData, error)
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

func (r *repository) Insert(ctx context.Context, a *Approval) error {
	query := `
        INSERT INTO leaveapproval (
            "ApprovalID", "LeaveID", "EmployeeApproverID", "ApproverRole",
            "Decision", "Remarks", "DecidedAt"
        ) VALUES ($1, $2, $3, $4, $5, $6, $7)
    `
	_, err := r.execer().ExecContext(
		ctx, query,
		a.ApprovalID, a.LeaveID, a.ApproverID, a.ApproverRole,
		a.Decision, a.Remarks, a.DecidedAt,
	)
	return err
}

func (r *repository) FindByLeaveID(ctx context.Context, leaveID string) (*Approval, error) {
	var a Approval
	err := r.db.WithContext(ctx).
		First(&a, `"LeaveID" = ?`, leaveID).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// DecisionData resolves the employee, leave type name and day count for an
// application, reading through the open transaction so the deduction sees
// the same row the transition touched.
func (r *repository) DecisionData(ctx context.Context, leaveID string) (*DecisionData, error) {
	query := `
        SELECT la."EmployeeID", lt."TypeName", la."NumberOfDays"
        FROM leaveapplication la
        JOIN leavetype lt ON la."LeaveTypeID" = lt."LeaveTypeID"
        WHERE la."LeaveID" = $1
    `
	var d DecisionData
	err := r.queryer().QueryRowContext(ctx, query, leaveID).
		Scan(&d.EmployeeID, &d.TypeName, &d.NumberOfDays)
	if err == sql.ErrNoRows {
		return nil, gorm.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *repository) execer() interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
} {
	if r.tx != nil {
		return r.tx
	}
	return r.sqlDB
}

func (r *repository) queryer() interface {
	QueryRowContext(context.Context, string, ...any) *sql.Row
} {
	if r.tx != nil {
		return r.tx
	}
	return r.sqlDB
}
