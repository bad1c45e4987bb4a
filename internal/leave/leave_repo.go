package leave

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

//go:generate mockgen -source=leave_repo.go -destination=mock/leave_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Insert(ctx context.Context, app *Application) error
	FindByID(ctx context.Context, leaveID string) (*Application, error)
	FindByEmployee(ctx context.Context, employeeID string) ([]Application, error)
	FindByStatus(ctx context.Context, status string) ([]Application, error)
	UpdateStatus(ctx context.Context, leaveID, status string) error
	StatusCounts(ctx context.Context) (map[string]int64, error)
	TypeName(ctx context.Context, leaveTypeID int) (string, error)
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

// Insert writes the application inside the caller's transaction when one is
// set. The primary key constraint is the uniqueness guard for allocated IDs;
// callers retry on a unique violation.
func (r *repository) Insert(ctx context.Context, app *Application) error {
	query := `
        INSERT INTO leaveapplication (
            "LeaveID", "EmployeeID", "LeaveTypeID", "StartDate", "EndDate",
            "NumberOfDays", "Reason", "Attachment", "Status", "DateApplied"
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    `
	_, err := r.execer().ExecContext(
		ctx, query,
		app.LeaveID, app.EmployeeID, app.LeaveTypeID, app.StartDate, app.EndDate,
		app.NumberOfDays, app.Reason, app.Attachment, app.Status, app.DateApplied,
	)
	return err
}

func (r *repository) FindByID(ctx context.Context, leaveID string) (*Application, error) {
	var app Application
	err := r.db.WithContext(ctx).
		First(&app, `"LeaveID" = ?`, leaveID).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *repository) FindByEmployee(ctx context.Context, employeeID string) ([]Application, error) {
	var apps []Application
	err := r.db.WithContext(ctx).
		Where(`"EmployeeID" = ?`, employeeID).
		Order(`"DateApplied" DESC`).
		Find(&apps).Error
	return apps, err
}

func (r *repository) FindByStatus(ctx context.Context, status string) ([]Application, error) {
	var apps []Application
	err := r.db.WithContext(ctx).
		Where(`"Status" = ?`, status).
		Order(`"DateApplied" DESC`).
		Find(&apps).Error
	return apps, err
}

// UpdateStatus is the transition primitive. It is only reachable through the
// approval workflow's transaction; the leave service deliberately exposes no
// operation that calls it.
func (r *repository) UpdateStatus(ctx context.Context, leaveID, status string) error {
	query := `UPDATE leaveapplication SET "Status" = $2 WHERE "LeaveID" = $1`
	res, err := r.execer().ExecContext(ctx, query, leaveID, status)
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

func (r *repository) StatusCounts(ctx context.Context) (map[string]int64, error) {
	type row struct {
		Status string
		Total  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&Application{}).
		Select(`"Status" as status, COUNT(*) as total`).
		Group(`"Status"`).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Total
	}
	return counts, nil
}

func (r *repository) TypeName(ctx context.Context, leaveTypeID int) (string, error) {
	var name string
	err := r.db.WithContext(ctx).
		Model(&Type{}).
		Select(`"TypeName"`).
		Where(`"LeaveTypeID" = ?`, leaveTypeID).
		Scan(&name).Error
	return name, err
}

func (r *repository) execer() interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
} {
	if r.tx != nil {
		return r.tx
	}
	return r.sqlDB
}
