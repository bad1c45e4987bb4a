package notification

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

//go:generate mockgen -source=notification_repo.go -destination=mock/notification_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, n *Notification) error
	ListUnread(ctx context.Context, employeeID string) ([]Notification, error)
	MarkRead(ctx context.Context, employeeID string) error
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

// Create runs inside the caller's transaction when one is set, so a
// notification row never exists without the application that caused it.
func (r *repository) Create(ctx context.Context, n *Notification) error {
	query := `
        INSERT INTO notification (id, employee_id, status, purpose, created_at)
        VALUES ($1, $2, $3, $4, NOW())
    `
	_, err := r.execer().ExecContext(ctx, query, n.ID, n.EmployeeID, n.Status, n.Purpose)
	return err
}

func (r *repository) ListUnread(ctx context.Context, employeeID string) ([]Notification, error) {
	var items []Notification
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Where("status = ?", StatusUnread).
		Order("created_at DESC").
		Find(&items).Error
	return items, err
}

func (r *repository) MarkRead(ctx context.Context, employeeID string) error {
	return r.db.WithContext(ctx).
		Model(&Notification{}).
		Where("employee_id = ?", employeeID).
		Where("status = ?", StatusUnread).
		Update("status", StatusRead).Error
}

func (r *repository) execer() interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
} {
	if r.tx != nil {
		return r.tx
	}
	return r.sqlDB
}
