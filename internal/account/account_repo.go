package account

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

//go:generate mockgen -source=account_repo.go -destination=mock/account_repo_mock.go -package=mock
type Repository interface {
	// GetRole resolves the role for an employee. A missing account returns
	// gorm.ErrRecordNotFound; callers must treat that as an authorization
	// failure, never as a default role.
	GetRole(ctx context.Context, employeeID string) (string, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetRole(ctx context.Context, employeeID string) (string, error) {
	var role string
	err := r.db.WithContext(ctx).
		Model(&Account{}).
		Select(`"Role"`).
		Where(`"EmployeeID" = ?`, employeeID).
		Scan(&role).Error
	if err != nil {
		return "", err
	}
	if role == "" {
		return "", gorm.ErrRecordNotFound
	}
	return role, nil
}

// IsNotFound wraps the storage-level sentinel so callers outside the package
// do not import gorm just for this check.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
