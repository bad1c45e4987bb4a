package employee

import (
	"context"
	"database/sql"
	"errors"

	"go-leave/internal/account"
	"go-leave/internal/calendar"
	"go-leave/internal/credit"
	employeeerrors "go-leave/internal/employee/errors"
	"go-leave/internal/shared/contextutil"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=employee_service.go -destination=mock/employee_service_mock.go -package=mock
type Service interface {
	GetByID(ctx context.Context, employeeID string) (EmployeeResponse, error)
	// ChangeEmployment settles accrued credit at the old position's rates,
	// then applies the new position, department and employment type, all in
	// one transaction. Settling first keeps credit earned before the change
	// from being computed at the new rate.
	ChangeEmployment(ctx context.Context, actorID, targetID string, req ChangeEmploymentRequest) (EmployeeResponse, error)
}

type service struct {
	db       *sql.DB
	repo     Repository
	accounts account.Repository
	credits  credit.Service
	logger   *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	accounts account.Repository,
	credits credit.Service,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("employee.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.service")
	}
	return &service{
		db:       db,
		repo:     repo,
		accounts: accounts,
		credits:  credits,
		logger:   l,
	}
}

func (s *service) GetByID(ctx context.Context, employeeID string) (EmployeeResponse, error) {
	e, err := s.repo.FindByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return EmployeeResponse{}, employeeerrors.ErrEmployeeNotFound
		}
		return EmployeeResponse{}, err
	}
	return mapToResponse(*e), nil
}

func (s *service) ChangeEmployment(ctx context.Context, actorID, targetID string, req ChangeEmploymentRequest) (EmployeeResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("change employment requested",
		zap.String("request_id", rid),
		zap.String("actor_id", actorID),
		zap.String("target_id", targetID),
		zap.Int("position_id", req.PositionID),
	)

	// Failure to resolve the actor's role is a denial, not a pass-through.
	role, err := s.accounts.GetRole(ctx, actorID)
	if err != nil {
		s.logger.Warn("change employment actor role unresolved",
			zap.String("actor_id", actorID),
			zap.Error(err),
		)
		return EmployeeResponse{}, employeeerrors.ErrNotPermitted
	}
	if !account.IsAdministrative(role) {
		s.logger.Warn("change employment denied",
			zap.String("actor_id", actorID),
			zap.String("role", role),
		)
		return EmployeeResponse{}, employeeerrors.ErrNotPermitted
	}

	isTeaching, err := parseEmploymentType(req.Type)
	if err != nil {
		return EmployeeResponse{}, err
	}

	target, err := s.repo.FindByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return EmployeeResponse{}, employeeerrors.ErrEmployeeNotFound
		}
		s.logger.Error("change employment target lookup failed", zap.Error(err))
		return EmployeeResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("change employment begin tx failed", zap.Error(err))
		return EmployeeResponse{}, err
	}
	defer tx.Rollback()

	// Settle at the old rate before the position changes underneath it.
	if _, err := s.credits.AccrueTx(ctx, tx, targetID); err != nil {
		s.logger.Error("change employment settlement failed",
			zap.String("target_id", targetID),
			zap.Error(err),
		)
		return EmployeeResponse{}, err
	}

	if err := s.repo.WithTx(tx).UpdateEmployment(ctx, targetID, req.PositionID, req.DepartmentID, isTeaching); err != nil {
		s.logger.Error("change employment persist failed",
			zap.String("target_id", targetID),
			zap.Error(err),
		)
		return EmployeeResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("change employment commit failed", zap.Error(err))
		return EmployeeResponse{}, err
	}
	s.logger.Info("change employment success",
		zap.String("request_id", rid),
		zap.String("target_id", targetID),
		zap.Int("position_id", req.PositionID),
	)

	target.PositionID = req.PositionID
	target.DepartmentID = req.DepartmentID
	target.IsTeaching = isTeaching
	return mapToResponse(*target), nil
}

func parseEmploymentType(t string) (bool, error) {
	switch t {
	case TypeTeaching:
		return true, nil
	case TypeNonTeaching:
		return false, nil
	default:
		return false, employeeerrors.ErrInvalidEmploymentType
	}
}

func mapToResponse(e Employee) EmployeeResponse {
	empType := TypeNonTeaching
	if e.IsTeaching {
		empType = TypeTeaching
	}
	return EmployeeResponse{
		EmployeeID:   e.EmployeeID,
		FirstName:    e.FirstName,
		LastName:     e.LastName,
		Email:        e.Email,
		DepartmentID: e.DepartmentID,
		PositionID:   e.PositionID,
		DateHired:    e.DateHired.Format(calendar.DateLayout),
		Type:         empType,
	}
}
