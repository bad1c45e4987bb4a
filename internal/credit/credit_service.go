package credit

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	crediterrors "go-leave/internal/credit/errors"
	"go-leave/internal/shared/contextutil"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const balanceKeyPrefix = "credits:balance:"

func balanceKey(employeeID string) string {
	return balanceKeyPrefix + employeeID
}

//go:generate mockgen -source=credit_service.go -destination=mock/credit_service_mock.go -package=mock
type Service interface {
	// Accrue settles credit earned since the last settlement. Idempotent
	// within the same elapsed-month window: a repeat call before another
	// whole month has passed returns the snapshot unchanged.
	Accrue(ctx context.Context, employeeID string) (Snapshot, error)
	// AccrueTx is Accrue running inside a caller-owned transaction, for
	// workflows that must settle and mutate atomically.
	AccrueTx(ctx context.Context, tx *sql.Tx, employeeID string) (Snapshot, error)
	// DeductTx subtracts approved leave days inside the caller's
	// transaction. Leave types without a balance column are a no-op.
	DeductTx(ctx context.Context, tx *sql.Tx, employeeID, typeName string, days int) error
	GetBalance(ctx context.Context, employeeID string) (Snapshot, error)
	UsedDays(ctx context.Context, employeeID string) (UsedDaysResponse, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	rdb    *redis.Client
	sf     *singleflight.Group
	now    func() time.Time
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, rdb *redis.Client, logger ...*zap.Logger) Service {
	return NewServiceWithClock(db, repo, rdb, func() time.Time { return time.Now().UTC() }, logger...)
}

// NewServiceWithClock allows tests to pin "now" for deterministic accrual.
func NewServiceWithClock(db *sql.DB, repo Repository, rdb *redis.Client, now func() time.Time, logger ...*zap.Logger) Service {
	l := zap.L().Named("credit.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("credit.service")
	}
	return &service{
		db:     db,
		repo:   repo,
		rdb:    rdb,
		sf:     &singleflight.Group{},
		now:    now,
		logger: l,
	}
}

func (s *service) Accrue(ctx context.Context, employeeID string) (Snapshot, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("accrue begin tx failed", zap.Error(err))
		return Snapshot{}, err
	}
	defer tx.Rollback()

	snap, err := s.AccrueTx(ctx, tx, employeeID)
	if err != nil {
		return Snapshot{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("accrue commit failed", zap.Error(err))
		return Snapshot{}, err
	}

	s.invalidateBalance(ctx, employeeID)
	return snap, nil
}

func (s *service) AccrueTx(ctx context.Context, tx *sql.Tx, employeeID string) (Snapshot, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("accrue requested",
		zap.String("request_id", rid),
		zap.String("employee_id", employeeID),
	)

	data, err := s.repo.AccrualData(ctx, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("accrue unknown employee", zap.String("employee_id", employeeID))
			return Snapshot{}, crediterrors.ErrEmployeeNotFound
		}
		s.logger.Error("accrue employee lookup failed", zap.Error(err))
		return Snapshot{}, err
	}

	qtx := s.repo.WithTx(tx)

	ledger, err := qtx.FindByEmployee(ctx, employeeID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// First accrual for this employee: seed an empty ledger at the
		// hire date so tenure earned before the row existed still counts.
		ledger = &Credit{
			EmployeeID:  employeeID,
			Sick:        decimal.Zero,
			Vacation:    decimal.Zero,
			LastUpdated: data.HireDate,
		}
		if err := qtx.Create(ctx, ledger); err != nil {
			s.logger.Error("accrue seed ledger failed", zap.Error(err))
			return Snapshot{}, err
		}
	} else if err != nil {
		s.logger.Error("accrue ledger lookup failed", zap.Error(err))
		return Snapshot{}, err
	}

	now := s.now()
	months := wholeMonthsBetween(ledger.LastUpdated, now)
	if months < 1 {
		return mapToSnapshot(*ledger), nil
	}

	rates := RatesForTier(data.PositionTier)
	monthsDec := decimal.NewFromInt(int64(months))
	earnedSick := monthsDec.Mul(rates.Sick)
	earnedVacation := monthsDec.Mul(rates.Vacation)

	// The settlement timestamp advances to now, not to the last whole-month
	// boundary; the partial month in between never accrues.
	if err := qtx.AddAccrual(ctx, employeeID, earnedSick, earnedVacation, now); err != nil {
		s.logger.Error("accrue persist failed", zap.Error(err))
		return Snapshot{}, err
	}

	ledger.Sick = ledger.Sick.Add(earnedSick)
	ledger.Vacation = ledger.Vacation.Add(earnedVacation)
	ledger.LastUpdated = now

	s.logger.Info("accrue settled",
		zap.String("request_id", rid),
		zap.String("employee_id", employeeID),
		zap.Int("months", months),
		zap.String("earned_sick", earnedSick.String()),
		zap.String("earned_vacation", earnedVacation.String()),
	)

	return mapToSnapshot(*ledger), nil
}

func (s *service) DeductTx(ctx context.Context, tx *sql.Tx, employeeID, typeName string, days int) error {
	column, ok := BalanceColumn(typeName)
	if !ok {
		s.logger.Debug("deduct skipped for non-ledger type",
			zap.String("employee_id", employeeID),
			zap.String("type_name", typeName),
		)
		return nil
	}

	if err := s.repo.WithTx(tx).Deduct(ctx, employeeID, column, decimal.NewFromInt(int64(days))); err != nil {
		s.logger.Error("deduct persist failed",
			zap.String("employee_id", employeeID),
			zap.String("column", column),
			zap.Error(err),
		)
		if errors.Is(err, sql.ErrNoRows) {
			return crediterrors.ErrLedgerNotFound
		}
		return err
	}

	s.invalidateBalance(ctx, employeeID)
	return nil
}

func (s *service) GetBalance(ctx context.Context, employeeID string) (Snapshot, error) {
	cacheKey := balanceKey(employeeID)

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var snap Snapshot
			if json.Unmarshal([]byte(cached), &snap) == nil {
				return snap, nil
			}
		}
	}

	v, err, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		ledger, err := s.repo.FindByEmployee(ctx, employeeID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return Snapshot{}, crediterrors.ErrLedgerNotFound
			}
			return Snapshot{}, err
		}

		snap := mapToSnapshot(*ledger)
		if s.rdb != nil {
			if jsonData, err := json.Marshal(snap); err == nil {
				s.rdb.Set(ctx, cacheKey, jsonData, 5*time.Minute)
			}
		}
		return snap, nil
	})
	if err != nil {
		return Snapshot{}, err
	}

	return v.(Snapshot), nil
}

func (s *service) UsedDays(ctx context.Context, employeeID string) (UsedDaysResponse, error) {
	total, err := s.repo.UsedDays(ctx, employeeID)
	if err != nil {
		return UsedDaysResponse{}, err
	}
	return UsedDaysResponse{EmployeeID: employeeID, UsedDays: total}, nil
}

func (s *service) invalidateBalance(ctx context.Context, employeeID string) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, balanceKey(employeeID)).Err(); err != nil {
		s.logger.Error("failed to invalidate balance cache",
			zap.String("employee_id", employeeID),
			zap.Error(err),
		)
	}
}

// wholeMonthsBetween counts full calendar months elapsed from one instant to
// another. A fraction of a month counts for nothing.
func wholeMonthsBetween(from, to time.Time) int {
	if !from.Before(to) {
		return 0
	}
	months := (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
	for months > 0 && from.AddDate(0, months, 0).After(to) {
		months--
	}
	return months
}

func mapToSnapshot(c Credit) Snapshot {
	return Snapshot{
		EmployeeID:  c.EmployeeID,
		Sick:        c.Sick,
		Vacation:    c.Vacation,
		LastUpdated: c.LastUpdated.Format(time.RFC3339),
	}
}
