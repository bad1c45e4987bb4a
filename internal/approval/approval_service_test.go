package approval_test

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"go-leave/internal/approval"
	approvalerrors "go-leave/internal/approval/errors"
	"go-leave/internal/credit"
	"go-leave/internal/leave"
	leaveerrors "go-leave/internal/leave/errors"
	"go-leave/internal/messaging/kafka"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeApprovalRepository struct {
	withTxFn       func(tx *sql.Tx) approval.Repository
	insertFn       func(ctx context.Context, a *approval.Approval) error
	findByLeaveFn  func(ctx context.Context, leaveID string) (*approval.Approval, error)
	decisionDataFn func(ctx context.Context, leaveID string) (*approval.DecisionData, error)
}

func (f *fakeApprovalRepository) WithTx(tx *sql.Tx) approval.Repository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}

func (f *fakeApprovalRepository) Insert(ctx context.Context, a *approval.Approval) error {
	if f.insertFn != nil {
		return f.insertFn(ctx, a)
	}
	return nil
}

func (f *fakeApprovalRepository) FindByLeaveID(ctx context.Context, leaveID string) (*approval.Approval, error) {
	if f.findByLeaveFn != nil {
		return f.findByLeaveFn(ctx, leaveID)
	}
	return nil, nil
}

func (f *fakeApprovalRepository) DecisionData(ctx context.Context, leaveID string) (*approval.DecisionData, error) {
	if f.decisionDataFn != nil {
		return f.decisionDataFn(ctx, leaveID)
	}
	return &approval.DecisionData{EmployeeID: "EMP-001", TypeName: "Sick Leave", NumberOfDays: 3}, nil
}

type fakeLeaveRepository struct {
	withTxFn       func(tx *sql.Tx) leave.Repository
	findByIDFn     func(ctx context.Context, leaveID string) (*leave.Application, error)
	updateStatusFn func(ctx context.Context, leaveID, status string) error
}

func (f *fakeLeaveRepository) WithTx(tx *sql.Tx) leave.Repository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}

func (f *fakeLeaveRepository) Insert(ctx context.Context, app *leave.Application) error { return nil }

func (f *fakeLeaveRepository) FindByID(ctx context.Context, leaveID string) (*leave.Application, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, leaveID)
	}
	return &leave.Application{LeaveID: leaveID, EmployeeID: "EMP-001", Status: leave.StatusPending}, nil
}

func (f *fakeLeaveRepository) FindByEmployee(ctx context.Context, employeeID string) ([]leave.Application, error) {
	return nil, nil
}

func (f *fakeLeaveRepository) FindByStatus(ctx context.Context, status string) ([]leave.Application, error) {
	return nil, nil
}

func (f *fakeLeaveRepository) UpdateStatus(ctx context.Context, leaveID, status string) error {
	if f.updateStatusFn != nil {
		return f.updateStatusFn(ctx, leaveID, status)
	}
	return nil
}

func (f *fakeLeaveRepository) StatusCounts(ctx context.Context) (map[string]int64, error) {
	return nil, nil
}

func (f *fakeLeaveRepository) TypeName(ctx context.Context, leaveTypeID int) (string, error) {
	return "", nil
}

type fakeAccountRepository struct {
	getRoleFn func(ctx context.Context, employeeID string) (string, error)
}

func (f *fakeAccountRepository) GetRole(ctx context.Context, employeeID string) (string, error) {
	if f.getRoleFn != nil {
		return f.getRoleFn(ctx, employeeID)
	}
	return "Dean", nil
}

type fakeCreditService struct {
	accrueTxFn func(ctx context.Context, tx *sql.Tx, employeeID string) (credit.Snapshot, error)
	deductTxFn func(ctx context.Context, tx *sql.Tx, employeeID, typeName string, days int) error
}

func (f *fakeCreditService) Accrue(ctx context.Context, employeeID string) (credit.Snapshot, error) {
	return credit.Snapshot{}, nil
}

func (f *fakeCreditService) AccrueTx(ctx context.Context, tx *sql.Tx, employeeID string) (credit.Snapshot, error) {
	if f.accrueTxFn != nil {
		return f.accrueTxFn(ctx, tx, employeeID)
	}
	return credit.Snapshot{}, nil
}

func (f *fakeCreditService) DeductTx(ctx context.Context, tx *sql.Tx, employeeID, typeName string, days int) error {
	if f.deductTxFn != nil {
		return f.deductTxFn(ctx, tx, employeeID, typeName, days)
	}
	return nil
}

func (f *fakeCreditService) GetBalance(ctx context.Context, employeeID string) (credit.Snapshot, error) {
	return credit.Snapshot{}, nil
}

func (f *fakeCreditService) UsedDays(ctx context.Context, employeeID string) (credit.UsedDaysResponse, error) {
	return credit.UsedDaysResponse{}, nil
}

type fakeOutboxRepository struct {
	createFn func(ctx context.Context, event kafka.OutboxEvent) error
}

func (f *fakeOutboxRepository) WithTx(tx *sql.Tx) kafka.OutboxRepository { return f }

func (f *fakeOutboxRepository) Create(ctx context.Context, event kafka.OutboxEvent) error {
	if f.createFn != nil {
		return f.createFn(ctx, event)
	}
	return nil
}

func (f *fakeOutboxRepository) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutboxRepository) MarkSent(ctx context.Context, id string) error { return nil }

func (f *fakeOutboxRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	return nil
}

type approvalServiceDeps struct {
	db       *sql.DB
	sqlMock  sqlmock.Sqlmock
	service  approval.Service
	repo     *fakeApprovalRepository
	leaves   *fakeLeaveRepository
	accounts *fakeAccountRepository
	credits  *fakeCreditService
	outbox   *fakeOutboxRepository
}

func setupApprovalServiceTest(t *testing.T) *approvalServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	repo := &fakeApprovalRepository{}
	leaves := &fakeLeaveRepository{}
	accounts := &fakeAccountRepository{}
	credits := &fakeCreditService{}
	outbox := &fakeOutboxRepository{}
	svc := approval.NewService(db, repo, leaves, accounts, credits, outbox)

	return &approvalServiceDeps{
		db:       db,
		sqlMock:  sqlMock,
		service:  svc,
		repo:     repo,
		leaves:   leaves,
		accounts: accounts,
		credits:  credits,
		outbox:   outbox,
	}
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

var approvalIDPattern = regexp.MustCompile(`^[0-9A-Z]{10}$`)

func TestApprovalService_Decide(t *testing.T) {
	ctx := context.Background()

	t.Run("success approve deducts the balance once", func(t *testing.T) {
		deps := setupApprovalServiceTest(t)
		defer deps.db.Close()

		var inserted []*approval.Approval
		deps.repo.insertFn = func(ctx context.Context, a *approval.Approval) error {
			inserted = append(inserted, a)
			return nil
		}

		var statusSet string
		deps.leaves.updateStatusFn = func(ctx context.Context, leaveID, status string) error {
			statusSet = status
			return nil
		}

		var ledgerCalls []string
		deps.credits.accrueTxFn = func(ctx context.Context, tx *sql.Tx, employeeID string) (credit.Snapshot, error) {
			ledgerCalls = append(ledgerCalls, "accrue")
			return credit.Snapshot{}, nil
		}

		type deduction struct {
			employeeID string
			typeName   string
			days       int
		}
		var deductions []deduction
		deps.credits.deductTxFn = func(ctx context.Context, tx *sql.Tx, employeeID, typeName string, days int) error {
			ledgerCalls = append(ledgerCalls, "deduct")
			deductions = append(deductions, deduction{employeeID, typeName, days})
			return nil
		}

		expectTx(t, deps.sqlMock, true)

		resp, err := deps.service.Decide(ctx, "654321", "EMP-APPROVER", approval.DecideRequest{
			Decision: leave.StatusApproved,
		})
		assert.NoError(t, err)

		assert.Regexp(t, approvalIDPattern, resp.ApprovalID)
		assert.Equal(t, leave.StatusApproved, resp.Decision)
		assert.Equal(t, "Dean", resp.ApproverRole)
		assert.Equal(t, leave.StatusApproved, statusSet)

		assert.Len(t, inserted, 1)
		assert.Equal(t, "654321", inserted[0].LeaveID)

		// The ledger is settled before it is spent, inside the same tx.
		assert.Equal(t, []string{"accrue", "deduct"}, ledgerCalls)
		assert.Len(t, deductions, 1)
		assert.Equal(t, "EMP-001", deductions[0].employeeID)
		assert.Equal(t, "Sick Leave", deductions[0].typeName)
		assert.Equal(t, 3, deductions[0].days)

		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("success approve for an employee who has never accrued", func(t *testing.T) {
		deps := setupApprovalServiceTest(t)
		defer deps.db.Close()

		// Settlement seeds the missing ledger row; the deduction then has a
		// row to hit and the approval commits.
		seeded := false
		deps.credits.accrueTxFn = func(ctx context.Context, tx *sql.Tx, employeeID string) (credit.Snapshot, error) {
			seeded = true
			return credit.Snapshot{EmployeeID: employeeID}, nil
		}
		deps.credits.deductTxFn = func(ctx context.Context, tx *sql.Tx, employeeID, typeName string, days int) error {
			assert.True(t, seeded)
			return nil
		}

		expectTx(t, deps.sqlMock, true)

		resp, err := deps.service.Decide(ctx, "654321", "EMP-APPROVER", approval.DecideRequest{
			Decision: leave.StatusApproved,
		})
		assert.NoError(t, err)
		assert.Equal(t, leave.StatusApproved, resp.Decision)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative settlement failure rolls the decision back", func(t *testing.T) {
		deps := setupApprovalServiceTest(t)
		defer deps.db.Close()

		deps.credits.accrueTxFn = func(ctx context.Context, tx *sql.Tx, employeeID string) (credit.Snapshot, error) {
			return credit.Snapshot{}, errors.New("settlement failed")
		}

		deducted := false
		deps.credits.deductTxFn = func(ctx context.Context, tx *sql.Tx, employeeID, typeName string, days int) error {
			deducted = true
			return nil
		}

		expectTx(t, deps.sqlMock, false)

		_, err := deps.service.Decide(ctx, "654321", "EMP-APPROVER", approval.DecideRequest{
			Decision: leave.StatusApproved,
		})
		assert.Error(t, err)
		assert.False(t, deducted)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("success reject leaves the balance alone", func(t *testing.T) {
		deps := setupApprovalServiceTest(t)
		defer deps.db.Close()

		deducted := false
		deps.credits.deductTxFn = func(ctx context.Context, tx *sql.Tx, employeeID, typeName string, days int) error {
			deducted = true
			return nil
		}

		var statusSet string
		deps.leaves.updateStatusFn = func(ctx context.Context, leaveID, status string) error {
			statusSet = status
			return nil
		}

		expectTx(t, deps.sqlMock, true)

		resp, err := deps.service.Decide(ctx, "654321", "EMP-APPROVER", approval.DecideRequest{
			Decision: leave.StatusRejected,
		})
		assert.NoError(t, err)
		assert.Equal(t, leave.StatusRejected, resp.Decision)
		assert.Equal(t, leave.StatusRejected, statusSet)
		assert.False(t, deducted)
	})

	t.Run("negative unresolved approver role is an authorization failure", func(t *testing.T) {
		deps := setupApprovalServiceTest(t)
		defer deps.db.Close()

		deps.accounts.getRoleFn = func(ctx context.Context, employeeID string) (string, error) {
			return "", gorm.ErrRecordNotFound
		}

		_, err := deps.service.Decide(ctx, "654321", "EMP-GHOST", approval.DecideRequest{
			Decision: leave.StatusApproved,
		})
		assert.ErrorIs(t, err, approvalerrors.ErrApproverRoleUnresolved)
	})

	t.Run("negative invalid decision", func(t *testing.T) {
		deps := setupApprovalServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.Decide(ctx, "654321", "EMP-APPROVER", approval.DecideRequest{
			Decision: "Maybe",
		})
		assert.ErrorIs(t, err, approvalerrors.ErrInvalidDecision)
	})

	t.Run("negative unknown application", func(t *testing.T) {
		deps := setupApprovalServiceTest(t)
		defer deps.db.Close()

		deps.leaves.findByIDFn = func(ctx context.Context, leaveID string) (*leave.Application, error) {
			return nil, gorm.ErrRecordNotFound
		}

		_, err := deps.service.Decide(ctx, "000000", "EMP-APPROVER", approval.DecideRequest{
			Decision: leave.StatusApproved,
		})
		assert.ErrorIs(t, err, leaveerrors.ErrLeaveNotFound)
	})

	t.Run("negative terminal application is never re-decided", func(t *testing.T) {
		deps := setupApprovalServiceTest(t)
		defer deps.db.Close()

		deps.leaves.findByIDFn = func(ctx context.Context, leaveID string) (*leave.Application, error) {
			return &leave.Application{LeaveID: leaveID, Status: leave.StatusApproved}, nil
		}

		_, err := deps.service.Decide(ctx, "654321", "EMP-APPROVER", approval.DecideRequest{
			Decision: leave.StatusRejected,
		})
		assert.ErrorIs(t, err, leaveerrors.ErrAlreadyDecided)
	})

	t.Run("negative approval insert failure rolls everything back", func(t *testing.T) {
		deps := setupApprovalServiceTest(t)
		defer deps.db.Close()

		deps.repo.insertFn = func(ctx context.Context, a *approval.Approval) error {
			return errors.New("insert failed")
		}

		expectTx(t, deps.sqlMock, false)

		_, err := deps.service.Decide(ctx, "654321", "EMP-APPROVER", approval.DecideRequest{
			Decision: leave.StatusApproved,
		})
		assert.Error(t, err)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("identifier collision retries with a fresh id", func(t *testing.T) {
		deps := setupApprovalServiceTest(t)
		defer deps.db.Close()

		var attempts []string
		deps.repo.insertFn = func(ctx context.Context, a *approval.Approval) error {
			attempts = append(attempts, a.ApprovalID)
			if len(attempts) == 1 {
				return errors.New(`duplicate key value violates unique constraint "leaveapproval_pkey"`)
			}
			return nil
		}

		expectTx(t, deps.sqlMock, true)

		resp, err := deps.service.Decide(ctx, "654321", "EMP-APPROVER", approval.DecideRequest{
			Decision: leave.StatusApproved,
		})
		assert.NoError(t, err)
		assert.Len(t, attempts, 2)
		assert.NotEqual(t, attempts[0], attempts[1])
		assert.Equal(t, attempts[1], resp.ApprovalID)
	})
}

func TestApprovalService_GetByLeaveID(t *testing.T) {
	deps := setupApprovalServiceTest(t)
	defer deps.db.Close()

	deps.repo.findByLeaveFn = func(ctx context.Context, leaveID string) (*approval.Approval, error) {
		return nil, gorm.ErrRecordNotFound
	}

	_, err := deps.service.GetByLeaveID(context.Background(), "654321")
	assert.ErrorIs(t, err, approvalerrors.ErrApprovalNotFound)
}
