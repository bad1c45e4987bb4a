package leave_test

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"go-leave/internal/leave"
	leaveerrors "go-leave/internal/leave/errors"
	"go-leave/internal/messaging/kafka"
	"go-leave/internal/notification"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

type fakeLeaveRepository struct {
	withTxFn         func(tx *sql.Tx) leave.Repository
	insertFn         func(ctx context.Context, app *leave.Application) error
	findByIDFn       func(ctx context.Context, leaveID string) (*leave.Application, error)
	findByEmployeeFn func(ctx context.Context, employeeID string) ([]leave.Application, error)
	findByStatusFn   func(ctx context.Context, status string) ([]leave.Application, error)
	updateStatusFn   func(ctx context.Context, leaveID, status string) error
	statusCountsFn   func(ctx context.Context) (map[string]int64, error)
	typeNameFn       func(ctx context.Context, leaveTypeID int) (string, error)
}

func (f *fakeLeaveRepository) WithTx(tx *sql.Tx) leave.Repository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}

func (f *fakeLeaveRepository) Insert(ctx context.Context, app *leave.Application) error {
	if f.insertFn != nil {
		return f.insertFn(ctx, app)
	}
	return nil
}

func (f *fakeLeaveRepository) FindByID(ctx context.Context, leaveID string) (*leave.Application, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, leaveID)
	}
	return nil, nil
}

func (f *fakeLeaveRepository) FindByEmployee(ctx context.Context, employeeID string) ([]leave.Application, error) {
	if f.findByEmployeeFn != nil {
		return f.findByEmployeeFn(ctx, employeeID)
	}
	return nil, nil
}

func (f *fakeLeaveRepository) FindByStatus(ctx context.Context, status string) ([]leave.Application, error) {
	if f.findByStatusFn != nil {
		return f.findByStatusFn(ctx, status)
	}
	return nil, nil
}

func (f *fakeLeaveRepository) UpdateStatus(ctx context.Context, leaveID, status string) error {
	if f.updateStatusFn != nil {
		return f.updateStatusFn(ctx, leaveID, status)
	}
	return nil
}

func (f *fakeLeaveRepository) StatusCounts(ctx context.Context) (map[string]int64, error) {
	if f.statusCountsFn != nil {
		return f.statusCountsFn(ctx)
	}
	return nil, nil
}

func (f *fakeLeaveRepository) TypeName(ctx context.Context, leaveTypeID int) (string, error) {
	if f.typeNameFn != nil {
		return f.typeNameFn(ctx, leaveTypeID)
	}
	return "Sick Leave", nil
}

type fakeNotificationRepository struct {
	withTxFn     func(tx *sql.Tx) notification.Repository
	createFn     func(ctx context.Context, n *notification.Notification) error
	listUnreadFn func(ctx context.Context, employeeID string) ([]notification.Notification, error)
	markReadFn   func(ctx context.Context, employeeID string) error
}

func (f *fakeNotificationRepository) WithTx(tx *sql.Tx) notification.Repository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}

func (f *fakeNotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	if f.createFn != nil {
		return f.createFn(ctx, n)
	}
	return nil
}

func (f *fakeNotificationRepository) ListUnread(ctx context.Context, employeeID string) ([]notification.Notification, error) {
	if f.listUnreadFn != nil {
		return f.listUnreadFn(ctx, employeeID)
	}
	return nil, nil
}

func (f *fakeNotificationRepository) MarkRead(ctx context.Context, employeeID string) error {
	if f.markReadFn != nil {
		return f.markReadFn(ctx, employeeID)
	}
	return nil
}

type fakeOutboxRepository struct {
	withTxFn func(tx *sql.Tx) kafka.OutboxRepository
	createFn func(ctx context.Context, event kafka.OutboxEvent) error
}

func (f *fakeOutboxRepository) WithTx(tx *sql.Tx) kafka.OutboxRepository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}

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

type leaveServiceDeps struct {
	db            *sql.DB
	sqlMock       sqlmock.Sqlmock
	service       leave.Service
	repo          *fakeLeaveRepository
	notifications *fakeNotificationRepository
	outbox        *fakeOutboxRepository
}

func setupLeaveServiceTest(t *testing.T) *leaveServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	repo := &fakeLeaveRepository{}
	notifications := &fakeNotificationRepository{}
	outbox := &fakeOutboxRepository{}
	svc := leave.NewService(db, repo, notifications, outbox)

	return &leaveServiceDeps{
		db:            db,
		sqlMock:       sqlMock,
		service:       svc,
		repo:          repo,
		notifications: notifications,
		outbox:        outbox,
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

var leaveIDPattern = regexp.MustCompile(`^[0-9]{6}$`)

func TestLeaveService_Submit(t *testing.T) {
	ctx := context.Background()

	req := leave.SubmitLeaveRequest{
		EmployeeID:  "EMP-001",
		LeaveTypeID: 1,
		StartDate:   "2024-01-01",
		Days:        5,
		Reason:      "flu",
	}

	t.Run("success persists application, notification and outbox event together", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		var inserted *leave.Application
		deps.repo.insertFn = func(ctx context.Context, app *leave.Application) error {
			inserted = app
			return nil
		}

		var notified *notification.Notification
		deps.notifications.createFn = func(ctx context.Context, n *notification.Notification) error {
			notified = n
			return nil
		}

		var staged *kafka.OutboxEvent
		deps.outbox.createFn = func(ctx context.Context, event kafka.OutboxEvent) error {
			staged = &event
			return nil
		}

		expectTx(t, deps.sqlMock, true)

		resp, err := deps.service.Submit(ctx, "EMP-001", req)
		assert.NoError(t, err)

		assert.Regexp(t, leaveIDPattern, resp.LeaveID)
		assert.Equal(t, leave.StatusPending, resp.Status)
		assert.Equal(t, "2024-01-01", resp.StartDate)
		assert.Equal(t, "2024-01-05", resp.EndDate)
		assert.Equal(t, 5, resp.NumberOfDays)

		assert.NotNil(t, inserted)
		assert.Equal(t, resp.LeaveID, inserted.LeaveID)

		assert.NotNil(t, notified)
		assert.Equal(t, "EMP-001", notified.EmployeeID)
		assert.Equal(t, notification.StatusUnread, notified.Status)
		assert.Equal(t, notification.PurposeApply, notified.Purpose)

		assert.NotNil(t, staged)
		assert.Equal(t, "leave_submitted", staged.EventType)
		assert.Equal(t, kafka.AggregateLeaveApplication, staged.AggregateType)
		assert.Equal(t, resp.LeaveID, staged.AggregateID)

		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("weekend start lands on monday", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)

		saturday := req
		saturday.StartDate = "2024-01-06"
		saturday.Days = 1

		resp, err := deps.service.Submit(ctx, "EMP-001", saturday)
		assert.NoError(t, err)
		assert.Equal(t, "2024-01-08", resp.EndDate)
	})

	t.Run("negative invalid date format", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		bad := req
		bad.StartDate = "01/01/2024"

		_, err := deps.service.Submit(ctx, "EMP-001", bad)
		assert.ErrorIs(t, err, leaveerrors.ErrInvalidDateFormat)
	})

	t.Run("negative unknown leave type", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		deps.repo.typeNameFn = func(ctx context.Context, leaveTypeID int) (string, error) {
			return "", nil
		}

		_, err := deps.service.Submit(ctx, "EMP-001", req)
		assert.ErrorIs(t, err, leaveerrors.ErrLeaveTypeNotFound)
	})

	t.Run("negative notification insert failure rolls the application back", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		deps.notifications.createFn = func(ctx context.Context, n *notification.Notification) error {
			return errors.New("insert failed")
		}

		expectTx(t, deps.sqlMock, false)

		_, err := deps.service.Submit(ctx, "EMP-001", req)
		assert.Error(t, err)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("identifier collision retries with a fresh id", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		var attempts []string
		deps.repo.insertFn = func(ctx context.Context, app *leave.Application) error {
			attempts = append(attempts, app.LeaveID)
			if len(attempts) == 1 {
				return errors.New(`duplicate key value violates unique constraint "leaveapplication_pkey"`)
			}
			return nil
		}

		expectTx(t, deps.sqlMock, true)

		resp, err := deps.service.Submit(ctx, "EMP-001", req)
		assert.NoError(t, err)
		assert.Len(t, attempts, 2)
		assert.NotEqual(t, attempts[0], attempts[1])
		assert.Equal(t, attempts[1], resp.LeaveID)
	})
}

func TestLeaveService_GetByStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("success filters by status", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		deps.repo.findByStatusFn = func(ctx context.Context, status string) ([]leave.Application, error) {
			assert.Equal(t, leave.StatusPending, status)
			return []leave.Application{{LeaveID: "123456", Status: leave.StatusPending}}, nil
		}

		resp, err := deps.service.GetByStatus(ctx, leave.StatusPending)
		assert.NoError(t, err)
		assert.Len(t, resp, 1)
		assert.Equal(t, "123456", resp[0].LeaveID)
	})

	t.Run("negative unknown status", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.GetByStatus(ctx, "Cancelled")
		assert.ErrorIs(t, err, leaveerrors.ErrInvalidStatus)
	})
}

func TestLeaveService_StatusCounts(t *testing.T) {
	deps := setupLeaveServiceTest(t)
	defer deps.db.Close()

	deps.repo.statusCountsFn = func(ctx context.Context) (map[string]int64, error) {
		return map[string]int64{
			leave.StatusPending:  3,
			leave.StatusApproved: 7,
		}, nil
	}

	resp, err := deps.service.StatusCounts(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, int64(3), resp.Pending)
	assert.Equal(t, int64(7), resp.Approved)
	assert.Equal(t, int64(0), resp.Rejected)
}
