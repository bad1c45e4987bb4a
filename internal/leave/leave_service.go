package leave

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"go-leave/internal/calendar"
	"go-leave/internal/events"
	leaveerrors "go-leave/internal/leave/errors"
	"go-leave/internal/messaging/kafka"
	"go-leave/internal/notification"
	"go-leave/internal/shared/contextutil"
	"go-leave/internal/shared/identifier"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=leave_service.go -destination=mock/leave_service_mock.go -package=mock
type Service interface {
	Submit(ctx context.Context, actorID string, req SubmitLeaveRequest) (ApplicationResponse, error)
	GetByID(ctx context.Context, leaveID string) (ApplicationResponse, error)
	GetByEmployee(ctx context.Context, employeeID string) ([]ApplicationResponse, error)
	GetByStatus(ctx context.Context, status string) ([]ApplicationResponse, error)
	StatusCounts(ctx context.Context) (StatusCountsResponse, error)
}

type service struct {
	db            *sql.DB
	repo          Repository
	notifications notification.Repository
	outbox        kafka.OutboxRepository
	logger        *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	notifications notification.Repository,
	outbox kafka.OutboxRepository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	return &service{
		db:            db,
		repo:          repo,
		notifications: notifications,
		outbox:        outbox,
		logger:        l,
	}
}

// Submit records a new Pending application together with its reviewer
// notification in one transaction. Either both rows exist afterwards or
// neither does.
func (s *service) Submit(ctx context.Context, actorID string, req SubmitLeaveRequest) (ApplicationResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("submit leave requested",
		zap.String("request_id", rid),
		zap.String("actor_id", actorID),
		zap.String("employee_id", req.EmployeeID),
		zap.String("start_date", req.StartDate),
		zap.Int("days", req.Days),
	)

	startDate, err := time.Parse(calendar.DateLayout, req.StartDate)
	if err != nil {
		s.logger.Warn("submit leave invalid start_date", zap.String("start_date", req.StartDate))
		return ApplicationResponse{}, leaveerrors.ErrInvalidDateFormat
	}
	if req.Days <= 0 {
		return ApplicationResponse{}, leaveerrors.ErrInvalidDayCount
	}

	typeName, err := s.repo.TypeName(ctx, req.LeaveTypeID)
	if err != nil {
		s.logger.Error("submit leave type lookup failed", zap.Error(err))
		return ApplicationResponse{}, err
	}
	if typeName == "" {
		return ApplicationResponse{}, leaveerrors.ErrLeaveTypeNotFound
	}

	endDate := calendar.ComputeEndDate(startDate, req.Days)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("submit leave begin tx failed", zap.Error(err))
		return ApplicationResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	app := &Application{
		EmployeeID:   req.EmployeeID,
		LeaveTypeID:  req.LeaveTypeID,
		StartDate:    startDate,
		EndDate:      endDate,
		NumberOfDays: req.Days,
		Reason:       req.Reason,
		Attachment:   req.Attachment,
		Status:       StatusPending,
		DateApplied:  time.Now().UTC().Truncate(24 * time.Hour),
	}

	leaveID, err := identifier.InsertWithRetry(ctx, identifier.Numeric, func(ctx context.Context, id string) error {
		app.LeaveID = id
		return qtx.Insert(ctx, app)
	})
	if err != nil {
		s.logger.Error("submit leave persist failed", zap.Error(err))
		return ApplicationResponse{}, err
	}

	notif := &notification.Notification{
		ID:         uuid.New(),
		EmployeeID: req.EmployeeID,
		Status:     notification.StatusUnread,
		Purpose:    notification.PurposeApply,
	}
	if err := s.notifications.WithTx(tx).Create(ctx, notif); err != nil {
		s.logger.Error("submit leave notification persist failed",
			zap.String("leave_id", leaveID),
			zap.Error(err),
		)
		return ApplicationResponse{}, err
	}

	if s.outbox != nil {
		event := events.LeaveSubmittedEvent{
			EventType:  "leave_submitted",
			RequestID:  rid,
			LeaveID:    leaveID,
			EmployeeID: req.EmployeeID,
			OccurredAt: time.Now().UTC(),
		}
		payload, err := json.Marshal(event)
		if err != nil {
			s.logger.Error("marshal event failed", zap.String("request_id", rid), zap.Error(err))
			return ApplicationResponse{}, err
		}
		if err := s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
			ID:            uuid.NewString(),
			RequestID:     rid,
			AggregateType: kafka.AggregateLeaveApplication,
			AggregateID:   leaveID,
			EventType:     event.EventType,
			Topic:         events.LeaveSubmittedTopic,
			Payload:       payload,
			Status:        kafka.OutboxStatusPending,
		}); err != nil {
			s.logger.Error("submit leave outbox persist failed",
				zap.String("leave_id", leaveID),
				zap.Error(err),
			)
			return ApplicationResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("submit leave commit failed", zap.Error(err))
		return ApplicationResponse{}, err
	}
	s.logger.Info("submit leave success",
		zap.String("request_id", rid),
		zap.String("leave_id", leaveID),
		zap.String("employee_id", req.EmployeeID),
	)

	return mapToResponse(*app), nil
}

func (s *service) GetByID(ctx context.Context, leaveID string) (ApplicationResponse, error) {
	app, err := s.repo.FindByID(ctx, leaveID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ApplicationResponse{}, leaveerrors.ErrLeaveNotFound
		}
		return ApplicationResponse{}, err
	}
	return mapToResponse(*app), nil
}

func (s *service) GetByEmployee(ctx context.Context, employeeID string) ([]ApplicationResponse, error) {
	apps, err := s.repo.FindByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(apps), nil
}

func (s *service) GetByStatus(ctx context.Context, status string) ([]ApplicationResponse, error) {
	switch status {
	case StatusPending, StatusApproved, StatusRejected:
	default:
		return nil, leaveerrors.ErrInvalidStatus
	}

	apps, err := s.repo.FindByStatus(ctx, status)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(apps), nil
}

func (s *service) StatusCounts(ctx context.Context) (StatusCountsResponse, error) {
	counts, err := s.repo.StatusCounts(ctx)
	if err != nil {
		return StatusCountsResponse{}, err
	}
	return StatusCountsResponse{
		Pending:  counts[StatusPending],
		Approved: counts[StatusApproved],
		Rejected: counts[StatusRejected],
	}, nil
}

func mapToResponse(app Application) ApplicationResponse {
	return ApplicationResponse{
		LeaveID:      app.LeaveID,
		EmployeeID:   app.EmployeeID,
		LeaveTypeID:  app.LeaveTypeID,
		StartDate:    app.StartDate.Format(calendar.DateLayout),
		EndDate:      app.EndDate.Format(calendar.DateLayout),
		NumberOfDays: app.NumberOfDays,
		Reason:       app.Reason,
		Attachment:   app.Attachment,
		Status:       app.Status,
		DateApplied:  app.DateApplied.Format(calendar.DateLayout),
	}
}

func mapToListResponse(apps []Application) []ApplicationResponse {
	resp := make([]ApplicationResponse, len(apps))
	for i, app := range apps {
		resp[i] = mapToResponse(app)
	}
	return resp
}
