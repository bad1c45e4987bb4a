package approval

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	approvalerrors "go-leave/internal/approval/errors"
	"go-leave/internal/account"
	"go-leave/internal/credit"
	"go-leave/internal/events"
	"go-leave/internal/leave"
	leaveerrors "go-leave/internal/leave/errors"
	"go-leave/internal/messaging/kafka"
	"go-leave/internal/shared/contextutil"
	"go-leave/internal/shared/identifier"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const approvalIDLength = 10

//go:generate mockgen -source=approval_service.go -destination=mock/approval_service_mock.go -package=mock
type Service interface {
	// Decide settles a pending application: status transition, immutable
	// approval record, and (for approved Sick/Vacation leave) the credit
	// deduction, all in one transaction.
	Decide(ctx context.Context, leaveID, approverID string, req DecideRequest) (ApprovalResponse, error)
	GetByLeaveID(ctx context.Context, leaveID string) (ApprovalResponse, error)
}

type service struct {
	db       *sql.DB
	repo     Repository
	leaves   leave.Repository
	accounts account.Repository
	credits  credit.Service
	outbox   kafka.OutboxRepository
	logger   *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	leaves leave.Repository,
	accounts account.Repository,
	credits credit.Service,
	outbox kafka.OutboxRepository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("approval.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("approval.service")
	}
	return &service{
		db:       db,
		repo:     repo,
		leaves:   leaves,
		accounts: accounts,
		credits:  credits,
		outbox:   outbox,
		logger:   l,
	}
}

func (s *service) Decide(ctx context.Context, leaveID, approverID string, req DecideRequest) (ApprovalResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("decide requested",
		zap.String("request_id", rid),
		zap.String("leave_id", leaveID),
		zap.String("approver_id", approverID),
		zap.String("decision", req.Decision),
	)

	if req.Decision != leave.StatusApproved && req.Decision != leave.StatusRejected {
		return ApprovalResponse{}, approvalerrors.ErrInvalidDecision
	}

	// An unresolvable approver role is an authorization failure. There is
	// no fallback role.
	role, err := s.accounts.GetRole(ctx, approverID)
	if err != nil {
		s.logger.Warn("decide approver role unresolved",
			zap.String("approver_id", approverID),
			zap.Error(err),
		)
		return ApprovalResponse{}, approvalerrors.ErrApproverRoleUnresolved
	}

	app, err := s.leaves.FindByID(ctx, leaveID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ApprovalResponse{}, leaveerrors.ErrLeaveNotFound
		}
		s.logger.Error("decide application lookup failed", zap.Error(err))
		return ApprovalResponse{}, err
	}
	if leave.IsTerminal(app.Status) {
		s.logger.Warn("decide on terminal application",
			zap.String("leave_id", leaveID),
			zap.String("status", app.Status),
		)
		return ApprovalResponse{}, leaveerrors.ErrAlreadyDecided
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("decide begin tx failed", zap.Error(err))
		return ApprovalResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	if err := s.leaves.WithTx(tx).UpdateStatus(ctx, leaveID, req.Decision); err != nil {
		s.logger.Error("decide status transition failed",
			zap.String("leave_id", leaveID),
			zap.Error(err),
		)
		return ApprovalResponse{}, err
	}

	record := &Approval{
		LeaveID:      leaveID,
		ApproverID:   approverID,
		ApproverRole: role,
		Decision:     req.Decision,
		Remarks:      req.Remarks,
		DecidedAt:    time.Now().UTC(),
	}
	approvalID, err := identifier.InsertWithRetry(ctx,
		func() string { return identifier.Alphanumeric(approvalIDLength) },
		func(ctx context.Context, id string) error {
			record.ApprovalID = id
			return qtx.Insert(ctx, record)
		},
	)
	if err != nil {
		s.logger.Error("decide approval persist failed",
			zap.String("leave_id", leaveID),
			zap.Error(err),
		)
		return ApprovalResponse{}, err
	}

	if req.Decision == leave.StatusApproved {
		data, err := qtx.DecisionData(ctx, leaveID)
		if err != nil {
			s.logger.Error("decide decision data lookup failed",
				zap.String("leave_id", leaveID),
				zap.Error(err),
			)
			return ApprovalResponse{}, err
		}
		// Settle earned credit first. This also seeds the ledger row for
		// employees who have never accrued, so the deduction always has a
		// row to hit.
		if _, err := s.credits.AccrueTx(ctx, tx, data.EmployeeID); err != nil {
			s.logger.Error("decide settlement failed",
				zap.String("leave_id", leaveID),
				zap.String("employee_id", data.EmployeeID),
				zap.Error(err),
			)
			return ApprovalResponse{}, err
		}
		if err := s.credits.DeductTx(ctx, tx, data.EmployeeID, data.TypeName, data.NumberOfDays); err != nil {
			return ApprovalResponse{}, err
		}
	}

	if s.outbox != nil {
		event := events.LeaveDecidedEvent{
			EventType:  "leave_decided",
			RequestID:  rid,
			LeaveID:    leaveID,
			ApprovalID: approvalID,
			EmployeeID: app.EmployeeID,
			Decision:   req.Decision,
			OccurredAt: time.Now().UTC(),
		}
		payload, err := json.Marshal(event)
		if err != nil {
			s.logger.Error("marshal event failed", zap.String("request_id", rid), zap.Error(err))
			return ApprovalResponse{}, err
		}
		if err := s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
			ID:            uuid.NewString(),
			RequestID:     rid,
			AggregateType: kafka.AggregateLeaveApproval,
			AggregateID:   leaveID,
			EventType:     event.EventType,
			Topic:         events.LeaveDecidedTopic,
			Payload:       payload,
			Status:        kafka.OutboxStatusPending,
		}); err != nil {
			s.logger.Error("decide outbox persist failed",
				zap.String("leave_id", leaveID),
				zap.Error(err),
			)
			return ApprovalResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("decide commit failed",
			zap.String("leave_id", leaveID),
			zap.Error(err),
		)
		return ApprovalResponse{}, err
	}
	s.logger.Info("decide success",
		zap.String("request_id", rid),
		zap.String("leave_id", leaveID),
		zap.String("approval_id", approvalID),
		zap.String("decision", req.Decision),
	)

	return mapToResponse(*record), nil
}

func (s *service) GetByLeaveID(ctx context.Context, leaveID string) (ApprovalResponse, error) {
	a, err := s.repo.FindByLeaveID(ctx, leaveID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ApprovalResponse{}, approvalerrors.ErrApprovalNotFound
		}
		return ApprovalResponse{}, err
	}
	return mapToResponse(*a), nil
}

func mapToResponse(a Approval) ApprovalResponse {
	return ApprovalResponse{
		ApprovalID:   a.ApprovalID,
		LeaveID:      a.LeaveID,
		ApproverID:   a.ApproverID,
		ApproverRole: a.ApproverRole,
		Decision:     a.Decision,
		Remarks:      a.Remarks,
		DecidedAt:    a.DecidedAt.Format(time.RFC3339),
	}
}
