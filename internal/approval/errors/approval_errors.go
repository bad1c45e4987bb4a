package approvalerrors

import (
	"net/http"

	"go-leave/internal/shared/apperror"
)

var (
	ErrApproverRoleUnresolved = apperror.New(
		apperror.CodeForbidden,
		"approver role could not be resolved",
		http.StatusForbidden,
	)
	ErrInvalidDecision = apperror.New(
		apperror.CodeInvalidInput,
		"decision must be Approved or Rejected",
		http.StatusBadRequest,
	)
	ErrApprovalNotFound = apperror.New(
		apperror.CodeNotFound,
		"approval record not found",
		http.StatusNotFound,
	)
)
