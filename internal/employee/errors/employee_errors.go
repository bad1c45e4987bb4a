package employeeerrors

import (
	"net/http"

	"go-leave/internal/shared/apperror"
)

var (
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"employee not found",
		http.StatusNotFound,
	)
	ErrNotPermitted = apperror.New(
		apperror.CodeForbidden,
		"only administrative roles may change employment records",
		http.StatusForbidden,
	)
	ErrInvalidEmploymentType = apperror.New(
		apperror.CodeInvalidInput,
		"employment type must be Teaching or Non-Teaching",
		http.StatusBadRequest,
	)
)
