package crediterrors

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
	ErrLedgerNotFound = apperror.New(
		apperror.CodeNotFound,
		"no credit ledger for this employee yet",
		http.StatusNotFound,
	)
)
