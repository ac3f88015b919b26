package leaveerrors

import (
	"fmt"
	"net/http"

	"worksync/internal/shared/apperror"
)

const ValidationFailedMessage = "Leave request validation failed"

var (
	ErrInvalidID = apperror.ErrInvalidID

	ErrInvalidBody = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid request body",
		http.StatusBadRequest,
	)
	ErrInvalidStatus = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid status. Allowed values: approved, rejected, pending, cancelled",
		http.StatusBadRequest,
	)
	ErrLeaveOverlap = apperror.New(
		apperror.CodeLeaveOverlap,
		"Leave request overlaps with existing approved or pending leave.",
		http.StatusBadRequest,
	)
	ErrLeaveNotFound = apperror.New(
		apperror.CodeNotFound,
		"Leave request not found.",
		http.StatusNotFound,
	)
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"Employee not found.",
		http.StatusNotFound,
	)
	ErrForbidden = apperror.New(
		apperror.CodeForbidden,
		"You are not allowed to perform this action on this leave request.",
		http.StatusForbidden,
	)
	ErrCannotDelete = apperror.New(
		apperror.CodeInvalidState,
		"Cannot delete leave request that has been approved or rejected.",
		http.StatusBadRequest,
	)
)

// ErrLimitExceeded is the single yearly-cap error for create, update and approval.
func ErrLimitExceeded(totalPerYear int) *apperror.AppError {
	return apperror.New(
		apperror.CodeLeaveLimitExceeded,
		fmt.Sprintf("Leave limit exceeded. You can only take %d leaves per year.", totalPerYear),
		http.StatusBadRequest,
	)
}

func Validation(errs []string) *apperror.AppError {
	return apperror.Validation(ValidationFailedMessage, errs)
}
