package attendanceerrors

import (
	"net/http"

	"worksync/internal/shared/apperror"
)

var (
	ErrInvalidID = apperror.ErrInvalidID

	ErrInvalidBody = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid request body",
		http.StatusBadRequest,
	)
	ErrInvalidDate = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid date format. Use YYYY-MM-DD.",
		http.StatusBadRequest,
	)
	ErrAlreadyClockedIn = apperror.New(
		apperror.CodeConflict,
		"You have already clocked in today.",
		http.StatusConflict,
	)
	ErrNotClockedIn = apperror.New(
		apperror.CodeInvalidState,
		"No clock-in found for today.",
		http.StatusBadRequest,
	)
	ErrAlreadyClockedOut = apperror.New(
		apperror.CodeConflict,
		"You have already clocked out today.",
		http.StatusConflict,
	)
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"Employee not found.",
		http.StatusNotFound,
	)
)
