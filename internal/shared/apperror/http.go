package apperror

import (
	"errors"
	"net/http"
)

// HTTPError is the transport view of any error returned by a service.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Errors  []string
	// Cause holds the raw error text of unexpected failures. Handlers only
	// expose it outside production.
	Cause string
}

func ToHTTP(err error) HTTPError {
	if err == nil {
		return HTTPError{Status: http.StatusOK}
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		status := appErr.HTTPStatus
		if status == 0 {
			status = http.StatusInternalServerError
		}
		out := HTTPError{
			Status:  status,
			Code:    appErr.Code,
			Message: appErr.Message,
			Errors:  appErr.Errors,
		}
		if status >= http.StatusInternalServerError && appErr.Err != nil {
			out.Cause = appErr.Err.Error()
		}
		return out
	}

	return HTTPError{
		Status:  http.StatusInternalServerError,
		Code:    CodeInternalError,
		Message: ErrInternal.Message,
		Cause:   err.Error(),
	}
}
