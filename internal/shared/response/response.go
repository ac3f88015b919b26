package response

import (
	"worksync/internal/shared/apperror"

	"github.com/gin-gonic/gin"
)

type PaginationMeta struct {
	Total      int64 `json:"total,omitempty"`
	TotalPages int   `json:"totalPages,omitempty"`
	Page       int   `json:"page,omitempty"`
	PageSize   int   `json:"pageSize,omitempty"`
}

func NewPaginationMeta(total int64, page, limit int) PaginationMeta {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}

	return PaginationMeta{
		Total:      total,
		TotalPages: totalPages,
		Page:       page,
		PageSize:   limit,
	}
}

type ApiEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Code    string          `json:"code,omitempty"`
	Data    any             `json:"data,omitempty"`
	Meta    *PaginationMeta `json:"meta,omitempty"`
	Errors  []string        `json:"errors,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// exposeCause controls whether raw error text of 5xx failures reaches clients.
var exposeCause = true

// ExposeInternalErrors is called once at startup from the environment.
func ExposeInternalErrors(enabled bool) {
	exposeCause = enabled
}

func Success(c *gin.Context, status int, data interface{}, meta *PaginationMeta) {
	c.JSON(status, ApiEnvelope{
		Success: true,
		Data:    data,
		Meta:    meta,
	})
}

func Message(c *gin.Context, status int, message string) {
	c.JSON(status, ApiEnvelope{
		Success: true,
		Message: message,
	})
}

func Error(c *gin.Context, status int, errorCode string, message string, errs []string) {
	c.JSON(status, ApiEnvelope{
		Success: false,
		Code:    errorCode,
		Message: message,
		Errors:  errs,
	})
}

// Fail writes the envelope for an error already translated by apperror.ToHTTP.
func Fail(c *gin.Context, httpErr apperror.HTTPError) {
	env := ApiEnvelope{
		Success: false,
		Code:    httpErr.Code,
		Message: httpErr.Message,
		Errors:  httpErr.Errors,
	}
	if exposeCause {
		env.Error = httpErr.Cause
	}
	c.JSON(httpErr.Status, env)
}

// Abort is Error for middleware: it also stops the handler chain.
func Abort(c *gin.Context, status int, errorCode string, message string) {
	Error(c, status, errorCode, message, nil)
	c.Abort()
}
