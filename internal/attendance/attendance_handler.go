package attendance

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"worksync/internal/middleware"
	"worksync/internal/shared/apperror"
	"worksync/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ContextCanReadAll is set by the RBAC grant on the list route.
const ContextCanReadAll = "attendance_read_all"

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("attendance.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	if httpErr.Status >= http.StatusInternalServerError {
		h.logger.Error("attendance request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}
	response.Fail(c, httpErr)
}

func (h *Handler) employeeOrAbort(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.GetString(middleware.ContextEmployeeID))
	if err != nil {
		h.writeServiceError(c, apperror.ErrUnauthorized)
		return uuid.Nil, false
	}
	return id, true
}

// bindOptionalJSON accepts an empty body.
func bindOptionalJSON(c *gin.Context, obj any) error {
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		return apperror.MapValidationError(err)
	}
	return nil
}

func (h *Handler) ClockIn(c *gin.Context) {
	employeeID, ok := h.employeeOrAbort(c)
	if !ok {
		return
	}

	var req ClockInRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		h.writeServiceError(c, err)
		return
	}

	resp, err := h.service.ClockIn(c.Request.Context(), employeeID, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) ClockOut(c *gin.Context) {
	employeeID, ok := h.employeeOrAbort(c)
	if !ok {
		return
	}

	var req ClockOutRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		h.writeServiceError(c, err)
		return
	}

	resp, err := h.service.ClockOut(c.Request.Context(), employeeID, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetAll(c *gin.Context) {
	actorID, ok := h.employeeOrAbort(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultPageSize)))
	page, pageSize = normalizePage(page, pageSize)

	q := ListQuery{
		EmployeeID: c.Query("employee_id"),
		From:       c.Query("from"),
		To:         c.Query("to"),
		Page:       page,
		PageSize:   pageSize,
	}

	resp, total, err := h.service.GetAll(c.Request.Context(), actorID, c.GetBool(ContextCanReadAll), q)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	meta := response.NewPaginationMeta(total, page, pageSize)
	response.Success(c, http.StatusOK, resp, &meta)
}
