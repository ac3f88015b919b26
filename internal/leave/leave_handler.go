package leave

import (
	"net/http"
	"strconv"
	"time"

	"worksync/internal/employee"
	leaveerrors "worksync/internal/leave/errors"
	"worksync/internal/middleware"
	"worksync/internal/shared/apperror"
	"worksync/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Set by the RBAC grants on the list and status-summary routes.
const (
	ContextCanReadAll       = "leave_read_all"
	ContextCanReadAllStatus = "leave_status_read_all"
)

const idempotencyTTL = 24 * time.Hour

type Handler struct {
	service Service
	rdb     *redis.Client
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	return NewHandlerWithRedis(service, nil, logger...)
}

func NewHandlerWithRedis(service Service, rdb *redis.Client, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("leave.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.handler")
	}
	return &Handler{service: service, rdb: rdb, logger: l}
}

func getActor(c *gin.Context) (Actor, bool) {
	id, err := uuid.Parse(c.GetString(middleware.ContextEmployeeID))
	if err != nil {
		return Actor{}, false
	}
	raw, _ := c.Get(middleware.ContextRole)
	role, ok := employee.ParseRole(raw)
	if !ok {
		return Actor{}, false
	}
	return Actor{ID: id, Role: role}, true
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	if httpErr.Status >= http.StatusInternalServerError {
		h.logger.Error("leave request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}
	response.Fail(c, httpErr)
}

func (h *Handler) actorOrAbort(c *gin.Context) (Actor, bool) {
	actor, ok := getActor(c)
	if !ok {
		h.writeServiceError(c, apperror.ErrUnauthorized)
	}
	return actor, ok
}

func (h *Handler) Create(c *gin.Context) {
	lockKey := c.GetString(middleware.ContextIdempotencyLockKey)

	if h.rdb != nil && lockKey != "" {
		defer h.rdb.Del(c.Request.Context(), lockKey)
	}

	actor, ok := h.actorOrAbort(c)
	if !ok {
		return
	}

	var req CreateLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeServiceError(c, leaveerrors.ErrInvalidBody)
		return
	}

	resp, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	if err := middleware.SaveIdempotentResponse(c, h.rdb, http.StatusCreated, resp, idempotencyTTL); err != nil {
		h.logger.Warn("cache idempotent response failed", zap.String("leave_id", resp.ID), zap.Error(err))
	}

	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) GetAll(c *gin.Context) {
	actor, ok := h.actorOrAbort(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultPageSize)))
	page, pageSize = normalizePage(page, pageSize)

	q := ListQuery{
		EmployeeID: c.Query("employee_id"),
		Status:     c.Query("status"),
		Page:       page,
		PageSize:   pageSize,
	}

	resp, total, err := h.service.GetAll(c.Request.Context(), actor, c.GetBool(ContextCanReadAll), q)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	meta := response.NewPaginationMeta(total, page, pageSize)
	response.Success(c, http.StatusOK, resp, &meta)
}

func (h *Handler) GetByID(c *gin.Context) {
	actor, ok := h.actorOrAbort(c)
	if !ok {
		return
	}

	resp, err := h.service.GetByID(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Update(c *gin.Context) {
	actor, ok := h.actorOrAbort(c)
	if !ok {
		return
	}

	var req UpdateLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeServiceError(c, leaveerrors.ErrInvalidBody)
		return
	}

	resp, err := h.service.Update(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) ChangeStatus(c *gin.Context) {
	actor, ok := h.actorOrAbort(c)
	if !ok {
		return
	}

	var req ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.ChangeStatus(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Delete(c *gin.Context) {
	actor, ok := h.actorOrAbort(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Message(c, http.StatusOK, "Leave request deleted successfully.")
}

func (h *Handler) GetBalance(c *gin.Context) {
	actor, ok := h.actorOrAbort(c)
	if !ok {
		return
	}

	resp, err := h.service.GetBalance(c.Request.Context(), actor)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetStatusSummary(c *gin.Context) {
	actor, ok := h.actorOrAbort(c)
	if !ok {
		return
	}

	resp, err := h.service.GetStatusSummary(c.Request.Context(), actor, c.GetBool(ContextCanReadAllStatus), c.Param("employeeId"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}
