package rbac

import (
	"net/http"

	"worksync/internal/employee"
	"worksync/internal/shared/apperror"
	"worksync/internal/shared/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Me lists what the caller's role may do, for the frontend to hide actions.
func (h *Handler) Me(c *gin.Context) {
	raw, _ := c.Get("role")
	role, ok := employee.ParseRole(raw)
	if !ok {
		response.Fail(c, apperror.ToHTTP(apperror.ErrUnauthorized))
		return
	}

	resp, err := h.service.PermissionsFor(role)
	if err != nil {
		response.Fail(c, apperror.ToHTTP(err))
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}
