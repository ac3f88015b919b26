package middleware

import (
	"worksync/internal/employee"
	"worksync/internal/rbac"
	"worksync/internal/shared/apperror"
	"worksync/internal/shared/contextutil"
	"worksync/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RBACService is anything that can answer a role/resource/action question.
type RBACService interface {
	Enforce(req rbac.EnforceRequest) (bool, error)
}

// RBACAuthorize rejects the request with 403 unless the caller's role may
// perform action on resource.
func RBACAuthorize(service RBACService, resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, ok := enforce(c, service, resource, action)
		if !ok {
			return
		}
		if !allowed {
			response.Abort(c, apperror.ErrForbidden.HTTPStatus, apperror.ErrForbidden.Code, apperror.ErrForbidden.Message)
			return
		}
		c.Next()
	}
}

// RBACGrant never rejects; it records the decision under flag so a handler
// can widen its query (e.g. list every employee's leave).
func RBACGrant(service RBACService, resource, action, flag string) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, ok := enforce(c, service, resource, action)
		if !ok {
			return
		}
		c.Set(flag, allowed)
		c.Next()
	}
}

func enforce(c *gin.Context, service RBACService, resource, action string) (bool, bool) {
	raw, exists := c.Get(ContextRole)
	role, valid := employee.ParseRole(raw)
	if !exists || !valid {
		response.Abort(c, apperror.ErrUnauthorized.HTTPStatus, apperror.ErrUnauthorized.Code, "missing auth context")
		return false, false
	}

	allowed, err := service.Enforce(rbac.EnforceRequest{
		Role:     role,
		Resource: resource,
		Action:   action,
	})
	if err != nil {
		contextutil.GetLogger(c.Request.Context(), zap.L()).Error("rbac enforce failed",
			zap.String("resource", resource),
			zap.String("action", action),
			zap.Error(err),
		)
		response.Fail(c, apperror.ToHTTP(err))
		c.Abort()
		return false, false
	}
	return allowed, true
}
