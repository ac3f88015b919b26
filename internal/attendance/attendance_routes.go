package attendance

import (
	"worksync/internal/middleware"
	"worksync/internal/rbac"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes expects r to already run the auth middleware.
func RegisterRoutes(r *gin.RouterGroup, h *Handler, rbacService middleware.RBACService) {
	attendances := r.Group("/attendance")
	{
		attendances.GET("",
			middleware.RBACAuthorize(rbacService, rbac.ResourceAttendance, rbac.ActionRead),
			middleware.RBACGrant(rbacService, rbac.ResourceAttendance, rbac.ActionReadAll, ContextCanReadAll),
			h.GetAll,
		)
		attendances.POST("/clock-in", middleware.RBACAuthorize(rbacService, rbac.ResourceAttendance, rbac.ActionClock), h.ClockIn)
		attendances.POST("/clock-out", middleware.RBACAuthorize(rbacService, rbac.ResourceAttendance, rbac.ActionClock), h.ClockOut)
	}
}
