package leave

import (
	"worksync/internal/middleware"
	"worksync/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RegisterRoutes expects r to already run the auth middleware.
func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService middleware.RBACService,
	rdb ...*redis.Client,
) {
	var redisClient *redis.Client
	if len(rdb) > 0 {
		redisClient = rdb[0]
	}

	leaves := r.Group("/leave-request")
	{
		if redisClient != nil {
			leaves.POST(
				"/addLeave",
				middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionCreate),
				middleware.Idempotency(redisClient),
				handler.Create,
			)
		} else {
			leaves.POST("/addLeave", middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionCreate), handler.Create)
		}

		leaves.GET("",
			middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionRead),
			middleware.RBACGrant(rbacService, rbac.ResourceLeave, rbac.ActionReadAll, ContextCanReadAll),
			handler.GetAll,
		)
		leaves.GET("/balance", middleware.RBACAuthorize(rbacService, rbac.ResourceLeaveBalance, rbac.ActionRead), handler.GetBalance)
		leaves.GET("/status", middleware.RBACAuthorize(rbacService, rbac.ResourceLeaveStatus, rbac.ActionRead), handler.GetStatusSummary)
		leaves.GET("/status/:employeeId",
			middleware.RBACAuthorize(rbacService, rbac.ResourceLeaveStatus, rbac.ActionRead),
			middleware.RBACGrant(rbacService, rbac.ResourceLeaveStatus, rbac.ActionReadAll, ContextCanReadAllStatus),
			handler.GetStatusSummary,
		)
		leaves.GET("/:id", middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionRead), handler.GetByID)
		leaves.PUT("/:id", middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionUpdate), handler.Update)
		leaves.PATCH("/:id/status", middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionChangeStatus), handler.ChangeStatus)
		leaves.DELETE("/deleteLeave/:id", middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionDelete), handler.Delete)
	}
}
