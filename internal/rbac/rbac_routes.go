package rbac

import "github.com/gin-gonic/gin"

// RegisterRoutes expects r to already run the auth middleware.
func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	group := r.Group("/rbac")
	{
		group.GET("/me", handler.Me)
	}
}
