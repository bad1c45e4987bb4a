package approval

import (
	"go-leave/internal/middleware"
	"go-leave/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
) {
	decisions := r.Group("/leaves/:id")
	decisions.Use(middleware.AuthMiddleware())
	{
		decisions.POST("/decision", middleware.RBACAuthorize(rbacService, "leave", "approve"), handler.Decide)
		decisions.GET("/decision", middleware.RBACAuthorize(rbacService, "leave", "review"), handler.GetByLeaveID)
	}
}
