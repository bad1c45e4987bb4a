package credit

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
	credits := r.Group("/credits")
	credits.Use(middleware.AuthMiddleware())
	{
		credits.GET("/:employee_id", middleware.RBACAuthorize(rbacService, "credit", "read"), handler.GetBalance)
		credits.GET("/:employee_id/used", middleware.RBACAuthorize(rbacService, "credit", "read"), handler.UsedDays)
		credits.POST("/:employee_id/accrue", middleware.RBACAuthorize(rbacService, "credit", "accrue"), handler.Accrue)
	}
}
