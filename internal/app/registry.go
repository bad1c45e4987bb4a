package app

import (
	"database/sql"
	"path/filepath"

	"go-leave/internal/account"
	"go-leave/internal/approval"
	"go-leave/internal/credit"
	"go-leave/internal/employee"
	"go-leave/internal/leave"
	"go-leave/internal/messaging/kafka"
	"go-leave/internal/middleware"
	"go-leave/internal/notification"
	"go-leave/internal/rbac"
	"go-leave/internal/rbac/infra"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	// --- Repositories ---
	accountRepo := account.NewRepository(gormDB)
	approvalRepo := approval.NewRepository(gormDB, db)
	creditRepo := credit.NewRepository(gormDB, db)
	employeeRepo := employee.NewRepository(gormDB, db)
	leaveRepo := leave.NewRepository(gormDB, db)
	notificationRepo := notification.NewRepository(gormDB, db)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer(
		filepath.Join("internal", "rbac", "infra", "model.conf"),
		filepath.Join("internal", "rbac", "infra", "policy.csv"),
	)
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(enforcer)

	// --- Services ---
	creditService := credit.NewService(db, creditRepo, rdb)
	leaveService := leave.NewService(db, leaveRepo, notificationRepo, outboxRepo)
	approvalService := approval.NewService(db, approvalRepo, leaveRepo, accountRepo, creditService, outboxRepo)
	employeeService := employee.NewService(db, employeeRepo, accountRepo, creditService)

	// --- Handlers ---
	creditHandler := credit.NewHandler(creditService)
	leaveHandler := leave.NewHandler(leaveService)
	approvalHandler := approval.NewHandler(approvalService)
	employeeHandler := employee.NewHandler(employeeService)
	notificationHandler := notification.NewHandler(notificationRepo)

	// --- Routes Registration ---
	router.Use(middleware.RequestID())
	router.Use(middleware.ContextLogger(zap.L()))

	api := router.Group("/api/v1")
	{
		leave.RegisterRoutes(api, leaveHandler, rbacService)
		approval.RegisterRoutes(api, approvalHandler, rbacService)
		credit.RegisterRoutes(api, creditHandler, rbacService)
		employee.RegisterRoutes(api, employeeHandler, rbacService)
		notification.RegisterRoutes(api, notificationHandler, rbacService)
	}

	return nil
}
