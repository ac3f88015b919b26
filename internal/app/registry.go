package app

import (
	"context"
	"database/sql"
	"net/http"

	"worksync/internal/attendance"
	"worksync/internal/config"
	"worksync/internal/leave"
	"worksync/internal/messaging/kafka"
	"worksync/internal/middleware"
	"worksync/internal/rbac"
	"worksync/internal/rbac/infra"
	"worksync/internal/shared/apperror"
	"worksync/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

const (
	employeeRateLimit = rate.Limit(10)
	employeeRateBurst = 30
)

func registerModules(
	ctx context.Context,
	router *gin.Engine,
	cfg config.Config,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	logger := zap.L()

	// --- Repositories ---
	rbacRepo := rbac.NewRepository(gormDB)
	attendanceRepo := attendance.NewRepository(gormDB)
	leaveRepo := leave.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer()
	if err != nil {
		return err
	}
	if err := rbacRepo.SeedPermissions(ctx, rbac.DefaultPermissions()); err != nil {
		return err
	}
	rbacService := rbac.NewService(rbacRepo, enforcer, logger)
	if err := rbacService.LoadPolicy(ctx); err != nil {
		return err
	}

	// --- Services ---
	schedule, err := attendanceSchedule(cfg.Attendance)
	if err != nil {
		return err
	}
	attendanceService := attendance.NewService(db, attendanceRepo, schedule, logger)
	leaveService := leave.NewServiceWithOutbox(db, leaveRepo, outboxRepo, leavePolicy(cfg.Leave), rdb, logger)

	// --- Handlers ---
	attendanceHandler := attendance.NewHandler(attendanceService, logger)
	leaveHandler := leave.NewHandlerWithRedis(leaveService, rdb, logger)
	rbacHandler := rbac.NewHandler(rbacService)

	router.GET("/healthz", healthz(db, rdb))

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	api.Use(
		middleware.RequestID(),
		middleware.AuthMiddleware(cfg.JWTSecret),
		middleware.ContextLogger(logger.Named("http")),
		middleware.RateLimitByEmployee(employeeRateLimit, employeeRateBurst),
	)
	{
		attendance.RegisterRoutes(api, attendanceHandler, rbacService)
		leave.RegisterRoutes(api, leaveHandler, rbacService, rdb)
		rbac.RegisterRoutes(api, rbacHandler)
	}

	return nil
}

func healthz(db *sql.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if err := db.PingContext(ctx); err != nil {
			response.Error(c, http.StatusServiceUnavailable, apperror.CodeServiceUnavailable, "database unavailable", nil)
			return
		}
		if err := rdb.Ping(ctx).Err(); err != nil {
			response.Error(c, http.StatusServiceUnavailable, apperror.CodeServiceUnavailable, "redis unavailable", nil)
			return
		}
		response.Message(c, http.StatusOK, "ok")
	}
}
