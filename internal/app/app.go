package app

import (
	"context"
	"time"

	"worksync/internal/attendance"
	"worksync/internal/config"
	"worksync/internal/employee"
	"worksync/internal/leave"
	"worksync/internal/messaging/kafka"
	"worksync/internal/rbac"
	"worksync/internal/shared/connection"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const migrateTimeout = 30 * time.Second

// BuildApp connects infrastructure and registers every module on router.
// The returned func releases the connections.
func BuildApp(router *gin.Engine, cfg config.Config) (func(), error) {
	logger := zap.L().Named("app")

	gormDB, err := connection.ConnectGORMWithRetry(cfg.DB, cfg.IsProduction())
	if err != nil {
		return nil, err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, err
	}
	logger.Info("database connection established")

	redisClient, err := connection.ConnectRedisWithRetry(cfg.RedisAddr, cfg.DB.MaxRetries)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	logger.Info("redis connection established")

	cleanup := func() {
		_ = redisClient.Close()
		_ = sqlDB.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), migrateTimeout)
	defer cancel()

	if cfg.DB.AutoMigrate {
		if err := migrate(ctx, gormDB); err != nil {
			cleanup()
			return nil, err
		}
		logger.Info("schema migrated")
	}

	if err := registerModules(ctx, router, cfg, sqlDB, gormDB, redisClient); err != nil {
		cleanup()
		return nil, err
	}

	return cleanup, nil
}

func migrate(ctx context.Context, gormDB *gorm.DB) error {
	if err := gormDB.WithContext(ctx).AutoMigrate(
		&employee.Employee{},
		&leave.Leave{},
		&attendance.Attendance{},
		&rbac.RolePermissionRow{},
	); err != nil {
		return err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	return kafka.EnsureOutboxTable(ctx, sqlDB)
}

func leavePolicy(cfg config.LeaveConfig) leave.Policy {
	return leave.NewPolicy(cfg.Sick, cfg.Annual, cfg.Casual, cfg.TotalPerYear, cfg.MaxSpanDays)
}

func attendanceSchedule(cfg config.AttendanceConfig) (attendance.Schedule, error) {
	return attendance.NewSchedule(cfg.LateAfter, cfg.CheckoutAt, cfg.TimeZone, cfg.CheckoutGrace)
}
