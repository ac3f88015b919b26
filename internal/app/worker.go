package app

import (
	"context"
	"errors"
	"time"

	"worksync/internal/attendance"
	"worksync/internal/bootstrap"
	"worksync/internal/config"
	"worksync/internal/employee"
	"worksync/internal/messaging/kafka"
	"worksync/internal/messaging/kafka/producer"
	"worksync/internal/shared/connection"

	"go.uber.org/zap"
)

const outboxPollInterval = 3 * time.Second

// RunWorker relays the outbox to Kafka and runs the attendance daily close
// until the process is signalled.
func RunWorker(cfg config.Config) error {
	logger := zap.L().Named("app.worker")

	gormDB, err := connection.ConnectGORMWithRetry(cfg.DB, cfg.IsProduction())
	if err != nil {
		return err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if cfg.Kafka.Broker == "" {
		return errors.New("KAFKA_BROKER is required")
	}

	kafkaWriter, err := connection.ConnectKafkaWithRetry(cfg.Kafka.Broker, cfg.DB.MaxRetries)
	if err != nil {
		return err
	}
	defer kafkaWriter.Close()

	schedule, err := attendanceSchedule(cfg.Attendance)
	if err != nil {
		return err
	}

	outboxRepo := kafka.NewOutboxRepository(sqlDB)
	closer := attendance.NewDailyCloser(
		sqlDB,
		attendance.NewRepository(gormDB),
		employee.NewRepository(gormDB),
		schedule,
		logger,
	)

	scheduler, err := attendance.NewScheduler(cfg.Attendance.Schedule, closer, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go producer.ProcessOutboxEvents(ctx, outboxRepo, kafkaWriter, logger, outboxPollInterval)
	scheduler.Start()

	sig := bootstrap.WaitForSignal()
	logger.Info("worker shutting down", zap.String("signal", sig.String()))

	cancel()
	<-scheduler.Stop().Done()

	return nil
}
