package consumer

import (
	"context"
	"encoding/json"

	"worksync/internal/events"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is the part of *kafkago.Reader the consumer needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

type LeaveStatusHandler interface {
	HandleLeaveStatusChanged(ctx context.Context, event events.LeaveStatusChangedEvent) error
}

// ConsumeLeaveStatusChanged runs until ctx is done. Every message is
// committed once handled; a failed notification is logged and not retried.
func ConsumeLeaveStatusChanged(
	ctx context.Context,
	reader MessageReader,
	handler LeaveStatusHandler,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.leave_status")
	log.Info("leave status consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("leave status consumer stopped")
				return
			}
			log.Error("fetch leave status message failed", zap.Error(err))
			continue
		}

		handleMessage(ctx, reader, handler, msg, log)
	}
}

func handleMessage(
	ctx context.Context,
	reader MessageReader,
	handler LeaveStatusHandler,
	msg kafkago.Message,
	log *zap.Logger,
) {
	if eventType := header(msg, "event_type"); eventType != "" && eventType != events.LeaveStatusChangedType {
		log.Debug("skipping unrelated event", zap.String("event_type", eventType))
		commit(ctx, reader, msg, log)
		return
	}

	var event events.LeaveStatusChangedEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		log.Error("decode leave status event failed", zap.Int64("offset", msg.Offset), zap.Error(err))
		commit(ctx, reader, msg, log)
		return
	}

	fields := []zap.Field{
		zap.String("request_id", header(msg, "request_id")),
		zap.String("leave_id", event.LeaveID),
		zap.String("employee_id", event.EmployeeID),
		zap.String("status", event.Status),
	}

	if err := handler.HandleLeaveStatusChanged(ctx, event); err != nil {
		log.Error("leave status notification failed", append(fields, zap.Error(err))...)
	} else {
		log.Info("leave status notification sent", fields...)
	}

	commit(ctx, reader, msg, log)
}

func commit(ctx context.Context, reader MessageReader, msg kafkago.Message, log *zap.Logger) {
	if err := reader.CommitMessages(ctx, msg); err != nil {
		log.Error("commit leave status message failed", zap.Int64("offset", msg.Offset), zap.Error(err))
	}
}

func header(msg kafkago.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}
