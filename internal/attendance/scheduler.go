package attendance

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const dailyCloseTimeout = 4 * time.Minute

// cronLogger routes cron's own logging through zap.
type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}

// NewScheduler registers the daily close on expr, evaluated in the office
// zone. The caller starts and stops the returned cron.
func NewScheduler(expr string, closer *DailyCloser, logger ...*zap.Logger) (*cron.Cron, error) {
	l := zap.L().Named("attendance.cron")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.cron")
	}
	cl := cronLogger{log: l.Sugar()}

	c := cron.New(
		cron.WithLocation(closer.schedule.Location()),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	_, err := c.AddFunc(expr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), dailyCloseTimeout)
		defer cancel()
		if err := closer.Run(ctx); err != nil {
			l.Error("daily close failed", zap.Error(err))
		}
	})
	if err != nil {
		return nil, err
	}

	l.Info("attendance daily close scheduled", zap.String("schedule", expr))
	return c, nil
}
