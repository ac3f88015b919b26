package notification

import (
	"context"
	"errors"
	"fmt"

	"worksync/internal/employee"
	"worksync/internal/events"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Notifier mails employees when a manager decides on their leave.
type Notifier struct {
	employees employee.Repository
	mailer    Mailer
	logger    *zap.Logger
}

func NewNotifier(employees employee.Repository, mailer Mailer, logger ...*zap.Logger) *Notifier {
	l := zap.L().Named("notification.notifier")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.notifier")
	}
	return &Notifier{employees: employees, mailer: mailer, logger: l}
}

func (n *Notifier) HandleLeaveStatusChanged(ctx context.Context, e events.LeaveStatusChangedEvent) error {
	emp, err := n.employees.FindByID(ctx, e.EmployeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			n.logger.Warn("leave owner not found, notification dropped",
				zap.String("leave_id", e.LeaveID),
				zap.String("employee_id", e.EmployeeID),
			)
			return nil
		}
		return fmt.Errorf("find leave owner: %w", err)
	}

	msg, err := LeaveStatusMessage(emp.Email, emp.FullName(), e)
	if err != nil {
		return err
	}

	if err := n.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("send leave status mail: %w", err)
	}
	return nil
}
