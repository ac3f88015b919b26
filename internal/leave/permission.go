package leave

import (
	"worksync/internal/employee"
	leaveerrors "worksync/internal/leave/errors"

	"github.com/google/uuid"
)

type Action string

const (
	ActionView    Action = "view"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionCancel  Action = "cancel"
	// ActionReopen moves a leave back to pending.
	ActionReopen Action = "reopen"
)

// Actor is the authenticated caller.
type Actor struct {
	ID   uuid.UUID
	Role employee.Role
}

// Allowed is the permission matrix for a single leave request.
func Allowed(l Leave, actor Actor, action Action) bool {
	isOwner := l.IsOwnedBy(actor.ID)
	isAdminOrManager := actor.Role.IsAdminOrManager()
	isPending := l.Status == StatusPending

	switch action {
	case ActionView:
		return isOwner || isAdminOrManager || l.Status == StatusApproved
	case ActionUpdate, ActionDelete, ActionCancel:
		return isOwner && isPending
	case ActionApprove, ActionReject:
		return isAdminOrManager && isPending
	case ActionReopen:
		return isOwner
	default:
		return false
	}
}

// ActionForStatus maps a requested target status to the action that guards it.
func ActionForStatus(target Status) (Action, bool) {
	switch target {
	case StatusApproved:
		return ActionApprove, true
	case StatusRejected:
		return ActionReject, true
	case StatusCancelled:
		return ActionCancel, true
	case StatusPending:
		return ActionReopen, true
	default:
		return "", false
	}
}

// CanDelete is the status gate applied on top of ownership when deleting.
func CanDelete(status Status) error {
	switch status {
	case StatusPending, StatusCancelled:
		return nil
	default:
		return leaveerrors.ErrCannotDelete
	}
}
