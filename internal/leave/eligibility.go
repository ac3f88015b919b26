package leave

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	leaveerrors "worksync/internal/leave/errors"
)

const (
	minReasonLength = 10
	maxReasonLength = 500
)

// LeaveInput is the raw, unvalidated shape of a create or merged update.
type LeaveInput struct {
	LeaveType string
	Reason    string
	StartDate string
	EndDate   string
}

// Draft is a LeaveInput that passed field validation.
type Draft struct {
	LeaveType LeaveType
	Reason    string
	StartDate time.Time
	EndDate   time.Time
	Days      int
}

// ValidateFields is the first gate stage. It collects every field problem
// before failing so the client sees them all at once.
func ValidateFields(in LeaveInput, today time.Time, policy Policy) (Draft, error) {
	var (
		errs  []string
		draft Draft
	)

	leaveType := strings.TrimSpace(in.LeaveType)
	switch {
	case leaveType == "":
		errs = append(errs, "leaveType is required")
	case !LeaveType(leaveType).Valid():
		errs = append(errs, "leaveType must be one of: sick, annual, casual")
	default:
		draft.LeaveType = LeaveType(leaveType)
	}

	reason := strings.TrimSpace(in.Reason)
	switch n := utf8.RuneCountInString(reason); {
	case n == 0:
		errs = append(errs, "Reason is required")
	case n < minReasonLength:
		errs = append(errs, fmt.Sprintf("Reason must be at least %d characters", minReasonLength))
	case n > maxReasonLength:
		errs = append(errs, fmt.Sprintf("Reason must not exceed %d characters", maxReasonLength))
	default:
		draft.Reason = reason
	}

	start, startOK := parseRequiredDate(in.StartDate, "startDate", &errs)
	end, endOK := parseRequiredDate(in.EndDate, "endDate", &errs)

	if startOK && start.Before(DateOnly(today)) {
		errs = append(errs, "Start date cannot be in the past")
	}
	if startOK && endOK {
		if end.Before(start) {
			errs = append(errs, "End date must be after start date")
		} else if limit := policy.MaxSpanDays(); limit > 0 && DayCount(start, end) > limit {
			errs = append(errs, fmt.Sprintf("Leave duration cannot exceed %d days", limit))
		}
	}

	if len(errs) > 0 {
		return Draft{}, leaveerrors.Validation(errs)
	}

	draft.StartDate = start
	draft.EndDate = end
	draft.Days = DayCount(start, end)
	return draft, nil
}

func parseRequiredDate(v, field string, errs *[]string) (time.Time, bool) {
	if strings.TrimSpace(v) == "" {
		*errs = append(*errs, field+" is required")
		return time.Time{}, false
	}
	t, ok := ParseDate(v)
	if !ok {
		*errs = append(*errs, field+" must be a valid date")
		return time.Time{}, false
	}
	return t, true
}

// CheckYearlyCap is the last gate stage: approved days already used in the
// year plus the requested days must stay within the policy total.
func CheckYearlyCap(policy Policy, used, requested int) error {
	if used+requested > policy.TotalPerYear() {
		return leaveerrors.ErrLimitExceeded(policy.TotalPerYear())
	}
	return nil
}
