package leave_test

import (
	"testing"
	"time"

	"worksync/internal/leave"

	"github.com/stretchr/testify/assert"
)

func approved(t leave.LeaveType, start, end time.Time) leave.Leave {
	return leave.Leave{LeaveType: t, StartDate: start, EndDate: end, Status: leave.StatusApproved}
}

func TestUsedDays_ClipsAtYearBoundary(t *testing.T) {
	leaves := []leave.Leave{
		approved(leave.TypeAnnual, date(2026, time.December, 28), date(2027, time.January, 3)),
	}

	assert.Equal(t, 4, leave.UsedDays(leaves, 2026))
	assert.Equal(t, 3, leave.UsedDays(leaves, 2027))
	assert.Equal(t, 0, leave.UsedDays(leaves, 2028))
}

func TestUsedDays_OnlyApproved(t *testing.T) {
	leaves := []leave.Leave{
		approved(leave.TypeSick, date(2026, time.March, 2), date(2026, time.March, 4)),
		{LeaveType: leave.TypeSick, StartDate: date(2026, time.April, 1), EndDate: date(2026, time.April, 5), Status: leave.StatusPending},
		{LeaveType: leave.TypeCasual, StartDate: date(2026, time.May, 1), EndDate: date(2026, time.May, 1), Status: leave.StatusRejected},
		{LeaveType: leave.TypeCasual, StartDate: date(2026, time.June, 1), EndDate: date(2026, time.June, 2), Status: leave.StatusCancelled},
	}

	assert.Equal(t, 3, leave.UsedDays(leaves, 2026))
}

func TestUsedDaysByType(t *testing.T) {
	leaves := []leave.Leave{
		approved(leave.TypeSick, date(2026, time.March, 2), date(2026, time.March, 4)),
		approved(leave.TypeSick, date(2026, time.March, 20), date(2026, time.March, 20)),
		approved(leave.TypeCasual, date(2025, time.December, 30), date(2026, time.January, 2)),
	}

	used := leave.UsedDaysByType(leaves, 2026)
	assert.Equal(t, 4, used[leave.TypeSick])
	assert.Equal(t, 2, used[leave.TypeCasual])
	assert.Equal(t, 0, used[leave.TypeAnnual])
}

func TestPolicy(t *testing.T) {
	p := leave.DefaultPolicy()

	assert.Equal(t, 25, p.TotalPerYear())
	assert.Equal(t, 30, p.MaxSpanDays())
	assert.Equal(t, 10, p.Entitlement(leave.TypeSick))
	assert.Equal(t, 10, p.Entitlement(leave.TypeAnnual))
	assert.Equal(t, 5, p.Entitlement(leave.TypeCasual))
	assert.Equal(t, 0, p.Entitlement("unpaid"))

	assert.Equal(t, 7, p.Remaining(leave.TypeSick, 3))
	assert.Equal(t, 0, p.Remaining(leave.TypeCasual, 8))
	assert.Equal(t, []leave.LeaveType{leave.TypeSick, leave.TypeAnnual, leave.TypeCasual}, p.Types())
}
