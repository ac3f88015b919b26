package leave_test

import (
	"testing"

	"worksync/internal/leave"

	"github.com/stretchr/testify/assert"
)

func TestCountStatuses_SelfView(t *testing.T) {
	raw := map[leave.Status]int64{
		leave.StatusPending:   1,
		leave.StatusApproved:  4,
		leave.StatusRejected:  1,
		leave.StatusCancelled: 0,
	}

	summary := leave.CountStatuses(raw, true)

	assert.Equal(t, int64(6), summary.Total)
	assert.Len(t, summary.Counts, 4)
	assert.Equal(t, 16.7, summary.Percentages[leave.StatusPending])
	assert.Equal(t, 66.7, summary.Percentages[leave.StatusApproved])
	assert.Equal(t, 0.0, summary.Percentages[leave.StatusCancelled])
}

func TestCountStatuses_ReviewerView(t *testing.T) {
	raw := map[leave.Status]int64{
		leave.StatusPending:   3,
		leave.StatusApproved:  10,
		leave.StatusRejected:  1,
		leave.StatusCancelled: 2,
	}

	summary := leave.CountStatuses(raw, false)

	assert.Equal(t, int64(4), summary.Total)
	assert.Equal(t, map[leave.Status]int64{leave.StatusPending: 3, leave.StatusRejected: 1}, summary.Counts)
	assert.Equal(t, 75.0, summary.Percentages[leave.StatusPending])
	assert.Equal(t, 25.0, summary.Percentages[leave.StatusRejected])
	assert.NotContains(t, summary.Percentages, leave.StatusApproved)
}

func TestCountStatuses_EmptyOmitsPercentages(t *testing.T) {
	summary := leave.CountStatuses(map[leave.Status]int64{}, true)

	assert.Equal(t, int64(0), summary.Total)
	assert.Nil(t, summary.Percentages)
	assert.Equal(t, int64(0), summary.Counts[leave.StatusApproved])
}
