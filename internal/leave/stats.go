package leave

import "math"

// StatusSummary is the per-status breakdown of one employee's leave requests.
type StatusSummary struct {
	EmployeeID  string             `json:"employeeId"`
	Counts      map[Status]int64   `json:"counts"`
	Total       int64              `json:"total"`
	Percentages map[Status]float64 `json:"percentages,omitempty"`
}

// visibleStatuses: employees see their whole history, reviewers only what
// still needs or needed attention.
func visibleStatuses(selfView bool) []Status {
	if selfView {
		return []Status{StatusPending, StatusApproved, StatusRejected, StatusCancelled}
	}
	return []Status{StatusPending, StatusRejected}
}

// CountStatuses keeps the statuses the viewer may see, totals them and adds
// percentages rounded to one decimal. Percentages are omitted when total is 0.
func CountStatuses(raw map[Status]int64, selfView bool) StatusSummary {
	summary := StatusSummary{Counts: make(map[Status]int64)}
	statuses := visibleStatuses(selfView)

	for _, s := range statuses {
		summary.Counts[s] = raw[s]
		summary.Total += raw[s]
	}
	if summary.Total == 0 {
		return summary
	}

	summary.Percentages = make(map[Status]float64, len(statuses))
	for _, s := range statuses {
		summary.Percentages[s] = round1(float64(summary.Counts[s]) / float64(summary.Total) * 100)
	}
	return summary
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
