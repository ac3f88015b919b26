package leave

// UsedDays sums approved leave days falling inside year, clipping leaves
// that cross Jan 1 or Dec 31.
func UsedDays(leaves []Leave, year int) int {
	total := 0
	for _, days := range UsedDaysByType(leaves, year) {
		total += days
	}
	return total
}

func UsedDaysByType(leaves []Leave, year int) map[LeaveType]int {
	used := make(map[LeaveType]int)
	for _, l := range leaves {
		if l.Status != StatusApproved {
			continue
		}
		start, end, ok := clipToYear(l.StartDate, l.EndDate, year)
		if !ok {
			continue
		}
		used[l.LeaveType] += DayCount(start, end)
	}
	return used
}
