package attendance

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type clock struct {
	hour   int
	minute int
}

func parseClock(v string) (clock, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(v))
	if err != nil {
		return clock{}, fmt.Errorf("invalid time of day %q: %w", v, err)
	}
	return clock{hour: t.Hour(), minute: t.Minute()}, nil
}

func (c clock) before(t time.Time) bool {
	return t.Hour() > c.hour || (t.Hour() == c.hour && t.Minute() > c.minute)
}

// Schedule holds the office hours used to judge clock-ins and to close the day.
type Schedule struct {
	lateAfter  clock
	checkoutAt clock
	grace      time.Duration
	loc        *time.Location
}

func NewSchedule(lateAfter, checkoutAt, timeZone string, grace time.Duration) (Schedule, error) {
	late, err := parseClock(lateAfter)
	if err != nil {
		return Schedule{}, err
	}
	checkout, err := parseClock(checkoutAt)
	if err != nil {
		return Schedule{}, err
	}
	loc, err := time.LoadLocation(timeZone)
	if err != nil {
		return Schedule{}, fmt.Errorf("invalid time zone %q: %w", timeZone, err)
	}
	if grace < 0 {
		grace = 0
	}
	return Schedule{lateAfter: late, checkoutAt: checkout, grace: grace, loc: loc}, nil
}

func DefaultSchedule() Schedule {
	return Schedule{
		lateAfter:  clock{hour: 9, minute: 15},
		checkoutAt: clock{hour: 18},
		loc:        time.UTC,
	}
}

func (s Schedule) Location() *time.Location { return s.loc }

// Day is the attendance date of t in the office zone, as UTC midnight.
func (s Schedule) Day(t time.Time) time.Time {
	l := t.In(s.loc)
	return time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, time.UTC)
}

// StatusFor is LATE strictly after the late-after minute, PRESENT otherwise.
func (s Schedule) StatusFor(clockIn time.Time) Status {
	if s.lateAfter.before(clockIn.In(s.loc)) {
		return StatusLate
	}
	return StatusPresent
}

// CheckoutTime is the automatic clock-out instant for day.
func (s Schedule) CheckoutTime(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), s.checkoutAt.hour, s.checkoutAt.minute, 0, 0, s.loc).UTC()
}

// CheckoutDue reports whether open records of day may be closed at now.
func (s Schedule) CheckoutDue(day, now time.Time) bool {
	return !now.Before(s.CheckoutTime(day).Add(s.grace))
}

// AutoCheckoutAt is the clock-out stamped on an open record. Someone who
// clocked in after the checkout time is closed at their own clock-in.
func (s Schedule) AutoCheckoutAt(a Attendance) time.Time {
	at := s.CheckoutTime(a.AttendanceDate)
	if a.ClockIn != nil && a.ClockIn.After(at) {
		return a.ClockIn.UTC()
	}
	return at
}

func IsWorkday(day time.Time) bool {
	wd := day.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// PlanAbsences returns the active employees with neither an attendance row
// nor an approved leave covering the day, in input order.
func PlanAbsences(active []uuid.UUID, recorded, onLeave []uuid.UUID) []uuid.UUID {
	skip := make(map[uuid.UUID]struct{}, len(recorded)+len(onLeave))
	for _, id := range recorded {
		skip[id] = struct{}{}
	}
	for _, id := range onLeave {
		skip[id] = struct{}{}
	}

	var out []uuid.UUID
	for _, id := range active {
		if _, ok := skip[id]; ok {
			continue
		}
		skip[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
