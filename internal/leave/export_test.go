package leave

import "time"

// SetClock pins the service clock for tests.
func SetClock(s Service, now func() time.Time) {
	s.(*service).now = now
}
