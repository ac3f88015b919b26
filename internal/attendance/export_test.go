package attendance

import "time"

func SetClock(s Service, now func() time.Time) {
	s.(*service).now = now
}

func SetCloserClock(d *DailyCloser, now func() time.Time) {
	d.now = now
}
