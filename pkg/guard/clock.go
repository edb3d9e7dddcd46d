package guard

import "time"

// Clock abstracts time for watchdog deadlines so tests can inject a
// fake.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the wall-clock Clock.
var SystemClock Clock = systemClock{}
