package timer

import "time"

// Clock provides the current time. Tests swap in a manual clock.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the monotonic wall clock.
var SystemClock Clock = systemClock{}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}
