package providers

import "time"

// Clock abstracts time.Now so the notification date arithmetic and the sync
// queue are testable with a fixed instant.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func NewClock() Clock {
	return systemClock{}
}
