package util

import "time"

type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// FixedClock always reports the same instant. Tests use it to pin trade timestamps.
type FixedClock struct{ T time.Time }

func (c FixedClock) Now() time.Time { return c.T }
