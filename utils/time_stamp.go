package utils

import (
	"fmt"
	"time"
)

// Clock returns the current time. Components take one so tests can drive
// time explicitly.
type Clock func() time.Time

// SystemClock is the wall clock.
func SystemClock() time.Time {
	return time.Now()
}

// StampedName returns a unique file or session name:
//
//	<prefix>_YYYYMMDD_HHMMSS
func StampedName(prefix string, at time.Time) string {
	return fmt.Sprintf("%s_%s", prefix, at.Format("20060102_150405"))
}
