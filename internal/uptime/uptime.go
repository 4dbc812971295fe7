// Package uptime reads the time elapsed since boot, counting time spent in
// suspend, the way the traffic accounting service does.
package uptime

import "time"

// Clock reports elapsed time since a fixed reference instant.
type Clock interface {
	Elapsed() (time.Duration, error)
}

// BootClock measures from system boot.
type BootClock struct{}

func (BootClock) Elapsed() (time.Duration, error) {
	return sinceBoot()
}

// Fixed always reports the same duration.
type Fixed time.Duration

func (f Fixed) Elapsed() (time.Duration, error) {
	return time.Duration(f), nil
}
