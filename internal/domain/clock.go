package domain

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// TimestampLayout is the ISO-8601 form written to created_at and updated_at.
// The fixed microsecond width keeps stored timestamps lexicographically ordered.
const TimestampLayout = "2006-01-02T15:04:05.000000Z07:00"

// clock is a package-level time source so tests can freeze time via SetClock.
// Production code uses the real clock; tests inject a fake for deterministic output.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source used for record timestamps. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

// Timestamp returns the current clock time in TimestampLayout, in UTC.
func Timestamp() string {
	return clock.Now().UTC().Format(TimestampLayout)
}

// FormatTimestamp renders t the same way Timestamp does.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
