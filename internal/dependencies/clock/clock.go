package clock

import "time"

// Clock is the source of timestamps for entries, events and tokens
type Clock interface {
	Now() time.Time
}

// UTCClock reads the system clock in UTC at microsecond precision, the
// resolution Postgres keeps for timestamptz. Timestamps then compare equal
// whichever backend stored them.
type UTCClock struct{}

func New() UTCClock {
	return UTCClock{}
}

func (UTCClock) Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
