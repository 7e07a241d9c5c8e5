package internal

import "time"

// ISO8601 is the layout used for all timestamps rendered to clients: UTC with
// millisecond precision, e.g. 2024-03-01T09:30:00.000Z
const ISO8601 = "2006-01-02T15:04:05.000Z07:00"

// CurrentTimestamp is *the* way to get a current timestamps in lastquery and
// time.Now() should be avoided.
//
// We want timestamps to be rounded to nearest millisecond so that they can be
// persisted/serialised and not lose precision thereby making comparisons and
// testing easier.
//
// We also want timestamps to be in the UTC time zone, so that rendering with
// ISO8601 always produces a trailing 'Z'.
func CurrentTimestamp() time.Time {
	return time.Now().Round(time.Millisecond).UTC()
}
