// Package dates formats the instants and durations shown on the
// subscription panel.
package dates

import "time"

// Zone selects the timezone a date is rendered in.
type Zone int

const (
	Local Zone = iota
	UTC
)

const (
	// isoLayout matches what browsers produce for Date.toISOString.
	isoLayout = "2006-01-02T15:04:05.000Z07:00"
	// displayLayout is the en-US short date-time with seconds.
	displayLayout = "1/2/2006, 3:04:05 PM"

	secondsPerDay = 24 * 60 * 60
)

// FormatDate renders an ISO-8601 instant in the process-local timezone, or in
// UTC when zone is UTC. Unparsable input renders as "".
func FormatDate(iso string, zone Zone) string {
	if zone == UTC {
		return FormatDateIn(iso, time.UTC)
	}
	return FormatDateIn(iso, time.Local)
}

// FormatDateIn renders an ISO-8601 instant in loc. A nil loc means time.Local.
func FormatDateIn(iso string, loc *time.Location) string {
	t, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		return ""
	}
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(displayLayout)
}

// EpochToISO converts seconds since the epoch to an ISO-8601 UTC instant with
// millisecond precision.
func EpochToISO(seconds int64) string {
	return time.Unix(seconds, 0).UTC().Format(isoLayout)
}

// FormatEpoch renders seconds since the epoch in loc. A nil loc means
// time.Local.
//
// It formats the instant directly instead of going through EpochToISO:
// seconds*1000 overflows for huge license dates, and years past 9999 have no
// RFC 3339 form, so the round trip would render them as "".
func FormatEpoch(seconds int64, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return time.Unix(seconds, 0).In(loc).Format(displayLayout)
}

// SecondsToDays converts a duration in seconds to whole days, rounding
// towards negative infinity. 90000 seconds is 1 day, -1 second is -1 day.
func SecondsToDays(seconds int64) int64 {
	days := seconds / secondsPerDay
	if seconds%secondsPerDay != 0 && seconds < 0 {
		days--
	}
	return days
}
