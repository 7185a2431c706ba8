package reservation

import (
	"math"
	"time"
)

// StayDateLayout is the wire format for calendar stay dates.
const StayDateLayout = "2006-01-02"

// ParseStayDate parses an ISO calendar date into UTC midnight.
func ParseStayDate(s string) (time.Time, error) {
	t, err := time.Parse(StayDateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// FormatStayDate renders a date in the ISO calendar format.
func FormatStayDate(t time.Time) string {
	return t.UTC().Format(StayDateLayout)
}

// StartOfToday returns UTC midnight of the current day.
func StartOfToday(now time.Time) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// RangesOverlap reports whether two stay intervals conflict under half-open
// semantics: an interval ending at or before the other's start does not
// overlap, so a checkout on another stay's check-in day is allowed.
func RangesOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// Nights returns the number of billable nights between check-in and check-out:
// the ceiling of the day difference, never less than one.
func Nights(checkIn, checkOut time.Time) int {
	days := checkOut.Sub(checkIn).Hours() / 24
	n := int(math.Ceil(days))
	if n < 1 {
		return 1
	}
	return n
}
