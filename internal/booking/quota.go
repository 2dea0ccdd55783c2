package booking

import (
	"strings"
	"time"

	"github.com/iliyamo/building-reservation/internal/model"
)

// WeeklyQuota is the maximum number of confirmed reservations a single
// unit may hold within one Monday-starting week.
const WeeklyQuota = 2

// DateOnly strips the time-of-day and location from t, returning the same
// calendar day at midnight UTC.  All date comparisons in this package go
// through it so that two values naming the same calendar day compare equal
// regardless of the zone or clock time they were parsed with.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDate reports whether a and b fall on the same calendar day.
func SameDate(a, b time.Time) bool {
	return DateOnly(a).Equal(DateOnly(b))
}

// WeekRange returns the Monday and Sunday (both at midnight UTC) of the
// week containing date.  Weeks start on Monday.
func WeekRange(date time.Time) (monday, sunday time.Time) {
	day := DateOnly(date)
	// time.Weekday numbers Sunday as 0; shift so Monday becomes 0.
	offset := (int(day.Weekday()) + 6) % 7
	monday = day.AddDate(0, 0, -offset)
	sunday = monday.AddDate(0, 0, 6)
	return monday, sunday
}

// SameUnit reports whether a reservation belongs to the unit addressed by
// portal/floor/door.  Portal and floor use the building's addressing
// scheme verbatim; door labels are compared case-insensitively because
// physical door plates mix casing ("a" and "A" are the same door).
func SameUnit(r model.Reservation, portal, floor, door string) bool {
	return r.Portal == portal && r.Floor == floor && strings.EqualFold(r.Door, door)
}

// CountWeekly returns how many of the given reservations belong to the
// unit portal/floor/door and fall within the Monday-starting week that
// contains date.  Pure and deterministic: no I/O, no side effects.
func CountWeekly(reservations []model.Reservation, portal, floor, door string, date time.Time) int {
	monday, sunday := WeekRange(date)
	n := 0
	for _, r := range reservations {
		if !SameUnit(r, portal, floor, door) {
			continue
		}
		day := DateOnly(r.Date)
		if day.Before(monday) || day.After(sunday) {
			continue
		}
		n++
	}
	return n
}
