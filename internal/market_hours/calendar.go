// Package market_hours provides the trading calendar used for cache windowing.
package market_hours

import "time"

// Trading session bounds (minutes from midnight).
const (
	sessionOpenMinutes  = 9*60 + 30 // 09:30
	sessionCloseMinutes = 15 * 60   // 15:00
)

// Calendar answers whether a given instant falls inside trading hours.
// Trading hours are Monday through Friday, 09:30 to 15:00, in the
// calendar's location. Exchange holidays are not modelled; a holiday
// simply produces no export files, which the locator reports as not found.
type Calendar struct {
	loc *time.Location
}

// NewCalendar creates a calendar in the given location.
// A nil location defaults to the system local time zone.
func NewCalendar(loc *time.Location) *Calendar {
	if loc == nil {
		loc = time.Local
	}
	return &Calendar{loc: loc}
}

// Location returns the calendar's time zone.
func (c *Calendar) Location() *time.Location {
	return c.loc
}

// IsTradingTime reports whether t falls within the trading session.
// The session close is exclusive: 15:00:00 itself is outside the session.
func (c *Calendar) IsTradingTime(t time.Time) bool {
	t = t.In(c.loc)

	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}

	minutes := t.Hour()*60 + t.Minute()
	return minutes >= sessionOpenMinutes && minutes < sessionCloseMinutes
}
