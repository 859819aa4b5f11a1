// Package cache persists computed unit returns in time-sliced slots.
//
// Cached values stay valid for the duration of their slot: 15 minutes
// during trading hours, when exports refresh continuously, and a full hour
// outside them, when nothing on the drive changes. A cached value is also
// discarded early when a newer export appears than the one it was built
// from.
package cache

import (
	"time"

	"github.com/aristath/fundwatch/internal/market_hours"
)

// Slot windows.
const (
	tradingWindow = 15 * time.Minute
	idleWindow    = time.Hour
)

// SlotLayout is the label format of a time slot.
const SlotLayout = "20060102-1504"

// Slot computes the time slot containing now and the freshness window that
// applies to entries created in it. During trading hours now is floored to
// the 15-minute mark; outside them, to the hour.
func Slot(now time.Time, cal *market_hours.Calendar) (string, time.Duration) {
	local := now.In(cal.Location())

	if cal.IsTradingTime(local) {
		floored := time.Date(local.Year(), local.Month(), local.Day(),
			local.Hour(), local.Minute()-local.Minute()%15, 0, 0, cal.Location())
		return floored.Format(SlotLayout), tradingWindow
	}

	floored := time.Date(local.Year(), local.Month(), local.Day(),
		local.Hour(), 0, 0, 0, cal.Location())
	return floored.Format(SlotLayout), idleWindow
}
