package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/aristath/fundwatch/internal/market_hours"
)

func TestSlotDuringTradingHours(t *testing.T) {
	cal := market_hours.NewCalendar(time.UTC)

	// Friday 10:47 floors to the 10:45 quarter
	slot, window := Slot(time.Date(2025, 8, 29, 10, 47, 33, 0, time.UTC), cal)
	assert.Equal(t, "20250829-1045", slot)
	assert.Equal(t, 15*time.Minute, window)

	// All instants in the same quarter share a slot
	slot2, _ := Slot(time.Date(2025, 8, 29, 10, 59, 59, 0, time.UTC), cal)
	assert.Equal(t, slot, slot2)

	// The next quarter is a different slot
	slot3, _ := Slot(time.Date(2025, 8, 29, 11, 0, 0, 0, time.UTC), cal)
	assert.NotEqual(t, slot, slot3)
}

func TestSlotOutsideTradingHours(t *testing.T) {
	cal := market_hours.NewCalendar(time.UTC)

	// Friday evening floors to the hour
	slot, window := Slot(time.Date(2025, 8, 29, 20, 47, 0, 0, time.UTC), cal)
	assert.Equal(t, "20250829-2000", slot)
	assert.Equal(t, time.Hour, window)

	// Weekend behaves the same
	slot, window = Slot(time.Date(2025, 8, 30, 10, 47, 0, 0, time.UTC), cal)
	assert.Equal(t, "20250830-1000", slot)
	assert.Equal(t, time.Hour, window)
}

func TestSlotSessionBoundary(t *testing.T) {
	cal := market_hours.NewCalendar(time.UTC)

	// 14:59 is still a trading slot, 15:00 already an hourly one
	slot, window := Slot(time.Date(2025, 8, 29, 14, 59, 0, 0, time.UTC), cal)
	assert.Equal(t, "20250829-1445", slot)
	assert.Equal(t, 15*time.Minute, window)

	slot, window = Slot(time.Date(2025, 8, 29, 15, 0, 0, 0, time.UTC), cal)
	assert.Equal(t, "20250829-1500", slot)
	assert.Equal(t, time.Hour, window)
}
