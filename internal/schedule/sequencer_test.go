package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func saoPaulo(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)
	return loc
}

func TestDaily_FiveItemsTwoSlots(t *testing.T) {
	loc := saoPaulo(t)
	start := time.Date(2025, 12, 1, 0, 0, 0, 0, loc)

	slots := Daily(start, loc, []int{8, 18}).Slots(5)

	want := []time.Time{
		time.Date(2025, 12, 1, 8, 0, 0, 0, loc),
		time.Date(2025, 12, 1, 18, 0, 0, 0, loc),
		time.Date(2025, 12, 2, 8, 0, 0, 0, loc),
		time.Date(2025, 12, 2, 18, 0, 0, 0, loc),
		time.Date(2025, 12, 3, 8, 0, 0, 0, loc),
	}
	require.Len(t, slots, 5)
	for i := range want {
		assert.True(t, slots[i].Equal(want[i]), "slot %d: got %v want %v", i, slots[i], want[i])
	}
}

func TestDaily_SlotIndexProperty(t *testing.T) {
	loc := saoPaulo(t)
	start := time.Date(2026, 3, 10, 0, 0, 0, 0, loc)
	hours := []int{6, 12, 21}

	slots := Daily(start, loc, hours).Slots(17)

	require.Len(t, slots, 17)
	for i, slot := range slots {
		assert.Equal(t, hours[i%len(hours)], slot.Hour(), "slot %d hour", i)
		wantDay := start.AddDate(0, 0, i/len(hours))
		assert.Equal(t, wantDay.Day(), slot.Day(), "slot %d day", i)
		if i > 0 {
			assert.True(t, slots[i-1].Before(slot), "slots must be strictly increasing")
		}
	}
}

func TestDaily_ZeroItems(t *testing.T) {
	loc := saoPaulo(t)
	start := time.Date(2025, 12, 1, 0, 0, 0, 0, loc)

	assert.Empty(t, Daily(start, loc, []int{8}).Slots(0))
}

func TestWeekly_FirstOccurrenceAtOrAfterAnchor(t *testing.T) {
	loc := saoPaulo(t)
	// 2025-12-01 is a Monday.
	anchor := time.Date(2025, 12, 1, 0, 0, 0, 0, loc)

	slots := Weekly(anchor, loc, time.Wednesday, 10).Slots(3)

	require.Len(t, slots, 3)
	assert.True(t, slots[0].Equal(time.Date(2025, 12, 3, 10, 0, 0, 0, loc)))
	assert.True(t, slots[1].Equal(time.Date(2025, 12, 10, 10, 0, 0, 0, loc)))
	assert.True(t, slots[2].Equal(time.Date(2025, 12, 17, 10, 0, 0, 0, loc)))
}

func TestWeekly_SameDayPastHourAdvancesAWeek(t *testing.T) {
	loc := saoPaulo(t)
	// Anchor is a Monday at 12:00; the 10:00 Monday slot already passed.
	anchor := time.Date(2025, 12, 1, 12, 0, 0, 0, loc)

	slots := Weekly(anchor, loc, time.Monday, 10).Slots(1)

	require.Len(t, slots, 1)
	assert.True(t, slots[0].Equal(time.Date(2025, 12, 8, 10, 0, 0, 0, loc)))
}

func TestWeekly_SameDayExactHourKept(t *testing.T) {
	loc := saoPaulo(t)
	anchor := time.Date(2025, 12, 1, 10, 0, 0, 0, loc)

	slots := Weekly(anchor, loc, time.Monday, 10).Slots(1)

	require.Len(t, slots, 1)
	assert.True(t, slots[0].Equal(anchor))
}

func TestWeekly_SevenDaySpacing(t *testing.T) {
	loc := saoPaulo(t)
	anchor := time.Date(2026, 1, 2, 0, 0, 0, 0, loc)

	slots := Weekly(anchor, loc, time.Friday, 19).Slots(8)

	require.Len(t, slots, 8)
	for i, slot := range slots {
		assert.Equal(t, time.Friday, slot.Weekday(), "slot %d weekday", i)
		assert.Equal(t, 19, slot.Hour(), "slot %d hour", i)
		if i > 0 {
			assert.True(t, slots[i-1].Before(slot))
			assert.Equal(t, 7, slot.YearDay()-slots[i-1].YearDay(), "slot %d spacing", i)
		}
	}
}
