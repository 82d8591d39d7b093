package cli

import (
	"testing"
	"time"

	"yt-bulk-scheduler/internal/config"
)

func weeklySettings(t *testing.T, startDate string, now time.Time) config.Settings {
	t.Helper()
	hour := 10
	settings, err := config.Resolve(config.FileConfig{}, config.Overrides{
		Timezone:     "America/Sao_Paulo",
		StartDate:    startDate,
		ScheduleMode: "weekly",
		ScheduleDay:  "monday",
		ScheduleHour: &hour,
	}, now)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	return settings
}

func TestPublishSlots_WeeklyWithoutStartDateSkipsPassedSlot(t *testing.T) {
	zone, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		t.Fatal(err)
	}
	// Monday, five hours after the 10:00 target: today's occurrence has
	// already passed, so the first slot must land next Monday.
	now := time.Date(2025, 12, 1, 15, 0, 0, 0, zone)
	settings := weeklySettings(t, "", now)

	slots := publishSlots(settings, 2, now)
	want := time.Date(2025, 12, 8, 10, 0, 0, 0, zone)
	if !slots[0].Equal(want) {
		t.Fatalf("first slot = %s, want %s", slots[0], want)
	}
	if !slots[0].After(now) {
		t.Fatalf("first slot %s is not in the future of %s", slots[0], now)
	}
	if !slots[1].Equal(time.Date(2025, 12, 15, 10, 0, 0, 0, zone)) {
		t.Fatalf("second slot = %s", slots[1])
	}
}

func TestPublishSlots_WeeklyWithoutStartDateKeepsUpcomingSlot(t *testing.T) {
	zone, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		t.Fatal(err)
	}
	// Monday morning, before the 10:00 target: today's occurrence is still
	// ahead and must be kept.
	now := time.Date(2025, 12, 1, 8, 0, 0, 0, zone)
	settings := weeklySettings(t, "", now)

	slots := publishSlots(settings, 1, now)
	want := time.Date(2025, 12, 1, 10, 0, 0, 0, zone)
	if !slots[0].Equal(want) {
		t.Fatalf("first slot = %s, want %s", slots[0], want)
	}
}

func TestPublishSlots_WeeklyExplicitStartDateIsHonored(t *testing.T) {
	zone, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		t.Fatal(err)
	}
	// An explicit start date anchors at its midnight even when the run
	// happens later that day; the operator asked for that date.
	now := time.Date(2025, 12, 1, 15, 0, 0, 0, zone)
	settings := weeklySettings(t, "2025-12-01", now)

	slots := publishSlots(settings, 1, now)
	want := time.Date(2025, 12, 1, 10, 0, 0, 0, zone)
	if !slots[0].Equal(want) {
		t.Fatalf("first slot = %s, want %s", slots[0], want)
	}
}
