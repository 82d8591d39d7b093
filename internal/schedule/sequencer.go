// Package schedule maps a batch size onto an ordered sequence of publish
// timestamps. Plans are pure: the same plan and count always produce the
// same slots.
//
// Timestamps are constructed with time.Date directly in the configured zone,
// never converted from another zone, so daylight-saving transitions are
// resolved by the zone database at construction time instead of by duration
// arithmetic on absolute instants.
package schedule

import "time"

// Plan produces the publish slots for a batch. Slots are strictly
// increasing and len(Slots(n)) == n; n == 0 yields an empty sequence.
type Plan interface {
	Slots(n int) []time.Time
}

type dailyPlan struct {
	start time.Time
	zone  *time.Location
	hours []int
}

// Daily spreads items across consecutive calendar days, visiting hourSlots
// in ascending order within a day before advancing to the next day. Item i
// lands on day i/k at hour hourSlots[i%k], with k = len(hourSlots).
//
// hourSlots must be non-empty, sorted, and within 0-23; the settings layer
// validates this before a plan is built.
func Daily(start time.Time, zone *time.Location, hourSlots []int) Plan {
	return dailyPlan{start: start.In(zone), zone: zone, hours: hourSlots}
}

func (p dailyPlan) Slots(n int) []time.Time {
	slots := make([]time.Time, 0, n)
	k := len(p.hours)
	for i := 0; i < n; i++ {
		dayOffset := i / k
		hour := p.hours[i%k]
		slots = append(slots, time.Date(
			p.start.Year(), p.start.Month(), p.start.Day()+dayOffset,
			hour, 0, 0, 0, p.zone,
		))
	}
	return slots
}

type weeklyPlan struct {
	anchor  time.Time
	zone    *time.Location
	weekday time.Weekday
	hour    int
}

// Weekly publishes one item per week. The first slot is the earliest
// occurrence of weekday at hour that is at or after the anchor instant; if
// the anchor falls on the target weekday but past the target hour, the first
// slot moves to the following week. Every later slot is the previous slot's
// calendar date plus seven days, re-resolved in the zone, so the local
// wall-clock hour survives DST shifts.
func Weekly(anchor time.Time, zone *time.Location, weekday time.Weekday, hour int) Plan {
	return weeklyPlan{anchor: anchor.In(zone), zone: zone, weekday: weekday, hour: hour}
}

func (p weeklyPlan) Slots(n int) []time.Time {
	slots := make([]time.Time, 0, n)
	if n == 0 {
		return slots
	}

	daysAhead := (int(p.weekday) - int(p.anchor.Weekday()) + 7) % 7
	first := time.Date(
		p.anchor.Year(), p.anchor.Month(), p.anchor.Day()+daysAhead,
		p.hour, 0, 0, 0, p.zone,
	)
	if first.Before(p.anchor) {
		first = time.Date(
			first.Year(), first.Month(), first.Day()+7,
			p.hour, 0, 0, 0, p.zone,
		)
	}

	slots = append(slots, first)
	for i := 1; i < n; i++ {
		prev := slots[i-1]
		slots = append(slots, time.Date(
			prev.Year(), prev.Month(), prev.Day()+7,
			p.hour, 0, 0, 0, p.zone,
		))
	}
	return slots
}
