// Package quota enforces the remote platform's daily upload allowance over
// a rolling window anchored at a configurable local reset hour.
package quota

import "time"

// Guard decides whether another upload attempt is allowed right now. It is
// a pure decision function over the attempt timestamps the caller supplies;
// it knows nothing about how attempts are stored.
type Guard struct {
	DailyLimit int
	ResetHour  int
	Zone       *time.Location
}

// Decision reports the outcome of one quota check. NextReset is always in
// the future relative to the checked instant, so a denied caller can report
// "try again after NextReset" without re-deriving the window rule.
type Decision struct {
	Allowed     bool
	Used        int
	Limit       int
	WindowStart time.Time
	NextReset   time.Time
}

// Window returns the current quota window's start and the instant it next
// rolls over. If now's local hour is before the reset hour, the window began
// at the reset hour on the previous calendar day.
func (g Guard) Window(now time.Time) (start, next time.Time) {
	local := now.In(g.Zone)
	day := local.Day()
	if local.Hour() < g.ResetHour {
		day--
	}
	start = time.Date(local.Year(), local.Month(), day, g.ResetHour, 0, 0, 0, g.Zone)
	next = time.Date(start.Year(), start.Month(), start.Day()+1, g.ResetHour, 0, 0, 0, g.Zone)
	return start, next
}

// Check counts the attempts whose timestamp falls in [windowStart, now) and
// allows another attempt iff that count is below the daily limit. Successes
// and failures both count; a failed attempt still consumed remote capacity.
func (g Guard) Check(attempts []time.Time, now time.Time) Decision {
	start, next := g.Window(now)

	used := 0
	for _, at := range attempts {
		if at.IsZero() {
			continue
		}
		if !at.Before(start) && at.Before(now) {
			used++
		}
	}

	return Decision{
		Allowed:     used < g.DailyLimit,
		Used:        used,
		Limit:       g.DailyLimit,
		WindowStart: start,
		NextReset:   next,
	}
}
