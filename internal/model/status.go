package model

import "fmt"

// Per-item states within a single run. Succeeded, Failed, and Skipped are
// terminal; Skipped is reserved for quota exhaustion.
const (
	StatusPending    = "pending"
	StatusAttempting = "attempting"
	StatusSucceeded  = "succeeded"
	StatusFailed     = "failed"
	StatusSkipped    = "skipped"
)

var allowedTransitions = map[string]map[string]bool{
	"": {
		StatusPending: true,
	},
	StatusPending: {
		StatusAttempting: true,
		StatusSkipped:    true,
	},
	StatusAttempting: {
		StatusSucceeded: true,
		StatusFailed:    true,
	},
	StatusSucceeded:  {},
	StatusFailed:     {},
	StatusSkipped:    {},
}

// ItemState tracks one batch item through a run.
type ItemState struct {
	Identity string
	Status   string
	Reason   string
}

func IsKnownStatus(status string) bool {
	_, ok := allowedTransitions[status]
	return ok
}

func CanTransition(from, to string) bool {
	next, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	return next[to]
}

func TransitionItemStatus(state *ItemState, toStatus string, reason string) error {
	from := state.Status
	if !CanTransition(from, toStatus) {
		return fmt.Errorf("invalid item status transition: %q -> %q (item=%s)", from, toStatus, state.Identity)
	}
	state.Status = toStatus
	state.Reason = reason
	return nil
}
