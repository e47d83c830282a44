// Package settlement holds the payout accounting rules for a dare. Everything here
// is pure: callers pass the current time and persisted records, and apply the
// returned amounts through the store's conditional updates.
package settlement

import (
	"time"

	"dare-backend/internal/models"
)

type State string

const (
	StateOpen      State = "open"
	StateCompleted State = "completed"
	StateExpired   State = "expired"
)

// StateOf derives the lifecycle state from (isCompleted, now, deadline) only.
func StateOf(d *models.Dare, now time.Time) State {
	if d.IsCompleted {
		return StateCompleted
	}
	if !now.Before(d.Deadline) {
		return StateExpired
	}
	return StateOpen
}

func (s State) Resolved() bool {
	return s == StateCompleted || s == StateExpired
}

// WinningSide returns false while the dare is still open.
func (s State) WinningSide() (models.BetType, bool) {
	switch s {
	case StateCompleted:
		return models.BetTypeWillDo, true
	case StateExpired:
		return models.BetTypeWontDo, true
	default:
		return "", false
	}
}

func ParseState(s string) (State, bool) {
	switch State(s) {
	case StateOpen, StateCompleted, StateExpired:
		return State(s), true
	}
	return "", false
}
