package removal

import (
	"errors"
	"fmt"
	"time"

	"github.com/Rank127/datascrub-pro-sub004/internal/model"
)

// State machine errors.
var (
	// ErrInvalidTransition is returned for a transition the state machine
	// does not allow.
	ErrInvalidTransition = errors.New("invalid removal status transition")

	// ErrAlreadyTerminal is returned when transitioning a request that
	// has already reached a terminal status.
	ErrAlreadyTerminal = errors.New("removal request is already terminal")
)

// allowedTransitions is the closed transition table. CANCELLED is reachable
// from every non-terminal state and is handled separately in CanTransition.
var allowedTransitions = map[model.RemovalStatus][]model.RemovalStatus{
	model.RemovalPending:    {model.RemovalSubmitted},
	model.RemovalSubmitted:  {model.RemovalInProgress, model.RemovalFailed},
	model.RemovalInProgress: {model.RemovalCompleted, model.RemovalFailed},
}

// CanTransition reports whether from -> to is a legal transition.
func CanTransition(from, to model.RemovalStatus) bool {
	if from.Terminal() {
		return false
	}
	if to == model.RemovalCancelled {
		return true
	}
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition validates and applies a status change to the request,
// maintaining the status timestamps. It does not persist; callers persist
// through the store and derive the exposure status from the new state.
func Transition(r *model.RemovalRequest, to model.RemovalStatus, now func() time.Time) error {
	if r.Status.Terminal() {
		return fmt.Errorf("%w: %s", ErrAlreadyTerminal, r.Status)
	}
	if !CanTransition(r.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.Status, to)
	}

	switch to {
	case model.RemovalSubmitted:
		r.SubmittedAt = now()
	case model.RemovalCompleted, model.RemovalFailed, model.RemovalCancelled:
		r.CompletedAt = now()
	}
	r.Status = to
	return nil
}
