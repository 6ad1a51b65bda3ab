package removal

import (
	"errors"
	"testing"
	"time"

	"github.com/Rank127/datascrub-pro-sub004/internal/model"
)

// TestCanTransition tests the transition table.
func TestCanTransition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		from model.RemovalStatus
		to   model.RemovalStatus
		want bool
	}{
		{"pending to submitted", model.RemovalPending, model.RemovalSubmitted, true},
		{"pending to in progress skips submission", model.RemovalPending, model.RemovalInProgress, false},
		{"submitted to in progress", model.RemovalSubmitted, model.RemovalInProgress, true},
		{"submitted to failed on immediate refusal", model.RemovalSubmitted, model.RemovalFailed, true},
		{"in progress to completed", model.RemovalInProgress, model.RemovalCompleted, true},
		{"in progress to failed", model.RemovalInProgress, model.RemovalFailed, true},
		{"in progress back to pending", model.RemovalInProgress, model.RemovalPending, false},
		{"pending cancellable", model.RemovalPending, model.RemovalCancelled, true},
		{"submitted cancellable", model.RemovalSubmitted, model.RemovalCancelled, true},
		{"completed is terminal", model.RemovalCompleted, model.RemovalCancelled, false},
		{"failed is terminal", model.RemovalFailed, model.RemovalSubmitted, false},
		{"cancelled is terminal", model.RemovalCancelled, model.RemovalPending, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := CanTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

// TestTransition tests timestamp stamping and rejection behavior.
func TestTransition(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	t.Run("stamps submitted_at", func(t *testing.T) {
		t.Parallel()

		r := model.NewRemovalRequest(1, "user-1", "spokeo", model.MethodAutoForm, false)
		if err := Transition(r, model.RemovalSubmitted, clock); err != nil {
			t.Fatalf("Transition() error = %v", err)
		}
		if r.Status != model.RemovalSubmitted {
			t.Errorf("Status = %s, want %s", r.Status, model.RemovalSubmitted)
		}
		if !r.SubmittedAt.Equal(now) {
			t.Errorf("SubmittedAt = %v, want %v", r.SubmittedAt, now)
		}
		if !r.CompletedAt.IsZero() {
			t.Errorf("CompletedAt = %v, want zero", r.CompletedAt)
		}
	})

	t.Run("stamps completed_at on terminal statuses", func(t *testing.T) {
		t.Parallel()

		for _, terminal := range []model.RemovalStatus{
			model.RemovalCompleted, model.RemovalFailed,
		} {
			r := model.NewRemovalRequest(1, "user-1", "spokeo", model.MethodAutoForm, false)
			r.Status = model.RemovalInProgress
			if err := Transition(r, terminal, clock); err != nil {
				t.Fatalf("Transition(%s) error = %v", terminal, err)
			}
			if !r.CompletedAt.Equal(now) {
				t.Errorf("CompletedAt = %v, want %v", r.CompletedAt, now)
			}
		}
	})

	t.Run("rejects invalid transition", func(t *testing.T) {
		t.Parallel()

		r := model.NewRemovalRequest(1, "user-1", "spokeo", model.MethodAutoForm, false)
		err := Transition(r, model.RemovalCompleted, clock)
		if !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("error = %v, want ErrInvalidTransition", err)
		}
		if r.Status != model.RemovalPending {
			t.Errorf("Status = %s after rejected transition, want %s", r.Status, model.RemovalPending)
		}
	})

	t.Run("rejects leaving a terminal status", func(t *testing.T) {
		t.Parallel()

		r := model.NewRemovalRequest(1, "user-1", "spokeo", model.MethodAutoForm, false)
		r.Status = model.RemovalCancelled
		err := Transition(r, model.RemovalSubmitted, clock)
		if !errors.Is(err, ErrAlreadyTerminal) {
			t.Errorf("error = %v, want ErrAlreadyTerminal", err)
		}
	})
}

// TestExposureStatusDerivation tests the removal status to exposure status
// mapping the service relies on.
func TestExposureStatusDerivation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status model.RemovalStatus
		want   model.ExposureStatus
	}{
		{model.RemovalPending, model.ExposureRemovalPending},
		{model.RemovalSubmitted, model.ExposureRemovalPending},
		{model.RemovalInProgress, model.ExposureRemovalInProgress},
		{model.RemovalCompleted, model.ExposureRemoved},
		{model.RemovalFailed, model.ExposureActive},
		{model.RemovalCancelled, model.ExposureActive},
	}
	for _, tt := range tests {
		if got := tt.status.ExposureStatusFor(); got != tt.want {
			t.Errorf("%s.ExposureStatusFor() = %s, want %s", tt.status, got, tt.want)
		}
	}
}
