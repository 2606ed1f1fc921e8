package approval

import (
	"testing"
	"time"

	"github.com/JayPadhiyar-42/scorepact/internal/match"
	"github.com/JayPadhiyar-42/scorepact/internal/user"
)

func TestAutoApproveDeadline(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("uses opponent preference", func(t *testing.T) {
		opp := &user.User{AutoApproveEnabled: true, TimeoutMinutes: 10}
		enabled, at := autoApproveDeadline(opp, now)
		if !enabled {
			t.Fatal("expected auto-approve enabled")
		}
		if want := now.Add(10 * time.Minute); !at.Equal(want) {
			t.Errorf("deadline = %v, want %v", at, want)
		}
	})

	t.Run("disabled preference wins", func(t *testing.T) {
		opp := &user.User{AutoApproveEnabled: false, TimeoutMinutes: 10}
		enabled, _ := autoApproveDeadline(opp, now)
		if enabled {
			t.Error("opponent opted out, deadline must be disabled")
		}
	})

	t.Run("missing opponent falls back to default", func(t *testing.T) {
		enabled, at := autoApproveDeadline(nil, now)
		if !enabled {
			t.Fatal("expected auto-approve enabled")
		}
		if want := now.Add(user.TimeoutMinutesDefault * time.Minute); !at.Equal(want) {
			t.Errorf("deadline = %v, want %v", at, want)
		}
	})

	t.Run("out of range timeout is clamped", func(t *testing.T) {
		opp := &user.User{AutoApproveEnabled: true, TimeoutMinutes: 500}
		_, at := autoApproveDeadline(opp, now)
		if want := now.Add(user.TimeoutMinutesMax * time.Minute); !at.Equal(want) {
			t.Errorf("deadline = %v, want %v", at, want)
		}

		opp.TimeoutMinutes = 0
		_, at = autoApproveDeadline(opp, now)
		if want := now.Add(user.TimeoutMinutesDefault * time.Minute); !at.Equal(want) {
			t.Errorf("unset preference should use default, got %v", at)
		}
	})
}

func TestApprovalStatusResolved(t *testing.T) {
	if StatusPending.Resolved() {
		t.Error("pending is not terminal")
	}
	for _, s := range []ApprovalStatus{StatusApproved, StatusRejected, StatusAutoApproved, StatusCancelled} {
		if !s.Resolved() {
			t.Errorf("%s should be terminal", s)
		}
	}
}

func TestFinalScoreConsensus(t *testing.T) {
	now := time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)

	liveMatch := func() *match.Match {
		return &match.Match{Status: match.StatusSecondInnings, CurrentInnings: 2}
	}

	t.Run("both captains requesting completes on the second request", func(t *testing.T) {
		m := liveMatch()

		done, err := applyFinalScoreApproval(m, 1, now)
		if err != nil {
			t.Fatalf("first approval: %v", err)
		}
		if done {
			t.Fatal("a single approver must not complete the match")
		}
		if m.Status != match.StatusSecondInnings {
			t.Errorf("status changed prematurely to %s", m.Status)
		}

		done, err = applyFinalScoreApproval(m, 2, now)
		if err != nil {
			t.Fatalf("second approval: %v", err)
		}
		if !done {
			t.Fatal("two distinct approvers must complete the match")
		}
		if m.Status != match.StatusCompleted {
			t.Errorf("status = %s, want %s", m.Status, match.StatusCompleted)
		}
		if m.CompletedByID == nil || *m.CompletedByID != 2 {
			t.Error("completion should be attributed to the second approver")
		}
	})

	t.Run("same captain re-requesting stays at one approver", func(t *testing.T) {
		m := liveMatch()
		if _, err := applyFinalScoreApproval(m, 1, now); err != nil {
			t.Fatalf("first approval: %v", err)
		}
		done, err := applyFinalScoreApproval(m, 1, now)
		if err != nil {
			t.Fatalf("repeat approval: %v", err)
		}
		if done || m.FinalScoreApprovedBy.Size() != 1 {
			t.Errorf("duplicate approver must not reach consensus, set = %v", m.FinalScoreApprovedBy)
		}
	})

	t.Run("withdrawn approval does not count toward later consensus", func(t *testing.T) {
		m := liveMatch()
		if _, err := applyFinalScoreApproval(m, 1, now); err != nil {
			t.Fatalf("first approval: %v", err)
		}
		// Rejection withdraws the requester's self-approval.
		if !m.FinalScoreApprovedBy.Remove(1) {
			t.Fatal("rejected requester should have been in the set")
		}

		done, err := applyFinalScoreApproval(m, 2, now)
		if err != nil {
			t.Fatalf("later approval: %v", err)
		}
		if done {
			t.Fatal("match completed from one live approval plus a withdrawn one")
		}
		if m.Status != match.StatusSecondInnings {
			t.Errorf("status = %s, want %s", m.Status, match.StatusSecondInnings)
		}
	})
}
