package match

import (
	"errors"
	"testing"
	"time"

	"github.com/JayPadhiyar-42/scorepact/pkg/apperr"
)

func TestNextStatusHappyPath(t *testing.T) {
	cases := []struct {
		current MatchStatus
		tr      TransitionType
		want    MatchStatus
	}{
		{StatusScheduled, TransitionStartScoring, StatusFirstInnings},
		{StatusFirstInnings, TransitionStartSecondInnings, StatusSecondInnings},
		{StatusFirstInnings, TransitionFinalScore, StatusCompleted},
		{StatusSecondInnings, TransitionFinalScore, StatusCompleted},
	}
	for _, c := range cases {
		got, err := NextStatus(c.current, c.tr)
		if err != nil {
			t.Errorf("NextStatus(%s, %s): unexpected error %v", c.current, c.tr, err)
			continue
		}
		if got != c.want {
			t.Errorf("NextStatus(%s, %s) = %s, want %s", c.current, c.tr, got, c.want)
		}
	}
}

func TestNextStatusRejections(t *testing.T) {
	cases := []struct {
		name    string
		current MatchStatus
		tr      TransitionType
		wantErr error
	}{
		{"scoring twice", StatusFirstInnings, TransitionStartScoring, apperr.ErrConflict},
		{"second innings before scoring", StatusScheduled, TransitionStartSecondInnings, apperr.ErrValidation},
		{"second innings twice", StatusSecondInnings, TransitionStartSecondInnings, apperr.ErrConflict},
		{"final before scoring", StatusScheduled, TransitionFinalScore, apperr.ErrValidation},
		{"anything on completed", StatusCompleted, TransitionStartScoring, apperr.ErrConflict},
		{"anything on cancelled", StatusCancelled, TransitionFinalScore, apperr.ErrConflict},
		{"unknown transition", StatusScheduled, TransitionType("bogus"), apperr.ErrValidation},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := NextStatus(c.current, c.tr)
			if err == nil {
				t.Fatalf("NextStatus(%s, %s): expected error", c.current, c.tr)
			}
			if !errors.Is(err, c.wantErr) {
				t.Errorf("NextStatus(%s, %s) error = %v, want %v", c.current, c.tr, err, c.wantErr)
			}
		})
	}
}

func TestApplyTransitionAttribution(t *testing.T) {
	at := time.Date(2025, 6, 1, 14, 0, 0, 0, time.UTC)
	m := &Match{Status: StatusScheduled}

	if err := ApplyTransition(m, TransitionStartScoring, 7, at); err != nil {
		t.Fatalf("start scoring: %v", err)
	}
	if m.Status != StatusFirstInnings || m.CurrentInnings != 1 {
		t.Errorf("after start scoring: status=%s innings=%d", m.Status, m.CurrentInnings)
	}
	if m.ScoringStartedAt == nil || !m.ScoringStartedAt.Equal(at) || m.ScoringStartedByID == nil || *m.ScoringStartedByID != 7 {
		t.Error("start scoring attribution not recorded")
	}

	at2 := at.Add(time.Hour)
	if err := ApplyTransition(m, TransitionStartSecondInnings, 9, at2); err != nil {
		t.Fatalf("start second innings: %v", err)
	}
	if m.Status != StatusSecondInnings || m.CurrentInnings != 2 {
		t.Errorf("after second innings: status=%s innings=%d", m.Status, m.CurrentInnings)
	}

	at3 := at2.Add(time.Hour)
	if err := ApplyTransition(m, TransitionFinalScore, 7, at3); err != nil {
		t.Fatalf("final score: %v", err)
	}
	if m.Status != StatusCompleted {
		t.Errorf("after final score: status=%s", m.Status)
	}
	if m.CompletedAt == nil || !m.CompletedAt.Equal(at3) || m.CompletedByID == nil || *m.CompletedByID != 7 {
		t.Error("completion attribution not recorded")
	}
}

func TestApplyTransitionRejectedLeavesMatchUntouched(t *testing.T) {
	m := &Match{Status: StatusScheduled}
	if err := ApplyTransition(m, TransitionFinalScore, 1, time.Now()); err == nil {
		t.Fatal("expected error finalizing a scheduled match")
	}
	if m.Status != StatusScheduled || m.CompletedAt != nil {
		t.Error("rejected transition mutated the match")
	}
}

func TestEffectiveStatusProjection(t *testing.T) {
	cases := []struct {
		name    string
		status  MatchStatus
		pending map[TransitionType]bool
		want    MatchStatus
	}{
		{"no pending", StatusScheduled, nil, StatusScheduled},
		{"scoring pending", StatusScheduled, map[TransitionType]bool{TransitionStartScoring: true}, StatusScoringPending},
		{"second innings pending", StatusFirstInnings, map[TransitionType]bool{TransitionStartSecondInnings: true}, StatusSecondInningsPending},
		{"final pending from first innings", StatusFirstInnings, map[TransitionType]bool{TransitionFinalScore: true}, StatusFinalPending},
		{"final outranks second innings", StatusFirstInnings, map[TransitionType]bool{TransitionStartSecondInnings: true, TransitionFinalScore: true}, StatusFinalPending},
		{"final pending from second innings", StatusSecondInnings, map[TransitionType]bool{TransitionFinalScore: true}, StatusFinalPending},
		{"completed ignores pending", StatusCompleted, map[TransitionType]bool{TransitionFinalScore: true}, StatusCompleted},
		{"irrelevant pending type", StatusScheduled, map[TransitionType]bool{TransitionFinalScore: true}, StatusScheduled},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			m := &Match{Status: c.status}
			if got := EffectiveStatus(m, c.pending); got != c.want {
				t.Errorf("EffectiveStatus(%s, %v) = %s, want %s", c.status, c.pending, got, c.want)
			}
		})
	}
}

func TestApproverSet(t *testing.T) {
	var s ApproverSet

	if !s.Add(1) {
		t.Error("first add should grow the set")
	}
	if s.Add(1) {
		t.Error("duplicate add should not grow the set")
	}
	if !s.Add(2) {
		t.Error("second identity should grow the set")
	}
	if s.Size() != 2 {
		t.Errorf("size = %d, want 2", s.Size())
	}
	if !s.Contains(1) || !s.Contains(2) || s.Contains(3) {
		t.Error("membership checks wrong")
	}
	if !s.Remove(1) {
		t.Error("removing a member should shrink the set")
	}
	if s.Remove(1) {
		t.Error("removing an absent identity should be a no-op")
	}
	if s.Size() != 1 || s.Contains(1) || !s.Contains(2) {
		t.Errorf("set after removal wrong: %v", s)
	}
}

func TestApproverSetRoundTrip(t *testing.T) {
	s := ApproverSet{4, 9}
	v, err := s.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}

	var got ApproverSet
	if err := got.Scan(v); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if got.Size() != 2 || !got.Contains(4) || !got.Contains(9) {
		t.Errorf("round trip lost members: %v", got)
	}

	var empty ApproverSet
	if err := empty.Scan(nil); err != nil {
		t.Fatalf("Scan(nil): %v", err)
	}
	if empty.Size() != 0 {
		t.Errorf("nil column should scan to empty set, got %v", empty)
	}
}
