package verification

import (
	"errors"
	"testing"

	"github.com/JayPadhiyar-42/scorepact/internal/match"
	"github.com/JayPadhiyar-42/scorepact/pkg/apperr"
)

func testMatch() *match.Match {
	return &match.Match{TeamAID: 10, TeamBID: 20}
}

func TestValidateBounds(t *testing.T) {
	cases := []struct {
		name   string
		scores ProposedScores
		ok     bool
	}{
		{"valid", ProposedScores{TeamARuns: 150, TeamAWickets: 6, TeamBRuns: 140, TeamBWickets: 8}, true},
		{"negative runs", ProposedScores{TeamARuns: -1}, false},
		{"runs over ceiling", ProposedScores{TeamBRuns: MaxRuns + 1}, false},
		{"eleven wickets", ProposedScores{TeamAWickets: 11}, false},
		{"all out is fine", ProposedScores{TeamAWickets: 10, TeamBWickets: 10}, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.scores.Validate(testMatch())
			if c.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !c.ok {
				if err == nil {
					t.Fatal("expected validation error")
				}
				if !errors.Is(err, apperr.ErrValidation) {
					t.Errorf("error = %v, want Validation", err)
				}
			}
		})
	}
}

func TestValidateComputesWinner(t *testing.T) {
	m := testMatch()

	p := ProposedScores{TeamARuns: 150, TeamAWickets: 6, TeamBRuns: 140, TeamBWickets: 8}
	if err := p.Validate(m); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if p.WinnerTeamID == nil || *p.WinnerTeamID != m.TeamAID {
		t.Errorf("winner = %v, want team A (%d)", p.WinnerTeamID, m.TeamAID)
	}

	p = ProposedScores{TeamARuns: 99, TeamBRuns: 120}
	if err := p.Validate(m); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if p.WinnerTeamID == nil || *p.WinnerTeamID != m.TeamBID {
		t.Errorf("winner = %v, want team B (%d)", p.WinnerTeamID, m.TeamBID)
	}

	p = ProposedScores{TeamARuns: 100, TeamBRuns: 100}
	if err := p.Validate(m); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if p.WinnerTeamID != nil {
		t.Errorf("tie must have no winner, got %v", *p.WinnerTeamID)
	}
}

func TestValidateExplicitWinner(t *testing.T) {
	m := testMatch()

	// An explicit winner overrides the run comparison (e.g. a result on
	// net run rate or forfeit).
	loser := m.TeamBID
	p := ProposedScores{TeamARuns: 150, TeamBRuns: 140, WinnerTeamID: &loser}
	if err := p.Validate(m); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if *p.WinnerTeamID != m.TeamBID {
		t.Errorf("explicit winner was overridden: %v", *p.WinnerTeamID)
	}

	outsider := uint(999)
	p = ProposedScores{WinnerTeamID: &outsider}
	err := p.Validate(m)
	if err == nil || !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("non-participant winner should be rejected, got %v", err)
	}
}

func TestVerificationStatusResolved(t *testing.T) {
	for _, s := range []VerificationStatus{StatusVerified, StatusFinal, StatusCancelled} {
		if !s.Resolved() {
			t.Errorf("%s should be terminal", s)
		}
	}
	// Disputed awaits an admin, pending awaits the opponent.
	if StatusDisputed.Resolved() {
		t.Error("disputed must stay open for admin resolution")
	}
	if StatusPending.Resolved() {
		t.Error("pending is not terminal")
	}
}
