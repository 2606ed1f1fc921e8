package verification

import (
	"time"

	"gorm.io/gorm"

	"github.com/JayPadhiyar-42/scorepact/internal/match"
	"github.com/JayPadhiyar-42/scorepact/pkg/apperr"
)

// VerificationStatus tracks the score-consensus workflow, which runs
// independently of the match lifecycle status.
type VerificationStatus string

const (
	StatusPending   VerificationStatus = "pending"
	StatusVerified  VerificationStatus = "verified"
	StatusDisputed  VerificationStatus = "disputed"
	StatusFinal     VerificationStatus = "final"
	StatusCancelled VerificationStatus = "cancelled"
)

const (
	// MinDisputeReasonLen is the shortest acceptable dispute reason.
	MinDisputeReasonLen = 10

	// MaxRuns is a sanity ceiling on a submitted innings total.
	MaxRuns = 1000
	// MaxWickets is the most wickets an innings can lose.
	MaxWickets = 10
)

// ScoreVerification is one captain's claim of the final score, awaiting the
// opposing captain's agreement or dispute. At most one non-cancelled pending
// verification exists per match; a new submission cancels prior ones.
type ScoreVerification struct {
	gorm.Model
	MatchID     uint `json:"match_id" gorm:"index;not null"`
	SubmitterID uint `json:"submitter_id" gorm:"index;not null"`

	TeamARuns    int `json:"team_a_runs"`
	TeamAWickets int `json:"team_a_wickets"`
	TeamBRuns    int `json:"team_b_runs"`
	TeamBWickets int `json:"team_b_wickets"`

	WinnerTeamID *uint `json:"winner_team_id,omitempty"`

	Status        VerificationStatus `json:"status" gorm:"index;default:'pending'"`
	DisputeReason string             `json:"dispute_reason,omitempty" gorm:"type:text"`

	ResolvedByID *uint      `json:"resolved_by_id,omitempty"`
	ResolvedAt   *time.Time `json:"resolved_at,omitempty"`
}

// Resolved reports whether the verification reached a terminal status.
// Disputed is not terminal: it awaits administrative resolution.
func (s VerificationStatus) Resolved() bool {
	return s == StatusVerified || s == StatusFinal || s == StatusCancelled
}

// ProposedScores is a validated score claim.
type ProposedScores struct {
	TeamARuns    int
	TeamAWickets int
	TeamBRuns    int
	TeamBWickets int
	WinnerTeamID *uint
}

// Validate bounds-checks the claim and resolves the winner: an explicit
// winner must be one of the two participants, otherwise the winner is
// computed from the runs (a tie has no winner).
func (p *ProposedScores) Validate(m *match.Match) error {
	for _, runs := range []int{p.TeamARuns, p.TeamBRuns} {
		if runs < 0 || runs > MaxRuns {
			return apperr.Wrapf(apperr.ErrValidation, "runs must be between 0 and %d", MaxRuns)
		}
	}
	for _, wickets := range []int{p.TeamAWickets, p.TeamBWickets} {
		if wickets < 0 || wickets > MaxWickets {
			return apperr.Wrapf(apperr.ErrValidation, "wickets must be between 0 and %d", MaxWickets)
		}
	}

	if p.WinnerTeamID != nil {
		if !m.HasParticipant(*p.WinnerTeamID) {
			return apperr.Wrap(apperr.ErrValidation, "winner must be one of the participating teams")
		}
		return nil
	}
	p.WinnerTeamID = computeWinner(m, p.TeamARuns, p.TeamBRuns)
	return nil
}

// computeWinner picks the side with more runs; nil on a tie.
func computeWinner(m *match.Match, teamARuns, teamBRuns int) *uint {
	switch {
	case teamARuns > teamBRuns:
		id := m.TeamAID
		return &id
	case teamBRuns > teamARuns:
		id := m.TeamBID
		return &id
	default:
		return nil
	}
}
