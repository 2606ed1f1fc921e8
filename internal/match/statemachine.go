package match

import (
	"time"

	"github.com/JayPadhiyar-42/scorepact/pkg/apperr"
)

// TransitionType names the three captain-initiated phase transitions. Each
// one is gated by a two-party approval; the approval's resolution, not a
// separate match field, is the canonical gate.
type TransitionType string

const (
	TransitionStartScoring       TransitionType = "start_scoring"
	TransitionStartSecondInnings TransitionType = "start_second_innings"
	TransitionFinalScore         TransitionType = "final_score"
)

// Valid reports whether t is a known transition type.
func (t TransitionType) Valid() bool {
	switch t {
	case TransitionStartScoring, TransitionStartSecondInnings, TransitionFinalScore:
		return true
	}
	return false
}

// NextStatus returns the status a successful transition commits, or an error
// describing why the transition cannot be requested from the current status.
// A status already at or past the transition's target yields Conflict; an
// out-of-order request yields Validation.
func NextStatus(current MatchStatus, t TransitionType) (MatchStatus, error) {
	if current == StatusCancelled {
		return "", apperr.Wrap(apperr.ErrConflict, "match is cancelled")
	}
	if current == StatusCompleted {
		return "", apperr.Wrap(apperr.ErrConflict, "match is already completed")
	}

	switch t {
	case TransitionStartScoring:
		if current == StatusScheduled {
			return StatusFirstInnings, nil
		}
		return "", apperr.Wrapf(apperr.ErrConflict, "scoring already started (status %s)", current)
	case TransitionStartSecondInnings:
		switch current {
		case StatusFirstInnings:
			return StatusSecondInnings, nil
		case StatusScheduled:
			return "", apperr.Wrap(apperr.ErrValidation, "cannot start second innings before scoring starts")
		default:
			return "", apperr.Wrapf(apperr.ErrConflict, "second innings already started (status %s)", current)
		}
	case TransitionFinalScore:
		switch current {
		case StatusFirstInnings, StatusSecondInnings:
			return StatusCompleted, nil
		default:
			return "", apperr.Wrap(apperr.ErrValidation, "cannot finalize a match that has not started scoring")
		}
	default:
		return "", apperr.Wrapf(apperr.ErrValidation, "unknown transition type %q", t)
	}
}

// ApplyTransition commits a transition onto the match in memory: status,
// innings counter, and per-phase attribution. Callers persist the result
// inside their own transaction.
func ApplyTransition(m *Match, t TransitionType, actorID uint, at time.Time) error {
	next, err := NextStatus(m.Status, t)
	if err != nil {
		return err
	}

	m.Status = next
	switch t {
	case TransitionStartScoring:
		m.CurrentInnings = 1
		m.ScoringStartedAt = &at
		m.ScoringStartedByID = &actorID
	case TransitionStartSecondInnings:
		m.CurrentInnings = 2
		m.SecondInningsStartedAt = &at
		m.SecondInningsStartedByID = &actorID
	case TransitionFinalScore:
		m.CompletedAt = &at
		m.CompletedByID = &actorID
	}
	return nil
}

// EffectiveStatus projects the pending-gate statuses onto the canonical one.
// pending holds the transition types with an unresolved approval (a pending
// score verification counts as a pending final_score). The projection is
// presentation only and never stored.
func EffectiveStatus(m *Match, pending map[TransitionType]bool) MatchStatus {
	switch m.Status {
	case StatusScheduled:
		if pending[TransitionStartScoring] {
			return StatusScoringPending
		}
	case StatusFirstInnings:
		if pending[TransitionFinalScore] {
			return StatusFinalPending
		}
		if pending[TransitionStartSecondInnings] {
			return StatusSecondInningsPending
		}
	case StatusSecondInnings:
		if pending[TransitionFinalScore] {
			return StatusFinalPending
		}
	}
	return m.Status
}
