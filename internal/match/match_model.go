package match

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/JayPadhiyar-42/scorepact/internal/team"
)

// MatchStatus is the canonical lifecycle status of a match. Pending-gate
// statuses are never stored; they are projected from in-flight approval and
// verification rows (see EffectiveStatus).
type MatchStatus string

const (
	StatusScheduled     MatchStatus = "scheduled"
	StatusFirstInnings  MatchStatus = "first_innings"
	StatusSecondInnings MatchStatus = "second_innings"
	StatusCompleted     MatchStatus = "completed"
	StatusCancelled     MatchStatus = "cancelled"

	// Projected statuses, presentation only.
	StatusScoringPending       MatchStatus = "scoring_pending"
	StatusSecondInningsPending MatchStatus = "second_innings_pending"
	StatusFinalPending         MatchStatus = "final_pending"
)

// ApproverSet is the running set of captain identities that have approved a
// match's final score. At most two entries, deduplicated; stored as JSONB.
type ApproverSet []uint

// Contains reports whether the identity already approved.
func (s ApproverSet) Contains(id uint) bool {
	for _, v := range s {
		if v == id {
			return true
		}
	}
	return false
}

// Add inserts the identity if absent, reporting whether the set grew.
func (s *ApproverSet) Add(id uint) bool {
	if s.Contains(id) {
		return false
	}
	*s = append(*s, id)
	return true
}

// Remove evicts the identity if present, reporting whether the set shrank.
// A rejected requester's implicit self-approval is withdrawn this way.
func (s *ApproverSet) Remove(id uint) bool {
	for i, v := range *s {
		if v == id {
			*s = append((*s)[:i], (*s)[i+1:]...)
			return true
		}
	}
	return false
}

// Size returns the number of distinct approvers.
func (s ApproverSet) Size() int {
	return len(s)
}

func (s ApproverSet) Value() (driver.Value, error) {
	if s == nil {
		return json.Marshal(ApproverSet{})
	}
	return json.Marshal(s)
}

// Scan unmarshals the JSONB column into the set.
func (s *ApproverSet) Scan(src interface{}) error {
	if src == nil {
		*s = ApproverSet{}
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("ApproverSet: expected []byte, got %T", src)
	}
	return json.Unmarshal(b, s)
}

// Match represents a two-party cricket match. The per-side runs/wickets/overs
// fields are a cached snapshot; once ball events exist the event log is the
// source of truth.
type Match struct {
	gorm.Model
	CreatedByUserID uint `json:"created_by_user_id" gorm:"index"`

	TeamAID uint       `json:"team_a_id" gorm:"index;not null"`
	TeamA   *team.Team `json:"team_a,omitempty" gorm:"foreignKey:TeamAID"`
	TeamBID uint       `json:"team_b_id" gorm:"index;not null"`
	TeamB   *team.Team `json:"team_b,omitempty" gorm:"foreignKey:TeamBID"`

	Status         MatchStatus `json:"status" gorm:"index;default:'scheduled'"`
	CurrentInnings int         `json:"current_innings" gorm:"default:0"`
	ScheduledAt    time.Time   `json:"scheduled_at" gorm:"index"`

	TeamARuns    int     `json:"team_a_runs" gorm:"default:0"`
	TeamAWickets int     `json:"team_a_wickets" gorm:"default:0"`
	TeamAOvers   float32 `json:"team_a_overs" gorm:"default:0.0"`
	TeamBRuns    int     `json:"team_b_runs" gorm:"default:0"`
	TeamBWickets int     `json:"team_b_wickets" gorm:"default:0"`
	TeamBOvers   float32 `json:"team_b_overs" gorm:"default:0.0"`

	WinnerTeamID *uint `json:"winner_team_id,omitempty" gorm:"index"`

	// FinalScoreApprovedBy detects two-of-two consensus on the final score.
	FinalScoreApprovedBy ApproverSet `json:"final_score_approved_by" gorm:"type:jsonb"`

	// Per-phase attribution: who triggered each transition and when.
	// *ByID is the captain the action is attributed to, which for an
	// auto-approval is the silent opponent, not the requester.
	ScoringStartedAt       *time.Time `json:"scoring_started_at,omitempty"`
	ScoringStartedByID     *uint      `json:"scoring_started_by_id,omitempty"`
	SecondInningsStartedAt *time.Time `json:"second_innings_started_at,omitempty"`
	SecondInningsStartedByID *uint    `json:"second_innings_started_by_id,omitempty"`
	CompletedAt            *time.Time `json:"completed_at,omitempty"`
	CompletedByID          *uint      `json:"completed_by_id,omitempty"`
	CancelledAt            *time.Time `json:"cancelled_at,omitempty"`
}

// HasParticipant reports whether the team is one of the two participants.
func (m *Match) HasParticipant(teamID uint) bool {
	return teamID == m.TeamAID || teamID == m.TeamBID
}

// OpponentTeamID returns the other participant for a given team.
func (m *Match) OpponentTeamID(teamID uint) uint {
	if teamID == m.TeamAID {
		return m.TeamBID
	}
	return m.TeamAID
}

// InActiveInnings reports whether ball events may currently be recorded.
func (m *Match) InActiveInnings() bool {
	return m.Status == StatusFirstInnings || m.Status == StatusSecondInnings
}
