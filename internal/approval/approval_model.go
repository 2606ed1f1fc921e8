package approval

import (
	"time"

	"gorm.io/gorm"

	"github.com/JayPadhiyar-42/scorepact/internal/match"
	"github.com/JayPadhiyar-42/scorepact/internal/user"
)

// ApprovalStatus tracks the lifecycle of a two-party approval request.
type ApprovalStatus string

const (
	StatusPending      ApprovalStatus = "pending"
	StatusApproved     ApprovalStatus = "approved"
	StatusRejected     ApprovalStatus = "rejected"
	StatusAutoApproved ApprovalStatus = "auto_approved"
	// StatusCancelled marks a pending request superseded by a newer request
	// of the same type for the same match.
	StatusCancelled ApprovalStatus = "cancelled"
)

// Resolved reports whether the request reached a terminal status.
func (s ApprovalStatus) Resolved() bool {
	return s != StatusPending
}

// ApprovalRequest gates one lifecycle transition behind the opposing
// captain's consent. Only the non-requesting captain (or the auto-approval
// sweep acting on their behalf) may resolve it; once resolved it is immutable.
type ApprovalRequest struct {
	gorm.Model
	MatchID uint                 `json:"match_id" gorm:"index;not null"`
	Type    match.TransitionType `json:"type" gorm:"index;not null"`

	RequesterID uint           `json:"requester_id" gorm:"index;not null"`
	Status      ApprovalStatus `json:"status" gorm:"index;default:'pending'"`

	// AutoApproveAt is derived from the opposing captain's timeout
	// preference: their silence past this instant is treated as consent.
	AutoApproveEnabled bool       `json:"auto_approve_enabled" gorm:"default:true"`
	AutoApproveAt      *time.Time `json:"auto_approve_at,omitempty" gorm:"index"`

	// OpponentCaptainID is the identity an auto-approval is attributed to.
	OpponentCaptainID uint `json:"opponent_captain_id" gorm:"index;not null"`

	ResolvedByID    *uint      `json:"resolved_by_id,omitempty"`
	ResolvedAt      *time.Time `json:"resolved_at,omitempty"`
	WasAutoApproved bool       `json:"was_auto_approved" gorm:"default:false"`
}

// autoApproveDeadline computes when a pending request may be resolved
// unilaterally, from the opposing captain's own preference.
func autoApproveDeadline(opponent *user.User, now time.Time) (bool, time.Time) {
	if opponent == nil {
		return true, now.Add(time.Duration(user.TimeoutMinutesDefault) * time.Minute)
	}
	if !opponent.AutoApproveEnabled {
		return false, time.Time{}
	}
	minutes := user.ClampTimeout(opponent.TimeoutMinutes)
	return true, now.Add(time.Duration(minutes) * time.Minute)
}
