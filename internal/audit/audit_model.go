package audit

import (
	"gorm.io/gorm"

	"github.com/JayPadhiyar-42/scorepact/internal/models"
)

// Action tags every state-affecting operation writes to the trail.
type Action string

const (
	ActionApprovalRequested    Action = "APPROVAL_REQUESTED"
	ActionApprovalApproved     Action = "APPROVAL_APPROVED"
	ActionApprovalRejected     Action = "APPROVAL_REJECTED"
	ActionApprovalAutoApproved Action = "APPROVAL_AUTO_APPROVED"
	ActionApprovalSweepFailed  Action = "APPROVAL_SWEEP_FAILED"
	ActionMatchStatusChanged   Action = "MATCH_STATUS_CHANGED"
	ActionScoreSubmitted       Action = "SCORE_SUBMITTED"
	ActionScoreVerified        Action = "SCORE_VERIFIED"
	ActionScoreDisputed        Action = "SCORE_DISPUTED"
	ActionDisputeResolved      Action = "DISPUTE_RESOLVED"
	ActionBallRecorded         Action = "BALL_RECORDED"
	ActionBallUndone           Action = "BALL_UNDONE"
	ActionStatsAggregated      Action = "STATS_AGGREGATED"
)

// Entry is one immutable record in the audit log. Rows are only ever
// appended; nothing updates or deletes them.
type Entry struct {
	gorm.Model
	MatchID *uint  `json:"match_id,omitempty" gorm:"index"`
	Action  Action `json:"action" gorm:"index;not null"`

	// ActorID is the user who performed the action, or common.SystemActorID
	// for automatic actions. WasAutomatic distinguishes an auto-approval
	// attributed to a captain from that captain acting themselves.
	ActorID      uint `json:"actor_id" gorm:"index"`
	WasAutomatic bool `json:"was_automatic" gorm:"default:false"`

	PrevState models.JSONMap `json:"prev_state,omitempty" gorm:"type:jsonb"`
	NewState  models.JSONMap `json:"new_state,omitempty" gorm:"type:jsonb"`

	// Ball-scoped actions carry their ordinal.
	Innings *int `json:"innings,omitempty"`
	Over    *int `json:"over,omitempty"`
	Ball    *int `json:"ball,omitempty"`
}
