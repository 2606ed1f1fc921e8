package user

import "gorm.io/gorm"

type User struct {
	gorm.Model
	Username string `gorm:"unique" json:"username"`
	Email    string `gorm:"unique" json:"email"`
	Password string `json:"-"`
	Roles    []Role `gorm:"many2many:user_roles" json:"roles"`

	// Approval preferences govern how long this captain gets to respond to
	// an opponent's request before their silence is treated as consent.
	AutoApproveEnabled  bool `gorm:"default:true" json:"auto_approve_enabled"`
	TimeoutMinutes      int  `gorm:"default:5" json:"timeout_minutes"` // 1-60
	NotifyOnAutoApprove bool `gorm:"default:true" json:"notify_on_auto_approve"`
}

type Role struct {
	gorm.Model
	Name string `gorm:"unique;not null"`
}

const (
	// TimeoutMinutesDefault is used when a captain has no stored preference.
	TimeoutMinutesDefault = 5
	TimeoutMinutesMin     = 1
	TimeoutMinutesMax     = 60
)

// ClampTimeout forces a timeout preference into the allowed 1-60 range,
// falling back to the default for unset values.
func ClampTimeout(minutes int) int {
	if minutes == 0 {
		return TimeoutMinutesDefault
	}
	if minutes < TimeoutMinutesMin {
		return TimeoutMinutesMin
	}
	if minutes > TimeoutMinutesMax {
		return TimeoutMinutesMax
	}
	return minutes
}
