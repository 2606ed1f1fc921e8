// team/model.go
package team

import (
	"time"

	"gorm.io/gorm"
)

// Team represents a cricket team
type Team struct {
	gorm.Model
	Name        string `json:"name" gorm:"not null"`
	Description string `json:"description"`
	Logo        string `json:"logo"`
	CreatedByID uint   `json:"created_by_id" gorm:"index"`
	IsDeleted   bool   `json:"is_deleted" gorm:"default:false"`
}

// TeamMember represents a user's membership in a team
type TeamMember struct {
	gorm.Model
	TeamID    uint      `json:"team_id" gorm:"index"`
	UserID    uint      `json:"user_id" gorm:"index"`
	Role      string    `json:"role" gorm:"default:'player'"`
	JoinedAt  time.Time `json:"joined_at"`
	IsActive  bool      `json:"is_active" gorm:"default:true"`
	IsCaptain bool      `json:"is_captain" gorm:"default:false"`
}
