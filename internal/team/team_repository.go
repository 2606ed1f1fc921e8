package team

import (
	"errors"

	"gorm.io/gorm"

	"github.com/JayPadhiyar-42/scorepact/pkg/apperr"
)

// TeamRepository defines the team reads the match-progression core relies on.
// Team and membership CRUD is owned by the scheduling side of the product;
// this core only reads captain relationships and writes nothing.
type TeamRepository interface {
	GetTeamByID(id uint) (*Team, error)
	GetTeamMember(teamID, userID uint) (*TeamMember, error)
	IsCaptain(teamID, userID uint) (bool, error)
	Captain(teamID uint) (*TeamMember, error)
	CreateTeam(t *Team) error
	AddMember(m *TeamMember) error
}

// GormTeamRepository implements TeamRepository using GORM
type GormTeamRepository struct {
	db *gorm.DB
}

// NewGormTeamRepository creates a new GormTeamRepository
func NewGormTeamRepository(db *gorm.DB) *GormTeamRepository {
	return &GormTeamRepository{db: db}
}

// GetTeamByID retrieves a team by ID
func (r *GormTeamRepository) GetTeamByID(id uint) (*Team, error) {
	var t Team
	if err := r.db.First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Wrap(apperr.ErrNotFound, "team not found")
		}
		return nil, err
	}
	return &t, nil
}

// GetTeamMember retrieves a membership row, or nil when the user is not a member.
func (r *GormTeamRepository) GetTeamMember(teamID, userID uint) (*TeamMember, error) {
	var m TeamMember
	err := r.db.Where("team_id = ? AND user_id = ?", teamID, userID).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// IsCaptain checks whether the user is the active captain of the team.
func (r *GormTeamRepository) IsCaptain(teamID, userID uint) (bool, error) {
	m, err := r.GetTeamMember(teamID, userID)
	if err != nil {
		return false, err
	}
	return m != nil && m.IsActive && (m.IsCaptain || m.Role == "captain"), nil
}

// Captain returns the active captain membership for a team.
func (r *GormTeamRepository) Captain(teamID uint) (*TeamMember, error) {
	var m TeamMember
	err := r.db.Where("team_id = ? AND is_active = ? AND (is_captain = ? OR role = ?)", teamID, true, true, "captain").
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Wrap(apperr.ErrNotFound, "team has no active captain")
		}
		return nil, err
	}
	return &m, nil
}

// CreateTeam creates a new team
func (r *GormTeamRepository) CreateTeam(t *Team) error {
	return r.db.Create(t).Error
}

// AddMember adds a user to a team
func (r *GormTeamRepository) AddMember(m *TeamMember) error {
	return r.db.Create(m).Error
}
