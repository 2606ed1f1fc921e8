package match

import (
	"errors"

	"gorm.io/gorm"

	"github.com/JayPadhiyar-42/scorepact/pkg/apperr"
)

// MatchRepository defines methods to interact with match data
type MatchRepository interface {
	CreateMatch(m *Match) error
	GetMatchByID(id uint) (*Match, error)
	UpdateMatch(m *Match) error
	GetMatches(filters map[string]interface{}, page, pageSize int) ([]Match, int64, error)

	// PendingTransitions returns the transition types with an unresolved
	// approval or score verification for the match, for status projection.
	PendingTransitions(matchID uint) (map[TransitionType]bool, error)

	WithTransaction(txFunc func(MatchRepository) error) error
}

// GormMatchRepository implements MatchRepository using GORM
type GormMatchRepository struct {
	db *gorm.DB
}

// NewGormMatchRepository creates a new GormMatchRepository
func NewGormMatchRepository(db *gorm.DB) *GormMatchRepository {
	return &GormMatchRepository{db: db}
}

// WithTransaction implements transaction support
func (r *GormMatchRepository) WithTransaction(txFunc func(MatchRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return txFunc(&GormMatchRepository{db: tx})
	})
}

// CreateMatch creates a new match
func (r *GormMatchRepository) CreateMatch(m *Match) error {
	if m.FinalScoreApprovedBy == nil {
		m.FinalScoreApprovedBy = ApproverSet{}
	}
	return r.db.Create(m).Error
}

// GetMatchByID retrieves a match by ID with its teams
func (r *GormMatchRepository) GetMatchByID(id uint) (*Match, error) {
	var m Match
	result := r.db.Preload("TeamA").Preload("TeamB").First(&m, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, apperr.Wrap(apperr.ErrNotFound, "match not found")
		}
		return nil, result.Error
	}
	return &m, nil
}

// UpdateMatch updates an existing match
func (r *GormMatchRepository) UpdateMatch(m *Match) error {
	return r.db.Save(m).Error
}

// GetMatches retrieves matches based on filters with pagination
func (r *GormMatchRepository) GetMatches(filters map[string]interface{}, page, pageSize int) ([]Match, int64, error) {
	var matches []Match
	var total int64

	query := r.db.Model(&Match{})
	for key, value := range filters {
		query = query.Where(key, value)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	result := query.Preload("TeamA").Preload("TeamB").
		Order("scheduled_at desc").
		Offset(offset).Limit(pageSize).
		Find(&matches)
	if result.Error != nil {
		return nil, 0, result.Error
	}

	return matches, total, nil
}

// PendingTransitions queries the approval and verification tables by name to
// avoid importing those packages (they depend on this one).
func (r *GormMatchRepository) PendingTransitions(matchID uint) (map[TransitionType]bool, error) {
	pending := make(map[TransitionType]bool)

	var types []string
	err := r.db.Table("approval_requests").
		Where("match_id = ? AND status = ? AND deleted_at IS NULL", matchID, "pending").
		Distinct("type").
		Pluck("type", &types).Error
	if err != nil {
		return nil, err
	}
	for _, t := range types {
		pending[TransitionType(t)] = true
	}

	var verifications int64
	err = r.db.Table("score_verifications").
		Where("match_id = ? AND status = ? AND deleted_at IS NULL", matchID, "pending").
		Count(&verifications).Error
	if err != nil {
		return nil, err
	}
	if verifications > 0 {
		pending[TransitionFinalScore] = true
	}

	return pending, nil
}
