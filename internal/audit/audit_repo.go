package audit

import (
	"log"

	"gorm.io/gorm"
)

// Recorder is the write side of the trail. Append rides the caller's
// transaction when the entry must commit with the primary transition;
// AppendBestEffort logs and swallows failures for secondary writes.
type Recorder interface {
	Append(tx *gorm.DB, entry *Entry) error
	AppendBestEffort(entry *Entry)
}

// AuditRepository combines the write side with the query surface.
type AuditRepository interface {
	Recorder
	List(matchID *uint, action Action, page, pageSize int) ([]Entry, int64, error)
}

// GormAuditRepository implements AuditRepository using GORM
type GormAuditRepository struct {
	db *gorm.DB
}

// NewGormAuditRepository creates a new GormAuditRepository
func NewGormAuditRepository(db *gorm.DB) *GormAuditRepository {
	return &GormAuditRepository{db: db}
}

// Append writes an entry inside the given transaction.
func (r *GormAuditRepository) Append(tx *gorm.DB, entry *Entry) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Create(entry).Error
}

// AppendBestEffort writes an entry outside any transaction. Audit
// correctness of the primary transition outranks side-effect
// completeness, so a failure here is logged, never propagated.
func (r *GormAuditRepository) AppendBestEffort(entry *Entry) {
	if err := r.db.Create(entry).Error; err != nil {
		log.Printf("audit: failed to append %s entry: %v", entry.Action, err)
	}
}

// List retrieves entries filtered by match and/or action, newest first.
func (r *GormAuditRepository) List(matchID *uint, action Action, page, pageSize int) ([]Entry, int64, error) {
	var entries []Entry
	var total int64

	query := r.db.Model(&Entry{})
	if matchID != nil {
		query = query.Where("match_id = ?", *matchID)
	}
	if action != "" {
		query = query.Where("action = ?", action)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at desc, id desc").
		Offset(offset).Limit(pageSize).
		Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}
