package leads

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository is the gorm-backed lead store. The handle is injected so tests
// and jobs can run against their own database.
type Repository struct {
	DB *gorm.DB
}

// NewRepository wraps a database handle
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

// CountByOwner returns how many leads the owner already has persisted.
// The import driver uses this as its resume cursor.
func (r *Repository) CountByOwner(ownerID string) (int64, error) {
	var n int64
	err := r.DB.Model(&LeadModel{}).Where("owner_id = ?", ownerID).Count(&n).Error
	return n, err
}

// CreateBatch inserts one batch of leads as a single insert group.
// IDs are assigned here so the mapper stays deterministic.
func (r *Repository) CreateBatch(batch []LeadModel) error {
	if len(batch) == 0 {
		return nil
	}
	for i := range batch {
		if batch[i].ID == "" {
			batch[i].ID = uuid.New().String()
		}
	}
	return r.DB.Create(&batch).Error
}

// ExistingHandles returns which of the candidate contact handles are already
// persisted for the owner, for duplicate detection.
func (r *Repository) ExistingHandles(ownerID string, candidates []string) ([]string, error) {
	if len(candidates) == 0 {
		return nil, nil
	}
	var handles []string
	err := r.DB.Model(&LeadModel{}).
		Where("owner_id = ? AND contact_handle IN ?", ownerID, candidates).
		Pluck("contact_handle", &handles).Error
	return handles, err
}
