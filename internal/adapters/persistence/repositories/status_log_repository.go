package repositories

import (
	"context"

	"gcub-intake/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// StatusLogRepository handles the append-only status audit trail
type StatusLogRepository struct {
	db *gorm.DB
}

// NewStatusLogRepository creates a new status log repository
func NewStatusLogRepository(db *gorm.DB) *StatusLogRepository {
	return &StatusLogRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *StatusLogRepository) WithTx(tx *gorm.DB) *StatusLogRepository {
	return &StatusLogRepository{db: tx}
}

// Create appends a status log entry
func (r *StatusLogRepository) Create(ctx context.Context, log *models.StatusLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// ListByApplicationID gets the status history of an application, newest first
func (r *StatusLogRepository) ListByApplicationID(ctx context.Context, applicationID uint) ([]*models.StatusLog, error) {
	var logs []*models.StatusLog
	err := r.db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("created_at DESC, id DESC").
		Find(&logs).Error
	return logs, err
}
