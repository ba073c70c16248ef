package repositories

import (
	"context"

	"gcub-intake/internal/adapters/persistence/models"
	"gcub-intake/internal/core/domain"

	"gorm.io/gorm"
)

// ApplicationRepository handles application data access
type ApplicationRepository struct {
	db *gorm.DB
}

// NewApplicationRepository creates a new application repository
func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *ApplicationRepository) WithTx(tx *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{db: tx}
}

// ListFilters narrows list and count queries
type ListFilters struct {
	Status          string
	ApplicationType string
	BranchID        uint
	Search          string
}

// applyFilters adds the shared filter semantics used by List and Count.
// Search matches a substring across the business identifier, applicant
// contact fields and the product name snapshot.
func applyFilters(query *gorm.DB, filters *ListFilters) *gorm.DB {
	if filters == nil {
		return query
	}
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.ApplicationType != "" {
		query = query.Where("application_type = ?", filters.ApplicationType)
	}
	if filters.BranchID != 0 {
		query = query.Where("branch_id = ?", filters.BranchID)
	}
	if filters.Search != "" {
		like := "%" + filters.Search + "%"
		query = query.Where(
			"application_id LIKE ? OR name LIKE ? OR email LIKE ? OR phone LIKE ? OR product_name LIKE ?",
			like, like, like, like, like,
		)
	}
	return query
}

// Create persists a new application
func (r *ApplicationRepository) Create(ctx context.Context, app *models.Application) error {
	return r.db.WithContext(ctx).Create(app).Error
}

// GetByID gets an application by ID with relations
func (r *ApplicationRepository) GetByID(ctx context.Context, id uint) (*models.Application, error) {
	var app models.Application
	err := r.db.WithContext(ctx).
		Preload("Branch").
		Preload("Product").
		First(&app, id).Error
	return &app, err
}

// FindActiveDuplicate returns the first non-rejected application for the
// same product and type where either the email or, when supplied, the
// phone matches. Returns (nil, nil) when no duplicate exists. Rejected
// applications are excluded so a rejected applicant may resubmit.
func (r *ApplicationRepository) FindActiveDuplicate(ctx context.Context, productID uint, applicationType, email, phone string) (*models.Application, error) {
	var app models.Application

	contact := r.db.Where("email = ?", email)
	if phone != "" {
		contact = contact.Or("phone = ?", phone)
	}

	err := r.db.WithContext(ctx).
		Where("product_id = ? AND application_type = ? AND status <> ?",
			productID, applicationType, domain.StatusRejected.String()).
		Where(contact).
		First(&app).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// List lists applications matching the filters, newest first. The id
// tie-break keeps page boundaries stable while new rows are inserted.
func (r *ApplicationRepository) List(ctx context.Context, filters *ListFilters, offset, limit int) ([]*models.Application, error) {
	var apps []*models.Application
	err := applyFilters(r.db.WithContext(ctx).Model(&models.Application{}), filters).
		Preload("Branch").
		Preload("Product").
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&apps).Error
	return apps, err
}

// Count counts applications matching the filters (same semantics as List)
func (r *ApplicationRepository) Count(ctx context.Context, filters *ListFilters) (int64, error) {
	var total int64
	err := applyFilters(r.db.WithContext(ctx).Model(&models.Application{}), filters).
		Count(&total).Error
	return total, err
}

// CountByStatus counts applications in a single status
func (r *ApplicationRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Application{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}

// UpdateStatus performs the guarded status update: the row is only touched
// when it still holds oldStatus. Returns the number of rows affected so the
// caller can detect a concurrent modification.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id uint, oldStatus, newStatus, notes string) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Application{}).
		Where("id = ? AND status = ?", id, oldStatus).
		Updates(map[string]interface{}{
			"status": newStatus,
			"notes":  notes,
		})
	return result.RowsAffected, result.Error
}

// Recent returns the most recently created applications (dashboard)
func (r *ApplicationRepository) Recent(ctx context.Context, limit int) ([]*models.Application, error) {
	var apps []*models.Application
	err := r.db.WithContext(ctx).
		Preload("Branch").
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&apps).Error
	return apps, err
}
