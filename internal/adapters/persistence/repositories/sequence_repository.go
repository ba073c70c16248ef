package repositories

import (
	"context"
	"errors"

	"gcub-intake/internal/adapters/persistence/models"
	"gcub-intake/internal/core/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SequenceRepository hands out application numbers from per-(branch, product)
// counter rows. Scanning existing applications for the latest number is racy
// under concurrent intakes, so the counter is the single source of truth and
// is incremented under a row lock.
type SequenceRepository struct {
	db *gorm.DB
}

// NewSequenceRepository creates a new sequence repository
func NewSequenceRepository(db *gorm.DB) *SequenceRepository {
	return &SequenceRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *SequenceRepository) WithTx(tx *gorm.DB) *SequenceRepository {
	return &SequenceRepository{db: tx}
}

// Next returns the next application number for the (branch, product) pair.
// Must run inside the caller's transaction: the SELECT ... FOR UPDATE holds
// the counter row until commit, so two concurrent intakes for the same pair
// serialize here instead of minting the same number.
func (r *SequenceRepository) Next(ctx context.Context, branchID, productID uint) (string, error) {
	var seq models.ApplicationSequence

	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("branch_id = ? AND product_id = ?", branchID, productID).
		First(&seq).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		seq = models.ApplicationSequence{BranchID: branchID, ProductID: productID, LastSeq: 0}
		if createErr := r.db.WithContext(ctx).Create(&seq).Error; createErr != nil {
			// Lost the race to create the counter row: another transaction
			// inserted it first. Re-read under lock and continue.
			err = r.db.WithContext(ctx).
				Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("branch_id = ? AND product_id = ?", branchID, productID).
				First(&seq).Error
			if err != nil {
				return "", err
			}
		}
	} else if err != nil {
		return "", err
	}

	seq.LastSeq++
	if err := r.db.WithContext(ctx).
		Model(&models.ApplicationSequence{}).
		Where("id = ?", seq.ID).
		Update("last_seq", seq.LastSeq).Error; err != nil {
		return "", err
	}

	return domain.FormatApplicationID(branchID, productID, seq.LastSeq), nil
}
