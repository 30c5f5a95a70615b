package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nhatminhle/fashio-backend/pkg/db/models"
	pkgerrors "github.com/nhatminhle/fashio-backend/pkg/errors"
)

// VariantRepository exposes the variant reads and the conditional stock
// mutation used by checkout and reconciliation.
type VariantRepository interface {
	WithTx(tx *gorm.DB) VariantRepository
	GetVariantByID(context.Context, uuid.UUID) (*models.ProductVariant, error)
	GetVariantsByIDs(context.Context, []uuid.UUID) ([]models.ProductVariant, error)
	ConditionalDecrement(ctx context.Context, variantID uuid.UUID, qty int) (bool, error)
}

// Repository implements variant persistence over GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) VariantRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// GetVariantByID loads a variant with its parent product for snapshotting.
func (r *Repository) GetVariantByID(ctx context.Context, id uuid.UUID) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	err := r.db.WithContext(ctx).
		Preload("Product").
		First(&variant, "id = ?", id).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product variant not found")
		}
		return nil, err
	}
	return &variant, nil
}

// GetVariantsByIDs loads variants with parents in one round trip. Missing IDs
// are simply absent from the result; callers decide whether that is an error.
func (r *Repository) GetVariantsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.ProductVariant, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var variants []models.ProductVariant
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("id IN ?", ids).
		Find(&variants).
		Error
	if err != nil {
		return nil, err
	}
	return variants, nil
}

// ConditionalDecrement atomically subtracts qty from the variant's stock only
// when enough stock remains. Returns false when the guard rejected the update,
// leaving the row untouched.
func (r *Repository) ConditionalDecrement(ctx context.Context, variantID uuid.UUID, qty int) (bool, error) {
	if qty <= 0 {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "decrement quantity must be positive")
	}

	res := r.db.WithContext(ctx).Exec(
		"UPDATE product_variants SET stock_quantity = stock_quantity - ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND stock_quantity >= ?",
		qty, variantID, qty,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
