package models

import (
	"time"

	"github.com/google/uuid"
)

// CartItem references a variant by id only; prices are resolved from the live
// variant at read and at order-creation time, never stored on the cart line.
type CartItem struct {
	ID               uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartID           uuid.UUID       `gorm:"column:cart_id;type:uuid;not null;index"`
	ProductVariantID uuid.UUID       `gorm:"column:product_variant_id;type:uuid;not null"`
	Quantity         int             `gorm:"column:quantity;not null"`
	ProductVariant   *ProductVariant `gorm:"foreignKey:ProductVariantID"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
