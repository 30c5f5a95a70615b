package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem captures the per-line snapshot frozen at order-creation time.
// UnitPrice and the display snapshot never change after insert.
type OrderItem struct {
	ID               uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID          uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	ProductVariantID uuid.UUID       `gorm:"column:product_variant_id;type:uuid;not null"`
	Quantity         int             `gorm:"column:quantity;not null"`
	UnitPrice        decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	SnapshotName     string          `gorm:"column:snapshot_name;not null"`
	SnapshotColor    string          `gorm:"column:snapshot_color;not null"`
	SnapshotSize     string          `gorm:"column:snapshot_size;not null"`
	SnapshotImageURL string          `gorm:"column:snapshot_image_url"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime"`
}
