package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductVariant is the purchasable configuration stock is tracked against.
// StockQuantity is only ever mutated through conditional updates so it can
// never go negative under concurrent checkouts.
type ProductVariant struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID     uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	Color         string          `gorm:"column:color;not null"`
	Size          string          `gorm:"column:size;not null"`
	Price         decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	StockQuantity int             `gorm:"column:stock_quantity;not null;default:0"`
	ImageURL      string          `gorm:"column:image_url"`
	Product       *Product        `gorm:"foreignKey:ProductID"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
