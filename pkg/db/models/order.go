package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nhatminhle/fashio-backend/pkg/enums"
)

// Order is the immutable-content checkout record. Status and payment status
// are the only fields mutated after creation, and only by the reconciler or
// the privileged shipping-status operation.
type Order struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID          uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	User            *User               `gorm:"foreignKey:UserID"`
	OrderDate       time.Time           `gorm:"column:order_date;not null"`
	Status          enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'pending'"`
	PaymentStatus   enums.PaymentStatus `gorm:"column:payment_status;type:text;not null;default:'unpaid'"`
	TotalPrice      decimal.Decimal     `gorm:"column:total_price;type:numeric(14,2);not null"`
	ShippingAddress string              `gorm:"column:shipping_address;not null"`
	PhoneNumber     string              `gorm:"column:phone_number;not null"`
	CustomerName    string              `gorm:"column:customer_name;not null"`
	Items           []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
