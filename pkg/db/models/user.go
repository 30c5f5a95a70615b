package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/nhatminhle/fashio-backend/pkg/enums"
)

// User is the account record consumed by the order flow. Registration and
// credential management live outside this service; only the identity fields
// needed for order denormalization are modeled.
type User struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email     string         `gorm:"column:email;not null;uniqueIndex"`
	FullName  string         `gorm:"column:full_name;not null"`
	Role      enums.UserRole `gorm:"column:role;type:text;not null;default:'customer'"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
