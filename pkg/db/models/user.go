package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// User is the storefront identity. Authentication is handled upstream; this
// service only reads the email for checkout sessions and clears the cart
// reference after materialization.
type User struct {
	ID          uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email       string         `gorm:"column:email;type:text;not null;uniqueIndex"`
	Name        string         `gorm:"column:name;not null"`
	CartItemIDs pq.StringArray `gorm:"column:cart_item_ids;type:text[];not null;default:ARRAY[]::text[]"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
