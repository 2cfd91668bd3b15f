package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Product is the catalog listing consumed at snapshot time. Catalog CRUD is
// out of scope; checkout reads name/images/price/discount for the cart
// snapshot and never writes back.
type Product struct {
	ID              uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name            string         `gorm:"column:name;not null"`
	Images          pq.StringArray `gorm:"column:images;type:text[];not null;default:ARRAY[]::text[]"`
	PriceCents      int            `gorm:"column:price_cents;not null"`
	DiscountPercent int            `gorm:"column:discount_percent;not null;default:0"`
	IsActive        bool           `gorm:"column:is_active;not null;default:true"`
	CreatedAt       time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
