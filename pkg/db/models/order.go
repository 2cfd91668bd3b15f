package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/rtavara/mercafresh-backend/pkg/enums"
)

// Order is one durable row per cart line per checkout. The product name,
// image and price columns are snapshots captured at checkout time; later
// catalog edits never touch them.
type Order struct {
	ID                uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderRef          string              `gorm:"column:order_ref;not null"`
	UserID            uuid.UUID           `gorm:"column:user_id;type:uuid;not null"`
	ProductID         uuid.UUID           `gorm:"column:product_id;type:uuid;not null"`
	ProductName       string              `gorm:"column:product_name;not null"`
	ProductImage      string              `gorm:"column:product_image"`
	PaymentID         string              `gorm:"column:payment_id;not null;default:''"`
	PaymentStatus     enums.PaymentStatus `gorm:"column:payment_status;type:payment_status;not null"`
	DeliveryAddressID uuid.UUID           `gorm:"column:delivery_address_id;type:uuid;not null"`
	Quantity          int                 `gorm:"column:quantity;not null"`
	UnitPriceCents    int                 `gorm:"column:unit_price_cents;not null"`
	SubTotalCents     int                 `gorm:"column:sub_total_cents;not null"`
	TotalCents        int                 `gorm:"column:total_cents;not null"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time           `gorm:"column:updated_at;autoUpdateTime"`

	// soft reference, may be nil if the address was later deactivated
	DeliveryAddress *Address `gorm:"foreignKey:DeliveryAddressID"`
}
