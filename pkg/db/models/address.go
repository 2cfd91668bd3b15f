package models

import (
	"time"

	"github.com/google/uuid"
)

// Address is a delivery address owned by the user. Orders hold a soft
// reference to it: deleting an address must never cascade into historical
// orders, so rows are soft-deleted via the Active flag.
type Address struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null"`
	Line1     string    `gorm:"column:line1;not null"`
	Line2     string    `gorm:"column:line2"`
	City      string    `gorm:"column:city;not null"`
	State     string    `gorm:"column:state"`
	Country   string    `gorm:"column:country;not null"`
	Pincode   string    `gorm:"column:pincode"`
	Mobile    string    `gorm:"column:mobile"`
	Active    bool      `gorm:"column:active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
