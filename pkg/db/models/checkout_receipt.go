package models

import (
	"time"

	"github.com/google/uuid"
)

// CheckoutReceipt is the processed-checkout ledger. The unique index on
// (user_id, payment_id) is the storage-level idempotency boundary: the
// materializer inserts a receipt in the same transaction as the order rows,
// so a replayed payment confirmation hits the constraint instead of writing
// a second order set.
type CheckoutReceipt struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:uq_checkout_receipts_user_payment"`
	PaymentID string    `gorm:"column:payment_id;not null;uniqueIndex:uq_checkout_receipts_user_payment"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
