package cart

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence operations for cart rows and the cart
// reference held on the user record.
type Repository interface {
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
	ClearUserCartRef(ctx context.Context, userID uuid.UUID) error
}

// Service snapshots and reconciles a user's cart.
type Service interface {
	Snapshot(ctx context.Context, items []ItemInput) ([]Line, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}
