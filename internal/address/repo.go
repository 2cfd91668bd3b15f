// Package address exposes read-only delivery address lookups. Orders keep a
// soft reference to the address id, so nothing here ever deletes or cascades.
package address

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rtavara/mercafresh-backend/pkg/db/models"
)

// Repository defines address reads used when placing an order.
type Repository interface {
	FindActiveByID(ctx context.Context, id, userID uuid.UUID) (*models.Address, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an address repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindActiveByID(ctx context.Context, id, userID uuid.UUID) (*models.Address, error) {
	var addr models.Address
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Where("user_id = ?", userID).
		Where("active = ?", true).
		First(&addr).Error
	if err != nil {
		return nil, err
	}
	return &addr, nil
}
