// Package catalog exposes read-only product lookups. Catalog CRUD lives in
// the storefront service; checkout only snapshots what it finds here.
package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rtavara/mercafresh-backend/pkg/db/models"
)

// Repository defines catalog reads used at snapshot time.
type Repository interface {
	FindActiveByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindActiveByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Where("is_active = ?", true).
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}
