// Package cart snapshots the caller's live cart into immutable lines and
// clears it after a checkout has been durably recorded.
package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/rtavara/mercafresh-backend/internal/catalog"
	"github.com/rtavara/mercafresh-backend/internal/pricing"
	"github.com/rtavara/mercafresh-backend/pkg/db/models"
	pkgerrors "github.com/rtavara/mercafresh-backend/pkg/errors"
	"github.com/rtavara/mercafresh-backend/pkg/logger"
)

type service struct {
	catalog catalog.Repository
	repo    Repository
	logg    *logger.Logger
}

// NewService builds a cart service with the required dependencies.
func NewService(catalogRepo catalog.Repository, repo Repository, logg *logger.Logger) (Service, error) {
	if catalogRepo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		catalog: catalogRepo,
		repo:    repo,
		logg:    logg,
	}, nil
}

// Snapshot resolves each item against the current catalog and freezes
// name, image and price into the returned lines. The catalog may change
// afterward without affecting the snapshot.
func (s *service) Snapshot(ctx context.Context, items []ItemInput) ([]Line, error) {
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		if item.ProductID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
		}
		if item.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("quantity must be positive for product %s", item.ProductID))
		}
		ids = append(ids, item.ProductID)
	}

	products, err := s.catalog.FindActiveByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load catalog products")
	}
	byID := make(map[uuid.UUID]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	lines := make([]Line, 0, len(items))
	for _, item := range items {
		product, ok := byID[item.ProductID]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %s is unavailable", item.ProductID))
		}

		effective, err := pricing.EffectiveUnitPriceCents(int64(product.PriceCents), int64(product.DiscountPercent))
		if err != nil {
			return nil, err
		}

		image := ""
		if len(product.Images) > 0 {
			image = product.Images[0]
		}

		lines = append(lines, Line{
			ProductID:               product.ID,
			ProductName:             product.Name,
			ProductImage:            image,
			UnitPriceCents:          int64(product.PriceCents),
			DiscountPercent:         int64(product.DiscountPercent),
			EffectiveUnitPriceCents: effective,
			Quantity:                item.Quantity,
			LineTotalCents:          effective * int64(item.Quantity),
		})
	}
	return lines, nil
}

// Clear deletes the user's cart rows and the cart reference on the user
// record. It must only run after materialization succeeded; a failure here
// leaves a stale cart, never a lost order, and is reconciled lazily.
func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	var errs error
	if err := s.repo.DeleteByUser(ctx, userID); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("delete cart items: %w", err))
	}
	if err := s.repo.ClearUserCartRef(ctx, userID); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("clear user cart reference: %w", err))
	}
	if errs != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, errs, "clear cart")
	}
	return nil
}
