package cart

import "github.com/google/uuid"

// ItemInput is one product+quantity pair from the caller's live cart.
type ItemInput struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
}

// Line is an immutable cart line with price, name and image already
// resolved. Once a snapshot is returned its fields never change, even if
// the catalog entry does.
type Line struct {
	ProductID               uuid.UUID
	ProductName             string
	ProductImage            string
	UnitPriceCents          int64
	DiscountPercent         int64
	EffectiveUnitPriceCents int64
	Quantity                int
	LineTotalCents          int64
}

// TotalCents sums the line totals of a snapshot.
func TotalCents(lines []Line) int64 {
	var total int64
	for _, l := range lines {
		total += l.LineTotalCents
	}
	return total
}
