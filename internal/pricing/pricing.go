// Package pricing derives line prices from catalog price plus discount
// percentage. Every place a price is displayed, persisted, or sent to the
// payment processor goes through this package so the rounding rule stays
// identical across all of them.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/rtavara/mercafresh-backend/pkg/errors"
)

var oneHundred = decimal.NewFromInt(100)

// EffectiveUnitPriceCents applies the discount to a unit price stored in
// minor currency units. The discount amount is computed on the major-unit
// price and rounded up, not the final price:
//
//	discount = ceil(price * discountPercent / 100)   (whole major units)
//	effective = price - discount, floored at 0
//
// A price of 99.00 with a 10% discount yields 89.00, not 89.10: the 9.90
// discount rounds up to 10 before it is subtracted.
func EffectiveUnitPriceCents(priceCents int64, discountPercent int64) (int64, error) {
	if priceCents < 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("price must be non-negative, got %d", priceCents))
	}
	if discountPercent < 0 || discountPercent > 100 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("discount percent must be in [0,100], got %d", discountPercent))
	}

	major := decimal.NewFromInt(priceCents).Shift(-2)
	discount := major.
		Mul(decimal.NewFromInt(discountPercent)).
		Div(oneHundred).
		Ceil()

	effective := major.Sub(discount)
	if effective.IsNegative() {
		effective = decimal.Zero
	}
	return effective.Shift(2).IntPart(), nil
}

// LineTotalCents prices one cart line: quantity times the discounted unit
// price.
func LineTotalCents(priceCents, discountPercent int64, quantity int) (int64, error) {
	if quantity <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("quantity must be positive, got %d", quantity))
	}
	unit, err := EffectiveUnitPriceCents(priceCents, discountPercent)
	if err != nil {
		return 0, err
	}
	return unit * int64(quantity), nil
}

// MajorUnits renders a minor-unit amount as a decimal major-unit value for
// response payloads, e.g. 8900 -> 89.00.
func MajorUnits(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Shift(-2)
}
