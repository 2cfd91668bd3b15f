package stripewebhook

import (
	"context"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/checkout/session"
	"github.com/stripe/stripe-go/v84/product"

	pkgstripe "github.com/rtavara/mercafresh-backend/pkg/stripe"
)

// StripeEventDataClient exposes the Stripe reads the ingestor needs to
// resolve a completed session's line items and their product metadata.
type StripeEventDataClient interface {
	SessionLineItems(ctx context.Context, sessionID string) ([]*stripe.LineItem, error)
	GetProduct(ctx context.Context, id string) (*stripe.Product, error)
}

type stripeClientWrapper struct{}

// NewStripeClient wraps the provided Stripe client so the ingestor can be tested.
func NewStripeClient(api *pkgstripe.Client) StripeEventDataClient {
	if api == nil {
		return nil
	}
	return &stripeClientWrapper{}
}

func (w *stripeClientWrapper) SessionLineItems(ctx context.Context, sessionID string) ([]*stripe.LineItem, error) {
	params := &stripe.CheckoutSessionListLineItemsParams{Session: stripe.String(sessionID)}
	params.Context = ctx

	var items []*stripe.LineItem
	iter := session.ListLineItems(params)
	for iter.Next() {
		items = append(items, iter.LineItem())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (w *stripeClientWrapper) GetProduct(ctx context.Context, id string) (*stripe.Product, error) {
	params := &stripe.ProductParams{}
	params.Context = ctx
	return product.Get(id, params)
}
