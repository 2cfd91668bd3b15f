// Package checkout builds hosted payment sessions for the online payment
// path. No durable state is written here; orders only materialize once the
// processor confirms payment through the webhook.
package checkout

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"

	"github.com/rtavara/mercafresh-backend/internal/cart"
	"github.com/rtavara/mercafresh-backend/pkg/config"
	pkgerrors "github.com/rtavara/mercafresh-backend/pkg/errors"
	"github.com/rtavara/mercafresh-backend/pkg/logger"
)

// Metadata keys round-tripped through the processor. The webhook relies on
// these to map the session and its line items back to internal records.
const (
	MetadataUserID    = "userId"
	MetadataAddressID = "addressId"
	MetadataProductID = "productId"
)

// IssueSessionInput carries the snapshot and delivery details for one
// online checkout attempt.
type IssueSessionInput struct {
	UserID    uuid.UUID
	Email     string
	AddressID uuid.UUID
	Lines     []cart.Line
}

// Session is the opaque handle the buyer is redirected to.
type Session struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

// Service issues hosted checkout sessions.
type Service interface {
	IssueSession(ctx context.Context, input IssueSessionInput) (*Session, error)
}

type service struct {
	client StripeCheckoutClient
	cfg    config.CheckoutConfig
	logg   *logger.Logger
}

// NewService builds a checkout service with the required dependencies.
func NewService(client StripeCheckoutClient, cfg config.CheckoutConfig, logg *logger.Logger) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("stripe checkout client required")
	}
	if cfg.SuccessURL == "" || cfg.CancelURL == "" {
		return nil, fmt.Errorf("checkout success and cancel URLs required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		client: client,
		cfg:    cfg,
		logg:   logg,
	}, nil
}

// IssueSession submits one provider line item per cart line, each priced at
// the discounted unit amount in minor currency units and carrying the
// product id in metadata. The processor call is bounded by the configured
// session timeout and is never retried here; the caller may retry checkout.
func (s *service) IssueSession(ctx context.Context, input IssueSessionInput) (*Session, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.AddressID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery address required")
	}
	if len(input.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	totalCents := cart.TotalCents(input.Lines)
	if totalCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart total must be positive")
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		SubmitType:         stripe.String(string(stripe.CheckoutSessionSubmitTypePay)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		SuccessURL:         stripe.String(s.cfg.SuccessURL),
		CancelURL:          stripe.String(s.cfg.CancelURL),
		CustomerEmail:      stripe.String(input.Email),
		Locale:             stripe.String(s.cfg.Locale),
		LineItems:          make([]*stripe.CheckoutSessionLineItemParams, 0, len(input.Lines)),
	}
	params.Metadata = map[string]string{
		MetadataUserID:    input.UserID.String(),
		MetadataAddressID: input.AddressID.String(),
	}

	for _, line := range input.Lines {
		productData := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name:     stripe.String(line.ProductName),
			Metadata: map[string]string{MetadataProductID: line.ProductID.String()},
		}
		if line.ProductImage != "" {
			productData.Images = stripe.StringSlice([]string{line.ProductImage})
		}

		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(int64(line.Quantity)),
			AdjustableQuantity: &stripe.CheckoutSessionLineItemAdjustableQuantityParams{
				Enabled: stripe.Bool(true),
				Minimum: stripe.Int64(1),
			},
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(s.cfg.Currency),
				UnitAmount:  stripe.Int64(line.EffectiveUnitPriceCents),
				ProductData: productData,
			},
		})
	}

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.SessionTimeout)
	defer cancel()

	sess, err := s.client.CreateSession(callCtx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create checkout session")
	}

	ctx = s.logg.WithFields(ctx, map[string]any{"session_id": sess.ID, "amount_cents": totalCents})
	s.logg.Info(ctx, "checkout session issued")

	return &Session{SessionID: sess.ID, URL: sess.URL}, nil
}
