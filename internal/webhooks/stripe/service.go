// Package stripewebhook ingests asynchronous payment processor events. A
// completed checkout session is materialized into order rows exactly once;
// every other event type is acknowledged and ignored so the processor stops
// redelivering it.
package stripewebhook

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"

	"github.com/rtavara/mercafresh-backend/internal/cart"
	"github.com/rtavara/mercafresh-backend/internal/checkout"
	"github.com/rtavara/mercafresh-backend/internal/orders"
	"github.com/rtavara/mercafresh-backend/pkg/enums"
	pkgerrors "github.com/rtavara/mercafresh-backend/pkg/errors"
	"github.com/rtavara/mercafresh-backend/pkg/logger"
	"github.com/rtavara/mercafresh-backend/pkg/metrics"
)

type ServiceParams struct {
	Orders       orders.Service
	Cart         cart.Service
	StripeClient StripeEventDataClient
	Metrics      *metrics.WebhookMetrics
	Logger       *logger.Logger
}

type Service struct {
	orders  orders.Service
	cart    cart.Service
	stripe  StripeEventDataClient
	metrics *metrics.WebhookMetrics
	logg    *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Orders == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders service required")
	}
	if params.Cart == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart service required")
	}
	if params.StripeClient == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "stripe client required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &Service{
		orders:  params.Orders,
		cart:    params.Cart,
		stripe:  params.StripeClient,
		metrics: params.Metrics,
		logg:    params.Logger,
	}, nil
}

// HandleEvent dispatches a verified, deduplicated event. Returning an error
// makes the controller answer non-2xx so the processor redelivers; the
// materializer's idempotency makes that safe. Malformed payloads are logged
// and acknowledged instead, a redelivery can never fix those.
func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}

	start := time.Now()
	defer func() {
		s.metrics.ObserveDuration(string(event.Type), time.Since(start))
	}()

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		return s.handleCheckoutCompleted(ctx, event)
	default:
		return nil
	}
}

func (s *Service) handleCheckoutCompleted(ctx context.Context, event *stripe.Event) error {
	eventType := string(event.Type)

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return s.ackMalformed(ctx, event.ID, eventType, fmt.Errorf("decode checkout session: %w", err))
	}

	userID, err := uuid.Parse(session.Metadata[checkout.MetadataUserID])
	if err != nil {
		return s.ackMalformed(ctx, event.ID, eventType, fmt.Errorf("session %s has no usable %s metadata: %w", session.ID, checkout.MetadataUserID, err))
	}
	addressID, err := uuid.Parse(session.Metadata[checkout.MetadataAddressID])
	if err != nil {
		return s.ackMalformed(ctx, event.ID, eventType, fmt.Errorf("session %s has no usable %s metadata: %w", session.ID, checkout.MetadataAddressID, err))
	}

	paymentID := session.ID
	if session.PaymentIntent != nil && session.PaymentIntent.ID != "" {
		paymentID = session.PaymentIntent.ID
	}

	lines, err := s.resolveLines(ctx, session.ID)
	if err != nil {
		if appErr := pkgerrors.As(err); appErr != nil && appErr.Code() == pkgerrors.CodeValidation {
			return s.ackMalformed(ctx, event.ID, eventType, err)
		}
		s.metrics.IncFailure(eventType)
		return err
	}

	_, err = s.orders.Materialize(ctx, orders.MaterializeInput{
		UserID:        userID,
		AddressID:     addressID,
		PaymentID:     paymentID,
		PaymentStatus: enums.PaymentStatusFromProcessor(string(session.PaymentStatus)),
		Lines:         lines,
	})
	if err != nil {
		s.metrics.IncFailure(eventType)
		return err
	}

	// the order set is durable; a failed clear leaves a stale cart and is
	// reconciled lazily, never rolled back
	if err := s.cart.Clear(ctx, userID); err != nil {
		s.logg.Error(s.logg.WithUserID(ctx, userID.String()), "cart clear after materialization failed", err)
	}

	s.metrics.IncProcessed(eventType)
	return nil
}

// resolveLines rebuilds cart lines from the processor's own line items and
// amounts, not a fresh catalog lookup, so the order reflects exactly what
// was charged.
func (s *Service) resolveLines(ctx context.Context, sessionID string) ([]cart.Line, error) {
	items, err := s.stripe.SessionLineItems(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list session line items")
	}
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("session %s has no line items", sessionID))
	}

	lines := make([]cart.Line, 0, len(items))
	for _, item := range items {
		if item.Price == nil || item.Price.Product == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("session %s line item %s has no price product", sessionID, item.ID))
		}

		product, err := s.stripe.GetProduct(ctx, item.Price.Product.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch session product")
		}

		productID, err := uuid.Parse(product.Metadata[checkout.MetadataProductID])
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("product %s has no usable %s metadata", product.ID, checkout.MetadataProductID))
		}

		image := ""
		if len(product.Images) > 0 {
			image = product.Images[0]
		}

		quantity := int(item.Quantity)
		lines = append(lines, cart.Line{
			ProductID:               productID,
			ProductName:             product.Name,
			ProductImage:            image,
			UnitPriceCents:          item.Price.UnitAmount,
			EffectiveUnitPriceCents: item.Price.UnitAmount,
			Quantity:                quantity,
			LineTotalCents:          item.Price.UnitAmount * int64(quantity),
		})
	}
	return lines, nil
}

// ackMalformed logs a permanently unprocessable event and reports success so
// the processor stops redelivering it.
func (s *Service) ackMalformed(ctx context.Context, eventID, eventType string, err error) error {
	ctx = s.logg.WithFields(ctx, map[string]any{"event_id": eventID, "event_type": eventType})
	s.logg.Error(ctx, "malformed webhook event acknowledged", err)
	s.metrics.IncMalformed(eventType)
	return nil
}
