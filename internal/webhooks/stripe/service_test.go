package stripewebhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v84"

	"github.com/rtavara/mercafresh-backend/internal/cart"
	"github.com/rtavara/mercafresh-backend/internal/checkout"
	"github.com/rtavara/mercafresh-backend/internal/orders"
	"github.com/rtavara/mercafresh-backend/pkg/db/models"
	"github.com/rtavara/mercafresh-backend/pkg/enums"
	"github.com/rtavara/mercafresh-backend/pkg/logger"
	"github.com/rtavara/mercafresh-backend/pkg/pagination"
)

type stubOrdersService struct {
	inputs []orders.MaterializeInput
	err    error
}

func (s *stubOrdersService) Materialize(ctx context.Context, input orders.MaterializeInput) ([]models.Order, error) {
	s.inputs = append(s.inputs, input)
	if s.err != nil {
		return nil, s.err
	}
	return []models.Order{{ID: uuid.New()}}, nil
}

func (s *stubOrdersService) ListMine(ctx context.Context, userID uuid.UUID, params pagination.Params) (*orders.OrderList, error) {
	return &orders.OrderList{}, nil
}

func (s *stubOrdersService) Report(ctx context.Context, window orders.ReportRange) (*orders.SalesReport, error) {
	return &orders.SalesReport{}, nil
}

type stubCartService struct {
	cleared  []uuid.UUID
	clearErr error
}

func (s *stubCartService) Snapshot(ctx context.Context, items []cart.ItemInput) ([]cart.Line, error) {
	return nil, nil
}

func (s *stubCartService) Clear(ctx context.Context, userID uuid.UUID) error {
	s.cleared = append(s.cleared, userID)
	return s.clearErr
}

type stubEventDataClient struct {
	items    []*stripe.LineItem
	itemsErr error
	products map[string]*stripe.Product
}

func (s *stubEventDataClient) SessionLineItems(ctx context.Context, sessionID string) ([]*stripe.LineItem, error) {
	if s.itemsErr != nil {
		return nil, s.itemsErr
	}
	return s.items, nil
}

func (s *stubEventDataClient) GetProduct(ctx context.Context, id string) (*stripe.Product, error) {
	product, ok := s.products[id]
	if !ok {
		return nil, fmt.Errorf("product %s not found", id)
	}
	return product, nil
}

func newWebhookService(t *testing.T, ordersSvc *stubOrdersService, cartSvc *stubCartService, client *stubEventDataClient) *Service {
	t.Helper()

	svc, err := NewService(ServiceParams{
		Orders:       ordersSvc,
		Cart:         cartSvc,
		StripeClient: client,
		Logger:       logger.New(logger.Options{ServiceName: "webhook-test"}),
	})
	require.NoError(t, err)
	return svc
}

func completedSessionEvent(t *testing.T, userID, addressID uuid.UUID) *stripe.Event {
	t.Helper()

	payload, err := json.Marshal(map[string]any{
		"id": "cs_test_123",
		"metadata": map[string]string{
			checkout.MetadataUserID:    userID.String(),
			checkout.MetadataAddressID: addressID.String(),
		},
		"payment_intent": map[string]any{"id": "pi_123"},
		"payment_status": "paid",
	})
	require.NoError(t, err)

	return &stripe.Event{
		ID:   "evt_123",
		Type: stripe.EventTypeCheckoutSessionCompleted,
		Data: &stripe.EventData{Raw: payload},
	}
}

func stubLineItems(productID uuid.UUID) ([]*stripe.LineItem, map[string]*stripe.Product) {
	items := []*stripe.LineItem{{
		ID:       "li_1",
		Quantity: 2,
		Price: &stripe.Price{
			UnitAmount: 8900,
			Product:    &stripe.Product{ID: "prod_1"},
		},
	}}
	products := map[string]*stripe.Product{"prod_1": {
		ID:     "prod_1",
		Name:   "Organic Avocado",
		Images: []string{"https://cdn.example.com/avocado.jpg"},
		Metadata: map[string]string{
			checkout.MetadataProductID: productID.String(),
		},
	}}
	return items, products
}

func TestHandleEventMaterializesCompletedSession(t *testing.T) {
	userID := uuid.New()
	addressID := uuid.New()
	productID := uuid.New()

	items, products := stubLineItems(productID)
	ordersSvc := &stubOrdersService{}
	cartSvc := &stubCartService{}
	svc := newWebhookService(t, ordersSvc, cartSvc, &stubEventDataClient{items: items, products: products})

	err := svc.HandleEvent(context.Background(), completedSessionEvent(t, userID, addressID))
	require.NoError(t, err)

	require.Len(t, ordersSvc.inputs, 1)
	input := ordersSvc.inputs[0]
	require.Equal(t, userID, input.UserID)
	require.Equal(t, addressID, input.AddressID)
	require.Equal(t, "pi_123", input.PaymentID)
	require.Equal(t, enums.PaymentStatusPaid, input.PaymentStatus)
	require.Len(t, input.Lines, 1)
	require.Equal(t, productID, input.Lines[0].ProductID)
	require.EqualValues(t, 8900, input.Lines[0].EffectiveUnitPriceCents)
	require.Equal(t, 2, input.Lines[0].Quantity)
	require.EqualValues(t, 17800, input.Lines[0].LineTotalCents)

	require.Equal(t, []uuid.UUID{userID}, cartSvc.cleared)
}

func TestHandleEventIgnoresOtherTypes(t *testing.T) {
	ordersSvc := &stubOrdersService{}
	cartSvc := &stubCartService{}
	svc := newWebhookService(t, ordersSvc, cartSvc, &stubEventDataClient{})

	err := svc.HandleEvent(context.Background(), &stripe.Event{
		ID:   "evt_other",
		Type: stripe.EventTypeInvoicePaid,
		Data: &stripe.EventData{Raw: json.RawMessage(`{}`)},
	})
	require.NoError(t, err)
	require.Empty(t, ordersSvc.inputs)
	require.Empty(t, cartSvc.cleared)
}

func TestHandleEventAcksMalformedMetadata(t *testing.T) {
	ordersSvc := &stubOrdersService{}
	cartSvc := &stubCartService{}
	svc := newWebhookService(t, ordersSvc, cartSvc, &stubEventDataClient{})

	payload, err := json.Marshal(map[string]any{
		"id":       "cs_no_meta",
		"metadata": map[string]string{},
	})
	require.NoError(t, err)

	err = svc.HandleEvent(context.Background(), &stripe.Event{
		ID:   "evt_bad",
		Type: stripe.EventTypeCheckoutSessionCompleted,
		Data: &stripe.EventData{Raw: payload},
	})
	require.NoError(t, err)
	require.Empty(t, ordersSvc.inputs)
	require.Empty(t, cartSvc.cleared)
}

func TestHandleEventReturnsErrorWhenLineItemsUnavailable(t *testing.T) {
	ordersSvc := &stubOrdersService{}
	cartSvc := &stubCartService{}
	client := &stubEventDataClient{itemsErr: errors.New("stripe is down")}
	svc := newWebhookService(t, ordersSvc, cartSvc, client)

	err := svc.HandleEvent(context.Background(), completedSessionEvent(t, uuid.New(), uuid.New()))
	require.Error(t, err)
	require.Empty(t, ordersSvc.inputs)
	require.Empty(t, cartSvc.cleared)
}

func TestHandleEventReturnsErrorWhenMaterializeFails(t *testing.T) {
	productID := uuid.New()
	items, products := stubLineItems(productID)
	ordersSvc := &stubOrdersService{err: errors.New("db unavailable")}
	cartSvc := &stubCartService{}
	svc := newWebhookService(t, ordersSvc, cartSvc, &stubEventDataClient{items: items, products: products})

	err := svc.HandleEvent(context.Background(), completedSessionEvent(t, uuid.New(), uuid.New()))
	require.Error(t, err)
	require.Empty(t, cartSvc.cleared)
}

func TestHandleEventToleratesCartClearFailure(t *testing.T) {
	userID := uuid.New()
	productID := uuid.New()
	items, products := stubLineItems(productID)
	ordersSvc := &stubOrdersService{}
	cartSvc := &stubCartService{clearErr: errors.New("redis hiccup")}
	svc := newWebhookService(t, ordersSvc, cartSvc, &stubEventDataClient{items: items, products: products})

	err := svc.HandleEvent(context.Background(), completedSessionEvent(t, userID, uuid.New()))
	require.NoError(t, err)
	require.Len(t, ordersSvc.inputs, 1)
	require.Equal(t, []uuid.UUID{userID}, cartSvc.cleared)
}
