package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v84"

	"github.com/rtavara/mercafresh-backend/internal/cart"
	"github.com/rtavara/mercafresh-backend/pkg/config"
	pkgerrors "github.com/rtavara/mercafresh-backend/pkg/errors"
	"github.com/rtavara/mercafresh-backend/pkg/logger"
)

type stubStripeClient struct {
	params  *stripe.CheckoutSessionParams
	session *stripe.CheckoutSession
	err     error
}

func (s *stubStripeClient) CreateSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	s.params = params
	if s.err != nil {
		return nil, s.err
	}
	return s.session, nil
}

func testCheckoutConfig() config.CheckoutConfig {
	return config.CheckoutConfig{
		SuccessURL:     "https://shop.example.com/checkout/success",
		CancelURL:      "https://shop.example.com/checkout/cancel",
		Currency:       "pen",
		Locale:         "es",
		SessionTimeout: 10 * time.Second,
	}
}

func newCheckoutService(t *testing.T, client StripeCheckoutClient) Service {
	t.Helper()

	logg := logger.New(logger.Options{ServiceName: "checkout-test"})
	svc, err := NewService(client, testCheckoutConfig(), logg)
	require.NoError(t, err)
	return svc
}

func TestIssueSessionBuildsLineItemsWithMetadata(t *testing.T) {
	client := &stubStripeClient{session: &stripe.CheckoutSession{
		ID:  "cs_test_123",
		URL: "https://checkout.stripe.com/pay/cs_test_123",
	}}
	svc := newCheckoutService(t, client)

	userID := uuid.New()
	addressID := uuid.New()
	productID := uuid.New()

	got, err := svc.IssueSession(context.Background(), IssueSessionInput{
		UserID:    userID,
		Email:     "shopper@example.com",
		AddressID: addressID,
		Lines: []cart.Line{{
			ProductID:               productID,
			ProductName:             "Organic Avocado",
			ProductImage:            "https://cdn.example.com/avocado.jpg",
			UnitPriceCents:          9900,
			DiscountPercent:         10,
			EffectiveUnitPriceCents: 8900,
			Quantity:                2,
			LineTotalCents:          17800,
		}},
	})
	require.NoError(t, err)
	require.Equal(t, "cs_test_123", got.SessionID)
	require.Equal(t, "https://checkout.stripe.com/pay/cs_test_123", got.URL)

	params := client.params
	require.NotNil(t, params)
	require.Len(t, params.PaymentMethodTypes, 1)
	require.Equal(t, "card", *params.PaymentMethodTypes[0])
	require.Equal(t, userID.String(), params.Metadata[MetadataUserID])
	require.Equal(t, addressID.String(), params.Metadata[MetadataAddressID])
	require.Len(t, params.LineItems, 1)

	item := params.LineItems[0]
	require.EqualValues(t, 2, *item.Quantity)
	require.True(t, *item.AdjustableQuantity.Enabled)
	require.EqualValues(t, 1, *item.AdjustableQuantity.Minimum)

	// charged amount is the discounted price in minor units
	require.EqualValues(t, 8900, *item.PriceData.UnitAmount)
	require.Equal(t, "pen", *item.PriceData.Currency)
	require.Equal(t, "Organic Avocado", *item.PriceData.ProductData.Name)
	require.Equal(t, productID.String(), item.PriceData.ProductData.Metadata[MetadataProductID])
}

func TestIssueSessionValidatesInput(t *testing.T) {
	svc := newCheckoutService(t, &stubStripeClient{})

	_, err := svc.IssueSession(context.Background(), IssueSessionInput{
		AddressID: uuid.New(),
		Lines:     []cart.Line{{ProductID: uuid.New(), Quantity: 1}},
	})
	require.Error(t, err)

	_, err = svc.IssueSession(context.Background(), IssueSessionInput{
		UserID: uuid.New(),
		Lines:  []cart.Line{{ProductID: uuid.New(), Quantity: 1}},
	})
	require.Error(t, err)

	_, err = svc.IssueSession(context.Background(), IssueSessionInput{
		UserID:    uuid.New(),
		AddressID: uuid.New(),
	})
	require.Error(t, err)
}

func TestIssueSessionRejectsZeroTotal(t *testing.T) {
	client := &stubStripeClient{}
	svc := newCheckoutService(t, client)

	_, err := svc.IssueSession(context.Background(), IssueSessionInput{
		UserID:    uuid.New(),
		Email:     "shopper@example.com",
		AddressID: uuid.New(),
		Lines:     []cart.Line{{ProductID: uuid.New(), ProductName: "Bread", Quantity: 1}},
	})
	require.Error(t, err)

	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, pkgerrors.CodeValidation, appErr.Code())
	require.Nil(t, client.params)
}

func TestIssueSessionUpstreamFailure(t *testing.T) {
	client := &stubStripeClient{err: errors.New("stripe is down")}
	svc := newCheckoutService(t, client)

	_, err := svc.IssueSession(context.Background(), IssueSessionInput{
		UserID:    uuid.New(),
		Email:     "shopper@example.com",
		AddressID: uuid.New(),
		Lines:     []cart.Line{{ProductID: uuid.New(), ProductName: "Bread", EffectiveUnitPriceCents: 500, Quantity: 1, LineTotalCents: 500}},
	})
	require.Error(t, err)

	var appErr *pkgerrors.Error
	require.True(t, errors.As(err, &appErr))
	require.Equal(t, pkgerrors.CodeDependency, appErr.Code())
}
