package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rtavara/mercafresh-backend/internal/cart"
	internalorders "github.com/rtavara/mercafresh-backend/internal/orders"
	pkgauth "github.com/rtavara/mercafresh-backend/pkg/auth"
	"github.com/rtavara/mercafresh-backend/pkg/config"
	"github.com/rtavara/mercafresh-backend/pkg/db/models"
	"github.com/rtavara/mercafresh-backend/pkg/logger"
	"github.com/rtavara/mercafresh-backend/pkg/pagination"
)

type noopOrdersService struct{}

func (noopOrdersService) Materialize(context.Context, internalorders.MaterializeInput) ([]models.Order, error) {
	return nil, nil
}

func (noopOrdersService) ListMine(context.Context, uuid.UUID, pagination.Params) (*internalorders.OrderList, error) {
	return &internalorders.OrderList{}, nil
}

func (noopOrdersService) Report(context.Context, internalorders.ReportRange) (*internalorders.SalesReport, error) {
	return &internalorders.SalesReport{}, nil
}

type noopCartService struct{}

func (noopCartService) Snapshot(context.Context, []cart.ItemInput) ([]cart.Line, error) {
	return nil, nil
}

func (noopCartService) Clear(context.Context, uuid.UUID) error {
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: config.AppEnvDev},
		JWT: config.JWTConfig{
			Secret:            "router-test-secret",
			Issuer:            "mercafresh-test",
			ExpirationMinutes: 60,
		},
	}
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})
	return NewRouter(Deps{
		Config:        testConfig(),
		Logger:        logg,
		CartService:   noopCartService{},
		OrdersService: noopOrdersService{},
	})
}

func TestRouterHealthEndpoints(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterOrdersRequireAuth(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/mine", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouterOrdersAcceptBearerToken(t *testing.T) {
	router := newTestRouter(t)
	cfg := testConfig()

	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID: uuid.New(),
		Email:  "ana@example.pe",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/mine", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestRouterWebhookRouteIsPublic(t *testing.T) {
	router := newTestRouter(t)

	// no webhook service is wired, the route must still be reachable
	// without a bearer token
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/stripe", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.NotEqual(t, http.StatusUnauthorized, rec.Code)
	assert.NotEqual(t, http.StatusNotFound, rec.Code)
}
