package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rtavara/mercafresh-backend/api/controllers"
	ordercontrollers "github.com/rtavara/mercafresh-backend/api/controllers/orders"
	webhookcontrollers "github.com/rtavara/mercafresh-backend/api/controllers/webhooks"
	"github.com/rtavara/mercafresh-backend/api/middleware"
	"github.com/rtavara/mercafresh-backend/internal/address"
	"github.com/rtavara/mercafresh-backend/internal/cart"
	checkoutsvc "github.com/rtavara/mercafresh-backend/internal/checkout"
	"github.com/rtavara/mercafresh-backend/internal/orders"
	stripewebhook "github.com/rtavara/mercafresh-backend/internal/webhooks/stripe"
	"github.com/rtavara/mercafresh-backend/pkg/config"
	"github.com/rtavara/mercafresh-backend/pkg/db"
	"github.com/rtavara/mercafresh-backend/pkg/logger"
	"github.com/rtavara/mercafresh-backend/pkg/metrics"
	"github.com/rtavara/mercafresh-backend/pkg/redis"
	"github.com/rtavara/mercafresh-backend/pkg/stripe"
)

type Deps struct {
	Config          *config.Config
	Logger          *logger.Logger
	DB              db.Pinger
	Redis           *redis.Client
	StripeClient    *stripe.Client
	CartService     cart.Service
	Addresses       address.Repository
	OrdersService   orders.Service
	CheckoutService checkoutsvc.Service
	WebhookService  *stripewebhook.Service
	WebhookGuard    *stripewebhook.IdempotencyGuard
	WebhookMetrics  *metrics.WebhookMetrics
	Metrics         prometheus.Gatherer
}

// NewRouter wires the HTTP surface. The webhook route sits outside the auth
// group since the processor authenticates with its signature header.
func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	var cache controllers.Pinger
	if deps.Redis != nil {
		cache = deps.Redis
	}
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive())
		r.Get("/ready", controllers.HealthReady(deps.DB, cache, logg))
	})

	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/stripe", webhookcontrollers.StripeWebhook(deps.WebhookService, deps.StripeClient, deps.WebhookGuard, deps.WebhookMetrics, logg))
	})

	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		if deps.Redis != nil {
			r.Use(middleware.Idempotency(deps.Redis, logg))
		}

		r.Get("/mine", ordercontrollers.MyOrders(deps.OrdersService, logg))
		r.Get("/sales-report", ordercontrollers.SalesReport(deps.OrdersService, logg))
		r.Post("/cash-on-delivery", ordercontrollers.CashOnDelivery(deps.CartService, deps.Addresses, deps.OrdersService, logg))
		r.Post("/checkout-session", ordercontrollers.CheckoutSession(deps.CartService, deps.Addresses, deps.CheckoutService, logg))
	})

	return r
}
