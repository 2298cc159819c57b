package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/teoalvarez/cartline-backend/api/controllers"
	"github.com/teoalvarez/cartline-backend/api/middleware"
	internalorders "github.com/teoalvarez/cartline-backend/internal/orders"
	"github.com/teoalvarez/cartline-backend/internal/summary"
	"github.com/teoalvarez/cartline-backend/pkg/config"
	"github.com/teoalvarez/cartline-backend/pkg/db"
	"github.com/teoalvarez/cartline-backend/pkg/logger"
	"github.com/teoalvarez/cartline-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	registry *prometheus.Registry,
	ordersSvc internalorders.Service,
	summarySvc summary.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	paymentPolicy := middleware.NewRateLimitPolicy(
		"payments",
		cfg.RateLimit.PaymentWindow,
		cfg.RateLimit.PaymentIPLimit,
		cfg.RateLimit.PaymentUserLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.CreateOrder(ordersSvc, logg))
			r.Get("/", controllers.ListMyOrders(ordersSvc, logg))
			r.Get("/{orderId}", controllers.GetOrder(ordersSvc, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.RateLimit(paymentPolicy, redisClient, logg))
				r.Post("/{orderId}/paypal", controllers.CreatePayPalOrder(ordersSvc, logg))
				r.Post("/{orderId}/paypal/capture", controllers.CapturePayPalOrder(ordersSvc, logg))
			})
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole("admin", logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminListOrders(ordersSvc, logg))
			r.Post("/bulk-status", controllers.AdminBulkSetStatus(ordersSvc, logg))
			r.Post("/{orderId}/pay", controllers.AdminMarkPaid(ordersSvc, logg))
			r.Post("/{orderId}/deliver", controllers.AdminDeliver(ordersSvc, logg))
			r.Post("/{orderId}/status", controllers.AdminSetStatus(ordersSvc, logg))
			r.Delete("/{orderId}", controllers.AdminDeleteOrder(ordersSvc, logg))
		})

		r.Get("/summary", controllers.AdminSummary(summarySvc, logg))
	})

	return r
}
