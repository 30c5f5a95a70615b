package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nhatminhle/fashio-backend/api/controllers"
	cartcontrollers "github.com/nhatminhle/fashio-backend/api/controllers/cart"
	ordercontrollers "github.com/nhatminhle/fashio-backend/api/controllers/orders"
	paymentcontrollers "github.com/nhatminhle/fashio-backend/api/controllers/payments"
	"github.com/nhatminhle/fashio-backend/api/middleware"
	"github.com/nhatminhle/fashio-backend/internal/cart"
	"github.com/nhatminhle/fashio-backend/internal/orders"
	"github.com/nhatminhle/fashio-backend/internal/payments"
	"github.com/nhatminhle/fashio-backend/pkg/config"
	"github.com/nhatminhle/fashio-backend/pkg/db"
	"github.com/nhatminhle/fashio-backend/pkg/logger"
	pkgredis "github.com/nhatminhle/fashio-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *pkgredis.Client,
	cartService cart.Service,
	ordersService orders.Service,
	paymentsService payments.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	// Gateway return lands here after the shopper pays; the secure hash on
	// the query string authenticates it, not a bearer token.
	r.Get("/api/v1/payments/vnpay/return", paymentcontrollers.VNPayReturn(paymentsService, logg))

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/v1/cart", func(r chi.Router) {
			r.Get("/", cartcontrollers.CartFetch(cartService, logg))
			r.Delete("/", cartcontrollers.CartClear(cartService, logg))
			r.Post("/items", cartcontrollers.CartAddItem(cartService, logg))
			r.Patch("/items/{itemId}", cartcontrollers.CartUpdateItem(cartService, logg))
			r.Delete("/items/{itemId}", cartcontrollers.CartRemoveItem(cartService, logg))
		})

		r.Route("/v1/orders", func(r chi.Router) {
			r.Post("/", ordercontrollers.Create(ordersService, logg))
			r.Get("/my", ordercontrollers.ListMine(ordersService, logg))
			r.Get("/{orderId}", ordercontrollers.Detail(ordersService, logg))
			r.Post("/{orderId}/pay", paymentcontrollers.Pay(paymentsService, logg))
			r.With(middleware.RequireStaff(logg)).Patch("/{orderId}/status", ordercontrollers.UpdateStatus(ordersService, logg))
		})
	})

	return r
}
