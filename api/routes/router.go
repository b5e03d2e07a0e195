package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/pharmacy-backend/api/controllers"
	"github.com/angelmondragon/pharmacy-backend/api/middleware"
	"github.com/angelmondragon/pharmacy-backend/internal/batches"
	"github.com/angelmondragon/pharmacy-backend/internal/orders"
	"github.com/angelmondragon/pharmacy-backend/internal/prescriptions"
	product "github.com/angelmondragon/pharmacy-backend/internal/products"
	"github.com/angelmondragon/pharmacy-backend/internal/reports"
	"github.com/angelmondragon/pharmacy-backend/pkg/config"
	"github.com/angelmondragon/pharmacy-backend/pkg/enums"
	"github.com/angelmondragon/pharmacy-backend/pkg/logger"
	"github.com/angelmondragon/pharmacy-backend/pkg/metrics"
	pkgredis "github.com/angelmondragon/pharmacy-backend/pkg/redis"
)

// Dependencies is everything the HTTP surface needs. Nil services answer
// with INTERNAL_ERROR; nil Idempotency and RateLimiter disable those layers.
type Dependencies struct {
	Config        *config.Config
	Logger        *logger.Logger
	Checks        map[string]controllers.Pinger
	Gatherer      prometheus.Gatherer
	HTTPMetrics   *metrics.HTTPMetrics
	Idempotency   pkgredis.IdempotencyStore
	RateLimiter   pkgredis.RateLimiter
	Products      product.Service
	Batches       batches.Service
	Orders        orders.Service
	Prescriptions prescriptions.Service
	Reports       reports.Service
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.CORS(cfg.HTTP.AllowedOrigins),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.Checks, logg))
	})
	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	staff := middleware.RequireStaff(logg)
	customer := middleware.RequireRole(logg, enums.UserRoleCustomer)
	orderPolicy := middleware.NewRateLimitPolicy("orders", cfg.HTTP.OrderRateLimit, cfg.HTTP.OrderRateWindow)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Get("/categories", controllers.ListCategories(deps.Products, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(deps.Products, logg))
			r.With(staff).Post("/", controllers.CreateProduct(deps.Products, logg))

			r.Route("/{productId}", func(r chi.Router) {
				r.Get("/", controllers.GetProduct(deps.Products, logg))
				r.With(staff).Patch("/", controllers.UpdateProduct(deps.Products, logg))
				r.With(staff).Delete("/", controllers.DeleteProduct(deps.Products, logg))

				r.Route("/batches", func(r chi.Router) {
					r.Get("/active", controllers.ListActiveBatches(deps.Batches, logg))
					r.Get("/next", controllers.NextBatch(deps.Batches, logg))
					r.Group(func(r chi.Router) {
						r.Use(staff)
						r.Get("/", controllers.ListBatches(deps.Batches, logg))
						r.Post("/", controllers.CreateBatch(deps.Batches, logg))
						r.Patch("/{batchId}", controllers.UpdateBatch(deps.Batches, logg))
						r.Delete("/{batchId}", controllers.DeleteBatch(deps.Batches, logg))
					})
				})
			})
		})

		r.Route("/orders", func(r chi.Router) {
			r.With(
				customer,
				middleware.RateLimit(orderPolicy, deps.RateLimiter, logg),
				middleware.Idempotency(deps.Idempotency, middleware.DefaultIdempotencyTTL, logg),
			).Post("/", controllers.CreateOrder(deps.Orders, logg))
			r.Get("/", controllers.ListOrders(deps.Orders, logg))
			r.Get("/{orderId}", controllers.GetOrder(deps.Orders, logg))
			r.With(staff).Put("/{orderId}/status", controllers.UpdateOrderStatus(deps.Orders, logg))
		})

		r.Route("/prescriptions", func(r chi.Router) {
			r.With(staff).Get("/pending", controllers.PendingPrescriptions(deps.Prescriptions, logg))
			r.With(customer).Get("/mine", controllers.MyPrescriptions(deps.Prescriptions, logg))
			r.With(staff).Post("/{prescriptionId}/verify", controllers.VerifyPrescription(deps.Prescriptions, logg))
		})

		r.Route("/dashboard", func(r chi.Router) {
			r.Use(staff)
			r.Get("/stats", controllers.DashboardStats(deps.Reports, logg))
			r.Get("/recent-orders", controllers.RecentOrders(deps.Reports, logg))
		})

		r.Route("/reports", func(r chi.Router) {
			r.Use(staff)
			r.Get("/sales", controllers.SalesReport(deps.Reports, logg))
			r.Get("/inventory", controllers.InventoryReport(deps.Reports, logg))
			r.Get("/prescriptions", controllers.PrescriptionReport(deps.Reports, logg))
		})
	})

	return r
}
