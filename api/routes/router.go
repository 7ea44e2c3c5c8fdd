package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Uptivity/justsell-pos-sub002/api/controllers"
	"github.com/Uptivity/justsell-pos-sub002/api/middleware"
	"github.com/Uptivity/justsell-pos-sub002/internal/ageverify"
	"github.com/Uptivity/justsell-pos-sub002/internal/auth"
	"github.com/Uptivity/justsell-pos-sub002/internal/customers"
	"github.com/Uptivity/justsell-pos-sub002/internal/products"
	"github.com/Uptivity/justsell-pos-sub002/internal/stores"
	"github.com/Uptivity/justsell-pos-sub002/internal/transactions"
	"github.com/Uptivity/justsell-pos-sub002/pkg/auth/session"
	"github.com/Uptivity/justsell-pos-sub002/pkg/config"
	"github.com/Uptivity/justsell-pos-sub002/pkg/enums"
	"github.com/Uptivity/justsell-pos-sub002/pkg/logger"
	"github.com/Uptivity/justsell-pos-sub002/pkg/metrics"
	"github.com/Uptivity/justsell-pos-sub002/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(ctx context.Context, oldAccessID string, employeeID uuid.UUID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

type rateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// Deps lists everything the HTTP layer needs. Nil services answer 500 on their routes.
type Deps struct {
	Config           *config.Config
	Logger           *logger.Logger
	DB               controllers.Pinger
	Redis            controllers.Pinger
	Sessions         sessionManager
	RateLimiter      rateLimiter
	Idempotency      redis.IdempotencyStore
	Registry         *prometheus.Registry
	Auth             auth.Service
	Bootstrap        auth.BootstrapService
	Stores           stores.Service
	Products         products.Service
	Customers        customers.Service
	AgeVerifications ageverify.Service
	Transactions     transactions.Service
}

func NewRouter(d Deps) http.Handler {
	cfg, logg := d.Config, d.Logger
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.CORS(cfg.App.CORSOrigins),
		middleware.Logging(logg, metrics.NewHTTPMetrics(d.Registry)),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, map[string]controllers.Pinger{"db": d.DB, "redis": d.Redis}, logg))
	})
	if d.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{Registry: d.Registry}))
	}

	loginPolicy := middleware.LoginRateLimitPolicyFromConfig(cfg.AuthRateLimit)
	need := func(perm enums.Permission) func(http.Handler) http.Handler {
		return middleware.RequirePermission(perm, logg)
	}

	r.Route("/api", func(r chi.Router) {
		r.With(middleware.LoginRateLimit(loginPolicy, d.RateLimiter, logg)).Post("/auth/login", controllers.AuthLogin(d.Auth, logg))
		r.Post("/auth/refresh", controllers.AuthRefresh(d.Sessions, cfg.JWT, logg))
		r.Post("/auth/logout", controllers.AuthLogout(d.Sessions, cfg.JWT, logg))
		if cfg.App.IsDev() {
			r.Post("/dev/bootstrap", controllers.DevBootstrap(d.Bootstrap, logg))
		}

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, d.Sessions, logg))
			r.Use(middleware.Idempotency(d.Idempotency, logg))

			r.Get("/stores/current", controllers.StoreProfile(d.Stores, logg))

			r.With(need(enums.PermissionTransactionsCreate)).Post("/transactions", controllers.CreateTransaction(d.Transactions, logg))
			r.With(need(enums.PermissionTransactionsRead)).Get("/transactions", controllers.ListTransactions(d.Transactions, logg))
			r.With(need(enums.PermissionTransactionsRead)).Get("/transactions/{id}", controllers.GetTransaction(d.Transactions, logg))
			r.With(need(enums.PermissionTransactionsRead)).Get("/transactions/{id}/receipt", controllers.GetReceipt(d.Transactions, logg))
			r.With(need(enums.PermissionTransactionsPrint)).Post("/transactions/{id}/print", controllers.PrintReceipt(d.Transactions, logg))

			r.With(need(enums.PermissionAgeVerificationCreate)).Post("/age-verifications", controllers.VerifyAge(d.AgeVerifications, logg))
			r.With(need(enums.PermissionAgeVerificationRead)).Get("/age-verifications/{id}", controllers.GetAgeVerification(d.AgeVerifications, logg))
			r.With(need(enums.PermissionAgeVerificationOverride)).Post("/age-verifications/{id}/override", controllers.OverrideAgeVerification(d.AgeVerifications, logg))

			r.With(need(enums.PermissionProductsRead)).Get("/products", controllers.ListProducts(d.Products, logg))
			r.With(need(enums.PermissionProductsRead)).Get("/products/{id}", controllers.GetProduct(d.Products, logg))
			r.With(need(enums.PermissionProductsWrite)).Post("/products", controllers.CreateProduct(d.Products, logg))
			r.With(need(enums.PermissionProductsWrite)).Patch("/products/{id}", controllers.UpdateProduct(d.Products, logg))
			r.With(need(enums.PermissionProductsWrite)).Post("/products/{id}/deactivate", controllers.DeactivateProduct(d.Products, logg))

			r.With(need(enums.PermissionCustomersRead)).Get("/customers", controllers.ListCustomers(d.Customers, logg))
			r.With(need(enums.PermissionCustomersRead)).Get("/customers/{id}", controllers.GetCustomer(d.Customers, logg))
			r.With(need(enums.PermissionCustomersWrite)).Post("/customers", controllers.CreateCustomer(d.Customers, logg))
		})
	})

	return r
}
