package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/Uptivity/justsell-pos-sub002/api"
	"github.com/Uptivity/justsell-pos-sub002/api/routes"
	"github.com/Uptivity/justsell-pos-sub002/internal/ageverify"
	"github.com/Uptivity/justsell-pos-sub002/internal/auth"
	"github.com/Uptivity/justsell-pos-sub002/internal/customers"
	"github.com/Uptivity/justsell-pos-sub002/internal/employees"
	"github.com/Uptivity/justsell-pos-sub002/internal/inventory"
	"github.com/Uptivity/justsell-pos-sub002/internal/pricing"
	"github.com/Uptivity/justsell-pos-sub002/internal/products"
	"github.com/Uptivity/justsell-pos-sub002/internal/receipts"
	"github.com/Uptivity/justsell-pos-sub002/internal/stores"
	"github.com/Uptivity/justsell-pos-sub002/internal/transactions"
	"github.com/Uptivity/justsell-pos-sub002/pkg/auth/session"
	"github.com/Uptivity/justsell-pos-sub002/pkg/config"
	"github.com/Uptivity/justsell-pos-sub002/pkg/db"
	"github.com/Uptivity/justsell-pos-sub002/pkg/fieldcrypt"
	"github.com/Uptivity/justsell-pos-sub002/pkg/logger"
	"github.com/Uptivity/justsell-pos-sub002/pkg/metrics"
	"github.com/Uptivity/justsell-pos-sub002/pkg/migrate"
	"github.com/Uptivity/justsell-pos-sub002/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, dbClient.Close()) }()

	if err := migrate.AutoUp(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, redisClient.Close()) }()

	if !cfg.Encryption.IsRawKey() && !cfg.App.IsDev() {
		logg.Warn(logg.WithField(ctx, "key_id", cfg.Encryption.KeyID), "encryption key is a passphrase; configure 32 base64-encoded bytes")
	}
	keys, err := fieldcrypt.ProviderFromConfig(cfg.Encryption)
	if err != nil {
		return err
	}
	cipher, err := fieldcrypt.New(keys)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return err
	}

	conn := dbClient.DB()
	employeeRepo := employees.NewRepository(conn)
	storeRepo := stores.NewRepository(conn)

	authService, err := auth.NewService(auth.ServiceParams{
		EmployeeRepo:   employeeRepo,
		StoreRepo:      storeRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		Logger:         logg,
	})
	if err != nil {
		return err
	}
	var bootstrapService auth.BootstrapService
	if cfg.App.IsDev() {
		if bootstrapService, err = auth.NewBootstrapService(auth.BootstrapServiceParams{DB: dbClient, PasswordConfig: cfg.Password}); err != nil {
			return err
		}
	}

	taxRates, err := pricing.NewTaxRates(cfg.Tax)
	if err != nil {
		return err
	}
	storeService, err := stores.NewService(storeRepo, taxRates)
	if err != nil {
		return err
	}
	productService, err := products.NewService(products.NewRepository(conn), logg)
	if err != nil {
		return err
	}

	customerRepo, err := customers.NewRepository(conn, cipher)
	if err != nil {
		return err
	}
	customerService, err := customers.NewService(customerRepo)
	if err != nil {
		return err
	}

	verificationRepo, err := ageverify.NewRepository(conn, cipher)
	if err != nil {
		return err
	}
	ageService, err := ageverify.NewService(verificationRepo, logg)
	if err != nil {
		return err
	}

	guard, err := inventory.NewGuard(inventory.NewRepository(conn))
	if err != nil {
		return err
	}
	tierThresholds, err := cfg.Loyalty.Tiers()
	if err != nil {
		return err
	}
	tiers, err := pricing.NewTierTable(tierThresholds)
	if err != nil {
		return err
	}

	transactionService, err := transactions.NewService(transactions.ServiceParams{
		DB:            dbClient,
		Repo:          transactions.NewRepository(conn),
		Guard:         guard,
		AgeGate:       ageService,
		Customers:     customerRepo,
		Stores:        storeRepo,
		Employees:     employeeRepo,
		TaxRates:      taxRates,
		Tiers:         tiers,
		Processor:     transactions.StubProcessor{},
		Printer:       transactions.LogPrinter{Logg: logg},
		Formatter:     receipts.NewFormatter(cfg.Receipt.ItemWidth),
		Numberer:      transactions.SequenceNumberer{},
		Metrics:       metrics.NewCheckoutMetrics(registry),
		Logger:        logg,
		ReceiptFooter: cfg.Receipt.Footer,
	})
	if err != nil {
		return err
	}

	handler := routes.NewRouter(routes.Deps{
		Config:           cfg,
		Logger:           logg,
		DB:               dbClient,
		Redis:            redisClient,
		Sessions:         sessionManager,
		RateLimiter:      redisClient,
		Idempotency:      redisClient,
		Registry:         registry,
		Auth:             authService,
		Bootstrap:        bootstrapService,
		Stores:           storeService,
		Products:         productService,
		Customers:        customerService,
		AgeVerifications: ageService,
		Transactions:     transactionService,
	})

	srv := api.NewServer(cfg.App, handler)
	logCtx := logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "addr": srv.Addr})
	logg.Info(logCtx, "starting api server")
	return api.Serve(ctx, srv, logg)
}
