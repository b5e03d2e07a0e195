package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/pharmacy-backend/api/controllers"
	"github.com/angelmondragon/pharmacy-backend/api/routes"
	"github.com/angelmondragon/pharmacy-backend/internal/batches"
	"github.com/angelmondragon/pharmacy-backend/internal/orders"
	"github.com/angelmondragon/pharmacy-backend/internal/prescriptions"
	product "github.com/angelmondragon/pharmacy-backend/internal/products"
	"github.com/angelmondragon/pharmacy-backend/internal/reports"
	"github.com/angelmondragon/pharmacy-backend/internal/users"
	"github.com/angelmondragon/pharmacy-backend/pkg/config"
	"github.com/angelmondragon/pharmacy-backend/pkg/db"
	"github.com/angelmondragon/pharmacy-backend/pkg/logger"
	"github.com/angelmondragon/pharmacy-backend/pkg/metrics"
	"github.com/angelmondragon/pharmacy-backend/pkg/migrate"
	"github.com/angelmondragon/pharmacy-backend/pkg/redis"
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
	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, dbClient.Close())
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	checks := map[string]controllers.Pinger{"db": dbClient}
	deps := routes.Dependencies{Config: cfg, Logger: logg, Checks: checks}

	if cfg.Redis.Enabled() {
		redisClient, redisErr := redis.New(ctx, cfg.Redis, logg)
		if redisErr != nil {
			return redisErr
		}
		defer func() {
			err = multierr.Append(err, redisClient.Close())
		}()
		checks["redis"] = redisClient
		deps.Idempotency = redisClient
		deps.RateLimiter = redisClient
	} else {
		logg.Warn(ctx, "redis not configured; idempotent replay and order rate limiting disabled")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	deps.Gatherer = reg
	deps.HTTPMetrics = metrics.NewHTTPMetrics(reg)

	if err := wireServices(cfg, logg, dbClient, metrics.NewOrderMetrics(reg), &deps); err != nil {
		return err
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      routes.NewRouter(deps),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	logCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     server.Addr,
		"timezone": cfg.Pharmacy.Location().String(),
	})
	logg.Info(logCtx, "starting api server")

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func wireServices(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, orderMetrics *metrics.OrderMetrics, deps *routes.Dependencies) error {
	conn := dbClient.DB()
	loc := cfg.Pharmacy.Location()

	productRepo := product.NewRepository(conn)
	batchRepo := batches.NewRepository(conn)
	userRepo := users.NewRepository(conn)

	productSvc, err := product.NewService(product.ServiceParams{
		Repo:             productRepo,
		Batches:          batchRepo,
		Tx:               dbClient,
		Location:         loc,
		DefaultThreshold: cfg.Pharmacy.LowStockThreshold,
	})
	if err != nil {
		return err
	}

	batchSvc, err := batches.NewService(batches.ServiceParams{
		Repo:     batchRepo,
		Products: productRepo,
		Tx:       dbClient,
		Location: loc,
	})
	if err != nil {
		return err
	}

	orderSvc, err := orders.NewService(orders.ServiceParams{
		Repo:            orders.NewRepository(conn),
		Batches:         batchRepo,
		Products:        productRepo,
		Customers:       userRepo,
		Tx:              dbClient,
		Metrics:         orderMetrics,
		Logger:          logg,
		Location:        loc,
		PickupOpenHour:  cfg.Pharmacy.PickupOpenHour,
		PickupCloseHour: cfg.Pharmacy.PickupCloseHour,
	})
	if err != nil {
		return err
	}

	prescriptionSvc, err := prescriptions.NewService(prescriptions.NewRepository(conn), dbClient, nil)
	if err != nil {
		return err
	}

	reportSvc, err := reports.NewService(reports.ServiceParams{
		Repo:               reports.NewRepository(conn),
		Products:           productRepo,
		Batches:            batchRepo,
		Users:              userRepo,
		Location:           loc,
		ExpiringWithinDays: cfg.Pharmacy.ExpiringWithinDays,
	})
	if err != nil {
		return err
	}

	deps.Products = productSvc
	deps.Batches = batchSvc
	deps.Orders = orderSvc
	deps.Prescriptions = prescriptionSvc
	deps.Reports = reportSvc
	return nil
}
