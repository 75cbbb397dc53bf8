package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/shopspring/decimal"

	"github.com/ovenlight/crumb-checkout/api/routes"
	"github.com/ovenlight/crumb-checkout/internal/checkout"
	"github.com/ovenlight/crumb-checkout/pkg/bakery"
	"github.com/ovenlight/crumb-checkout/pkg/config"
	"github.com/ovenlight/crumb-checkout/pkg/logger"
	"github.com/ovenlight/crumb-checkout/pkg/metrics"
	"github.com/ovenlight/crumb-checkout/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "crumb-checkout"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "crumb-checkout",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	upstream, err := bakery.NewClient(cfg.Upstream.BaseURL, bakery.WithTimeout(cfg.Upstream.Timeout))
	if err != nil {
		logg.Error(context.Background(), "failed to build storefront client", err)
		os.Exit(1)
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(context.Background(), cfg.Redis)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	}

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	registry := checkout.NewRegistry(checkout.Options{
		Client:               upstream,
		Logger:               logg,
		Metrics:              metrics.NewCheckoutMetrics(promReg),
		Timeout:              cfg.Upstream.Timeout,
		FreeShippingSubtotal: decimal.NewFromFloat(cfg.Delivery.FreeShippingSubtotal),
		PlacementMaxAttempts: cfg.Placement.MaxAttempts,
		PlacementBaseBackoff: cfg.Placement.BaseBackoff,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting checkout api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:   cfg,
			Logger:   logg,
			Registry: registry,
			Redis:    redisClient,
			PromReg:  promReg,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "checkout api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
