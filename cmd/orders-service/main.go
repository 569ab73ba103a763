package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"

	"github.com/jcmexdev/orders-service/internal/orders/core/app"
	"github.com/jcmexdev/orders-service/internal/orders/infra/adapters/catalog"
	"github.com/jcmexdev/orders-service/internal/orders/infra/adapters/payment"
	"github.com/jcmexdev/orders-service/internal/orders/infra/httpx"
	"github.com/jcmexdev/orders-service/internal/orders/infra/store/sqlite"
	"github.com/jcmexdev/orders-service/internal/pkg/cache"
	"github.com/jcmexdev/orders-service/internal/pkg/config"
	"github.com/jcmexdev/orders-service/internal/pkg/telemetry"
)

const serviceName = "orders-service"

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	telemetry.InitLogger()

	shutdown, err := telemetry.SetupTracer(ctx, serviceName)
	if err != nil {
		log.Fatalf("setup tracer: %v", err)
	}
	defer shutdown(context.Background())

	store, err := sqlite.Open(cfg.SQLitePath)
	if err != nil {
		log.Fatalf("open order store: %v", err)
	}
	defer store.Close()

	// One shared HTTP client for both remote services; the timeout bounds
	// every catalog and payment call.
	httpc := &http.Client{
		Timeout: cfg.RemoteTimeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 100,
		},
	}

	catalogClient := catalog.NewClient(cfg.CatalogURL, httpc)
	paymentClient := payment.NewClient(cfg.PaymentURL, httpc)
	guard := cache.NewRedisGuard(cfg.RedisAddr, serviceName, cfg.WebhookDedupTTL)

	svc := app.NewService(store, catalogClient, paymentClient, cfg.Currency)

	handler := httpx.NewHandler(svc, guard)
	router := httpx.NewRouter(handler)

	slog.Info("orders service listening", "addr", cfg.HTTPAddr)
	if err := http.ListenAndServe(cfg.HTTPAddr, router); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}
