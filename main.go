package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	appCustomer "github.com/shopfolk/sales-api/internal/application/customer"
	appOrder "github.com/shopfolk/sales-api/internal/application/order"
	appProduct "github.com/shopfolk/sales-api/internal/application/product"
	"github.com/shopfolk/sales-api/internal/domain/storage"
	"github.com/shopfolk/sales-api/internal/infrastructure/id"
	"github.com/shopfolk/sales-api/internal/infrastructure/memory"
	"github.com/shopfolk/sales-api/internal/infrastructure/observability/oteltrace"
	"github.com/shopfolk/sales-api/internal/infrastructure/observability/prometrics"
	"github.com/shopfolk/sales-api/internal/infrastructure/observability/telemetry"
	"github.com/shopfolk/sales-api/internal/infrastructure/observability/zaplogger"
	"github.com/shopfolk/sales-api/internal/infrastructure/sqlite"
	"github.com/shopfolk/sales-api/internal/observability"
	httppresentation "github.com/shopfolk/sales-api/internal/presentation/http"
)

func main() {
	serviceName := getenvDefault("SERVICE_NAME", "sales-api")
	env := getenvDefault("ENV", "dev")
	addr := getenvDefault("HTTP_ADDR", ":8080")

	logger := zaplogger.New(
		observability.F("service", serviceName),
		observability.F("env", env),
	)

	// DB_PATH empty means the in-memory gateway: handy for local runs
	// and demos; data does not survive a restart.
	var store storage.Gateway
	if dbPath := os.Getenv("DB_PATH"); dbPath != "" {
		gw, err := sqlite.Open(dbPath)
		if err != nil {
			logger.Error("sqlite_open_failed", observability.F("error", err.Error()))
			os.Exit(1)
		}
		defer func() { _ = gw.Close() }()
		store = gw
		logger.Info("storage_ready", observability.F("backend", "sqlite"), observability.F("path", dbPath))
	} else {
		store = memory.NewGateway()
		logger.Info("storage_ready", observability.F("backend", "memory"))
	}

	metrics := prometrics.New("salesapi")
	tel := telemetry.New(
		oteltrace.New(serviceName),
		logger,
		map[observability.MetricKey]observability.Counter{
			observability.MUsecaseRequests:  metrics.Counter(observability.MUsecaseRequests, "Total number of use case invocations.", "use_case", "outcome"),
			observability.MHTTPRequests:     metrics.Counter(observability.MHTTPRequests, "Total number of HTTP requests.", "method", "route", "status"),
			observability.MStockAdjustments: metrics.Counter(observability.MStockAdjustments, "Count of stock ledger adjustments.", "direction", "outcome"),
		},
		map[observability.MetricKey]observability.Histogram{
			observability.MUsecaseDuration:     metrics.Histogram(observability.MUsecaseDuration, "Duration of use case execution in seconds.", nil, "use_case"),
			observability.MHTTPRequestDuration: metrics.Histogram(observability.MHTTPRequestDuration, "Duration of HTTP requests in seconds.", nil, "method", "route", "status"),
		},
	)

	idGenerator := id.NewUUIDGenerator()
	customerService := appCustomer.NewService(store, idGenerator, tel.Logger())
	productService := appProduct.NewService(store, idGenerator, tel)
	orderService := appOrder.NewService(store, idGenerator, tel)

	handler := httppresentation.NewHandler(customerService, productService, orderService, tel)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", handler.Router())

	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("http_server_start", observability.F("addr", server.Addr))
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http_server_error", observability.F("error", err.Error()))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http_server_shutdown_error", observability.F("error", err.Error()))
	} else {
		logger.Info("http_server_stopped")
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
