package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/maieesaree/saree-backend/internal/config"
	"github.com/maieesaree/saree-backend/internal/localstore"
	"github.com/maieesaree/saree-backend/internal/messaging"
	"github.com/maieesaree/saree-backend/internal/orders"
	"github.com/maieesaree/saree-backend/internal/products"
	"github.com/maieesaree/saree-backend/internal/storage"
	"github.com/maieesaree/saree-backend/internal/telemetry"
)

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	cfg := config.Load()

	if cfg.PostgresURL == "" {
		logger.Error("POSTGRES_URL environment variable is required")
		os.Exit(1)
	}

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, cfg.ServiceName, cfg.ServiceVersion)
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(ctx) }()

	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider(cfg.ServiceName, cfg.ServiceVersion)
	if err != nil {
		logger.Error("failed to initialize meter", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownMeter(ctx) }()

	db, err := telemetry.OpenDB("postgres", cfg.PostgresURL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	// The local fallback store keeps the shop taking orders when the
	// database is down, so a failed ping is only a warning here.
	if err := db.Ping(); err != nil {
		logger.Warn("database unreachable at startup, orders will fall back to local store", "error", err)
	}

	local := localstore.New(cfg.DataDir)

	var producer orders.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		p := messaging.NewProducer(cfg.KafkaBrokers, cfg.OrderTopic)
		defer func() { _ = p.Close() }()
		producer = p
	} else {
		logger.Warn("KAFKA_BROKERS not set, order events disabled")
	}

	var uploader products.Uploader
	if cfg.StorageURL != "" {
		uploader = storage.New(cfg.StorageURL, cfg.StorageKey, cfg.StorageBucket)
	} else {
		logger.Warn("STORAGE_URL not set, product image uploads disabled")
	}

	orderRepo := orders.NewOrderRepository(db)
	orderService := orders.NewService(orderRepo, local, producer, logger)
	orderReporter := orders.NewReporter(orderRepo, local, logger)
	orderHandler := orders.NewHandler(orderService, orderReporter, logger)

	productRepo := products.NewProductRepository(db)
	productHandler := products.NewHandler(productRepo, local, uploader, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/orders", telemetry.WithHTTPRoute(orderHandler.HandlePlace))
	mux.HandleFunc("GET /api/orders/admin", telemetry.WithHTTPRoute(orderHandler.HandleAdminList))
	mux.HandleFunc("GET /api/orders/stats", telemetry.WithHTTPRoute(orderHandler.HandleStats))
	mux.HandleFunc("PUT /api/orders/{id}/status", telemetry.WithHTTPRoute(orderHandler.HandleUpdateStatus))

	mux.HandleFunc("GET /api/products", telemetry.WithHTTPRoute(productHandler.HandleList))
	mux.HandleFunc("POST /api/products", telemetry.WithHTTPRoute(productHandler.HandleCreate))
	mux.HandleFunc("PUT /api/products/{id}", telemetry.WithHTTPRoute(productHandler.HandleUpdate))
	mux.HandleFunc("PATCH /api/products/{id}/stock", telemetry.WithHTTPRoute(productHandler.HandleUpdateStock))
	mux.HandleFunc("DELETE /api/products/{id}", telemetry.WithHTTPRoute(productHandler.HandleDelete))

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("Saree backend is running"))
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("GET /metrics", metricsHandler)

	server := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: withCORS(otelhttp.NewHandler(mux, cfg.ServiceName,
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				if r.Pattern != "" {
					return r.Pattern
				}
				return r.Method + " " + r.URL.Path
			}),
		)),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Info("starting server", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}

// withCORS handles the browser storefront's cross-origin requests. The
// admin panel and the shop are served from other origins.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
