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

	"github.com/maieesaree/saree-backend/internal/config"
	"github.com/maieesaree/saree-backend/internal/localstore"
	"github.com/maieesaree/saree-backend/internal/messaging"
	"github.com/maieesaree/saree-backend/internal/notify"
	"github.com/maieesaree/saree-backend/internal/orders"
	"github.com/maieesaree/saree-backend/internal/telemetry"
	"github.com/maieesaree/saree-backend/internal/worker"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	cfg := config.Load()

	if cfg.PostgresURL == "" {
		logger.Error("POSTGRES_URL environment variable is required")
		os.Exit(1)
	}
	if len(cfg.KafkaBrokers) == 0 {
		logger.Error("KAFKA_BROKERS environment variable is required")
		os.Exit(1)
	}
	if cfg.EmailServiceURL == "" {
		logger.Error("EMAIL_SERVICE_URL environment variable is required")
		os.Exit(1)
	}

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, cfg.ServiceName+"-worker", cfg.ServiceVersion)
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(context.Background()) }()

	db, err := telemetry.OpenDB("postgres", cfg.PostgresURL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	local := localstore.New(cfg.DataDir)
	repo := orders.NewOrderRepository(db)

	resync := worker.NewResyncWorker(repo, local, cfg.ResyncInterval, logger)
	go resync.Run(ctx)
	logger.Info("resync worker started", "interval", cfg.ResyncInterval.String())

	consumer := messaging.NewConsumer(cfg.KafkaBrokers, cfg.OrderTopic, "confirmation-worker")
	defer func() { _ = consumer.Close() }()

	httpClient := &http.Client{Timeout: 10 * time.Second}
	emails := notify.NewEmailSender(cfg.EmailServiceURL, httpClient)
	confirmations := worker.NewConfirmationHandler(emails, logger)

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		<-stop
		logger.Info("shutting down")
		cancel()
	}()

	logger.Info("starting confirmation worker", "brokers", cfg.KafkaBrokers, "topic", cfg.OrderTopic)

	if err := consumer.Consume(ctx, confirmations.Handle); err != nil {
		if ctx.Err() == context.Canceled {
			logger.Info("consumer stopped")
			return
		}
		logger.Error("consumer error", "error", err)
		os.Exit(1)
	}
}
