package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joao-fontenele/orderflow-placement/internal/config"
	"github.com/joao-fontenele/orderflow-placement/internal/messaging"
	"github.com/joao-fontenele/orderflow-placement/internal/notification"
	"github.com/joao-fontenele/orderflow-placement/internal/telemetry"
)

func main() {
	cfg, err := config.LoadNotification()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := telemetry.NewLogger(os.Stdout, cfg.Telemetry.LogLevel, "notification")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, cfg.Telemetry.OTLPEndpoint, "notification", config.ServiceVersion)
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(context.Background()) }()

	consumer := messaging.NewConsumer(cfg.KafkaBrokers, cfg.NotificationTopic, cfg.GroupID)
	defer func() { _ = consumer.Close() }()

	handler := notification.NewHandler(logger)

	logger.Info("starting notification service", "brokers", cfg.KafkaBrokers, "topic", cfg.NotificationTopic)

	if err := consumer.Consume(ctx, handler.Handle); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("consumer stopped")
			return
		}
		logger.Error("consumer error", "error", err)
		os.Exit(1)
	}
}
