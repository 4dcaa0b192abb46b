package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/joao-fontenele/orderflow-placement/internal/config"
	"github.com/joao-fontenele/orderflow-placement/internal/inventory"
	"github.com/joao-fontenele/orderflow-placement/internal/messaging"
	"github.com/joao-fontenele/orderflow-placement/internal/orders"
	"github.com/joao-fontenele/orderflow-placement/internal/placement"
	"github.com/joao-fontenele/orderflow-placement/internal/telemetry"
	"github.com/joao-fontenele/orderflow-placement/migrations"
)

func main() {
	ctx := context.Background()

	cfg, err := config.LoadOrders()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := telemetry.NewLogger(os.Stdout, cfg.Telemetry.LogLevel, "orders")

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, cfg.Telemetry.OTLPEndpoint, "orders", config.ServiceVersion)
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(ctx) }()

	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider("orders", config.ServiceVersion)
	if err != nil {
		logger.Error("failed to initialize meter", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownMeter(ctx) }()

	if cfg.MigrateOnStart {
		if err := migrations.Up(cfg.Database.Driver, cfg.Database.URL, migrations.Orders); err != nil {
			logger.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		logger.Info("migrations applied")
	}

	db, err := telemetry.OpenDB(cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	if err := db.PingContext(ctx); err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	httpClient := &http.Client{
		Timeout:   cfg.InventoryTimeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	// The lookup span covers only calls that reach the inventory service.
	checker := inventory.Traced(inventory.NewClient(cfg.InventoryURL, httpClient))
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer func() { _ = redisClient.Close() }()

		checker = inventory.Cached(checker, inventory.NewRedisCache(redisClient), cfg.StockCacheTTL, logger)
		logger.Info("stock cache enabled", "redis_addr", cfg.RedisAddr, "ttl", cfg.StockCacheTTL)
	}

	// A nil interface, not a nil *Dispatcher, when publishing is disabled.
	var publisher placement.EventPublisher
	var dispatcher *messaging.Dispatcher
	if len(cfg.KafkaBrokers) > 0 {
		producer := messaging.NewProducer(cfg.KafkaBrokers)
		defer func() { _ = producer.Close() }()

		dispatcher = messaging.NewDispatcher(producer, cfg.PublishQueueSize, cfg.PublishTimeout, logger)
		publisher = dispatcher
	} else {
		logger.Warn("KAFKA_BROKERS not set, order confirmations will not be published")
	}

	repo := orders.NewOrderRepository(db, orders.Dialect(cfg.Database.Driver))

	service, err := placement.NewService(checker, repo, publisher, cfg.NotificationTopic, logger)
	if err != nil {
		logger.Error("failed to create placement service", "error", err)
		os.Exit(1)
	}

	handler := orders.NewHandler(service, repo, logger)

	mux := http.NewServeMux()
	mux.Handle("/api/", orders.NewRouter(handler))
	mux.Handle("GET /metrics", metricsHandler)

	server := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: otelhttp.NewHandler(mux, "orders",
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting orders service", "port", cfg.Port)
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
	}

	if dispatcher != nil {
		if err := dispatcher.Close(shutdownCtx); err != nil {
			logger.Warn("pending order confirmations dropped", "error", err)
		}
	}
}
