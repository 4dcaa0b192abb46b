// Package config loads per-service settings from environment variables.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

const ServiceVersion = "0.1.0"

type Telemetry struct {
	// OTLPEndpoint is the gRPC collector address. Empty disables export.
	OTLPEndpoint string     `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4317"`
	LogLevel     slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
}

type Database struct {
	Driver string `env:"DATABASE_DRIVER" envDefault:"postgres"`
	URL    string `env:"DATABASE_URL,required,notEmpty"`
}

func (d Database) Validate() error {
	switch d.Driver {
	case "postgres", "sqlite":
		return nil
	default:
		return fmt.Errorf("DATABASE_DRIVER must be postgres or sqlite, got %q", d.Driver)
	}
}

type Orders struct {
	Port string `env:"PORT" envDefault:"8081"`

	Database Database

	InventoryURL     string        `env:"INVENTORY_SERVICE_URL,required,notEmpty"`
	InventoryTimeout time.Duration `env:"INVENTORY_TIMEOUT" envDefault:"3s"`

	// Without brokers committed orders are not announced.
	KafkaBrokers      []string      `env:"KAFKA_BROKERS" envSeparator:","`
	NotificationTopic string        `env:"NOTIFICATION_TOPIC" envDefault:"notificationTopic"`
	PublishQueueSize  int           `env:"PUBLISH_QUEUE_SIZE" envDefault:"256"`
	PublishTimeout    time.Duration `env:"PUBLISH_TIMEOUT" envDefault:"5s"`

	// Stock cache is disabled when RedisAddr is empty.
	RedisAddr     string        `env:"REDIS_ADDR"`
	StockCacheTTL time.Duration `env:"STOCK_CACHE_TTL" envDefault:"2s"`

	MigrateOnStart bool `env:"MIGRATE_ON_START" envDefault:"false"`

	Telemetry Telemetry
}

func (c *Orders) Validate() error {
	if err := c.Database.Validate(); err != nil {
		return err
	}
	if c.InventoryTimeout <= 0 {
		return fmt.Errorf("INVENTORY_TIMEOUT must be positive")
	}
	if c.PublishQueueSize < 1 {
		return fmt.Errorf("PUBLISH_QUEUE_SIZE must be at least 1")
	}
	if c.PublishTimeout <= 0 {
		return fmt.Errorf("PUBLISH_TIMEOUT must be positive")
	}
	if c.RedisAddr != "" && c.StockCacheTTL <= 0 {
		return fmt.Errorf("STOCK_CACHE_TTL must be positive when REDIS_ADDR is set")
	}
	return nil
}

type Inventory struct {
	Port string `env:"PORT" envDefault:"8082"`

	// The inventory lookup uses postgres array parameters.
	PostgresURL    string `env:"DATABASE_URL,required,notEmpty"`
	MigrateOnStart bool   `env:"MIGRATE_ON_START" envDefault:"false"`

	Telemetry Telemetry
}

type Notification struct {
	KafkaBrokers      []string `env:"KAFKA_BROKERS,required,notEmpty" envSeparator:","`
	NotificationTopic string   `env:"NOTIFICATION_TOPIC" envDefault:"notificationTopic"`
	GroupID           string   `env:"CONSUMER_GROUP_ID" envDefault:"notification-service"`

	Telemetry Telemetry
}

type Migrate struct {
	Database Database
}

// LoadOrders parses and validates the orders service configuration.
func LoadOrders() (*Orders, error) {
	var cfg Orders
	if err := parse(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func LoadInventory() (*Inventory, error) {
	var cfg Inventory
	if err := parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func LoadNotification() (*Notification, error) {
	var cfg Notification
	if err := parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func LoadMigrate() (*Migrate, error) {
	var cfg Migrate
	if err := parse(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Database.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func parse(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
