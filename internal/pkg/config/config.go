// Package config loads process configuration from the environment.
package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`

	CatalogURL string `envconfig:"CATALOG_SERVICE_URL" default:"http://localhost:8081"`
	PaymentURL string `envconfig:"PAYMENT_SERVICE_URL" default:"http://localhost:8082"`

	// RemoteTimeout bounds every catalog and payment call; past it the call
	// resolves as a remote-call failure.
	RemoteTimeout time.Duration `envconfig:"REMOTE_CALL_TIMEOUT" default:"5s"`

	SQLitePath string `envconfig:"SQLITE_PATH" default:"./data/orders.db"`

	RedisAddr       string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	WebhookDedupTTL time.Duration `envconfig:"WEBHOOK_DEDUP_TTL" default:"24h"`

	Currency string `envconfig:"PAYMENT_CURRENCY" default:"usd"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
