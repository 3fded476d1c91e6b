package config

import (
	"log/slog"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port     string `envconfig:"PORT" default:"8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	CatalogBaseURL string        `envconfig:"CATALOG_BASE_URL" default:"https://openlibrary.org"`
	CoversBaseURL  string        `envconfig:"COVERS_BASE_URL" default:"https://covers.openlibrary.org"`
	CatalogRetry   int           `envconfig:"CATALOG_RETRY" default:"0"`
	CatalogTimeout time.Duration `envconfig:"CATALOG_TIMEOUT" default:"5s"`
	SynthSeed      uint64        `envconfig:"SYNTH_SEED" default:"0"`

	StoreBackend     string `envconfig:"STORE_BACKEND" default:"file"` // memory | file | dynamodb
	StoreDir         string `envconfig:"STORE_DIR" default:"./data"`
	DynamoDBTable    string `envconfig:"DYNAMODB_TABLE" default:"bookstore-state"`
	DynamoDBEndpoint string `envconfig:"DYNAMODB_ENDPOINT" default:""` // DynamoDB Local
	AWSRegion        string `envconfig:"AWS_REGION" default:"us-east-1"`
	DeviceID         string `envconfig:"DEVICE_ID" default:"local"`

	ToastDelay         time.Duration `envconfig:"TOAST_DELAY" default:"2s"`
	AllowEmptyCheckout bool          `envconfig:"ALLOW_EMPTY_CHECKOUT" default:"false"`
	PublicBaseURL      string        `envconfig:"PUBLIC_BASE_URL" default:"http://localhost:8080/"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
