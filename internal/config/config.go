// Package config loads settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DriverMongo  = "mongo"
	DriverSQLite = "sqlite"
)

type API struct {
	Port               string
	Environment        string
	LogLevel           string
	CatalogDriver      string
	Mongo              MongoConfig
	SQLitePath         string
	Redis              RedisConfig
	Kafka              KafkaConfig
	StaticDir          string
	GRPCHealthPort     string
	RequestTimeout     time.Duration
	ShutdownTimeout    time.Duration
	MaxRequestBodySize int64
	Tracing            TracingConfig
}

type MongoConfig struct {
	URI            string
	Database       string
	MaxPoolSize    uint64
	MinPoolSize    uint64
	ConnectTimeout time.Duration
}

// TracingConfig selects where spans go. Exporter is none, stdout or otlp.
type TracingConfig struct {
	Exporter     string
	OTLPEndpoint string
	SampleRatio  float64
}

// RedisConfig enables the catalog cache when Addr is set.
type RedisConfig struct {
	Addr     string
	Password string
	CacheTTL time.Duration
}

// KafkaConfig enables publishing of cart submissions when Brokers is set.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type Storefront struct {
	Port            string
	Environment     string
	LogLevel        string
	APIURL          string
	StoreTitle      string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	// SessionIdleTimeout is how long an untouched cart session is kept.
	SessionIdleTimeout time.Duration
	Tracing            TracingConfig
}

func newViper() (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigType("env")
	v.SetConfigName(".env")
	v.AddConfigPath(".")
	v.AddConfigPath("..")

	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")
	v.SetDefault("TRACING_EXPORTER", "none")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")
	v.SetDefault("TRACING_SAMPLE_RATIO", 1.0)

	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return v, nil
}

// LoadAPI reads the configuration of the catalog and cart API.
func LoadAPI() (*API, error) {
	v, err := newViper()
	if err != nil {
		return nil, err
	}

	v.SetDefault("PORT", "5000")
	v.SetDefault("CATALOG_DRIVER", DriverMongo)
	v.SetDefault("MONGODB_URI", "mongodb://localhost:27017/ecommerce")
	v.SetDefault("MONGO_MAX_POOL_SIZE", 100)
	v.SetDefault("MONGO_MIN_POOL_SIZE", 5)
	v.SetDefault("MONGO_CONNECT_TIMEOUT", "10s")
	v.SetDefault("SQLITE_PATH", "./products.db")
	v.SetDefault("CATALOG_CACHE_TTL", "1m")
	v.SetDefault("KAFKA_TOPIC", "cart-submissions")
	v.SetDefault("STATIC_DIR", "./public")
	v.SetDefault("MAX_REQUEST_BODY_SIZE", 1<<20)

	cfg := &API{
		Port:          v.GetString("PORT"),
		Environment:   v.GetString("ENVIRONMENT"),
		LogLevel:      v.GetString("LOG_LEVEL"),
		CatalogDriver: strings.ToLower(strings.TrimSpace(v.GetString("CATALOG_DRIVER"))),
		Mongo: MongoConfig{
			URI:            v.GetString("MONGODB_URI"),
			Database:       v.GetString("MONGO_DB_NAME"),
			MaxPoolSize:    v.GetUint64("MONGO_MAX_POOL_SIZE"),
			MinPoolSize:    v.GetUint64("MONGO_MIN_POOL_SIZE"),
			ConnectTimeout: v.GetDuration("MONGO_CONNECT_TIMEOUT"),
		},
		SQLitePath: v.GetString("SQLITE_PATH"),
		Redis: RedisConfig{
			Addr:     strings.TrimSpace(v.GetString("REDIS_ADDR")),
			Password: v.GetString("REDIS_PASSWORD"),
			CacheTTL: v.GetDuration("CATALOG_CACHE_TTL"),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(v.GetString("KAFKA_BROKERS")),
			Topic:   v.GetString("KAFKA_TOPIC"),
		},
		StaticDir:          v.GetString("STATIC_DIR"),
		GRPCHealthPort:     strings.TrimSpace(v.GetString("GRPC_HEALTH_PORT")),
		RequestTimeout:     v.GetDuration("REQUEST_TIMEOUT"),
		ShutdownTimeout:    v.GetDuration("SHUTDOWN_TIMEOUT"),
		MaxRequestBodySize: v.GetInt64("MAX_REQUEST_BODY_SIZE"),
		Tracing:            tracingConfig(v),
	}

	if cfg.Mongo.Database == "" {
		cfg.Mongo.Database = databaseFromURI(cfg.Mongo.URI)
	}

	switch cfg.CatalogDriver {
	case DriverMongo, DriverSQLite:
	default:
		return nil, fmt.Errorf("unknown CATALOG_DRIVER %q", cfg.CatalogDriver)
	}
	if cfg.MaxRequestBodySize <= 0 {
		return nil, fmt.Errorf("MAX_REQUEST_BODY_SIZE must be positive")
	}
	if cfg.Mongo.MaxPoolSize > 0 && cfg.Mongo.MinPoolSize > cfg.Mongo.MaxPoolSize {
		return nil, fmt.Errorf("MONGO_MIN_POOL_SIZE %d exceeds MONGO_MAX_POOL_SIZE %d",
			cfg.Mongo.MinPoolSize, cfg.Mongo.MaxPoolSize)
	}
	if err := cfg.Tracing.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadStorefront reads the configuration of the browser-facing storefront.
func LoadStorefront() (*Storefront, error) {
	v, err := newViper()
	if err != nil {
		return nil, err
	}

	v.SetDefault("STOREFRONT_PORT", "3000")
	v.SetDefault("API_URL", "http://localhost:5000")
	v.SetDefault("STORE_TITLE", "Ajinkya's Store")
	v.SetDefault("SESSION_IDLE_TIMEOUT", "24h")

	cfg := &Storefront{
		Port:            v.GetString("STOREFRONT_PORT"),
		Environment:     v.GetString("ENVIRONMENT"),
		LogLevel:        v.GetString("LOG_LEVEL"),
		APIURL:          strings.TrimSuffix(strings.TrimSpace(v.GetString("API_URL")), "/"),
		StoreTitle:      v.GetString("STORE_TITLE"),
		RequestTimeout:  v.GetDuration("REQUEST_TIMEOUT"),
		ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),

		SessionIdleTimeout: v.GetDuration("SESSION_IDLE_TIMEOUT"),
		Tracing:            tracingConfig(v),
	}

	u, err := url.Parse(cfg.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("API_URL must be an absolute URL, got %q", cfg.APIURL)
	}
	if cfg.SessionIdleTimeout <= 0 {
		return nil, fmt.Errorf("SESSION_IDLE_TIMEOUT must be positive")
	}
	if err := cfg.Tracing.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func tracingConfig(v *viper.Viper) TracingConfig {
	return TracingConfig{
		Exporter:     strings.ToLower(strings.TrimSpace(v.GetString("TRACING_EXPORTER"))),
		OTLPEndpoint: strings.TrimSpace(v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT")),
		SampleRatio:  v.GetFloat64("TRACING_SAMPLE_RATIO"),
	}
}

func (c TracingConfig) validate() error {
	switch c.Exporter {
	case "none", "stdout", "otlp":
	default:
		return fmt.Errorf("unknown TRACING_EXPORTER %q", c.Exporter)
	}
	if c.SampleRatio < 0 || c.SampleRatio > 1 {
		return fmt.Errorf("TRACING_SAMPLE_RATIO must be within [0, 1], got %v", c.SampleRatio)
	}
	return nil
}

func databaseFromURI(uri string) string {
	u, err := url.Parse(uri)
	if err == nil {
		if name := strings.Trim(u.Path, "/"); name != "" {
			return name
		}
	}
	return "ecommerce"
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
