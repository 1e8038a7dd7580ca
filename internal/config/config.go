package config

import (
	"fmt"

	pkgconfig "github.com/fairlane/careerfair/pkg/config"
)

// Config holds all configuration for the careerfair service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"HTTP_PORT" envDefault:"8080"`

	// Postgres
	PostgresHost     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort     int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER" envDefault:"careerfair"`
	PostgresPassword string `env:"POSTGRES_PASSWORD" envDefault:"careerfair"`
	PostgresDB       string `env:"POSTGRES_DB" envDefault:"careerfair"`
	PostgresSSLMode  string `env:"POSTGRES_SSLMODE" envDefault:"disable"`

	// Redis (summary cache)
	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Kafka
	KafkaBrokers      []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`
	KafkaGroupID      string   `env:"KAFKA_GROUP_ID" envDefault:"careerfair-search-indexer"`
	KafkaConsumersOff bool     `env:"KAFKA_CONSUMERS_DISABLED" envDefault:"false"`

	// Search engine selection (elasticsearch or memory)
	SearchEngine       string `env:"SEARCH_ENGINE" envDefault:"memory"`
	ElasticsearchURL   string `env:"ELASTICSEARCH_URL" envDefault:"http://localhost:9200"`
	ElasticsearchIndex string `env:"ELASTICSEARCH_INDEX" envDefault:"careerfair_reviews"`

	// Auth
	JWTSecret string `env:"JWT_SECRET,required"`

	// Tracing
	TracingEnabled bool    `env:"TRACING_ENABLED" envDefault:"false"`
	OTLPEndpoint   string  `env:"OTLP_ENDPOINT" envDefault:"localhost:4318"`
	TraceSampleRate float64 `env:"TRACE_SAMPLE_RATE" envDefault:"1.0"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// pprof debug endpoints; empty disables them entirely
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"" envSeparator:","`
}

// Engine selection values for SearchEngine.
const (
	EngineMemory        = "memory"
	EngineElasticsearch = "elasticsearch"
)

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.SearchEngine != EngineMemory && c.SearchEngine != EngineElasticsearch {
		return fmt.Errorf("invalid search engine: %q (must be %q or %q)", c.SearchEngine, EngineMemory, EngineElasticsearch)
	}
	if len(c.JWTSecret) < 16 {
		return fmt.Errorf("JWT secret too short (min 16 bytes)")
	}
	return nil
}
