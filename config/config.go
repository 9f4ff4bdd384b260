package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Data source kinds accepted by DATA_SOURCE.
const (
	SourceCSV      = "csv"
	SourceXLSX     = "xlsx"
	SourcePostgres = "postgres"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	PostgresHost     string `envconfig:"POSTGRES_HOST" default:"localhost"`
	PostgresPort     string `envconfig:"POSTGRES_PORT" default:"5432"`
	PostgresUser     string `envconfig:"POSTGRES_USER" default:"dashboard"`
	PostgresPassword string `envconfig:"POSTGRES_PASSWORD" default:"dashboard"`
	PostgresDB       string `envconfig:"POSTGRES_DB" default:"rental_db"`
	PostgresSSLMode  string `envconfig:"POSTGRES_SSLMODE" default:"disable"`
	PostgresTable    string `envconfig:"POSTGRES_TABLE" default:"raw_listings"`

	DataSource string `envconfig:"DATA_SOURCE" default:"csv"`
	DataPath   string `envconfig:"DATA_PATH" default:"AB_NYC_2019.csv"`
	XLSXSheet  string `envconfig:"XLSX_SHEET"`

	HTTPAddr       string        `envconfig:"HTTP_ADDR" default:":8501"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`
	LogLevel       string        `envconfig:"LOG_LEVEL" default:"info"`
	SampleSize     int           `envconfig:"SAMPLE_SIZE" default:"2000"`
	SampleSeed     int64         `envconfig:"SAMPLE_SEED" default:"0"`
	MaxRetries     int           `envconfig:"MAX_RETRIES" default:"3"`
}

// Load reads the .env file (if any) and returns a populated, validated Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: process env: %w", err)
	}
	cfg.DataSource = strings.ToLower(strings.TrimSpace(cfg.DataSource))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	switch c.DataSource {
	case SourceCSV, SourceXLSX:
		if c.DataPath == "" {
			return fmt.Errorf("config: DATA_PATH is required for %s sources", c.DataSource)
		}
	case SourcePostgres:
		if c.PostgresTable == "" {
			return fmt.Errorf("config: POSTGRES_TABLE is required for postgres sources")
		}
	default:
		return fmt.Errorf("config: unknown DATA_SOURCE %q", c.DataSource)
	}
	if c.SampleSize <= 0 {
		return fmt.Errorf("config: SAMPLE_SIZE must be positive, got %d", c.SampleSize)
	}
	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}
