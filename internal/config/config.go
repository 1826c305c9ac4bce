// Package config loads settings for the Nexus binaries.
//
// Values come from defaults, then an optional YAML file, then the environment.
// The environment always wins, so secrets can stay out of the file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage drivers for the watchlist.
const (
	StorageMemory     = "memory"
	StorageClickHouse = "clickhouse"
	StoragePostgres   = "postgres"
)

// ClickHouse holds ClickHouse connection settings.
type ClickHouse struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// Postgres holds Postgres connection settings.
type Postgres struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// URL returns a connection string for pgx.
func (p Postgres) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s", p.Username, p.Password, p.Host, p.Port, p.Database)
}

type Config struct {
	Server struct {
		Addr      string `yaml:"addr"`
		SecretKey string `yaml:"secret_key"`
		Debug     bool   `yaml:"debug"`
	} `yaml:"server"`

	API struct {
		BaseURL         string        `yaml:"base_url"`
		Timeout         time.Duration `yaml:"timeout"`
		MarketWindow    time.Duration `yaml:"market_window"`
		WatchlistWindow time.Duration `yaml:"watchlist_window"`
	} `yaml:"api"`

	Storage struct {
		Driver     string     `yaml:"driver"`
		ClickHouse ClickHouse `yaml:"clickhouse"`
		Postgres   Postgres   `yaml:"postgres"`
	} `yaml:"storage"`

	Ingest struct {
		UpstreamURL string `yaml:"upstream_url"`
	} `yaml:"ingest"`

	Feed struct {
		Interval time.Duration `yaml:"interval"`
		Capacity int           `yaml:"capacity"`
	} `yaml:"feed"`

	Mock struct {
		Seed int64 `yaml:"seed"`
	} `yaml:"mock"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	var cfg Config

	cfg.Server.Addr = ":8000"
	cfg.API.BaseURL = "http://localhost:8000"
	cfg.API.Timeout = 10 * time.Second
	cfg.API.MarketWindow = 5 * time.Minute
	cfg.API.WatchlistWindow = time.Minute
	cfg.Storage.Driver = StorageMemory
	cfg.Storage.ClickHouse.Port = "9000"
	cfg.Storage.Postgres.Port = "5432"
	cfg.Ingest.UpstreamURL = "https://api.coingecko.com/api/v3/coins/markets?vs_currency=usd&sparkline=true"
	cfg.Feed.Interval = 12 * time.Second
	cfg.Feed.Capacity = 20
	cfg.Mock.Seed = time.Now().UnixNano()

	return &cfg
}

// Load reads the YAML file at path, if there is one, and applies
// environment overrides on top.
//
// An empty path or a missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)

		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	if err := overrideWithEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration is usable.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		return fmt.Errorf("invalid API base URL: %q", c.API.BaseURL)
	}

	if c.API.Timeout <= 0 {
		return fmt.Errorf("API timeout must be positive")
	}

	if c.API.MarketWindow < 0 || c.API.WatchlistWindow < 0 {
		return fmt.Errorf("cache windows must not be negative")
	}

	switch c.Storage.Driver {
	case StorageMemory, StorageClickHouse, StoragePostgres:
	default:
		return fmt.Errorf("unknown storage driver: %q", c.Storage.Driver)
	}

	if c.Feed.Interval <= 0 {
		return fmt.Errorf("feed interval must be positive")
	}

	if c.Feed.Capacity <= 0 {
		return fmt.Errorf("feed capacity must be positive")
	}

	return nil
}

func setString(target *string, key string) {
	if value := os.Getenv(key); value != "" {
		*target = value
	}
}

func setDuration(target *time.Duration, key string) error {
	value := os.Getenv(key)

	if value == "" {
		return nil
	}

	duration, err := time.ParseDuration(value)

	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}

	*target = duration

	return nil
}

func overrideWithEnv(cfg *Config) error {
	setString(&cfg.Server.Addr, "NEXUS_ADDR")
	setString(&cfg.Server.SecretKey, "SECRET_KEY")
	setString(&cfg.API.BaseURL, "NEXUS_API_URL")
	setString(&cfg.Storage.Driver, "NEXUS_STORAGE")
	setString(&cfg.Ingest.UpstreamURL, "NEXUS_UPSTREAM_URL")

	// ClickHouse keeps the DB_ names the ingest job has always used.
	setString(&cfg.Storage.ClickHouse.Host, "DB_HOST")
	setString(&cfg.Storage.ClickHouse.Port, "DB_PORT")
	setString(&cfg.Storage.ClickHouse.Database, "DB_NAME")
	setString(&cfg.Storage.ClickHouse.Username, "DB_USERNAME")
	setString(&cfg.Storage.ClickHouse.Password, "DB_PASSWORD")

	setString(&cfg.Storage.Postgres.Host, "PGHOST")
	setString(&cfg.Storage.Postgres.Port, "PGPORT")
	setString(&cfg.Storage.Postgres.Database, "PGDATABASE")
	setString(&cfg.Storage.Postgres.Username, "PGUSER")
	setString(&cfg.Storage.Postgres.Password, "PGPASSWORD")

	if err := setDuration(&cfg.API.Timeout, "NEXUS_API_TIMEOUT"); err != nil {
		return err
	}

	if err := setDuration(&cfg.API.MarketWindow, "NEXUS_MARKET_WINDOW"); err != nil {
		return err
	}

	if err := setDuration(&cfg.API.WatchlistWindow, "NEXUS_WATCHLIST_WINDOW"); err != nil {
		return err
	}

	if value := os.Getenv("NEXUS_DEBUG"); value != "" {
		debug, err := strconv.ParseBool(value)

		if err != nil {
			return fmt.Errorf("NEXUS_DEBUG: %w", err)
		}

		cfg.Server.Debug = debug
	}

	if value := os.Getenv("NEXUS_MOCK_SEED"); value != "" {
		seed, err := strconv.ParseInt(value, 10, 64)

		if err != nil {
			return fmt.Errorf("NEXUS_MOCK_SEED: %w", err)
		}

		cfg.Mock.Seed = seed
	}

	return nil
}
