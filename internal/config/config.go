package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config global configuration (mirrors config/config.yaml)
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Sync     SyncConfig     `mapstructure:"sync"`
	Fetch    FetchConfig    `mapstructure:"fetch"`
	Browser  BrowserConfig  `mapstructure:"browser"`
	Auth     AuthConfig     `mapstructure:"auth"`
}

// ServerConfig http server settings
type ServerConfig struct {
	Port     int    `mapstructure:"port"`
	Mode     string `mapstructure:"mode"`      // gin mode: debug/release/test
	Env      string `mapstructure:"env"`       // development/local/production
	LogLevel string `mapstructure:"log_level"` // logrus level name
}

// DatabaseConfig PostgreSQL connection settings
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	LogSQL          bool          `mapstructure:"log_sql"`
}

// SyncConfig batch scheduling settings
type SyncConfig struct {
	Cron            string        `mapstructure:"cron"`               // optional in-process schedule
	MaxVenuesPerRun int           `mapstructure:"max_venues_per_run"` // hard per-invocation ceiling
	FreshnessWindow time.Duration `mapstructure:"freshness_window"`
	Concurrency     int           `mapstructure:"concurrency"`
	HostInterval    time.Duration `mapstructure:"host_interval"` // min spacing between requests to one host
	RunTimeout      time.Duration `mapstructure:"run_timeout"`
	EnabledSources  []string      `mapstructure:"enabled_sources"`
}

// FetchConfig HTTP fetcher settings
type FetchConfig struct {
	Timeout      time.Duration `mapstructure:"timeout"`
	RetryCount   int           `mapstructure:"retry_count"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	MaxRedirects int           `mapstructure:"max_redirects"`
	UserAgent    string        `mapstructure:"user_agent"`
	Proxy        string        `mapstructure:"proxy"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`    // 0 disables the response cache
	CacheBucket  string        `mapstructure:"cache_bucket"` // S3 bucket; empty keeps the cache in memory
}

// BrowserConfig headless browser settings for JavaScript-rendered sources
type BrowserConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	Headless       bool          `mapstructure:"headless"`
	ExecutablePath string        `mapstructure:"executable_path"`
	NavTimeout     time.Duration `mapstructure:"nav_timeout"`
	InstallDriver  bool          `mapstructure:"install_driver"`
}

// AuthConfig trigger authentication
type AuthConfig struct {
	CronSecret string `mapstructure:"cron_secret"`
}

// IsDevelopment auth is relaxed only for local runs
func (s *ServerConfig) IsDevelopment() bool {
	switch strings.ToLower(s.Env) {
	case "", "development", "dev", "local":
		return true
	default:
		return false
	}
}

// LoadConfig reads config/config.yaml; secrets are overridden from .env / environment
func LoadConfig() (*Config, error) {
	// .env is optional, real environment wins over it
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")
	setDefaults(v)
	if err := v.ReadInConfig(); err != nil {
		// defaults alone are enough to boot; only a broken file is fatal
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	overrideFromEnv(&cfg)
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.env", "production")
	v.SetDefault("server.log_level", "info")

	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", time.Hour)

	v.SetDefault("sync.max_venues_per_run", 50)
	v.SetDefault("sync.freshness_window", 24*time.Hour)
	v.SetDefault("sync.concurrency", 1)
	v.SetDefault("sync.host_interval", 2*time.Second)
	v.SetDefault("sync.run_timeout", 4*time.Minute)
	v.SetDefault("sync.enabled_sources", []string{"pokeratlas", "direct_website", "bravo"})

	v.SetDefault("fetch.timeout", 15*time.Second)
	v.SetDefault("fetch.retry_count", 3)
	v.SetDefault("fetch.retry_backoff", time.Second)
	v.SetDefault("fetch.max_redirects", 5)
	v.SetDefault("fetch.user_agent", DefaultUserAgent)

	v.SetDefault("browser.enabled", false)
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.nav_timeout", 30*time.Second)
}

// DefaultUserAgent realistic desktop browser UA; several listing sites block bot UAs
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// overrideFromEnv secrets and deployment knobs come from the environment
func overrideFromEnv(cfg *Config) {
	if v := os.Getenv("CRON_SECRET"); v != "" {
		cfg.Auth.CronSecret = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("APP_ENV"); v != "" {
		cfg.Server.Env = v
	}
	if v := os.Getenv("SCRAPE_PROXY"); v != "" {
		cfg.Fetch.Proxy = v
	}
	if v := os.Getenv("SCRAPE_CACHE_BUCKET"); v != "" {
		cfg.Fetch.CacheBucket = v
	}
}

// Validate configuration errors that must abort before any venue is touched
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn (or DATABASE_URL) is required")
	}
	if c.Sync.MaxVenuesPerRun <= 0 {
		return fmt.Errorf("sync.max_venues_per_run must be positive")
	}
	return nil
}
