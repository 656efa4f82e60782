package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

type FeatureFlags struct {
	BugReports bool `env:"ENABLE_BUG_REPORTS" envDefault:"true"`
	ImageProxy bool `env:"ENABLE_IMAGE_PROXY" envDefault:"true"`
}

type CatalogConfig struct {
	BaseURL  string        `env:"CATALOG_BASE_URL" envDefault:"https://metaforge.app/api/arc-raiders"`
	PageSize int           `env:"CATALOG_PAGE_SIZE" envDefault:"100"`
	MaxPages int           `env:"CATALOG_MAX_PAGES" envDefault:"100"`
	Timeout  time.Duration `env:"CATALOG_TIMEOUT" envDefault:"15s"`
}

type StateConfig struct {
	Backend     string `env:"STATE_BACKEND" envDefault:"file"`
	Dir         string `env:"STATE_DIR" envDefault:"."`
	DatabaseURL string `env:"DATABASE_URL"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"raiderdle.db"`
}

type Config struct {
	AppEnv  string `env:"APP_ENV" envDefault:"local"`
	DevMode bool   `env:"DEV_MODE"`
	Port    int    `env:"PORT" envDefault:"3001"`

	Catalog  CatalogConfig
	State    StateConfig
	Features FeatureFlags

	IconsDir       string   `env:"ICONS_DIR" envDefault:"./icons"`
	IconsPublicURL string   `env:"ICONS_PUBLIC_URL" envDefault:"https://api.raiderdle.com/api/icons/image/"`
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	// Proxies allowed to set X-Forwarded-For, as addresses or CIDR ranges.
	// Empty means the peer address is always the client.
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`
	// Empty disables the bug report listing.
	AdminToken string `env:"ADMIN_TOKEN"`

	BugReportRateLimit  int           `env:"BUG_REPORT_RATE_LIMIT" envDefault:"5"`
	BugReportRateWindow time.Duration `env:"BUG_REPORT_RATE_WINDOW" envDefault:"10m"`

	CachePruneInterval time.Duration `env:"CACHE_PRUNE_INTERVAL" envDefault:"1h"`
	ShutdownTimeout    time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

func loadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.State.Backend = strings.ToLower(strings.TrimSpace(cfg.State.Backend))
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.State.Backend {
	case BackendFile, BackendSQLite:
	case BackendPostgres:
		if c.State.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for STATE_BACKEND=%s", BackendPostgres)
		}
	default:
		return fmt.Errorf("unsupported STATE_BACKEND: %q", c.State.Backend)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT: %d", c.Port)
	}
	if c.CachePruneInterval <= 0 {
		return fmt.Errorf("CACHE_PRUNE_INTERVAL must be positive")
	}
	if _, err := parseTrustedProxies(c.TrustedProxies); err != nil {
		return fmt.Errorf("invalid TRUSTED_PROXIES: %w", err)
	}
	return nil
}

func (c Config) isLocal() bool {
	return strings.EqualFold(strings.TrimSpace(c.AppEnv), "local")
}
