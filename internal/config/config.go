package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Supplier policies accepted in SUPPLIER_POLICY.
const (
	SupplierPolicyFirst    = "first"
	SupplierPolicyCheapest = "cheapest"
)

// TodayLayout is the format of TODAY.
const TodayLayout = "2006-01-02"

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	// Server
	Port               int    `mapstructure:"PORT"`
	Env                string `mapstructure:"APP_ENV"` // development | production
	LogLevel           string `mapstructure:"LOG_LEVEL"`
	RateLimitPerMinute int    `mapstructure:"RATE_LIMIT_PER_MINUTE"`

	// Dataset
	DataDir string `mapstructure:"DATA_DIR"`

	// Redis (empty URL disables the view cache)
	RedisURL        string `mapstructure:"REDIS_URL"`
	CacheTTLMinutes int    `mapstructure:"CACHE_TTL_MINUTES"`

	// Dashboard
	SupplierPolicy       string `mapstructure:"SUPPLIER_POLICY"`
	PromotionOverlayFile string `mapstructure:"PROMOTION_OVERLAY_FILE"`
	Today                string `mapstructure:"TODAY"` // YYYY-MM-DD; empty uses the wall clock
}

// Load reads configuration from environment variables (and optional .env file).
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	v.SetDefault("PORT", 8050)
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("RATE_LIMIT_PER_MINUTE", 600)
	v.SetDefault("DATA_DIR", "tables")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("CACHE_TTL_MINUTES", 60)
	v.SetDefault("SUPPLIER_POLICY", SupplierPolicyFirst)
	v.SetDefault("PROMOTION_OVERLAY_FILE", "")
	v.SetDefault("TODAY", "")

	// Optional .env file for local development; a missing file is not an error
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d out of range", c.Port))
	}
	if c.DataDir == "" {
		errs = append(errs, errors.New("DATA_DIR must not be empty"))
	}
	switch c.SupplierPolicy {
	case SupplierPolicyFirst, SupplierPolicyCheapest:
	default:
		errs = append(errs, fmt.Errorf("SUPPLIER_POLICY %q: want %q or %q",
			c.SupplierPolicy, SupplierPolicyFirst, SupplierPolicyCheapest))
	}
	if c.Today != "" {
		if _, err := time.Parse(TodayLayout, c.Today); err != nil {
			errs = append(errs, fmt.Errorf("TODAY %q: %w", c.Today, err))
		}
	}
	if c.CacheTTLMinutes <= 0 {
		errs = append(errs, fmt.Errorf("CACHE_TTL_MINUTES %d must be positive", c.CacheTTLMinutes))
	}
	if c.RateLimitPerMinute <= 0 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_PER_MINUTE %d must be positive", c.RateLimitPerMinute))
	}
	return errors.Join(errs...)
}

// IsProduction reports whether APP_ENV selects production behaviour.
func (c *Config) IsProduction() bool { return c.Env == "production" }

// CacheTTL is CACHE_TTL_MINUTES as a duration.
func (c *Config) CacheTTL() time.Duration { return time.Duration(c.CacheTTLMinutes) * time.Minute }

// Clock returns the reference "now" for recency views: midnight UTC of TODAY
// when set, the wall clock otherwise. Validate must have passed.
func (c *Config) Clock() func() time.Time {
	if c.Today == "" {
		return time.Now
	}
	t, _ := time.Parse(TodayLayout, c.Today)
	return func() time.Time { return t }
}
