// Package config loads and validates pipeline configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/sequoia-oss-api/sequoia-crawler/internal/fetch"
)

// Config captures all pipeline knobs loaded via Viper.
type Config struct {
	Source  SourceConfig  `mapstructure:"source"`
	Fetch   FetchConfig   `mapstructure:"fetch"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Build   BuildConfig   `mapstructure:"build"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// SourceConfig pins the target site's entry points. Hostnames and URL
// patterns are specific to one site's current layout.
type SourceConfig struct {
	SitemapURL       string `mapstructure:"sitemap_url"`
	CompanyURLPrefix string `mapstructure:"company_url_prefix"`
	ProfileBaseURL   string `mapstructure:"profile_base_url"`
	DirectoryURL     string `mapstructure:"directory_url"`
	UserAgent        string `mapstructure:"user_agent"`
}

// FetchConfig governs rate limiting and retry behavior.
type FetchConfig struct {
	DelayMs        int     `mapstructure:"delay_ms"`
	JitterFraction float64 `mapstructure:"jitter_fraction"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
	MaxRetries     int     `mapstructure:"max_retries"`
	BackoffBaseMs  int     `mapstructure:"backoff_base_ms"`
	RespectRobots  bool    `mapstructure:"respect_robots"`
}

// CacheConfig locates the on-disk page cache.
type CacheConfig struct {
	Dir string `mapstructure:"dir"`
}

// BuildConfig controls output generation and the publish guard.
type BuildConfig struct {
	OutputDir    string `mapstructure:"output_dir"`
	Limit        int    `mapstructure:"limit"`
	MinCompanies int    `mapstructure:"min_companies"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SEQUOIA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("source.sitemap_url", fetch.SitemapURL)
	v.SetDefault("source.company_url_prefix", fetch.CompanyURLPrefix)
	v.SetDefault("source.profile_base_url", fetch.ProfileBaseURL)
	v.SetDefault("source.directory_url", "https://sequoiacap.com/our-companies/")
	v.SetDefault("source.user_agent", fetch.UserAgent)
	v.SetDefault("fetch.delay_ms", 1000)
	v.SetDefault("fetch.jitter_fraction", 0.2)
	v.SetDefault("fetch.timeout_seconds", 30)
	v.SetDefault("fetch.max_retries", 3)
	v.SetDefault("fetch.backoff_base_ms", 1000)
	v.SetDefault("fetch.respect_robots", false)
	v.SetDefault("cache.dir", ".cache")
	v.SetDefault("build.output_dir", "docs")
	v.SetDefault("build.limit", 50)
	v.SetDefault("build.min_companies", 100)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Source.SitemapURL == "" {
		return fmt.Errorf("source.sitemap_url must be set")
	}
	if c.Fetch.DelayMs < 0 {
		return fmt.Errorf("fetch.delay_ms must be >= 0")
	}
	if c.Fetch.JitterFraction < 0 || c.Fetch.JitterFraction >= 1 {
		return fmt.Errorf("fetch.jitter_fraction must be in [0, 1)")
	}
	if c.Fetch.TimeoutSeconds <= 0 {
		return fmt.Errorf("fetch.timeout_seconds must be > 0")
	}
	if c.Fetch.MaxRetries < 0 {
		return fmt.Errorf("fetch.max_retries must be >= 0")
	}
	if c.Build.OutputDir == "" {
		return fmt.Errorf("build.output_dir must be set")
	}
	if c.Build.MinCompanies <= 0 {
		return fmt.Errorf("build.min_companies must be > 0")
	}
	return nil
}

// ClientConfig converts the fetch section into the client's form.
func (c Config) ClientConfig() fetch.Config {
	return fetch.Config{
		UserAgent:     c.Source.UserAgent,
		Timeout:       time.Duration(c.Fetch.TimeoutSeconds) * time.Second,
		MaxRetries:    c.Fetch.MaxRetries,
		BackoffBase:   time.Duration(c.Fetch.BackoffBaseMs) * time.Millisecond,
		Delay:         time.Duration(c.Fetch.DelayMs) * time.Millisecond,
		Jitter:        c.Fetch.JitterFraction,
		RespectRobots: c.Fetch.RespectRobots,
	}
}
