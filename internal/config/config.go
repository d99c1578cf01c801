// Package config loads and validates scraper configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Crawler CrawlerConfig `mapstructure:"crawler"`
	Images  ImagesConfig  `mapstructure:"images"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// CrawlerConfig governs the crawl and fetch pipeline.
type CrawlerConfig struct {
	UserAgent         string  `mapstructure:"user_agent"`
	PageCap           int     `mapstructure:"page_cap"`
	BatchPageCap      int     `mapstructure:"batch_page_cap"`
	Retries           int     `mapstructure:"retries"`
	RetryDelayMs      int     `mapstructure:"retry_delay_ms"`
	TimeoutSeconds    int     `mapstructure:"timeout_seconds"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// ImagesConfig bounds the per-product image download fan-out.
type ImagesConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SCRAPER")
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
	v.SetDefault("server.port", 8080)
	v.SetDefault("crawler.page_cap", 50)
	v.SetDefault("crawler.batch_page_cap", 100)
	v.SetDefault("crawler.retries", 3)
	v.SetDefault("crawler.retry_delay_ms", 1000)
	v.SetDefault("crawler.timeout_seconds", 15)
	v.SetDefault("crawler.requests_per_second", 2.0)
	v.SetDefault("crawler.burst", 4)
	v.SetDefault("images.concurrency", 5)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Crawler.PageCap <= 0 {
		return fmt.Errorf("crawler.page_cap must be > 0")
	}
	if c.Crawler.BatchPageCap < c.Crawler.PageCap {
		return fmt.Errorf("crawler.batch_page_cap must be >= crawler.page_cap")
	}
	if c.Crawler.Retries <= 0 {
		return fmt.Errorf("crawler.retries must be > 0")
	}
	if c.Crawler.TimeoutSeconds <= 0 {
		return fmt.Errorf("crawler.timeout_seconds must be > 0")
	}
	if c.Crawler.RequestsPerSecond < 0 {
		return fmt.Errorf("crawler.requests_per_second must be >= 0")
	}
	if c.Crawler.Burst <= 0 {
		return fmt.Errorf("crawler.burst must be > 0")
	}
	if c.Images.Concurrency <= 0 {
		return fmt.Errorf("images.concurrency must be > 0")
	}
	return nil
}

// RetryDelay converts the retry delay knob into a duration.
func (c Config) RetryDelay() time.Duration {
	return time.Duration(c.Crawler.RetryDelayMs) * time.Millisecond
}

// FetchTimeout converts the fetch timeout knob into a duration.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.Crawler.TimeoutSeconds) * time.Second
}
