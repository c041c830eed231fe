// Package config loads and validates status-check configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Crawl   CrawlConfig   `mapstructure:"crawl"`
	Report  ReportConfig  `mapstructure:"report"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// CrawlConfig is handed to the crawling engine.
type CrawlConfig struct {
	Concurrency     int           `mapstructure:"concurrency"`
	Timeout         time.Duration `mapstructure:"timeout"`
	UserAgent       string        `mapstructure:"user_agent"`
	MaxDepth        int           `mapstructure:"max_depth"`
	InternalOnly    bool          `mapstructure:"internal_only"`
	FollowRedirects bool          `mapstructure:"follow_redirects"`
}

// ReportConfig controls where the summary is persisted.
type ReportConfig struct {
	File      string `mapstructure:"file"`
	Overwrite bool   `mapstructure:"overwrite"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
	// Outcomes adds one structured record per crawled URL.
	Outcomes bool `mapstructure:"outcomes"`
}

// MetricsConfig enables the Prometheus endpoint when ListenAddr is set.
type MetricsConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
}

// flagKeys maps CLI flag names onto configuration keys.
var flagKeys = map[string]string{
	"concurrency":      "crawl.concurrency",
	"timeout":          "crawl.timeout",
	"user-agent":       "crawl.user_agent",
	"max-depth":        "crawl.max_depth",
	"internal-only":    "crawl.internal_only",
	"follow-redirects": "crawl.follow_redirects",
	"output":           "report.file",
	"overwrite":        "report.overwrite",
	"dev-logs":         "logging.development",
	"log-level":        "logging.level",
	"log-outcomes":     "logging.outcomes",
	"metrics-addr":     "metrics.listen_addr",
}

// Load builds a Config from defaults, an optional file, the environment and
// flags, in increasing order of precedence. Flags that were not set on the
// command line do not override lower layers.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("STATUSCHECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			flag := flags.Lookup(name)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
			}
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
	v.SetDefault("crawl.concurrency", 10)
	v.SetDefault("crawl.timeout", "10s")
	v.SetDefault("crawl.user_agent", "statuscheck-bot/1.0")
	v.SetDefault("crawl.max_depth", 0)
	v.SetDefault("crawl.internal_only", false)
	v.SetDefault("crawl.follow_redirects", true)
	v.SetDefault("report.file", "")
	v.SetDefault("report.overwrite", false)
	v.SetDefault("logging.development", false)
	v.SetDefault("logging.level", "")
	v.SetDefault("logging.outcomes", false)
	v.SetDefault("metrics.listen_addr", "")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Crawl.Concurrency <= 0 {
		return fmt.Errorf("crawl.concurrency must be > 0")
	}
	if c.Crawl.Timeout <= 0 {
		return fmt.Errorf("crawl.timeout must be > 0")
	}
	if c.Crawl.MaxDepth < 0 {
		return fmt.Errorf("crawl.max_depth must be >= 0")
	}
	if c.Crawl.UserAgent == "" {
		return fmt.Errorf("crawl.user_agent must be set")
	}
	if c.Report.Overwrite && c.Report.File == "" {
		return fmt.Errorf("report.overwrite requires report.file")
	}
	return nil
}
