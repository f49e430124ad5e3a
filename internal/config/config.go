package config

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config carries everything one assessment run needs. Values are resolved by
// viper with the usual precedence: flags, then GLYPHPROBE_* environment
// variables, then an optional config file, then defaults.
type Config struct {
	// Target settings
	TargetURL   string `mapstructure:"target"`
	TargetEmail string `mapstructure:"email"`

	// Performance settings
	Threads int           `mapstructure:"threads"`
	Delay   time.Duration `mapstructure:"delay"`
	Timeout time.Duration `mapstructure:"timeout"`

	// Stealth settings
	Proxy       string `mapstructure:"proxy"`
	RandomAgent bool   `mapstructure:"random_agent"`

	// Variant generation settings
	MaxVariants int `mapstructure:"max_variants"`

	// Output settings
	OutputDir    string `mapstructure:"output"`
	ReportFormat string `mapstructure:"format"` // html, json, csv, all
	NoReport     bool   `mapstructure:"no_report"`

	// Optional result persistence
	DatabaseURL string `mapstructure:"database_url"`

	// Logging
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// SetDefaults registers every default on the given viper instance
func SetDefaults(v *viper.Viper) {
	v.SetDefault("threads", 5)
	v.SetDefault("delay", time.Second)
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("max_variants", 100)
	v.SetDefault("output", "results")
	v.SetDefault("format", "all")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
}

// Load resolves the configuration from the given viper instance. A config
// file is optional; a missing one is not an error.
func Load(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix("GLYPHPROBE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Validate enforces the bounds the attack pipeline assumes
func (c *Config) Validate() error {
	if c.TargetEmail == "" {
		return fmt.Errorf("target email is required")
	}
	if c.Threads < 1 || c.Threads > 50 {
		return fmt.Errorf("threads must be between 1 and 50, got %d", c.Threads)
	}
	if c.Delay < 0 {
		return fmt.Errorf("delay must not be negative")
	}
	if c.MaxVariants < 1 {
		return fmt.Errorf("max variants must be positive, got %d", c.MaxVariants)
	}
	switch c.ReportFormat {
	case "html", "json", "csv", "all":
	default:
		return fmt.Errorf("unknown report format %q", c.ReportFormat)
	}
	return nil
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ValidateEmail performs basic email format validation
func ValidateEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// ValidateURL reports whether raw parses to an absolute http(s) URL
func ValidateURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}

// NormalizeURL prefixes https:// when no scheme is present and strips any
// trailing slash
func NormalizeURL(raw string) string {
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}
	return strings.TrimRight(raw, "/")
}
