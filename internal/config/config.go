// Package config loads and watches the sweeper config file. The file is
// JSON5, so it can carry comments and trailing commas.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/titanous/json5"

	"github.com/nextlevelbuilder/sweeper/internal/sweep"
)

// DefaultFileName is the config file name under the sweeper home directory.
const DefaultFileName = "sweeper.json5"

// Config is the full file shape.
type Config struct {
	Site      SiteConfig      `json:"site"`
	Sweep     SweepConfig     `json:"sweep"`
	Selectors sweep.Selectors `json:"selectors"`
	Gateway   GatewayConfig   `json:"gateway"`
	Log       LogConfig       `json:"log"`
	Tracing   TracingConfig   `json:"tracing"`
}

// SiteConfig describes the page the agent operates on.
type SiteConfig struct {
	// URL is opened by `sweeper run`.
	URL string `json:"url"`
	// HomePath is the navigation path of the qualifying view.
	HomePath string `json:"homePath"`
	// Identity overrides DOM-based identity detection when set.
	Identity string `json:"identity,omitempty"`
	// IdentitySelector locates the element whose href carries the
	// signed-in handle.
	IdentitySelector string `json:"identitySelector"`
	Headless         bool   `json:"headless"`
}

// SweepConfig holds the agent tunables, in milliseconds where applicable.
type SweepConfig struct {
	ScanIntervalMs    int `json:"scanIntervalMs"`
	StepDelayMs       int `json:"stepDelayMs"`
	PostDeleteDelayMs int `json:"postDeleteDelayMs"`
	CaretAttempts     int `json:"caretAttempts"`
	CaretDelayMs      int `json:"caretDelayMs"`
	MenuAttempts      int `json:"menuAttempts"`
	ConfirmAttempts   int `json:"confirmAttempts"`
	MaxPerMinute      int `json:"maxPerMinute"`
}

// GatewayConfig controls the local status endpoint.
type GatewayConfig struct {
	Enabled bool   `json:"enabled"`
	Addr    string `json:"addr"`
}

// LogConfig controls slog output.
type LogConfig struct {
	Level      string `json:"level"` // debug, info, warn, error
	File       string `json:"file,omitempty"`
	MaxSizeMB  int    `json:"maxSizeMb"`
	MaxBackups int    `json:"maxBackups"`
}

// TracingConfig enables OTLP span export when Endpoint is set.
type TracingConfig struct {
	Endpoint    string `json:"endpoint,omitempty"`
	Protocol    string `json:"protocol,omitempty"` // "grpc" or "http"
	Insecure    bool   `json:"insecure,omitempty"`
	ServiceName string `json:"serviceName,omitempty"`
}

// Default returns the stock configuration.
func Default() *Config {
	return &Config{
		Site: SiteConfig{
			URL:              "https://x.com/home",
			HomePath:         "/home",
			IdentitySelector: `a[data-testid="AppTabBar_Profile_Link"]`,
			Headless:         false,
		},
		Sweep: SweepConfig{
			ScanIntervalMs:    4000,
			StepDelayMs:       400,
			PostDeleteDelayMs: 500,
			CaretAttempts:     5,
			CaretDelayMs:      250,
			MenuAttempts:      4,
			ConfirmAttempts:   4,
		},
		Selectors: sweep.DefaultSelectors(),
		Gateway: GatewayConfig{
			Enabled: true,
			Addr:    "127.0.0.1:8790",
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// DefaultPath returns the default config file location, honoring the
// SWEEPER_CONFIG environment variable.
func DefaultPath() string {
	if p := os.Getenv("SWEEPER_CONFIG"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultFileName
	}
	return filepath.Join(home, ".sweeper", DefaultFileName)
}

// Load reads and validates the config file. A missing file yields the
// defaults, so a fresh install runs without any setup.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := json5.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values Load cannot default away.
func (c *Config) Validate() error {
	if c.Site.URL == "" {
		return fmt.Errorf("site.url is required")
	}
	if c.Site.HomePath == "" {
		return fmt.Errorf("site.homePath is required")
	}
	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}
	if c.Gateway.Enabled && c.Gateway.Addr == "" {
		return fmt.Errorf("gateway.addr is required when the gateway is enabled")
	}
	if p := c.Tracing.Protocol; p != "" && p != "grpc" && p != "http" {
		return fmt.Errorf("tracing.protocol %q is not grpc or http", p)
	}
	for _, v := range []int{
		c.Sweep.ScanIntervalMs, c.Sweep.StepDelayMs, c.Sweep.PostDeleteDelayMs,
		c.Sweep.CaretAttempts, c.Sweep.CaretDelayMs, c.Sweep.MenuAttempts,
		c.Sweep.ConfirmAttempts, c.Sweep.MaxPerMinute,
	} {
		if v < 0 {
			return fmt.Errorf("sweep values must not be negative")
		}
	}
	return nil
}

// AgentConfig maps the file shape onto the agent's tunables.
func (c *Config) AgentConfig() sweep.Config {
	return sweep.Config{
		ScanInterval:    time.Duration(c.Sweep.ScanIntervalMs) * time.Millisecond,
		StepDelay:       time.Duration(c.Sweep.StepDelayMs) * time.Millisecond,
		PostDeleteDelay: time.Duration(c.Sweep.PostDeleteDelayMs) * time.Millisecond,
		CaretAttempts:   c.Sweep.CaretAttempts,
		CaretDelay:      time.Duration(c.Sweep.CaretDelayMs) * time.Millisecond,
		MenuAttempts:    c.Sweep.MenuAttempts,
		ConfirmAttempts: c.Sweep.ConfirmAttempts,
		MaxPerMinute:    c.Sweep.MaxPerMinute,
		Selectors:       c.Selectors,
	}
}
