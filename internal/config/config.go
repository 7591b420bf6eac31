// Package config loads siderchat settings from a YAML file and the
// environment. Command-line flags are applied on top by the CLI.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bazelment/siderchat/chat"
	"github.com/bazelment/siderchat/internal/logging"
)

// Environment variables read by ApplyEnv.
const (
	EnvToken    = "SIDER_API_TOKEN"
	EnvBaseURL  = "SIDER_BASE_URL"
	EnvModel    = "SIDERCHAT_MODEL"
	EnvLogLevel = "LOG_LEVEL"
	EnvNoColor  = "NO_COLOR"
)

// DefaultBaseURL is the local proxy address.
const DefaultBaseURL = "http://localhost:4141"

// Config holds runtime settings shared by every command.
type Config struct {
	BaseURL      string        `yaml:"base_url"`
	Token        string        `yaml:"token"`
	Model        string        `yaml:"model"`
	LogLevel     string        `yaml:"log_level"`
	LogFile      string        `yaml:"log_file"`
	GlamourStyle string        `yaml:"glamour_style"`
	ChatTimeout  time.Duration `yaml:"chat_timeout"`
	Think        bool          `yaml:"think"`
	Search       bool          `yaml:"search"`
	NoColor      bool          `yaml:"no_color"`
}

// Defaults returns baseline configuration.
func Defaults() Config {
	return Config{
		BaseURL:      DefaultBaseURL,
		Model:        chat.DefaultModel,
		LogLevel:     "info",
		GlamourStyle: "auto",
		ChatTimeout:  5 * time.Minute,
		Think:        true,
	}
}

// DefaultPath returns the per-user config file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "siderchat", "config.yaml")
}

// Load reads the config file at path over the defaults, then applies the
// environment. A missing file is not an error unless required is set.
func Load(path string, required bool) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err) && !required:
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	cfg.ApplyEnv(os.LookupEnv)
	return &cfg, nil
}

// ApplyEnv overlays environment variables onto the config. lookup is
// usually os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvToken); ok && v != "" {
		c.Token = v
	}
	if v, ok := lookup(EnvBaseURL); ok && v != "" {
		c.BaseURL = v
	}
	if v, ok := lookup(EnvModel); ok && v != "" {
		c.Model = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.LogLevel = v
	}
	if v, ok := lookup(EnvNoColor); ok && v != "" {
		c.NoColor = true
	}
}

// Validate reports every problem with the config at once.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Token) == "" {
		errs = append(errs, fmt.Errorf("token is required (set %s or token in the config file)", EnvToken))
	}
	if c.BaseURL == "" {
		errs = append(errs, errors.New("base_url is required"))
	} else if u, err := url.Parse(c.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("base_url %q must be an absolute http(s) URL", c.BaseURL))
	}
	if c.Model == "" {
		errs = append(errs, errors.New("model is required"))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.ChatTimeout < 0 {
		errs = append(errs, errors.New("chat_timeout must not be negative"))
	}
	switch c.GlamourStyle {
	case "", "auto", "dark", "light", "notty":
	default:
		errs = append(errs, fmt.Errorf("unknown glamour_style %q", c.GlamourStyle))
	}

	return errors.Join(errs...)
}

// RedactedToken returns the token with all but its last four characters
// masked, for display.
func (c *Config) RedactedToken() string {
	if len(c.Token) <= 4 {
		return strings.Repeat("*", len(c.Token))
	}
	return strings.Repeat("*", 8) + c.Token[len(c.Token)-4:]
}
