package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the runtime settings shared by the binaries. Flags may
// override individual fields after Load.
type Config struct {
	Addr          string        `env:"FORMFILL_ADDR" envDefault:":8080"`
	BasePath      string        `env:"FORMFILL_BASE_PATH" envDefault:"/isa-form"`
	BackendURL    string        `env:"FORMFILL_BACKEND_URL"`
	ServiceID     string        `env:"FORMFILL_SERVICE_ID" envDefault:"form_script"`
	FormsDir      string        `env:"FORMFILL_FORMS_DIR" envDefault:"forms"`
	Timeout       time.Duration `env:"FORMFILL_TIMEOUT" envDefault:"15s"`
	RedirectDelay time.Duration `env:"FORMFILL_REDIRECT_DELAY" envDefault:"3s"`
	PublicOrigin  string        `env:"FORMFILL_PUBLIC_ORIGIN"`
	LogLevel      string        `env:"FORMFILL_LOG_LEVEL" envDefault:"info"`
	LogFormat     string        `env:"FORMFILL_LOG_FORMAT" envDefault:"text"`
	OptionCheck   bool          `env:"FORMFILL_OPTION_CHECK" envDefault:"false"`
}

// Load reads the process environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}
	return cfg.normalize()
}

// LoadFrom reads settings from environ instead of the process environment.
func LoadFrom(environ map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}
	return cfg.normalize()
}

func (c Config) normalize() (Config, error) {
	c.BasePath = NormalizeBasePath(c.BasePath)
	c.BackendURL = strings.TrimSpace(c.BackendURL)
	c.PublicOrigin = strings.TrimRight(strings.TrimSpace(c.PublicOrigin), "/")
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks values env tags cannot express.
func (c Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("config: timeout must be positive, got %s", c.Timeout)
	}
	if c.RedirectDelay < 0 {
		return fmt.Errorf("config: redirect delay must not be negative, got %s", c.RedirectDelay)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("config: unknown log format %q", c.LogFormat)
	}
	return nil
}

// UsesMemoryBackend reports whether no remote backend is configured.
func (c Config) UsesMemoryBackend() bool {
	return c.BackendURL == ""
}

// Logger builds the structured logger described by LogLevel and LogFormat.
func (c Config) Logger(w io.Writer) (*slog.Logger, error) {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

// NormalizeBasePath returns "" for the root or "/segment" without a trailing
// slash.
func NormalizeBasePath(raw string) string {
	trimmed := strings.Trim(strings.TrimSpace(raw), "/")
	if trimmed == "" {
		return ""
	}
	return "/" + trimmed
}

func parseLevel(raw string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(raw))); err != nil {
		return 0, fmt.Errorf("config: log level %q: %w", raw, err)
	}
	return level, nil
}
