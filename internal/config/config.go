// Package config loads the formsubmit configuration: defaults, then an
// optional YAML file, then FORMSUBMIT_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap/zapcore"

	"github.com/goliatone/go-formsubmit/pkg/submit"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "FORMSUBMIT_"

// Submit modes.
const (
	ModeSimulate = "simulate"
	ModeHTTP     = "http"
)

type Config struct {
	Server         ServerConfig `koanf:"server"`
	Form           FormConfig   `koanf:"form"`
	Notify         NotifyConfig `koanf:"notify"`
	Submit         SubmitConfig `koanf:"submit"`
	Theme          ThemeConfig  `koanf:"theme"`
	Log            LogConfig    `koanf:"log"`
	Locale         string       `koanf:"locale"`
	ResetOnSuccess bool         `koanf:"reset_on_success"`
}

type ServerConfig struct {
	Addr           string   `koanf:"addr"`
	AllowedOrigins []string `koanf:"allowed_origins"`
}

// FormConfig points at the form definitions. Path is a YAML/JSON definition
// file or URL; OpenAPI is a document whose request bodies become forms.
// Operation narrows the OpenAPI document to one operation.
type FormConfig struct {
	Path      string `koanf:"path"`
	OpenAPI   string `koanf:"openapi"`
	Operation string `koanf:"operation"`
}

type NotifyConfig struct {
	DismissDelay time.Duration `koanf:"dismiss_delay"`
}

type SubmitConfig struct {
	Mode     string        `koanf:"mode"`
	Delay    time.Duration `koanf:"delay"`
	Endpoint string        `koanf:"endpoint"`
	Timeout  time.Duration `koanf:"timeout"`
	Encoding string        `koanf:"encoding"`
}

// ThemeConfig selects class tokens for the HTML renderer. Variants hold
// token overrides keyed by variant name.
type ThemeConfig struct {
	Name     string                       `koanf:"name"`
	Variant  string                       `koanf:"variant"`
	Tokens   map[string]string            `koanf:"tokens"`
	Variants map[string]map[string]string `koanf:"variants"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Addr: ":8080"},
		Notify: NotifyConfig{DismissDelay: 5 * time.Second},
		Submit: SubmitConfig{
			Mode:     ModeSimulate,
			Delay:    submit.DefaultSimulatedDelay,
			Timeout:  10 * time.Second,
			Encoding: string(submit.EncodingJSON),
		},
		Log:            LogConfig{Level: "info", Format: "console"},
		Locale:         "en",
		ResetOnSuccess: true,
	}
}

// sections are the nested key groups; FORMSUBMIT_SUBMIT_DELAY maps to
// submit.delay while FORMSUBMIT_RESET_ON_SUCCESS stays top level.
var sections = []string{"server", "form", "notify", "submit", "theme", "log"}

func envKey(raw string) string {
	key := strings.ToLower(strings.TrimPrefix(raw, EnvPrefix))
	for _, section := range sections {
		if strings.HasPrefix(key, section+"_") {
			return section + "." + strings.TrimPrefix(key, section+"_")
		}
	}
	return key
}

// Load reads path when non-empty, then overlays environment overrides. A
// missing file is an error.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config: access %s: %w", path, err)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("config: load env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration contains usable values.
func (c *Config) Validate() error {
	var errs []error

	switch c.Submit.Mode {
	case ModeSimulate:
		if c.Submit.Delay < 0 {
			errs = append(errs, errors.New("submit.delay must be non-negative"))
		}
	case ModeHTTP:
		if strings.TrimSpace(c.Submit.Endpoint) == "" {
			errs = append(errs, errors.New("submit.endpoint is required in http mode"))
		}
		if c.Submit.Timeout <= 0 {
			errs = append(errs, errors.New("submit.timeout must be positive"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid submit.mode %q: must be one of simulate, http", c.Submit.Mode))
	}
	if _, err := submit.ParseEncoding(c.Submit.Encoding); err != nil {
		errs = append(errs, fmt.Errorf("invalid submit.encoding %q", c.Submit.Encoding))
	}

	if c.Notify.DismissDelay <= 0 {
		errs = append(errs, errors.New("notify.dismiss_delay must be positive"))
	}
	if c.Form.Path == "" && c.Form.OpenAPI == "" {
		errs = append(errs, errors.New("form.path or form.openapi is required"))
	}
	if c.Form.Path != "" && c.Form.OpenAPI != "" {
		errs = append(errs, errors.New("form.path and form.openapi are mutually exclusive"))
	}

	if c.Theme.Variant != "" {
		if _, ok := c.Theme.Variants[c.Theme.Variant]; !ok {
			errs = append(errs, fmt.Errorf("theme.variant %q is not declared in theme.variants", c.Theme.Variant))
		}
	}

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("invalid log.level %q", c.Log.Level))
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("invalid log.format %q: must be json or console", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}
