package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formsubmit/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "formsubmit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	cfg := config.Default()
	require.Equal(t, ":8080", cfg.Server.Addr)
	require.Equal(t, 5*time.Second, cfg.Notify.DismissDelay)
	require.Equal(t, config.ModeSimulate, cfg.Submit.Mode)
	require.Equal(t, 2*time.Second, cfg.Submit.Delay)
	require.True(t, cfg.ResetOnSuccess)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9000"
  allowed_origins: ["https://example.com"]
form:
  path: forms/contact.yaml
notify:
  dismiss_delay: 3s
submit:
  mode: http
  endpoint: https://api.example.com/contact
  encoding: form
theme:
  name: default
  tokens:
    field.invalid: is-danger
reset_on_success: false
`)
	t.Setenv("FORMSUBMIT_SUBMIT_TIMEOUT", "2s")
	t.Setenv("FORMSUBMIT_LOG_LEVEL", "debug")
	t.Setenv("FORMSUBMIT_LOCALE", "ru")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	require.Equal(t, ":9000", cfg.Server.Addr)
	require.Equal(t, []string{"https://example.com"}, cfg.Server.AllowedOrigins)
	require.Equal(t, "forms/contact.yaml", cfg.Form.Path)
	require.Equal(t, 3*time.Second, cfg.Notify.DismissDelay)
	require.Equal(t, config.ModeHTTP, cfg.Submit.Mode)
	require.Equal(t, 2*time.Second, cfg.Submit.Timeout)
	require.Equal(t, "form", cfg.Submit.Encoding)
	require.Equal(t, "is-danger", cfg.Theme.Tokens["field.invalid"])
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, "ru", cfg.Locale)
	require.False(t, cfg.ResetOnSuccess)
	require.Equal(t, 2*time.Second, cfg.Submit.Delay, "unset keys keep their defaults")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := map[string]struct {
		mutate func(*config.Config)
		want   string
	}{
		"no form":        {func(c *config.Config) { c.Form.Path = "" }, "form.path or form.openapi is required"},
		"both forms":     {func(c *config.Config) { c.Form.OpenAPI = "api.yaml" }, "mutually exclusive"},
		"bad mode":       {func(c *config.Config) { c.Submit.Mode = "carrier-pigeon" }, `invalid submit.mode "carrier-pigeon"`},
		"http endpoint":  {func(c *config.Config) { c.Submit.Mode = config.ModeHTTP }, "submit.endpoint is required"},
		"bad encoding":   {func(c *config.Config) { c.Submit.Encoding = "xml" }, `invalid submit.encoding "xml"`},
		"zero dismissal": {func(c *config.Config) { c.Notify.DismissDelay = 0 }, "notify.dismiss_delay must be positive"},
		"bad level":      {func(c *config.Config) { c.Log.Level = "loud" }, `invalid log.level "loud"`},
		"bad format":     {func(c *config.Config) { c.Log.Format = "xml" }, `invalid log.format "xml"`},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Form.Path = "contact.yaml"
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.want)
		})
	}

	cfg := config.Default()
	cfg.Form.Path = "contact.yaml"
	require.NoError(t, cfg.Validate())
}
