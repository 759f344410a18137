package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "subview.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "")
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.Controller.Timeout)
	assert.Equal(t, time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "Local", cfg.Display.Timezone)
	assert.Equal(t, "https://www.redhat.com/contact", cfg.Display.ContactURL)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := writeConfig(t, `
[controller]
url = "https://controller.example.com"
token = "from-file"
timeout = "5s"

[display]
timezone = "UTC"
`)
	t.Setenv("SUBVIEW_CONTROLLER_TOKEN", "from-env")
	t.Setenv("SUBVIEW_DISPLAY_CONTACT_URL", "https://example.com/contact")
	t.Setenv("SUBVIEW_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://controller.example.com", cfg.Controller.URL)
	assert.Equal(t, "from-env", cfg.Controller.Token)
	assert.Equal(t, 5*time.Second, cfg.Controller.Timeout)
	assert.Equal(t, "UTC", cfg.Display.Timezone)
	assert.Equal(t, "https://example.com/contact", cfg.Display.ContactURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	require.NoError(t, Validate(cfg))

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "controller.url", envKey("SUBVIEW_CONTROLLER_URL"))
	assert.Equal(t, "display.contact_url", envKey("SUBVIEW_DISPLAY_CONTACT_URL"))
	assert.Equal(t, "log.level", envKey("SUBVIEW_LOG_LEVEL"))
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := Load(writeConfig(t, ""))
		require.NoError(t, err)
		return cfg
	}

	cfg := base()
	assert.ErrorIs(t, Validate(cfg), ErrNoSource)

	cfg = base()
	cfg.Snapshot.File = "snap.json"
	assert.NoError(t, Validate(cfg))

	cfg = base()
	cfg.Controller.URL = "not a url"
	assert.Error(t, Validate(cfg))

	cfg = base()
	cfg.Snapshot.File = "snap.json"
	cfg.Log.Level = "loud"
	assert.Error(t, Validate(cfg))

	cfg = base()
	cfg.Snapshot.File = "snap.json"
	cfg.Display.Timezone = "Mars/Olympus_Mons"
	assert.Error(t, Validate(cfg))
}

func TestInitConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subview.toml")
	require.NoError(t, InitConfig(path))
	assert.Error(t, InitConfig(path), "second init must not overwrite")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://controller.example.com", cfg.Controller.URL)
	assert.NoError(t, Validate(cfg))
}

func TestShouldRedactKey(t *testing.T) {
	cases := []struct {
		key  string
		want bool
	}{
		{"controller.token", true},
		{"controller.password", true},
		{"controller.apitoken", true},
		{"controller.url", false},
		{"controller.username", false},
		{"display.timezone", false},
		{"log.file", false},
	}
	for _, tc := range cases {
		assert.Equalf(t, tc.want, shouldRedactKey(tc.key), "shouldRedactKey(%q)", tc.key)
	}
}

func TestEntriesRedaction(t *testing.T) {
	cfg := &Config{}
	cfg.Controller.Token = "s3cret"
	cfg.Controller.Username = "admin"

	byKey := func(entries []Entry) map[string]string {
		m := make(map[string]string, len(entries))
		for _, e := range entries {
			m[e.Key] = e.Value
		}
		return m
	}

	redacted := byKey(Entries(cfg, false))
	assert.Equal(t, redactedValue, redacted["controller.token"])
	assert.Equal(t, "", redacted["controller.password"])
	assert.Equal(t, "admin", redacted["controller.username"])

	revealed := byKey(Entries(cfg, true))
	assert.Equal(t, "s3cret", revealed["controller.token"])
}
