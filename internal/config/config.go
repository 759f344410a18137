package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment overrides, e.g.
// SUBVIEW_CONTROLLER_URL sets controller.url.
const EnvPrefix = "SUBVIEW_"

// ErrNoSource is returned by Validate when neither a controller URL nor a
// snapshot file is configured.
var ErrNoSource = errors.New("either controller.url or snapshot.file is required")

// Config represents the application configuration.
type Config struct {
	Controller struct {
		URL      string        `koanf:"url" validate:"omitempty,url"`
		Token    string        `koanf:"token"`
		Username string        `koanf:"username"`
		Password string        `koanf:"password"`
		Timeout  time.Duration `koanf:"timeout" validate:"gte=0"`
		Insecure bool          `koanf:"insecure"`
	} `koanf:"controller"`

	Snapshot struct {
		File string `koanf:"file"`
	} `koanf:"snapshot"`

	Cache struct {
		TTL time.Duration `koanf:"ttl" validate:"gte=0"`
	} `koanf:"cache"`

	Display struct {
		Timezone   string `koanf:"timezone"`
		ContactURL string `koanf:"contact_url" validate:"omitempty,url"`
	} `koanf:"display"`

	Log struct {
		Level string `koanf:"level" validate:"oneof=trace debug info warn error disabled"`
		File  string `koanf:"file"`
	} `koanf:"log"`
}

var defaults = map[string]interface{}{
	"controller.timeout":  "30s",
	"cache.ttl":           "1m",
	"display.timezone":    "Local",
	"display.contact_url": "https://www.redhat.com/contact",
	"log.level":           "info",
}

// defaultPaths are tried in order when no explicit path is given.
var defaultPaths = []string{"./subview.toml", "$HOME/.config/subview/subview.toml", "$HOME/.subview.toml"}

// Load builds the configuration from defaults, an optional TOML file and
// SUBVIEW_* environment variables, in increasing order of precedence.
func Load(configPath string) (*Config, error) {
	var k = koanf.New(".")

	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, fmt.Errorf("error loading defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, fmt.Errorf("error loading config: %w", err)
		}
	} else {
		for _, path := range defaultPaths {
			path = os.ExpandEnv(path)
			if _, err := os.Stat(path); err == nil {
				if err := k.Load(file.Provider(path), toml.Parser()); err == nil {
					break
				}
			}
		}
	}

	// SUBVIEW_CONTROLLER_URL -> controller.url, SUBVIEW_DISPLAY_CONTACT_URL -> display.contact_url
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("error loading environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}
	return &cfg, nil
}

// envKey maps SUBVIEW_SECTION_SOME_KEY to section.some_key: the first
// underscore separates the section, the rest stay part of the key.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.Replace(key, "_", ".", 1)
}

var validate = validator.New()

// Validate checks field formats and that a snapshot source is configured.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.Controller.URL == "" && cfg.Snapshot.File == "" {
		return ErrNoSource
	}
	if _, err := cfg.Location(); err != nil {
		return fmt.Errorf("invalid display.timezone: %w", err)
	}
	return nil
}

// Location resolves display.timezone. "" and "Local" mean the system zone.
func (c *Config) Location() (*time.Location, error) {
	switch c.Display.Timezone {
	case "", "Local":
		return time.Local, nil
	default:
		return time.LoadLocation(c.Display.Timezone)
	}
}

const sampleConfig = `# subview configuration

[controller]
url = "https://controller.example.com"
token = "your-oauth2-token"
# username = "admin"
# password = "secret"
timeout = "30s"
insecure = false

[snapshot]
# Render a saved snapshot instead of calling the controller.
# file = "snapshot.json"

[cache]
ttl = "1m"

[display]
timezone = "Local"
contact_url = "https://www.redhat.com/contact"

[log]
level = "info"
# file = "/tmp/subview.log"
`

// InitConfig writes a sample configuration file to configPath.
func InitConfig(configPath string) error {
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("configuration file already exists at %s", configPath)
	}
	return os.WriteFile(configPath, []byte(sampleConfig), 0o600)
}
