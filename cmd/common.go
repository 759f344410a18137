package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/w31r4/subview/internal/config"
	"github.com/w31r4/subview/internal/detail"
	"github.com/w31r4/subview/internal/logging"
	"github.com/w31r4/subview/internal/subscription"
)

// GlobalFlags are shared by every command.
func GlobalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Load configuration from `FILE`",
		},
		&cli.StringFlag{
			Name:  "url",
			Usage: "Controller base URL (overrides controller.url)",
		},
		&cli.StringFlag{
			Name:  "token",
			Usage: "OAuth2 token (overrides controller.token)",
		},
		&cli.StringFlag{
			Name:  "snapshot",
			Usage: "Render a saved JSON/YAML snapshot from `FILE` instead of calling the controller",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "trace, debug, info, warn, error or disabled",
		},
		&cli.StringFlag{
			Name:  "log-file",
			Usage: "Append logs to `FILE`",
		},
	}
}

// loadConfig loads the configuration and applies flag overrides on top.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if v := c.String("url"); v != "" {
		cfg.Controller.URL = v
	}
	if v := c.String("token"); v != "" {
		cfg.Controller.Token = v
	}
	if v := c.String("snapshot"); v != "" {
		cfg.Snapshot.File = v
	}
	if v := c.String("log-level"); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
	if v := c.String("log-file"); v != "" {
		cfg.Log.File = v
	}
	return cfg, nil
}

// prepare loads and validates the configuration and sets up logging.
// The returned closer flushes the log file, if any.
func prepare(c *cli.Context, interactive bool) (*config.Config, io.Closer, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, nil, err
	}

	closer, err := logging.Setup(cfg.Log.Level, cfg.Log.File, interactive)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logging: %w", err)
	}
	return cfg, closer, nil
}

// newProvider picks the snapshot source: a file wins over the controller.
// The file "-" reads one JSON snapshot from stdin.
func newProvider(cfg *config.Config, stdin io.Reader) (subscription.Provider, error) {
	if cfg.Snapshot.File == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read snapshot from stdin: %w", err)
		}
		snap, err := subscription.Decode(data, subscription.FormatJSON)
		if err != nil {
			return nil, fmt.Errorf("failed to decode snapshot from stdin: %w", err)
		}
		return subscription.NewStaticProvider(*snap), nil
	}
	if cfg.Snapshot.File != "" {
		log.Debug().Str("file", cfg.Snapshot.File).Msg("reading snapshot from file")
		return subscription.NewFileProvider(cfg.Snapshot.File), nil
	}

	log.Debug().Str("url", cfg.Controller.URL).Dur("ttl", cfg.Cache.TTL).Msg("reading snapshot from controller")
	return subscription.NewCachedProvider(subscription.NewHTTPProvider(subscription.HTTPOptions{
		BaseURL:  cfg.Controller.URL,
		Token:    cfg.Controller.Token,
		Username: cfg.Controller.Username,
		Password: cfg.Controller.Password,
		Timeout:  cfg.Controller.Timeout,
		Insecure: cfg.Controller.Insecure,
	}), cfg.Cache.TTL), nil
}

func composeOptions(cfg *config.Config) (detail.Options, error) {
	loc, err := cfg.Location()
	if err != nil {
		return detail.Options{}, fmt.Errorf("invalid display.timezone: %w", err)
	}
	return detail.Options{Location: loc, ContactURL: cfg.Display.ContactURL}, nil
}
