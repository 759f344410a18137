package cmd

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/w31r4/subview/internal/detail"
	"github.com/w31r4/subview/internal/render"
)

// ShowCommand returns the show command
func ShowCommand() *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: "Print the subscription details once and exit",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output format: table or json",
				Value:   "table",
			},
			&cli.BoolFlag{
				Name:  "show-ids",
				Usage: "Include row identifiers in table output",
			},
		},
		Action: runShow,
	}
}

func runShow(c *cli.Context) error {
	output := c.String("output")
	if output != "table" && output != "json" {
		return fmt.Errorf("unknown output format %q (want table or json)", output)
	}

	cfg, closer, err := prepare(c, false)
	if err != nil {
		return err
	}
	defer closer.Close()

	opts, err := composeOptions(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Context, cfg.Controller.Timeout+fetchGrace)
	defer cancel()

	provider, err := newProvider(cfg, c.App.Reader)
	if err != nil {
		return err
	}
	snap, err := provider.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch subscription: %w", err)
	}

	panel := detail.Compose(*snap, opts)
	if output == "json" {
		return render.JSON(c.App.Writer, panel)
	}
	return render.Table(c.App.Writer, panel, c.Bool("show-ids"))
}
