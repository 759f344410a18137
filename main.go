package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/w31r4/subview/cmd"
)

const (
	version = "0.1.0"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "subview",
		Usage:   "Show Automation Platform subscription details in the terminal",
		Version: version,
		Flags:   cmd.GlobalFlags(),
		Action:  cmd.RunTUI,
		Commands: []*cli.Command{
			cmd.TUICommand(),
			cmd.ShowCommand(),
			cmd.ConfigCommand(),
		},
	}
}
