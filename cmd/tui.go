package cmd

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/w31r4/subview/internal/browser"
	"github.com/w31r4/subview/internal/tui"
)

// fetchGrace is added to the controller timeout for the whole three-call fetch.
const fetchGrace = 10 * time.Second

// TUICommand returns the interactive command
func TUICommand() *cli.Command {
	return &cli.Command{
		Name:   "tui",
		Usage:  "Open the interactive subscription panel (default)",
		Action: RunTUI,
	}
}

// RunTUI starts the interactive panel. It is also the app's default action.
func RunTUI(c *cli.Context) error {
	cfg, closer, err := prepare(c, true)
	if err != nil {
		return err
	}
	defer closer.Close()

	opts, err := composeOptions(cfg)
	if err != nil {
		return err
	}

	if cfg.Snapshot.File == "-" {
		return fmt.Errorf("the interactive panel cannot read a snapshot from stdin; use show instead")
	}
	provider, err := newProvider(cfg, nil)
	if err != nil {
		return err
	}

	opener := browser.NewSystem()
	return tui.Start(tui.Deps{
		Provider:  provider,
		Options:   opts,
		Navigator: tui.NewRouteNavigator(opener, cfg.Controller.URL),
		Opener:    opener,
		// 只在连接控制器时使用磁盘缓存；快照文件本身就是离线数据。
		UseDiskCache: cfg.Snapshot.File == "",
		CacheKey:     cfg.Controller.URL,
	})
}
