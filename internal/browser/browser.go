// Package browser hands routes and external links to the desktop browser.
package browser

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"strings"

	"github.com/rs/zerolog/log"
)

// Opener opens a URL in a new browsing context.
type Opener interface {
	Open(rawURL string) error
}

// System opens URLs with the platform's default handler.
type System struct {
	// run is swapped out by tests.
	run func(name string, args ...string) error
}

func NewSystem() *System {
	return &System{run: func(name string, args ...string) error {
		_, err := startDetached(exec.Command(name, args...))
		return err
	}}
}

// startDetached starts cmd and reaps it in the background so launchers
// like xdg-open do not linger as zombies. The channel yields Wait's result.
func startDetached(cmd *exec.Cmd) (<-chan error, error) {
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()
	return done, nil
}

func (s *System) Open(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("refusing to open %q: not an http(s) URL", rawURL)
	}
	name, args := command(runtime.GOOS, u.String())
	log.Debug().Str("url", u.String()).Str("cmd", name).Msg("opening browser")
	return s.run(name, args...)
}

func command(goos, target string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{target}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", target}
	default:
		return "xdg-open", []string{target}
	}
}

// RouteURL maps a panel route onto the controller's web UI, which uses
// hash routing (https://controller/#/settings/subscription/edit).
func RouteURL(base, route string) string {
	return strings.TrimRight(base, "/") + "/#" + route
}
