package tui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/sahilm/fuzzy"

	"github.com/w31r4/subview/internal/browser"
	"github.com/w31r4/subview/internal/detail"
	"github.com/w31r4/subview/internal/subscription"
)

// fetchTimeout bounds a single provider call.
const fetchTimeout = 30 * time.Second

// --- 消息类型 ---

// snapshotMsg carries a snapshot; stale marks one read from the disk cache.
type snapshotMsg struct {
	snap  *subscription.Snapshot
	stale bool
}

// navigatedMsg reports a completed navigation to route.
type navigatedMsg struct{ route string }

// linkOpenedMsg reports that an external link was handed to the browser.
type linkOpenedMsg struct{ url string }

type errMsg struct{ err error }

// Navigator performs client-side navigation to a panel route.
type Navigator interface {
	Navigate(route string) error
}

// Invalidator is implemented by providers that memoise snapshots.
type Invalidator interface {
	Invalidate()
}

// Deps is everything the program needs from the outside world.
type Deps struct {
	Provider  subscription.Provider
	Options   detail.Options
	Navigator Navigator
	Opener    browser.Opener
	// UseDiskCache renders the last saved snapshot while the first fetch
	// is in flight, and saves every fresh snapshot.
	UseDiskCache bool
	// CacheKey names the controller the disk cache belongs to.
	CacheKey string
}

// model holds the application state.
type model struct {
	deps Deps

	snapshot *subscription.Snapshot
	panel    detail.Panel
	rows     []detail.Row // rows after filtering
	stale    bool
	loading  bool

	textInput textinput.Model
	viewport  viewport.Model

	err      error
	helpOpen bool
	// status is a one-line notice shown above the footer (last navigation, opened link).
	status string
}

// InitialModel returns the initial model for the program.
func InitialModel(deps Deps) model {
	ti := textinput.New()
	ti.Placeholder = "Filter fields"
	ti.CharLimit = 64
	ti.Width = 24

	vp := viewport.New(80, 20)

	return model{
		deps:      deps,
		textInput: ti,
		viewport:  vp,
		loading:   true,
	}
}

// fetchSnapshot asks the provider for a fresh snapshot.
func fetchSnapshot(p subscription.Provider) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		snap, err := p.Snapshot(ctx)
		if err != nil {
			return errMsg{err}
		}
		return snapshotMsg{snap: snap}
	}
}

// loadCachedSnapshot reads the snapshot a previous run saved for key.
func loadCachedSnapshot(key string) tea.Cmd {
	return func() tea.Msg {
		snap, err := subscription.LoadLast(key)
		if err != nil {
			if !errors.Is(err, subscription.ErrNoSnapshot) {
				log.Debug().Err(err).Msg("ignoring unreadable snapshot cache")
			}
			return nil
		}
		return snapshotMsg{snap: snap, stale: true}
	}
}

func saveSnapshot(key string, snap *subscription.Snapshot) tea.Cmd {
	return func() tea.Msg {
		if err := subscription.SaveLast(key, snap); err != nil {
			log.Debug().Err(err).Msg("could not save snapshot cache")
		}
		return nil
	}
}

func navigate(nav Navigator, route string) tea.Cmd {
	return func() tea.Msg {
		if nav != nil {
			if err := nav.Navigate(route); err != nil {
				return errMsg{err}
			}
		}
		return navigatedMsg{route: route}
	}
}

func openLink(opener browser.Opener, url string) tea.Cmd {
	return func() tea.Msg {
		if opener == nil {
			return linkOpenedMsg{url: url}
		}
		if err := opener.Open(url); err != nil {
			return errMsg{err}
		}
		return linkOpenedMsg{url: url}
	}
}

// fuzzyRowSource wraps the panel rows to implement the fuzzy.Source interface.
type fuzzyRowSource []detail.Row

// String returns the text matched for row i: label and value, so that both
// "expires" and "2025" find the expiry rows.
func (s fuzzyRowSource) String(i int) string {
	return s[i].Label + " " + s[i].Value
}

func (s fuzzyRowSource) Len() int { return len(s) }

// filterRows returns the rows matching filter, keeping the panel order.
func filterRows(rows []detail.Row, filter string) []detail.Row {
	if filter == "" {
		return rows
	}
	matches := fuzzy.FindFrom(filter, fuzzyRowSource(rows))
	keep := make(map[int]bool, len(matches))
	for _, m := range matches {
		keep[m.Index] = true
	}
	var out []detail.Row
	for i, r := range rows {
		if keep[i] {
			out = append(out, r)
		}
	}
	return out
}

// routeNavigator opens panel routes in the controller web UI.
type routeNavigator struct {
	opener browser.Opener
	base   string
}

// NewRouteNavigator returns a Navigator that opens routes under base.
// With an empty base, navigation only records the route.
func NewRouteNavigator(opener browser.Opener, base string) Navigator {
	return routeNavigator{opener: opener, base: base}
}

func (n routeNavigator) Navigate(route string) error {
	if n.base == "" || n.opener == nil {
		log.Info().Str("route", route).Msg("navigation requested without a controller URL")
		return nil
	}
	return n.opener.Open(browser.RouteURL(n.base, route))
}

// Start is the entry point for the TUI.
func Start(deps Deps) error {
	p := tea.NewProgram(InitialModel(deps), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
