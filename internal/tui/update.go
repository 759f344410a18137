package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"

	"github.com/w31r4/subview/internal/detail"
	"github.com/w31r4/subview/internal/subscription"
)

// Init 在程序首次运行时调用：先尝试渲染上一次缓存的快照，同时发起实时拉取。
func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{fetchSnapshot(m.deps.Provider)}
	if m.deps.UseDiskCache {
		cmds = append(cmds, loadCachedSnapshot(m.deps.CacheKey))
	}
	return tea.Batch(cmds...)
}

// Update handles every message and returns the next model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	// 1. 快照到达：缓存的快照只在还没有实时数据时使用。
	case snapshotMsg:
		if msg.snap == nil {
			return m, nil
		}
		if msg.stale && m.snapshot != nil && !m.stale {
			return m, nil
		}
		m.setSnapshot(msg.snap, msg.stale)
		if !msg.stale {
			m.loading = false
			if m.deps.UseDiskCache {
				return m, saveSnapshot(m.deps.CacheKey, msg.snap)
			}
		}
		return m, nil

	case navigatedMsg:
		m.status = "Navigated to " + msg.route
		return m, nil

	case linkOpenedMsg:
		m.status = "Opened " + msg.url
		return m, nil

	// 2. 错误：保留最后一次成功的面板，只叠加错误视图。
	case errMsg:
		log.Error().Err(msg.err).Msg("subscription panel error")
		m.err = msg.err
		m.loading = false
		return m, nil

	case tea.KeyMsg:
		if m.helpOpen {
			switch msg.String() {
			case "?", "esc":
				m.helpOpen = false
			case "ctrl+c", "q":
				return m, tea.Quit
			}
			return m, nil
		}

		if m.err != nil {
			switch msg.String() {
			case "esc":
				m.err = nil
			case "ctrl+c", "q":
				return m, tea.Quit
			}
			return m, nil
		}

		if m.textInput.Focused() {
			switch msg.String() {
			case "enter", "esc":
				m.textInput.Blur()
			}
			m.textInput, cmd = m.textInput.Update(msg)
			m.applyFilter()
			return m, cmd
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "ctrl+r":
			if inv, ok := m.deps.Provider.(Invalidator); ok {
				inv.Invalidate()
			}
			m.loading = true
			m.status = ""
			return m, fetchSnapshot(m.deps.Provider)
		case "?":
			m.helpOpen = true
			return m, nil
		case "/":
			return m, m.textInput.Focus()
		case "esc":
			if m.textInput.Value() != "" {
				m.textInput.SetValue("")
				m.applyFilter()
			}
			return m, nil
		case "e":
			// 只有超级用户的面板上才会有 Edit 操作。
			if a, ok := m.panel.Action(detail.IDEdit); ok {
				return m, navigate(m.deps.Navigator, a.Route)
			}
			return m, nil
		case "b":
			if tab, ok := m.panel.BackTab(); ok {
				return m, navigate(m.deps.Navigator, tab.Route)
			}
			return m, nil
		case "c":
			if m.snapshot != nil {
				return m, openLink(m.deps.Opener, m.panel.CallToAction.Link.URL)
			}
			return m, nil
		}
	}

	// 其余按键（方向键、翻页）交给 viewport 处理滚动。
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// setSnapshot recomposes the panel from snap. Composition is pure, so
// re-rendering the same snapshot yields the same panel.
func (m *model) setSnapshot(snap *subscription.Snapshot, stale bool) {
	m.snapshot = snap
	m.stale = stale
	m.panel = detail.Compose(*snap, m.deps.Options)
	m.applyFilter()
}

// applyFilter re-filters the rows and redraws the viewport content.
func (m *model) applyFilter() {
	m.rows = filterRows(m.panel.Rows, strings.TrimSpace(m.textInput.Value()))
	m.refreshViewport()
}

// resize 根据终端大小重新计算 viewport：扣除头部、底部以及面板边框占用的行列。
func (m *model) resize(width, height int) {
	frameW, frameH := detailPaneStyle.GetFrameSize()
	docW, docH := docStyle.GetFrameSize()
	chrome := lipgloss.Height(m.renderHeader()) + lipgloss.Height(m.renderFooter()) + 1

	m.viewport.Width = max(20, width-frameW-docW)
	m.viewport.Height = max(3, height-frameH-docH-chrome)
	m.refreshViewport()
}

func (m *model) refreshViewport() {
	if m.snapshot == nil {
		return
	}
	m.viewport.SetContent(formatPanel(m.rows, m.viewport.Width))
}
