package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/w31r4/subview/internal/detail"
	"github.com/w31r4/subview/internal/subscription"
)

// --- UI 样式定义 ---
// 使用 `charmbracelet/lipgloss` 集中定义所有样式，便于复用和调整主题。
var (
	// docStyle 是整个窗口的基础样式，定义了外边距。
	docStyle = lipgloss.NewStyle().Margin(0, 1)
	// faintStyle 用于帮助文本、提示等次要信息。
	faintStyle = lipgloss.NewStyle().Faint(true)
	// paneStyle 是所有面板的基础样式：圆角边框加内边距。
	paneStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)

	tabStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Padding(0, 1)
	activeTabStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true).Underline(true).Padding(0, 1)

	detailPaneStyle  = paneStyle.Copy().BorderForeground(lipgloss.Color("63")).Padding(1, 2)
	detailLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true).Align(lipgloss.Right)
	detailValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	// detailMetricStyle highlights host counters.
	detailMetricStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	timeStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("87"))
	helperStyle       = faintStyle.Copy().Italic(true)

	// 合规状态：绿色带勾，不合规为红色感叹号。
	positiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Bold(true)
	negativeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)

	linkStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Underline(true)
	actionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("62")).Padding(0, 1)
	staleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))

	errorTitleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	errorPaneStyle    = paneStyle.Copy().BorderForeground(lipgloss.Color("9")).Width(70).Padding(1, 2)
	errorHelpStyle    = faintStyle.Copy().MarginTop(1)
	errorMessageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))

	helpTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	helpPaneStyle  = paneStyle.Copy().BorderForeground(lipgloss.Color("12")).Width(70).Padding(1, 2)
)

const (
	minLabelWidth = 12
	maxLabelWidth = 32
)

// View 根据当前状态渲染整个界面，是一个没有副作用的纯函数。
// 优先级：错误 > 帮助 > 加载中 > 面板。
func (m model) View() string {
	if m.err != nil {
		return m.renderErrorView()
	}
	if m.helpOpen {
		return m.renderHelpView()
	}
	if m.snapshot == nil {
		return docStyle.Render("Loading subscription details...")
	}

	pane := detailPaneStyle.Render(m.viewport.View())
	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), pane, m.renderFooter()))
}

// renderHeader 渲染标签页、状态标记与过滤输入框。
func (m model) renderHeader() string {
	var tabs []string
	for _, t := range m.panel.Tabs {
		name := t.Name
		if t.Back {
			name = "◂ " + name
		}
		if t.Current {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, tabStyle.Render(name))
		}
	}
	line := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	var badges []string
	if m.loading {
		badges = append(badges, faintStyle.Render("refreshing…"))
	}
	if m.stale {
		badges = append(badges, staleStyle.Render("(cached)"))
	}
	if len(badges) > 0 {
		line += " " + strings.Join(badges, " ")
	}

	if m.textInput.Focused() || m.textInput.Value() != "" {
		count := faintStyle.Render(fmt.Sprintf("(%d/%d)", len(m.rows), len(m.panel.Rows)))
		line = lipgloss.JoinVertical(lipgloss.Left, line, fmt.Sprintf("Filter %s: %s", count, m.textInput.View()))
	}
	return line
}

// renderFooter renders the call-to-action, the actions and the key help.
func (m model) renderFooter() string {
	cta := m.panel.CallToAction
	lines := []string{
		detailValueStyle.Render(cta.Prefix) + linkStyle.Render(cta.Link.Text) + faintStyle.Render(" (c: "+cta.Link.URL+")"),
	}

	if a, ok := m.panel.Action(detail.IDEdit); ok {
		lines = append(lines, actionStyle.Render(a.Label)+faintStyle.Render(" e"))
	}
	if m.status != "" {
		lines = append(lines, statusStyle.Render(m.status))
	}

	var help string
	if m.textInput.Focused() {
		help = faintStyle.Render(" enter/esc to exit filter")
	} else {
		keys := []string{"?: help", "/: filter", "c: contact", "b: back", "ctrl+r: refresh", "q: quit"}
		if _, ok := m.panel.Action(detail.IDEdit); ok {
			keys = append([]string{"e: edit"}, keys...)
		}
		help = faintStyle.Render(strings.Join(keys, " • "))
	}
	lines = append(lines, help)
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// renderErrorView 渲染错误覆盖层。
func (m model) renderErrorView() string {
	title := errorTitleStyle.Render("Something went wrong")
	body := errorPaneStyle.Render(errorMessageStyle.Render(friendlyErrorMessage(m.err)))
	help := errorHelpStyle.Render(" esc: dismiss • q: quit")
	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, body, help))
}

// renderHelpView 渲染帮助覆盖层。
func (m model) renderHelpView() string {
	lines := []string{
		"Subscription details:",
		"  up/down (j/k), pgup/pgdn: scroll",
		"  /: filter fields • esc: clear filter",
		"  c: open the contact link in your browser",
		"  b: back to settings",
		"  ctrl+r: refresh from the controller",
	}
	if _, ok := m.panel.Action(detail.IDEdit); ok {
		lines = append(lines, "  e: edit the subscription")
	}
	lines = append(lines, "  q/ctrl+c: quit • ?: close help")

	title := helpTitleStyle.Render("Help / Commands")
	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, helpPaneStyle.Render(strings.Join(lines, "\n"))))
}

// formatPanel 把面板行排版为带右对齐标签列、可自动换行的文本。
// contentWidth 为 viewport 的内容宽度。
func formatPanel(rows []detail.Row, contentWidth int) string {
	if len(rows) == 0 {
		return faintStyle.Render("No matching fields...")
	}
	if contentWidth <= 0 {
		contentWidth = 80
	}

	labelWidth := computeLabelWidth(rows, contentWidth)
	valueColumnStart := labelWidth + 1
	valueWidth := contentWidth - valueColumnStart
	continuationPrefix := strings.Repeat(" ", valueColumnStart)

	var out []string
	for _, r := range rows {
		labelCell := detailLabelStyle.Copy().Width(labelWidth).Render(r.Label + ":")
		style := valueStyleFor(r)
		text := decorateValue(r)

		// 极窄窗口下不做 value 列换行。
		if valueWidth <= 0 {
			out = append(out, lipgloss.JoinHorizontal(lipgloss.Top, labelCell, " ", style.Render(text)))
			continue
		}

		wrapped := wrapPlainText(text, valueWidth)
		out = append(out, lipgloss.JoinHorizontal(lipgloss.Top, labelCell, " ", style.Render(wrapped[0])))
		for _, cont := range wrapped[1:] {
			out = append(out, continuationPrefix+style.Render(cont))
		}

		if r.Helper != "" {
			for _, hl := range wrapPlainText(r.Helper, valueWidth) {
				out = append(out, continuationPrefix+helperStyle.Render(hl))
			}
		}
	}
	return strings.Join(out, "\n")
}

func computeLabelWidth(rows []detail.Row, contentWidth int) int {
	// 标签列：最小 12，按最长标签增大，但至少给 value 列留 1 列。
	maxPossible := max(1, contentWidth-1)
	lo := min(minLabelWidth, maxPossible)
	hi := min(maxLabelWidth, maxPossible)

	width := lo
	for _, r := range rows {
		if w := lipgloss.Width(r.Label + ":"); w > width {
			width = w
		}
	}
	return min(max(width, lo), hi)
}

func decorateValue(r detail.Row) string {
	switch r.Tone {
	case detail.TonePositive:
		return "✓ " + r.Value
	case detail.ToneNegative:
		return "! " + r.Value
	default:
		return r.Value
	}
}

func valueStyleFor(r detail.Row) lipgloss.Style {
	switch r.Tone {
	case detail.TonePositive:
		return positiveStyle
	case detail.ToneNegative:
		return negativeStyle
	}
	switch r.ID {
	case detail.IDHostsAutomated, detail.IDHostsImported, detail.IDHostsRemaining,
		detail.IDHostsDeleted, detail.IDHostsReactivated, detail.IDHostsAvailable,
		detail.IDUnlimitedHostsAvailable, detail.IDDaysRemaining:
		return detailMetricStyle
	case detail.IDExpiresOn, detail.IDExpiresOnUTC:
		return timeStyle
	default:
		return detailValueStyle
	}
}

func wrapPlainText(text string, width int) []string {
	txt := strings.TrimSpace(text)
	if txt == "" {
		return []string{""}
	}
	if width <= 0 {
		return []string{txt}
	}

	var lines []string
	var current string

	flush := func() {
		if current != "" {
			lines = append(lines, current)
			current = ""
		}
	}

	for _, word := range strings.Fields(txt) {
		parts := []string{word}
		if lipgloss.Width(word) > width {
			parts = splitLongToken(word, width)
		}

		for _, part := range parts {
			if current == "" {
				current = part
				continue
			}
			candidate := current + " " + part
			if lipgloss.Width(candidate) <= width {
				current = candidate
				continue
			}
			flush()
			current = part
		}
	}

	flush()
	return lines
}

func splitLongToken(token string, width int) []string {
	if width <= 0 {
		return []string{token}
	}

	var out []string
	var b strings.Builder
	curWidth := 0

	flush := func() {
		if b.Len() > 0 {
			out = append(out, b.String())
			b.Reset()
			curWidth = 0
		}
	}

	for _, r := range token {
		ch := string(r)
		w := lipgloss.Width(ch)
		if curWidth > 0 && curWidth+w > width {
			flush()
		}
		b.WriteString(ch)
		curWidth += w
		if curWidth >= width {
			flush()
		}
	}

	flush()
	return out
}

// friendlyErrorMessage 把原始错误转换为带提示的、更友好的消息。
func friendlyErrorMessage(err error) string {
	if err == nil {
		return "(n/a)"
	}

	raw := strings.TrimSpace(err.Error())
	lower := strings.ToLower(raw)

	switch {
	case errors.Is(err, subscription.ErrUnauthorized):
		return fmt.Sprintf("%s\n\nHint: Check controller.token (or username/password) in your config.", raw)
	case strings.Contains(lower, "connection refused") || strings.Contains(lower, "no such host"):
		return fmt.Sprintf("%s\n\nHint: Is controller.url correct and reachable? Refresh with ctrl+r.", raw)
	case strings.Contains(lower, "deadline exceeded") || strings.Contains(lower, "timeout"):
		return fmt.Sprintf("%s\n\nHint: The controller is slow to answer. Try again or raise controller.timeout.", raw)
	case strings.Contains(lower, "not found") || strings.Contains(lower, "no such file"):
		return fmt.Sprintf("%s\n\nHint: Check the controller URL or the snapshot file path.", raw)
	default:
		return raw
	}
}
