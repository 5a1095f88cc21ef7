package tracing

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/jokolay/jokolay/internal/format"
)

// Tab identifies which tab is currently active, mirroring
// display/tui/app.go's Tab type.
type Tab int

const (
	TabComponents Tab = iota
	TabGameState
	TabIngest
	tabCount
)

var tabNames = map[Tab]string{
	TabComponents: "Components",
	TabGameState:  "Game State",
	TabIngest:     "Ingest",
}

// Model is the top-level Bubbletea model for the tracing dashboard.
type Model struct {
	activeTab Tab
	width     int
	height    int
	ready     bool

	snapshot Snapshot

	viewport viewport.Model
	help     help.Model
	showHelp bool
	zone     *zone.Manager
}

// NewModel returns an initialized Model with TabComponents active.
func NewModel() Model {
	h := help.New()
	h.ShowAll = false
	return Model{
		activeTab: TabComponents,
		help:      h,
		zone:      zone.New(),
	}
}

// snapshotMsg carries a pushed Snapshot into the bubbletea event loop. The
// host feeds updates via a *tea.Program's Send, the same way the teacher's
// collectors push dataRefreshMsg in from outside Update.
type snapshotMsg Snapshot

// Feed wraps snap for delivery via (*tea.Program).Send.
func Feed(snap Snapshot) tea.Msg { return snapshotMsg(snap) }

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Help):
			m.showHelp = !m.showHelp
			m.help.ShowAll = m.showHelp
			return m, nil
		case key.Matches(msg, keys.NextTab):
			m.activeTab = (m.activeTab + 1) % tabCount
			m.refreshViewport()
		case key.Matches(msg, keys.PrevTab):
			m.activeTab = (m.activeTab - 1 + tabCount) % tabCount
			m.refreshViewport()
		case key.Matches(msg, keys.Tab1):
			m.activeTab = TabComponents
			m.refreshViewport()
		case key.Matches(msg, keys.Tab2):
			m.activeTab = TabGameState
			m.refreshViewport()
		case key.Matches(msg, keys.Tab3):
			m.activeTab = TabIngest
			m.refreshViewport()
		default:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			if cmd != nil {
				cmds = append(cmds, cmd)
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.help.Width = msg.Width
		m.viewport = viewport.New(msg.Width, m.contentHeight())
		m.viewport.MouseWheelEnabled = true
		m.refreshViewport()

	case tea.MouseMsg:
		for i := Tab(0); i < tabCount; i++ {
			if m.zone.Get(tabZoneID(i)).InBounds(msg) {
				if m.activeTab != i {
					m.activeTab = i
					m.refreshViewport()
				}
				return m, nil
			}
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}

	case snapshotMsg:
		m.snapshot = Snapshot(msg)
		m.refreshViewport()
	}

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	header := m.renderHeader()
	content := m.viewport.View()
	footer := m.renderFooter()
	return m.zone.Scan(lipgloss.JoinVertical(lipgloss.Left, header, content, footer))
}

func (m Model) contentHeight() int {
	reserved := 5
	if m.showHelp {
		reserved += 3
	}
	h := m.height - reserved
	if h < 1 {
		h = 1
	}
	return h
}

func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	h := m.contentHeight()
	m.viewport.Width = m.width
	m.viewport.Height = h

	var content string
	switch m.activeTab {
	case TabComponents:
		content = renderComponentsTab(m.snapshot)
	case TabGameState:
		content = renderGameStateTab(m.snapshot)
	case TabIngest:
		content = renderIngestTab(m.snapshot)
	}
	m.viewport.SetContent(styleContent.Width(m.width).Render(content))
}

func tabZoneID(t Tab) string { return fmt.Sprintf("tab-%d", t) }

func (m Model) renderHeader() string {
	var tabs []string
	for i := Tab(0); i < tabCount; i++ {
		name := tabNames[i]
		var rendered string
		if i == m.activeTab {
			rendered = styleActiveTab.Render(name)
		} else {
			rendered = styleInactiveTab.Render(name)
		}
		tabs = append(tabs, m.zone.Mark(tabZoneID(i), rendered))
	}
	return styleHeader.Width(m.width).Render(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
}

func (m Model) renderFooter() string {
	helpView := m.help.View(keys)

	right := "no data"
	if !m.snapshot.UpdatedAt.IsZero() {
		right = fmt.Sprintf("Updated: %s", m.snapshot.UpdatedAt.Format("15:04:05"))
	}

	leftWidth := lipgloss.Width(helpView)
	rightWidth := lipgloss.Width(right)
	gap := m.width - leftWidth - rightWidth
	if gap < 1 {
		gap = 1
	}
	padding := lipgloss.NewStyle().Width(gap).Render("")
	line := helpView + padding + lipgloss.NewStyle().Foreground(colorMuted).Render(right)
	return styleFooter.Width(m.width).Render(line)
}

func renderComponentsTab(snap Snapshot) string {
	if len(snap.Components) == 0 {
		return "no components reporting yet"
	}
	var b strings.Builder
	b.WriteString(styleTitle.Render("Component health") + "\n\n")
	for _, c := range snap.Components {
		fmt.Fprintf(&b, "%-20s %s  (last tick %s)\n", c.Name, renderHealth(c.Alive), formatAge(c.LastTick))
	}
	return b.String()
}

func renderGameStateTab(snap Snapshot) string {
	rec := snap.GameState
	if rec == nil || !rec.Alive {
		return styleTitle.Render("Game state") + "\n\nnot connected"
	}
	var b strings.Builder
	b.WriteString(styleTitle.Render("Game state") + "\n\n")
	fmt.Fprintf(&b, "character: %s\n", rec.Identity.Name)
	fmt.Fprintf(&b, "map: %d\n", rec.MapID)
	fmt.Fprintf(&b, "position: %.1f %.1f %.1f\n", rec.PlayerPos.X, rec.PlayerPos.Y, rec.PlayerPos.Z)
	fmt.Fprintf(&b, "mount: %d\n", rec.Mount)
	return b.String()
}

func renderIngestTab(snap Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  warnings: %s\n\n", styleTitle.Render("Ingest"), renderWarningCount(len(snap.IngestWarnings)))
	for _, w := range snap.IngestWarnings {
		b.WriteString("- " + format.TruncateWithEllipsis(w, 100) + "\n")
	}
	return b.String()
}

func formatAge(t time.Time) string {
	return format.FormatTimeSince(t)
}
