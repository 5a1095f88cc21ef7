package tracing

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
)

// renderHealth/renderWarningCount follow display/widgets/status.go's
// dot-plus-text rendering, retargeted from collector health strings to
// component liveness and ingest warning counts.
func renderHealth(alive bool) string {
	if alive {
		return lipgloss.NewStyle().Foreground(colorOK).Render("●") + " alive"
	}
	return lipgloss.NewStyle().Foreground(colorDanger).Render("●") + " dead"
}

func renderWarningCount(n int) string {
	s := strconv.Itoa(n)
	if n == 0 {
		return lipgloss.NewStyle().Foreground(colorOK).Render(s)
	}
	return lipgloss.NewStyle().Foreground(colorWarn).Render(s)
}
