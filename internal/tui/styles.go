package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var (
	primary = lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#60A5FA"}
	muted   = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
	danger  = lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#F87171"}
	warn    = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#FBBF24"}

	titleStyle        = lipgloss.NewStyle().Bold(true).Foreground(primary)
	tabStyle          = lipgloss.NewStyle().Padding(0, 1).Foreground(muted)
	activeTabStyle    = lipgloss.NewStyle().Padding(0, 1).Bold(true).Underline(true).Foreground(primary)
	headerStyle       = lipgloss.NewStyle().Bold(true)
	gutterStyle       = lipgloss.NewStyle().Foreground(muted)
	cursorStyle       = lipgloss.NewStyle().Reverse(true)
	selectedStyle     = lipgloss.NewStyle().Background(lipgloss.AdaptiveColor{Light: "#DBEAFE", Dark: "#1E3A8A"})
	statusStyle       = lipgloss.NewStyle().Foreground(muted)
	noticeStyle       = lipgloss.NewStyle().Foreground(warn)
	labelStyle        = lipgloss.NewStyle().Width(12).Foreground(muted)
	focusLabelStyle   = lipgloss.NewStyle().Width(12).Bold(true).Foreground(primary)
	dialogStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(1, 2)
	errorTitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(danger)
	warnTitleStyle    = lipgloss.NewStyle().Bold(true).Foreground(warn)
	confirmTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(primary)
)

// SetColor enables or disables colored output for every style.
func SetColor(enabled bool) {
	if enabled {
		lipgloss.SetColorProfile(termenv.EnvColorProfile())
		return
	}
	lipgloss.SetColorProfile(termenv.Ascii)
}

// colorProfile is the profile plot frames are rendered with.
func colorProfile() termenv.Profile {
	return lipgloss.ColorProfile()
}
