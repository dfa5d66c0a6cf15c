package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/thelegendaryrichman/nova/pkg/types"
)

// Color Palette
// This is the single source of truth for all TUI colors.
var (
	indigo      = lipgloss.Color("#818CF8") // Primary accent, fast profile
	emerald     = lipgloss.Color("#34D399") // Live profile, online status
	violet      = lipgloss.Color("#A855F7") // Deep profile, thinking state
	alertRed    = lipgloss.Color("#EF4444") // Offline and errors
	slate       = lipgloss.Color("#1E293B") // Panel background
	mutedGray   = lipgloss.Color("#64748B") // Secondary text
	brightWhite = lipgloss.Color("#F1F5F9") // Primary text
)

// Common Styles
var (
	brandStyle = lipgloss.NewStyle().
			Foreground(indigo).
			Bold(true)

	activeTabStyle = lipgloss.NewStyle().
			Foreground(indigo).
			Background(slate).
			Bold(true).
			Padding(0, 1)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(mutedGray).
				Padding(0, 1)

	tipsStyle = lipgloss.NewStyle().
			Foreground(mutedGray)

	paragraphStyle = lipgloss.NewStyle().
			Foreground(brightWhite)

	dropCapStyle = lipgloss.NewStyle().
			Foreground(indigo).
			Bold(true)

	sectionTitleStyle = lipgloss.NewStyle().
				Foreground(mutedGray).
				Bold(true)

	loadingTitleStyle = lipgloss.NewStyle().
				Foreground(brightWhite).
				Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(alertRed).
			Bold(true)

	// Container Styles
	statusBarStyle = lipgloss.NewStyle().
			Foreground(mutedGray).
			Padding(0, 1)

	inputBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(indigo).
			Padding(0, 1)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedGray).
			Padding(0, 1)

	offlineBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(alertRed).
			Padding(1, 3).
			Align(lipgloss.Center)
)

// modeColor returns the accent used for a profile.
func modeColor(mode types.Mode) lipgloss.Color {
	switch mode {
	case types.ModeSearch:
		return emerald
	case types.ModeDeep:
		return violet
	default:
		return indigo
	}
}

// modeIcon returns the selector glyph for a profile.
func modeIcon(mode types.Mode) string {
	switch mode {
	case types.ModeSearch:
		return "◉"
	case types.ModeDeep:
		return "✦"
	default:
		return "⚡"
	}
}
