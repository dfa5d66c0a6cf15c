package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/thelegendaryrichman/nova/pkg/types"
)

// View renders the entire TUI interface.
// This is called by Bubble Tea whenever the UI needs to be redrawn.
func (m *model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	tab := m.manager.ActiveTab()

	tabStrip := m.buildTabStrip()
	modeBar := m.buildModeBar(tab)
	contentSection := m.viewport.View()
	if tab.IsLoading {
		contentSection = m.buildLoadingIndicator(tab)
	}
	inputBox := m.buildInputBox()
	bottomBar := m.buildBottomBar(tab)

	baseView := lipgloss.JoinVertical(
		lipgloss.Left,
		tabStrip,
		modeBar,
		"",
		contentSection,
		inputBox,
		bottomBar,
	)

	return m.applyOverlays(baseView)
}

// buildTabStrip renders the brand mark and one chip per tab.
func (m *model) buildTabStrip() string {
	activeID := m.manager.ActiveID()
	parts := []string{brandStyle.Render("◆ NOVA ")}
	for _, tab := range m.manager.Tabs() {
		title := tab.Title
		if title == "" {
			title = types.DefaultTabTitle
		}
		if tab.IsLoading {
			title = m.spinner.View() + " " + title
		}
		if tab.ID == activeID {
			parts = append(parts, activeTabStyle.Render(title))
		} else {
			parts = append(parts, inactiveTabStyle.Render(title))
		}
	}
	parts = append(parts, tipsStyle.Render(" + ctrl+t"))
	return lipgloss.NewStyle().MaxWidth(m.width).Render(strings.Join(parts, ""))
}

// buildModeBar renders the three-way profile selector.
func (m *model) buildModeBar(tab types.Tab) string {
	var b strings.Builder
	b.WriteString(" ")
	for i, mode := range types.Modes {
		label := fmt.Sprintf(" F%d %s %s ", i+1, modeIcon(mode), strings.ToUpper(mode.Label()))
		if mode == tab.Mode {
			b.WriteString(lipgloss.NewStyle().
				Foreground(brightWhite).
				Background(modeColor(mode)).
				Bold(true).
				Render(label))
		} else {
			b.WriteString(tipsStyle.Render(label))
		}
		b.WriteString(" ")
	}
	b.WriteString(tipsStyle.Render(" ctrl+s cycles"))
	if m.snapshot.Coords != nil {
		b.WriteString(lipgloss.NewStyle().Foreground(emerald).Render("  ⌖ local bias"))
	}
	return b.String()
}

// buildLoadingIndicator fills the content pane while the active tab waits
// on the provider.
func (m *model) buildLoadingIndicator(tab types.Tab) string {
	title := "Connecting to Global Uplink..."
	if tab.IsThinking {
		title = "Maximum Resolution Reasoning..."
	}

	body := lipgloss.JoinVertical(
		lipgloss.Center,
		lipgloss.NewStyle().Foreground(modeColor(tab.Mode)).Render(modeIcon(tab.Mode)),
		"",
		loadingTitleStyle.Render(title),
		tipsStyle.Render(m.spinner.View()+" STREAMING DATA PARTICLES"),
	)
	return lipgloss.Place(m.viewport.Width, m.viewport.Height, lipgloss.Center, lipgloss.Center, body)
}

// buildInputBox renders the address bar
func (m *model) buildInputBox() string {
	style := inputBoxStyle
	if !m.snapshot.Online {
		style = style.BorderForeground(mutedGray)
	}
	return style.Width(m.width - 4).Render(m.input.View())
}

// buildBottomBar renders the status footer
func (m *model) buildBottomBar(tab types.Tab) string {
	network := lipgloss.NewStyle().Foreground(emerald).Render("● NETWORK: ONLINE")
	if !m.snapshot.Online {
		network = errorStyle.Render("● NETWORK: DISCONNECTED")
	}

	fields := []string{
		network,
		fmt.Sprintf("LATENCY: %.0fMS", m.snapshot.Latency),
		"MODEL: " + strings.ToUpper(tab.Mode.String()),
	}
	if c := m.snapshot.Coords; c != nil {
		fields = append(fields, fmt.Sprintf("⌖ %.2f, %.2f", c.Latitude, c.Longitude))
	}
	left := strings.Join(fields, "   ")
	right := "ctrl+y copy • ctrl+l reload • ctrl+c quit"

	padding := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if padding < 2 {
		return statusBarStyle.Width(m.width).Render(left)
	}
	return statusBarStyle.Width(m.width).Render(left + strings.Repeat(" ", padding) + right)
}

// applyOverlays layers all active overlays on top of the base view
func (m *model) applyOverlays(baseView string) string {
	if !m.snapshot.Online {
		baseView = renderOverlay(baseView, m.renderOfflineNotice(), m.width, m.height)
	}

	// Add toast notification as overlay if active and not expired
	if m.toast.active && time.Now().Before(m.toast.showUntil) {
		baseView = renderToastOverlay(baseView, m.renderToast())
	}

	return baseView
}

func (m *model) renderOfflineNotice() string {
	return offlineBoxStyle.Render(lipgloss.JoinVertical(
		lipgloss.Center,
		errorStyle.Render("✕ No Internet Connection"),
		"",
		tipsStyle.Width(40).Align(lipgloss.Center).
			Render("Nova requires an active uplink to synchronize with global intelligence nodes."),
		"",
		lipgloss.NewStyle().Foreground(brightWhite).Background(alertRed).Bold(true).Padding(0, 2).
			Render("ctrl+r  Re-Establish Connection"),
	))
}

// renderToast renders a toast notification
func (m *model) renderToast() string {
	if !m.toast.active || time.Now().After(m.toast.showUntil) {
		return ""
	}

	boxWidth := m.width - 4
	if boxWidth < 40 {
		boxWidth = 40
	}

	var content strings.Builder
	content.WriteString(fmt.Sprintf("%s %s", m.toast.icon, m.toast.message))
	if m.toast.details != "" {
		content.WriteString("\n")
		content.WriteString(truncate(m.toast.details, boxWidth-4))
	}

	borderColor := indigo
	if m.toast.isError {
		borderColor = alertRed
	}

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(0, 1).
		Width(boxWidth)

	return "\n" + boxStyle.Render(content.String()) + "\n"
}

// showToast displays a toast notification to the user
func (m *model) showToast(message, details, icon string, isError bool) {
	m.toast.active = true
	m.toast.message = message
	m.toast.details = details
	m.toast.icon = icon
	m.toast.isError = isError
	m.toast.showUntil = time.Now().Add(3 * time.Second)
}
