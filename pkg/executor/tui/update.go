package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/thelegendaryrichman/nova/pkg/environment"
	"github.com/thelegendaryrichman/nova/pkg/logging"
	"github.com/thelegendaryrichman/nova/pkg/session"
	"github.com/thelegendaryrichman/nova/pkg/types"
)

var debugLog *logging.Logger

func init() {
	var err error
	debugLog, err = logging.NewLogger("tui")
	if err != nil {
		debugLog.Warnf("Failed to initialize tui logger, using stderr fallback: %v", err)
	}
}

// Init starts the cursor blink and the spinner.
func (m *model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Update handles all state updates for the TUI model.
// This is the main event loop handler for Bubble Tea.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		debugLog.Debugf("Received WindowSizeMsg: %dx%d", msg.Width, msg.Height)
		return m.handleWindowResize(msg)

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case navigationDoneMsg:
		debugLog.Debugf("Received navigationDoneMsg for tab %s (err=%v)", msg.req.TabID, msg.err)
		m.manager.Complete(msg.req, msg.res, msg.err)
		m.refresh()
		return m, nil

	case envEventMsg:
		return m.handleEnvironmentEvent(msg)

	case toastMsg:
		debugLog.Debugf("Received toastMsg: %s", msg.message)
		m.showToast(msg.message, msg.details, msg.icon, msg.isError)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// handleWindowResize processes window size change events
func (m *model) handleWindowResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.input.Width = m.width - 10
	m.viewport.Width = m.width
	m.viewport.Height = m.calculateViewportHeight()
	m.ready = true
	m.lastRendered = ""
	m.refresh()
	return m, nil
}

// calculateViewportHeight computes the content pane height from the fixed
// chrome around it.
func (m *model) calculateViewportHeight() int {
	headerHeight := 3 // tab strip + mode selector + blank line
	inputHeight := 3  // input line + border
	statusBarHeight := 1

	viewportHeight := m.height - headerHeight - inputHeight - statusBarHeight
	if viewportHeight < 5 {
		viewportHeight = 5
	}
	return viewportHeight
}

func (m *model) handleEnvironmentEvent(msg envEventMsg) (tea.Model, tea.Cmd) {
	wasOnline := m.snapshot.Online
	m.snapshot = msg.Snapshot
	if msg.Kind == environment.EventConnectivity {
		debugLog.Infof("Connectivity changed: online=%t", msg.Snapshot.Online)
		m.syncInputState()
		if !wasOnline && msg.Snapshot.Online {
			m.showToast("Uplink restored", "", "●", false)
		}
	}
	return m, nil
}

// handleKeyPress processes keyboard input
//
//nolint:gocyclo
func (m *model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return m, tea.Quit
	}
	if key == "ctrl+r" {
		return m.handleReconnect()
	}
	// The offline overlay swallows everything else.
	if !m.snapshot.Online {
		return m, nil
	}

	switch key {
	case "ctrl+t":
		m.manager.CreateTab("")
		m.refresh()
		return m, nil

	case "ctrl+w":
		m.manager.CloseTab(m.manager.ActiveID())
		m.refresh()
		return m, nil

	case "ctrl+n", "ctrl+right":
		m.manager.SelectOffset(1)
		m.refresh()
		return m, nil

	case "ctrl+p", "ctrl+left":
		m.manager.SelectOffset(-1)
		m.refresh()
		return m, nil

	case "ctrl+s":
		m.manager.SetMode(m.manager.ActiveTab().Mode.Next())
		m.refresh()
		return m, nil

	case "f1", "f2", "f3":
		m.manager.SetMode(types.Modes[int(key[1]-'1')])
		m.refresh()
		return m, nil

	case "ctrl+l":
		return m, m.beginNavigation(m.manager.Begin(m.manager.ActiveTab().URL))

	case "ctrl+y":
		return m.copyContent()

	case "enter":
		return m, m.beginNavigation(m.manager.Begin(m.input.Value()))

	case "pgup", "pgdown", "up", "down":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	// alt+N launches a preset on the landing view and copies a citation
	// everywhere else. Landing tabs carry no citations.
	if m.onLandingView() {
		if n, ok := suggestionKey(key); ok {
			s := session.Suggestions()[n-1]
			m.input.SetValue(s.Query)
			m.input.CursorEnd()
			return m, m.beginNavigation(m.manager.BeginSuggestion(s))
		}
	} else if n, ok := citationKey(key); ok {
		return m.copyCitation(n)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// beginNavigation refreshes the view for a staged request and returns the
// command that performs it. Rejected requests produce no command.
func (m *model) beginNavigation(req *session.Request, ok bool) tea.Cmd {
	if !ok {
		return nil
	}
	debugLog.Infof("Navigating tab %s in %s mode", req.TabID, req.Mode)
	m.refresh()

	ctx, manager := m.ctx, m.manager
	return func() tea.Msg {
		res, err := manager.Dispatch(ctx, req)
		return navigationDoneMsg{req: req, res: res, err: err}
	}
}

func (m *model) handleReconnect() (tea.Model, tea.Cmd) {
	if m.monitor == nil {
		return m, nil
	}
	m.monitor.Trigger()
	m.showToast("Re-establishing connection", m.monitor.Address(), "↻", false)
	return m, nil
}

func (m *model) copyContent() (tea.Model, tea.Cmd) {
	content := m.manager.ActiveTab().Content
	if content == "" {
		return m, nil
	}
	if err := m.copyToClipboard(content); err != nil {
		debugLog.Warnf("Clipboard write failed: %v", err)
		m.showToast("Copy failed", err.Error(), "✕", true)
		return m, nil
	}
	m.showToast("Copied page content", "", "✓", false)
	return m, nil
}

func (m *model) copyCitation(n int) (tea.Model, tea.Cmd) {
	links := m.manager.ActiveTab().GroundingLinks
	if n > len(links) {
		return m, nil
	}
	uri := links[n-1].URI
	if err := m.copyToClipboard(uri); err != nil {
		debugLog.Warnf("Clipboard write failed: %v", err)
		m.showToast("Copy failed", err.Error(), "✕", true)
		return m, nil
	}
	m.showToast(fmt.Sprintf("Copied Source Node %d", n), uri, "✓", false)
	return m, nil
}

// syncInputState enables or disables the address bar to match connectivity.
func (m *model) syncInputState() {
	if m.snapshot.Online {
		m.input.Placeholder = inputPlaceholder
		m.input.Focus()
		return
	}
	m.input.Placeholder = offlinePlaceholder
	m.input.Blur()
}

// refresh re-renders the active tab into the viewport and loads its URL
// into the address bar after a tab switch.
func (m *model) refresh() {
	tab := m.manager.ActiveTab()
	switched := tab.ID != m.shownTabID
	if switched {
		m.shownTabID = tab.ID
		m.input.SetValue(tab.URL)
		m.input.CursorEnd()
	}

	content := renderTab(tab, m.viewport.Width)
	if content != m.lastRendered {
		m.lastRendered = content
		m.viewport.SetContent(content)
	}
	if switched {
		m.viewport.GotoTop()
	}
}

func (m *model) onLandingView() bool {
	tab := m.manager.ActiveTab()
	return tab.URL == "" && !tab.IsLoading
}

// citationKey maps alt+1..alt+9 to a citation number.
func citationKey(key string) (int, bool) {
	rest, ok := strings.CutPrefix(key, "alt+")
	if !ok || len(rest) != 1 || rest[0] < '1' || rest[0] > '9' {
		return 0, false
	}
	return int(rest[0] - '0'), true
}

// suggestionKey maps alt+1..alt+3 to a landing suggestion. Plain digits
// always reach the input.
func suggestionKey(key string) (int, bool) {
	n, ok := citationKey(key)
	if !ok || n > len(session.Suggestions()) {
		return 0, false
	}
	return n, true
}
