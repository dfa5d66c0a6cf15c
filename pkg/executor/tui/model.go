package tui

import (
	"context"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/thelegendaryrichman/nova/pkg/dispatch"
	"github.com/thelegendaryrichman/nova/pkg/environment"
	"github.com/thelegendaryrichman/nova/pkg/session"
	"github.com/thelegendaryrichman/nova/pkg/types"
)

const (
	inputPlaceholder   = "Search Nova or enter a URL"
	offlinePlaceholder = "Offline..."
)

// model represents the state of the TUI application.
// Tab state lives in the session manager; the model only holds what is
// needed to draw it.
type model struct {
	// Bubble Tea components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	// Session integration
	ctx     context.Context
	manager *session.Manager
	monitor *environment.ConnectivityMonitor

	// snapshot is the last environment state delivered to the UI.
	snapshot types.Environment

	// copyToClipboard is swapped in tests.
	copyToClipboard func(string) error

	// UI state
	toast        *toastNotification
	shownTabID   string
	lastRendered string

	// Window dimensions
	width  int
	height int
	ready  bool
}

// navigationDoneMsg carries a dispatch outcome back to Update.
type navigationDoneMsg struct {
	req *session.Request
	res *dispatch.Result
	err error
}

// envEventMsg forwards an environment change into the program.
type envEventMsg environment.Event

// toastMsg triggers a toast notification
type toastMsg struct {
	message string
	details string
	icon    string
	isError bool
}

// toastNotification represents a temporary notification message
type toastNotification struct {
	active    bool
	message   string
	details   string
	icon      string
	isError   bool
	showUntil time.Time
}

func newModel(ctx context.Context, manager *session.Manager, monitor *environment.ConnectivityMonitor) *model {
	ti := textinput.New()
	ti.Prompt = "⌕ "
	ti.Placeholder = inputPlaceholder
	ti.CharLimit = 2048
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = tipsStyle.Foreground(indigo)

	m := &model{
		viewport:        viewport.New(80, 20),
		input:           ti,
		spinner:         sp,
		ctx:             ctx,
		manager:         manager,
		monitor:         monitor,
		snapshot:        manager.Environment().Snapshot(),
		copyToClipboard: clipboard.WriteAll,
		toast:           &toastNotification{},
		width:           80,
		height:          24,
	}
	m.syncInputState()
	m.refresh()
	return m
}
