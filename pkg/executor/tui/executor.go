// Package tui provides the interactive terminal front end of Nova: a tab
// strip, an address bar, a profile selector and a scrollable content pane
// driven by a session.Manager.
//
// The TUI codebase is split into multiple files:
// - executor.go: program lifecycle and environment event forwarding
// - model.go: model structure and message types
// - update.go: Bubble Tea Update function and key handling
// - view.go: Bubble Tea View function and chrome
// - render.go: content pane rendering and code highlighting
// - overlay.go: modal and toast layering
// - helpers.go: text utilities
// - styles.go: color scheme and styling
package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/thelegendaryrichman/nova/pkg/environment"
	"github.com/thelegendaryrichman/nova/pkg/session"
)

// Executor runs the interactive browser shell.
type Executor struct {
	manager *session.Manager
	monitor *environment.ConnectivityMonitor
	program *tea.Program
}

// ExecutorOption is a function that configures an Executor.
type ExecutorOption func(*Executor)

// WithMonitor lets ctrl+r force an immediate connectivity probe.
func WithMonitor(monitor *environment.ConnectivityMonitor) ExecutorOption {
	return func(e *Executor) {
		e.monitor = monitor
	}
}

// NewExecutor creates a new TUI executor over the given session.
func NewExecutor(manager *session.Manager, opts ...ExecutorOption) *Executor {
	e := &Executor{manager: manager}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run starts the TUI and blocks until the user exits or ctx is cancelled.
func (e *Executor) Run(ctx context.Context) error {
	debugLog.Infof("TUI Executor starting...")

	m := newModel(ctx, e.manager, e.monitor)
	e.program = tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	events, cancel := e.manager.Environment().Subscribe()
	defer cancel()

	go func() {
		// Listen for environment changes and forward them to the TUI
		for event := range events {
			e.program.Send(envEventMsg(event))
		}
	}()

	if _, err := e.program.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			debugLog.Infof("TUI stopped by context: %v", ctx.Err())
			return nil
		}
		return fmt.Errorf("failed to run TUI program: %w", err)
	}

	debugLog.Infof("TUI Executor exited")
	return nil
}
