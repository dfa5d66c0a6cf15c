// Package cli provides a line-oriented executor for Nova sessions.
//
// With a query it performs a single navigation and exits, which suits
// scripts:
//
//	nova -query "best pizza nearby" -mode search
//
// Without one it reads queries from its input until EOF or "exit". Lines
// starting with "/" are commands:
//
//	/mode fast|search|deep   switch the active tab's profile
//	/new                     open a tab
//	/close                   close the active tab
//	/tabs                    list tabs
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/thelegendaryrichman/nova/pkg/logging"
	"github.com/thelegendaryrichman/nova/pkg/session"
	"github.com/thelegendaryrichman/nova/pkg/types"
)

var debugLog *logging.Logger

func init() {
	var err error
	debugLog, err = logging.NewLogger("cli")
	if err != nil {
		debugLog.Warnf("Failed to initialize cli logger, using stderr fallback: %v", err)
	}
}

// ErrRejected is returned for a one-shot query that was not dispatched,
// either because it was blank or because the session is offline.
var ErrRejected = errors.New("query rejected: empty or offline")

// ErrNavigationFailed is returned when a one-shot query reached the
// provider but did not produce content.
var ErrNavigationFailed = errors.New("navigation failed")

// Executor drives a session.Manager from plain text input and output.
type Executor struct {
	manager *session.Manager
	reader  *bufio.Reader
	writer  io.Writer

	query string
	mode  types.Mode
}

// ExecutorOption is a function that configures an Executor.
type ExecutorOption func(*Executor)

// WithWriter sets a custom output writer (default is os.Stdout).
func WithWriter(w io.Writer) ExecutorOption {
	return func(e *Executor) {
		e.writer = w
	}
}

// WithReader sets a custom input reader (default is os.Stdin).
func WithReader(r io.Reader) ExecutorOption {
	return func(e *Executor) {
		e.reader = bufio.NewReader(r)
	}
}

// WithQuery makes Run perform a single navigation and return.
func WithQuery(query string) ExecutorOption {
	return func(e *Executor) {
		e.query = query
	}
}

// WithMode sets the active tab's profile before the first navigation.
func WithMode(mode types.Mode) ExecutorOption {
	return func(e *Executor) {
		e.mode = mode
	}
}

// NewExecutor creates a new CLI executor over the given session.
func NewExecutor(manager *session.Manager, opts ...ExecutorOption) *Executor {
	e := &Executor{
		manager: manager,
		reader:  bufio.NewReader(os.Stdin),
		writer:  os.Stdout,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Run executes the one-shot query if one was configured, otherwise it
// runs the interactive loop until EOF, "exit" or cancellation.
func (e *Executor) Run(ctx context.Context) error {
	if e.mode != "" {
		e.manager.SetMode(e.mode)
	}

	if e.query != "" {
		return e.runOnce(ctx, e.query)
	}

	fmt.Fprintln(e.writer, "Nova")
	fmt.Fprintln(e.writer, "Type a query or URL and press Enter. /mode, /new, /close and /tabs manage tabs. Type 'exit' to quit.")
	fmt.Fprintln(e.writer)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		fmt.Fprintf(e.writer, "[%s] > ", e.manager.ActiveTab().Mode.Label())
		input, err := e.reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to read input: %w", err)
		}
		eof := errors.Is(err, io.EOF)

		input = strings.TrimSpace(input)
		switch {
		case input == "exit" || input == "quit":
			return nil
		case strings.HasPrefix(input, "/"):
			e.handleCommand(input)
		case input != "":
			if !e.manager.Navigate(ctx, input) {
				fmt.Fprintln(e.writer, "Offline: query not sent.")
			} else {
				e.printTab(e.manager.ActiveTab())
			}
		}

		if eof {
			return nil
		}
	}
}

func (e *Executor) runOnce(ctx context.Context, query string) error {
	tabID := e.manager.ActiveID()
	if !e.manager.Navigate(ctx, query) {
		return ErrRejected
	}

	tab, _ := e.manager.Tab(tabID)
	e.printTab(tab)
	if tab.Content == session.FailureMessage {
		return ErrNavigationFailed
	}
	return nil
}

func (e *Executor) handleCommand(input string) {
	fields := strings.Fields(strings.TrimPrefix(input, "/"))
	if len(fields) == 0 {
		return
	}

	switch fields[0] {
	case "mode":
		if len(fields) < 2 {
			fmt.Fprintf(e.writer, "Mode: %s\n", e.manager.ActiveTab().Mode)
			return
		}
		mode, err := types.ParseMode(fields[1])
		if err != nil {
			fmt.Fprintf(e.writer, "❌ %v\n", err)
			return
		}
		e.manager.SetMode(mode)
		fmt.Fprintf(e.writer, "Mode: %s\n", mode)
	case "new":
		e.manager.CreateTab("")
		fmt.Fprintf(e.writer, "Opened tab %d\n", e.manager.ActiveIndex()+1)
	case "close":
		if !e.manager.CloseTab(e.manager.ActiveID()) {
			fmt.Fprintln(e.writer, "Cannot close the last tab.")
			return
		}
		fmt.Fprintf(e.writer, "Now on tab %d\n", e.manager.ActiveIndex()+1)
	case "tabs":
		e.printTabs()
	default:
		fmt.Fprintf(e.writer, "Unknown command: /%s\n", fields[0])
	}
}

func (e *Executor) printTabs() {
	activeID := e.manager.ActiveID()
	for i, tab := range e.manager.Tabs() {
		marker := " "
		if tab.ID == activeID {
			marker = "*"
		}
		fmt.Fprintf(e.writer, "%s %d. %s [%s]\n", marker, i+1, tab.Title, tab.Mode)
	}
}

func (e *Executor) printTab(tab types.Tab) {
	debugLog.Debugf("Printing tab %s (%d links)", tab.ID, len(tab.GroundingLinks))

	fmt.Fprintln(e.writer)
	fmt.Fprintln(e.writer, strings.TrimSpace(tab.Content))
	if len(tab.GroundingLinks) > 0 {
		fmt.Fprintln(e.writer)
		fmt.Fprintln(e.writer, "Sources:")
		for i, link := range tab.GroundingLinks {
			fmt.Fprintf(e.writer, "  [%d] %s - %s\n", i+1, link.Title, link.URI)
		}
	}
	fmt.Fprintln(e.writer)
}
