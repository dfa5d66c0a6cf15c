// Package session owns the tab collection and mediates every user intent:
// open, close and select tabs, switch profile, and navigate.
//
// A navigation is split in two so callers that run dispatch asynchronously
// (the TUI) and callers that block (the CLI) share one code path:
//
//	req, ok := m.Begin(query)   // validate, mark the active tab loading
//	res, err := dispatcher.Dispatch(ctx, req.Prompt, req.Mode, req.Coords)
//	m.Complete(req, res, err)   // merge into the originating tab by id
//
// Navigate does all three in one blocking call.
package session

import (
	"context"
	"strings"
	"sync"

	"github.com/thelegendaryrichman/nova/pkg/dispatch"
	"github.com/thelegendaryrichman/nova/pkg/environment"
	"github.com/thelegendaryrichman/nova/pkg/logging"
	"github.com/thelegendaryrichman/nova/pkg/types"
)

var debugLog *logging.Logger

func init() {
	var err error
	debugLog, err = logging.NewLogger("session")
	if err != nil {
		debugLog.Warnf("Failed to initialize session logger, using stderr fallback: %v", err)
	}
}

// Dispatcher performs one provider call. *dispatch.Client implements it.
type Dispatcher interface {
	Dispatch(ctx context.Context, prompt string, mode types.Mode, coords *types.Coordinates) (*dispatch.Result, error)
}

// Request is a staged navigation. It names its originating tab explicitly so
// the result lands there regardless of which tab is active on completion.
type Request struct {
	TabID  string
	Query  string
	Prompt string
	Mode   types.Mode
	Coords *types.Coordinates

	seq uint64
}

// Manager is the single source of truth for tabs. It is safe for
// concurrent use.
type Manager struct {
	mu       sync.RWMutex
	tabs     []*types.Tab
	activeID string

	// seq tracks the latest request per tab so a superseded reply is dropped.
	seq     map[string]uint64
	nextSeq uint64

	env        *environment.State
	dispatcher Dispatcher
}

// Option configures a Manager.
type Option func(*Manager)

// WithInitialQuery seeds the first tab's URL without navigating.
func WithInitialQuery(query string) Option {
	return func(m *Manager) {
		m.tabs[0].URL = query
	}
}

// NewManager creates a manager with one fresh, active tab. A nil env is
// treated as permanently online with no location.
func NewManager(env *environment.State, dispatcher Dispatcher, opts ...Option) *Manager {
	if env == nil {
		env = environment.NewState(true)
	}
	first := types.NewTab("")
	m := &Manager{
		tabs:       []*types.Tab{first},
		activeID:   first.ID,
		seq:        make(map[string]uint64),
		env:        env,
		dispatcher: dispatcher,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Environment returns the injected environment state.
func (m *Manager) Environment() *environment.State {
	return m.env
}

// CreateTab appends a tab and makes it active.
func (m *Manager) CreateTab(initialQuery string) types.Tab {
	tab := types.NewTab(initialQuery)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.tabs = append(m.tabs, tab)
	m.activeID = tab.ID
	debugLog.Debugf("Created tab %s (%d open)", tab.ID, len(m.tabs))
	return tab.Clone()
}

// CloseTab removes the tab with id. Closing the only tab or an unknown id is
// a no-op and returns false. If the active tab is closed, the last tab
// becomes active.
func (m *Manager) CloseTab(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.tabs) <= 1 {
		return false
	}
	idx := m.indexLocked(id)
	if idx < 0 {
		return false
	}

	m.tabs = append(m.tabs[:idx], m.tabs[idx+1:]...)
	delete(m.seq, id)
	if m.activeID == id {
		m.activeID = m.tabs[len(m.tabs)-1].ID
	}
	debugLog.Debugf("Closed tab %s (%d open)", id, len(m.tabs))
	return true
}

// SelectTab makes id active. Unknown ids are rejected.
func (m *Manager) SelectTab(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.indexLocked(id) < 0 {
		return false
	}
	m.activeID = id
	return true
}

// SelectOffset moves the active pointer by delta positions, wrapping around.
func (m *Manager) SelectOffset(delta int) types.Tab {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.tabs)
	idx := m.indexLocked(m.activeID)
	next := ((idx+delta)%n + n) % n
	m.activeID = m.tabs[next].ID
	return m.tabs[next].Clone()
}

// SetMode changes the active tab's mode. Requests already dispatched keep
// the mode they were staged with.
func (m *Manager) SetMode(mode types.Mode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activeLocked().Mode = mode
}

// Begin validates query and stages a request on the active tab. It returns
// false with no state change for blank queries or while offline.
func (m *Manager) Begin(query string) (*Request, bool) {
	if strings.TrimSpace(query) == "" {
		return nil, false
	}
	if !m.env.Online() {
		debugLog.Debugf("Rejected navigation while offline")
		return nil, false
	}
	coords := m.env.Coords()

	m.mu.Lock()
	defer m.mu.Unlock()

	tab := m.activeLocked()
	tab.IsLoading = true
	tab.IsThinking = tab.Mode == types.ModeDeep
	tab.URL = query
	tab.Title = LoadingTitle

	m.nextSeq++
	m.seq[tab.ID] = m.nextSeq

	return &Request{
		TabID:  tab.ID,
		Query:  query,
		Prompt: WrapPrompt(query),
		Mode:   tab.Mode,
		Coords: coords,
		seq:    m.nextSeq,
	}, true
}

// Complete merges a dispatch outcome into the request's originating tab.
// It is a no-op if that tab has been closed or has since started a newer
// request.
func (m *Manager) Complete(req *Request, res *dispatch.Result, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.indexLocked(req.TabID)
	if idx < 0 {
		debugLog.Debugf("Dropped reply for closed tab %s", req.TabID)
		return
	}
	if m.seq[req.TabID] != req.seq {
		debugLog.Debugf("Dropped superseded reply for tab %s", req.TabID)
		return
	}

	tab := m.tabs[idx]
	tab.IsLoading = false
	tab.IsThinking = false

	if err != nil || res == nil {
		debugLog.Errorf("Navigation %q on tab %s failed: %v", req.Query, req.TabID, err)
		tab.Content = FailureMessage
		return
	}

	tab.Content = res.Text
	tab.Title = TitleFor(req.Query)
	tab.GroundingLinks = res.Links
}

// Navigate runs Begin, dispatch and Complete in one blocking call. It
// returns false when the query was rejected.
func (m *Manager) Navigate(ctx context.Context, query string) bool {
	req, ok := m.Begin(query)
	if !ok {
		return false
	}
	res, err := m.Dispatch(ctx, req)
	m.Complete(req, res, err)
	return true
}

// Dispatch performs the provider call for a staged request. It touches no
// manager state, so it may run on any goroutine.
func (m *Manager) Dispatch(ctx context.Context, req *Request) (*dispatch.Result, error) {
	return m.dispatcher.Dispatch(ctx, req.Prompt, req.Mode, req.Coords)
}

// Reload re-runs the active tab's current URL.
func (m *Manager) Reload(ctx context.Context) bool {
	return m.Navigate(ctx, m.ActiveTab().URL)
}

// Tabs returns snapshots of every tab in order.
func (m *Manager) Tabs() []types.Tab {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]types.Tab, len(m.tabs))
	for i, t := range m.tabs {
		out[i] = t.Clone()
	}
	return out
}

// ActiveTab returns a snapshot of the active tab.
func (m *Manager) ActiveTab() types.Tab {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.activeLocked().Clone()
}

// ActiveID returns the active tab's id.
func (m *Manager) ActiveID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.activeID
}

// ActiveIndex returns the active tab's position.
func (m *Manager) ActiveIndex() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.indexLocked(m.activeID)
}

// Tab returns a snapshot of the tab with id.
func (m *Manager) Tab(id string) (types.Tab, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	idx := m.indexLocked(id)
	if idx < 0 {
		return types.Tab{}, false
	}
	return m.tabs[idx].Clone(), true
}

// Len returns the number of open tabs.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tabs)
}

func (m *Manager) indexLocked(id string) int {
	for i, t := range m.tabs {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// activeLocked never returns nil: the collection is never empty and
// activeID always names a member.
func (m *Manager) activeLocked() *types.Tab {
	return m.tabs[m.indexLocked(m.activeID)]
}
