// Package environment holds the process-wide signals the browser shell reacts
// to: connectivity, approximate coordinates and a simulated link latency.
//
// State is an explicit object injected into its consumers. Signal sources
// (ConnectivityMonitor, Locator, LatencySimulator) write to it and
// subscribers receive an Event for every change.
package environment

import (
	"sync"

	"github.com/thelegendaryrichman/nova/pkg/logging"
	"github.com/thelegendaryrichman/nova/pkg/types"
)

var debugLog *logging.Logger

func init() {
	var err error
	debugLog, err = logging.NewLogger("environment")
	if err != nil {
		debugLog.Warnf("Failed to initialize environment logger, using stderr fallback: %v", err)
	}
}

// EventKind identifies which signal changed.
type EventKind string

const (
	// EventConnectivity is published when the online flag flips.
	EventConnectivity EventKind = "connectivity"
	// EventLocation is published when coordinates are resolved.
	EventLocation EventKind = "location"
	// EventLatency is published on every latency update.
	EventLatency EventKind = "latency"
)

// Event carries the changed signal and a snapshot taken after the change.
type Event struct {
	Kind     EventKind
	Snapshot types.Environment
}

// State is the mutable environment shared by the session and the UI.
// It is safe for concurrent use.
type State struct {
	mu      sync.RWMutex
	online  bool
	coords  *types.Coordinates
	latency float64

	subMu sync.Mutex
	subs  map[chan Event]struct{}
	depth int
}

// NewState returns a state with the given connectivity, no coordinates and
// the initial simulated latency.
func NewState(online bool) *State {
	return &State{
		online:  online,
		latency: InitialLatency,
		subs:    make(map[chan Event]struct{}),
		depth:   64,
	}
}

// Snapshot returns a copy of the current environment.
func (s *State) Snapshot() types.Environment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *State) snapshotLocked() types.Environment {
	env := types.Environment{Online: s.online, Latency: s.latency}
	if s.coords != nil {
		c := *s.coords
		env.Coords = &c
	}
	return env
}

// Online reports the last known connectivity.
func (s *State) Online() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.online
}

// Coords returns a copy of the known coordinates, or nil.
func (s *State) Coords() *types.Coordinates {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.coords == nil {
		return nil
	}
	c := *s.coords
	return &c
}

// Latency returns the simulated latency in milliseconds.
func (s *State) Latency() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latency
}

// SetOnline records connectivity. Only transitions are published.
func (s *State) SetOnline(online bool) {
	s.mu.Lock()
	if s.online == online {
		s.mu.Unlock()
		return
	}
	s.online = online
	snap := s.snapshotLocked()
	s.mu.Unlock()

	debugLog.Infof("Connectivity changed: online=%v", online)
	s.publish(Event{Kind: EventConnectivity, Snapshot: snap})
}

// SetCoords records resolved coordinates.
func (s *State) SetCoords(c types.Coordinates) {
	s.mu.Lock()
	s.coords = &c
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(Event{Kind: EventLocation, Snapshot: snap})
}

// SetLatency records a new simulated latency.
func (s *State) SetLatency(ms float64) {
	s.mu.Lock()
	s.latency = ms
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(Event{Kind: EventLatency, Snapshot: snap})
}

// Subscribe registers a subscriber and returns its channel plus a cancel
// func. A subscriber that falls behind misses events instead of blocking
// the publisher. Cancel closes the channel and is safe to call twice.
func (s *State) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, s.depth)
	s.subMu.Lock()
	s.subs[ch] = struct{}{}
	s.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, ch)
			s.subMu.Unlock()
			close(ch)
		})
	}
}

// publish sends under subMu so a concurrent cancel cannot close a channel
// mid-send.
func (s *State) publish(event Event) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	dropped := 0
	for sub := range s.subs {
		select {
		case sub <- event:
		default:
			dropped++
		}
	}
	if dropped > 0 {
		debugLog.Debugf("Dropped %s event for %d slow subscriber(s)", event.Kind, dropped)
	}
}
