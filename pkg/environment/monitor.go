package environment

import (
	"context"
	"errors"
	"net"
	"net/url"
	"time"

	"golang.org/x/net/proxy"
)

// Connectivity probe defaults.
const (
	DefaultProbeAddress  = "generativelanguage.googleapis.com:443"
	DefaultProbeInterval = 5 * time.Second
	DefaultProbeTimeout  = 3 * time.Second
)

// DialFunc opens a connection; it matches proxy.Dial.
type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// ConnectivityMonitor keeps State.Online in step with whether the probe
// address accepts TCP connections. Dials go through the proxy configured in
// ALL_PROXY/NO_PROXY, so a proxied host is judged the same way its HTTP
// traffic is routed.
type ConnectivityMonitor struct {
	state    *State
	address  string
	interval time.Duration
	timeout  time.Duration
	dial     DialFunc
	trigger  chan struct{}
}

// MonitorOption configures a ConnectivityMonitor.
type MonitorOption func(*ConnectivityMonitor)

// WithProbeAddress sets the host:port to dial.
func WithProbeAddress(addr string) MonitorOption {
	return func(m *ConnectivityMonitor) {
		if addr != "" {
			m.address = addr
		}
	}
}

// WithProbeInterval sets how often the address is probed.
func WithProbeInterval(d time.Duration) MonitorOption {
	return func(m *ConnectivityMonitor) {
		if d > 0 {
			m.interval = d
		}
	}
}

// WithProbeTimeout bounds a single probe.
func WithProbeTimeout(d time.Duration) MonitorOption {
	return func(m *ConnectivityMonitor) {
		if d > 0 {
			m.timeout = d
		}
	}
}

// WithDialer replaces the proxy-aware dialer.
func WithDialer(dial DialFunc) MonitorOption {
	return func(m *ConnectivityMonitor) {
		m.dial = dial
	}
}

// NewConnectivityMonitor creates a monitor writing to state.
func NewConnectivityMonitor(state *State, opts ...MonitorOption) *ConnectivityMonitor {
	m := &ConnectivityMonitor{
		state:    state,
		address:  DefaultProbeAddress,
		interval: DefaultProbeInterval,
		timeout:  DefaultProbeTimeout,
		dial:     proxy.Dial,
		trigger:  make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Address returns the probed host:port.
func (m *ConnectivityMonitor) Address() string {
	return m.address
}

// Probe dials once, records the outcome on the state and returns it.
func (m *ConnectivityMonitor) Probe(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	conn, err := m.dial(ctx, "tcp", m.address)
	if err != nil {
		// Shutdown is not an outage.
		if !errors.Is(ctx.Err(), context.Canceled) {
			debugLog.Debugf("Probe of %s failed: %v", m.address, err)
			m.state.SetOnline(false)
		}
		return false
	}
	conn.Close()

	m.state.SetOnline(true)
	return true
}

// Trigger requests an immediate probe from Run. It never blocks.
func (m *ConnectivityMonitor) Trigger() {
	select {
	case m.trigger <- struct{}{}:
	default:
	}
}

// Run probes immediately, then on every interval or Trigger, until ctx is
// cancelled.
func (m *ConnectivityMonitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Probe(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-m.trigger:
		}
		if ctx.Err() != nil {
			return
		}
		m.Probe(ctx)
	}
}

// ProbeAddressForURL returns the host:port an HTTP client dials for rawURL,
// or "" when rawURL has no host.
func ProbeAddressForURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	port := u.Port()
	if port == "" {
		port = "443"
		if u.Scheme == "http" {
			port = "80"
		}
	}
	return net.JoinHostPort(u.Hostname(), port)
}
