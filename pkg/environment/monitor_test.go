package environment

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pipeDialer(calls *atomic.Int32) DialFunc {
	return func(ctx context.Context, network, address string) (net.Conn, error) {
		calls.Add(1)
		client, server := net.Pipe()
		server.Close()
		return client, nil
	}
}

func failingDialer(calls *atomic.Int32) DialFunc {
	return func(ctx context.Context, network, address string) (net.Conn, error) {
		calls.Add(1)
		return nil, errors.New("connection refused")
	}
}

func TestProbe_LocalListener(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			c.Close()
		}
	}()

	var d net.Dialer
	s := NewState(false)
	m := NewConnectivityMonitor(s, WithProbeAddress(ln.Addr().String()), WithDialer(d.DialContext))

	assert.True(t, m.Probe(context.Background()))
	assert.True(t, s.Online())
}

func TestProbe_FailureMarksOffline(t *testing.T) {
	var calls atomic.Int32
	s := NewState(true)
	m := NewConnectivityMonitor(s, WithDialer(failingDialer(&calls)))

	assert.False(t, m.Probe(context.Background()))
	assert.False(t, s.Online())
	assert.Equal(t, int32(1), calls.Load())
}

func TestProbe_CancelledContextLeavesState(t *testing.T) {
	s := NewState(true)
	m := NewConnectivityMonitor(s, WithDialer(func(ctx context.Context, _, _ string) (net.Conn, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, m.Probe(ctx))
	assert.True(t, s.Online())
}

func TestProbe_TimeoutMarksOffline(t *testing.T) {
	s := NewState(true)
	m := NewConnectivityMonitor(s,
		WithProbeTimeout(10*time.Millisecond),
		WithDialer(func(ctx context.Context, _, _ string) (net.Conn, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		}),
	)

	assert.False(t, m.Probe(context.Background()))
	assert.False(t, s.Online())
}

func TestRun_ProbesImmediatelyAndOnTrigger(t *testing.T) {
	var calls atomic.Int32
	s := NewState(false)
	m := NewConnectivityMonitor(s,
		WithProbeInterval(time.Hour),
		WithDialer(pipeDialer(&calls)),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx)

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.True(t, s.Online())

	m.Trigger()
	assert.Eventually(t, func() bool { return calls.Load() == 2 }, time.Second, 5*time.Millisecond)
}

func TestTrigger_NeverBlocks(t *testing.T) {
	m := NewConnectivityMonitor(NewState(true))
	for i := 0; i < 10; i++ {
		m.Trigger()
	}
	assert.Len(t, m.trigger, 1)
}

func TestMonitorDefaults(t *testing.T) {
	m := NewConnectivityMonitor(NewState(true), WithProbeAddress(""), WithProbeInterval(0))
	assert.Equal(t, DefaultProbeAddress, m.Address())
	assert.Equal(t, DefaultProbeInterval, m.interval)
	assert.Equal(t, DefaultProbeTimeout, m.timeout)
}

func TestProbeAddressForURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://generativelanguage.googleapis.com/", "generativelanguage.googleapis.com:443"},
		{"https://api.openai.com/v1", "api.openai.com:443"},
		{"http://localhost:8080/v1", "localhost:8080"},
		{"http://127.0.0.1/v1", "127.0.0.1:80"},
		{"", ""},
		{"not a url", ""},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, ProbeAddressForURL(tt.url))
		})
	}
}
