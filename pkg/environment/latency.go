package environment

import (
	"context"
	"math/rand/v2"
	"time"
)

// Simulated latency bounds, in milliseconds.
const (
	InitialLatency = 24.0
	MinLatency     = 15.0
	MaxLatency     = 150.0
	LatencyJitter  = 10.0

	DefaultLatencyInterval = 3 * time.Second
)

// StepLatency moves current by a jitter derived from r in [0,1) and clamps
// the result to [MinLatency, MaxLatency].
func StepLatency(current, r float64) float64 {
	next := current + (r*2-1)*LatencyJitter
	return min(max(next, MinLatency), MaxLatency)
}

// LatencySimulator drives the display-only latency figure.
type LatencySimulator struct {
	state    *State
	interval time.Duration
	rand     func() float64
}

// LatencyOption configures a LatencySimulator.
type LatencyOption func(*LatencySimulator)

// WithLatencyInterval sets the tick interval.
func WithLatencyInterval(d time.Duration) LatencyOption {
	return func(l *LatencySimulator) {
		if d > 0 {
			l.interval = d
		}
	}
}

// WithRandSource replaces the uniform [0,1) source.
func WithRandSource(fn func() float64) LatencyOption {
	return func(l *LatencySimulator) {
		l.rand = fn
	}
}

// NewLatencySimulator creates a simulator writing to state.
func NewLatencySimulator(state *State, opts ...LatencyOption) *LatencySimulator {
	l := &LatencySimulator{
		state:    state,
		interval: DefaultLatencyInterval,
		rand:     rand.Float64,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Tick applies one jitter step and returns the new latency.
func (l *LatencySimulator) Tick() float64 {
	next := StepLatency(l.state.Latency(), l.rand())
	l.state.SetLatency(next)
	return next
}

// Run ticks until ctx is cancelled.
func (l *LatencySimulator) Run(ctx context.Context) {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Tick()
		}
	}
}
