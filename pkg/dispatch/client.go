// Package dispatch turns a (prompt, mode, coordinates) triple into exactly one
// provider call and normalizes the reply into display text plus links.
package dispatch

import (
	"context"
	"fmt"

	"github.com/thelegendaryrichman/nova/pkg/llm"
	"github.com/thelegendaryrichman/nova/pkg/logging"
	"github.com/thelegendaryrichman/nova/pkg/types"
)

var debugLog *logging.Logger

func init() {
	var err error
	debugLog, err = logging.NewLogger("dispatch")
	if err != nil {
		debugLog.Warnf("Failed to initialize dispatch logger, using stderr fallback: %v", err)
	}
}

// Result is the normalized outcome of one dispatch.
type Result struct {
	Text  string
	Links []types.GroundingLink
}

// Client selects a profile per mode and calls the provider.
// It holds no per-request state and is safe for concurrent use.
type Client struct {
	provider llm.Provider
	profiles map[types.Mode]Profile
}

// Option configures a Client.
type Option func(*Client)

// WithModel overrides the model used for mode. Empty names are ignored.
func WithModel(mode types.Mode, model string) Option {
	return func(c *Client) {
		if model == "" {
			return
		}
		if p, ok := c.profiles[mode]; ok {
			p.Model = model
			c.profiles[mode] = p
		}
	}
}

// WithThinkingBudget overrides the deep-mode reasoning allowance.
// Non-positive values are ignored.
func WithThinkingBudget(budget int32) Option {
	return func(c *Client) {
		if budget <= 0 {
			return
		}
		p := c.profiles[types.ModeDeep]
		p.ThinkingBudget = budget
		c.profiles[types.ModeDeep] = p
	}
}

// WithSystemInstruction replaces the instruction sent for mode.
func WithSystemInstruction(mode types.Mode, instruction string) Option {
	return func(c *Client) {
		if p, ok := c.profiles[mode]; ok && instruction != "" {
			p.SystemInstruction = instruction
			c.profiles[mode] = p
		}
	}
}

// NewClient creates a dispatch client over provider.
func NewClient(provider llm.Provider, opts ...Option) *Client {
	c := &Client{
		provider: provider,
		profiles: DefaultProfiles(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if info := provider.GetModelInfo(); info != nil {
		debugLog.Infof("Dispatch client using %s provider (default model %s)", info.Provider, provider.GetModel())
	}
	return c
}

// Profile returns the profile used for mode.
func (c *Client) Profile(mode types.Mode) (Profile, bool) {
	p, ok := c.profiles[mode]
	return p, ok
}

// Dispatch performs one provider call for prompt under mode's profile.
// coords may be nil. Provider errors are returned unchanged; there is no retry.
func (c *Client) Dispatch(ctx context.Context, prompt string, mode types.Mode, coords *types.Coordinates) (*Result, error) {
	profile, ok := c.profiles[mode]
	if !ok {
		return nil, fmt.Errorf("unknown mode %q", mode)
	}

	req := profile.request(prompt, coords)
	debugLog.Debugf("Dispatching %s request to %s (tools=%v, location=%v, thinking=%d)",
		mode, req.Model, req.Tools.Any(), req.Location != nil, req.ThinkingBudget)

	resp, err := c.provider.Generate(ctx, req)
	if err != nil {
		debugLog.Errorf("%s request failed: %v", mode, err)
		return nil, err
	}

	result := &Result{Text: resp.Text}
	if profile.CollectsLinks {
		result.Links = NormalizeLinks(resp.GroundingChunks)
	}
	debugLog.Debugf("%s request returned %d chars, %d links", mode, len(result.Text), len(result.Links))
	return result, nil
}
