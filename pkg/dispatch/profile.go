package dispatch

import (
	"github.com/thelegendaryrichman/nova/pkg/llm"
	"github.com/thelegendaryrichman/nova/pkg/types"
)

// Default model names per mode.
const (
	DefaultFastModel   = "gemini-2.5-flash-lite-latest"
	DefaultSearchModel = "gemini-2.5-flash"
	DefaultDeepModel   = "gemini-3-pro-preview"

	// DefaultThinkingBudget is the reasoning-token allowance for deep requests.
	DefaultThinkingBudget int32 = 32768
)

// System instructions sent with each mode.
const (
	FastInstruction   = "You are a lightning-fast browser engine. Be concise, accurate, and direct."
	SearchInstruction = "You are an AI browser with live internet access via Google Search and Google Maps. Provide up-to-the-minute information and location-based results."
	DeepInstruction   = "You are Nova, an ultra-intelligent browser assistant. Provide deep, structured reasoning for complex queries."
)

// Fallback titles for grounding chunks that arrive without one.
const (
	WebResultTitle      = "Web Result"
	LocationResultTitle = "Location Result"
)

// Profile is the fixed request shape used for one mode.
type Profile struct {
	Mode              types.Mode
	Model             string
	SystemInstruction string
	Tools             llm.ToolSet
	ThinkingBudget    int32

	// UsesLocation reports whether coordinates bias the request.
	UsesLocation bool

	// CollectsLinks reports whether grounding chunks become links.
	CollectsLinks bool
}

// DefaultProfiles returns the built-in profile table keyed by mode.
func DefaultProfiles() map[types.Mode]Profile {
	return map[types.Mode]Profile{
		types.ModeFast: {
			Mode:              types.ModeFast,
			Model:             DefaultFastModel,
			SystemInstruction: FastInstruction,
		},
		types.ModeSearch: {
			Mode:              types.ModeSearch,
			Model:             DefaultSearchModel,
			SystemInstruction: SearchInstruction,
			Tools:             llm.ToolSet{Search: true, Maps: true},
			UsesLocation:      true,
			CollectsLinks:     true,
		},
		types.ModeDeep: {
			Mode:              types.ModeDeep,
			Model:             DefaultDeepModel,
			SystemInstruction: DeepInstruction,
			ThinkingBudget:    DefaultThinkingBudget,
		},
	}
}

// request builds the provider request for prompt under p.
func (p Profile) request(prompt string, coords *types.Coordinates) *llm.Request {
	req := &llm.Request{
		Model:             p.Model,
		SystemInstruction: p.SystemInstruction,
		Prompt:            prompt,
		Tools:             p.Tools,
		ThinkingBudget:    p.ThinkingBudget,
	}
	if p.UsesLocation && coords != nil {
		c := *coords
		req.Location = &c
	}
	return req
}

// NormalizeLinks converts grounding chunks into display links, in order.
// Chunks of unknown kind are skipped and missing titles get a fallback.
func NormalizeLinks(chunks []llm.GroundingChunk) []types.GroundingLink {
	links := make([]types.GroundingLink, 0, len(chunks))
	for _, c := range chunks {
		switch c.Kind {
		case llm.ChunkWeb:
			links = append(links, types.GroundingLink{Title: titleOr(c.Title, WebResultTitle), URI: c.URI})
		case llm.ChunkMaps:
			links = append(links, types.GroundingLink{Title: titleOr(c.Title, LocationResultTitle), URI: c.URI})
		}
	}
	return links
}

func titleOr(title, fallback string) string {
	if title == "" {
		return fallback
	}
	return title
}
