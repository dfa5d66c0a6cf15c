// Package llm provides abstractions for generative-AI provider integration.
//
// Example usage:
//
//	package main
//
//	import (
//	    "context"
//	    "fmt"
//	    "log"
//	    "os"
//
//	    "github.com/thelegendaryrichman/nova/pkg/llm"
//	    "github.com/thelegendaryrichman/nova/pkg/llm/gemini"
//	)
//
//	func main() {
//	    provider, err := gemini.NewProvider(context.Background(),
//	        os.Getenv("GEMINI_API_KEY"),
//	        gemini.WithModel("gemini-2.5-flash"),
//	    )
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    resp, err := provider.Generate(context.Background(), &llm.Request{
//	        Prompt: "Search for: best pizza nearby",
//	        Tools:  llm.ToolSet{Search: true, Maps: true},
//	    })
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(resp.Text)
//	}
package llm

import (
	"context"

	"github.com/thelegendaryrichman/nova/pkg/types"
)

// ToolSet selects the retrieval tools enabled for a request.
type ToolSet struct {
	Search bool
	Maps   bool
}

// Any reports whether at least one tool is enabled.
func (t ToolSet) Any() bool {
	return t.Search || t.Maps
}

// Request is a single non-streaming generation request.
type Request struct {
	// Model overrides the provider's default model when non-empty.
	Model string

	// SystemInstruction is sent ahead of the prompt.
	SystemInstruction string

	// Prompt is the user turn.
	Prompt string

	// Tools lists the retrieval tools to enable.
	Tools ToolSet

	// Location biases retrieval when tools are enabled. May be nil.
	Location *types.Coordinates

	// ThinkingBudget is the internal reasoning-token allowance. Zero leaves
	// the provider default in place.
	ThinkingBudget int32
}

// Response is the normalized provider reply.
type Response struct {
	Text            string
	GroundingChunks []GroundingChunk
}

// Provider defines the interface for generative-AI integrations.
//
// Providers handle API communication and translate the provider's loosely
// typed response into a Response. Profile selection (which model, which
// tools, which instruction) belongs to the caller; a Provider performs exactly
// one exchange per Generate call and never retries.
type Provider interface {
	// Generate sends one request and returns the complete response.
	// Transport, authentication and decoding failures are returned as errors.
	Generate(ctx context.Context, req *Request) (*Response, error)

	// GetModelInfo returns information about the default model.
	GetModelInfo() *types.ModelInfo

	// GetModel returns the default model name.
	GetModel() string

	// GetBaseURL returns the base URL used for API requests.
	GetBaseURL() string
}
