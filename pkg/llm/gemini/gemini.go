// Package gemini provides a Google Gemini provider implementation backed by
// the google.golang.org/genai SDK.
//
// Example usage:
//
//	provider, err := gemini.NewProvider(ctx,
//	    os.Getenv("GEMINI_API_KEY"),
//	    gemini.WithModel("gemini-2.5-flash"),
//	)
//	if err != nil {
//	    panic(err)
//	}
//
//	resp, err := provider.Generate(ctx, &llm.Request{Prompt: "Search for: tides today"})
package gemini

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/thelegendaryrichman/nova/pkg/llm"
	"github.com/thelegendaryrichman/nova/pkg/llm/parser"
	"github.com/thelegendaryrichman/nova/pkg/types"
	"google.golang.org/genai"
)

const (
	// DefaultBaseURL is the default Gemini API base URL
	DefaultBaseURL = "https://generativelanguage.googleapis.com/"

	// DefaultModel is used when neither the request nor the options name a model
	DefaultModel = "gemini-2.5-flash"
)

// Provider implements llm.Provider for the Gemini API.
type Provider struct {
	client     *genai.Client
	httpClient *http.Client
	apiKey     string
	baseURL    string
	model      string
	modelInfo  *types.ModelInfo
}

// ProviderOption is a function that configures a Provider.
type ProviderOption func(*Provider)

// WithModel sets the default model.
func WithModel(model string) ProviderOption {
	return func(p *Provider) {
		p.model = model
	}
}

// WithBaseURL points the client at a different endpoint (proxies, tests).
func WithBaseURL(baseURL string) ProviderOption {
	return func(p *Provider) {
		p.baseURL = baseURL
	}
}

// WithHTTPClient sets the HTTP client used for API calls.
func WithHTTPClient(c *http.Client) ProviderOption {
	return func(p *Provider) {
		p.httpClient = c
	}
}

// NewProvider creates a Gemini provider.
//
// If apiKey is empty, GEMINI_API_KEY and then GOOGLE_API_KEY are consulted.
func NewProvider(ctx context.Context, apiKey string, opts ...ProviderOption) (*Provider, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		apiKey = os.Getenv("GOOGLE_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required (provide via parameter or GEMINI_API_KEY environment variable)")
	}

	p := &Provider{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		model:   DefaultModel,
	}
	for _, opt := range opts {
		opt(p)
	}

	cc := &genai.ClientConfig{
		APIKey:     p.apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: p.httpClient,
	}
	if p.baseURL != DefaultBaseURL {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: p.baseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	p.client = client

	p.modelInfo = &types.ModelInfo{
		Provider:          "gemini",
		Name:              p.model,
		SupportsGrounding: true,
		Metadata:          make(map[string]interface{}),
	}
	if p.baseURL != DefaultBaseURL {
		p.modelInfo.Metadata["base_url"] = p.baseURL
	}

	return p, nil
}

// Generate performs one generateContent call.
func (p *Provider) Generate(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	model := req.Model
	if model == "" {
		model = p.model
	}

	resp, err := p.client.Models.GenerateContent(ctx, model, genai.Text(req.Prompt), buildConfig(req))
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}

	return &llm.Response{
		Text:            responseText(resp),
		GroundingChunks: groundingChunks(resp),
	}, nil
}

// buildConfig maps a provider-neutral request onto the SDK config.
func buildConfig(req *llm.Request) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}

	if req.SystemInstruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}

	if req.Tools.Search {
		cfg.Tools = append(cfg.Tools, &genai.Tool{GoogleSearch: &genai.GoogleSearch{}})
	}
	if req.Tools.Maps {
		cfg.Tools = append(cfg.Tools, &genai.Tool{GoogleMaps: &genai.GoogleMaps{}})
	}

	// Location bias only applies to retrieval, so it is dropped when no tool is enabled.
	if req.Location != nil && req.Tools.Any() {
		cfg.ToolConfig = &genai.ToolConfig{
			RetrievalConfig: &genai.RetrievalConfig{
				LatLng: &genai.LatLng{
					Latitude:  genai.Ptr(req.Location.Latitude),
					Longitude: genai.Ptr(req.Location.Longitude),
				},
			},
		}
	}

	if req.ThinkingBudget > 0 {
		cfg.ThinkingConfig = &genai.ThinkingConfig{
			ThinkingBudget: genai.Ptr(req.ThinkingBudget),
		}
	}

	return cfg
}

// responseText concatenates the visible text parts of the first candidate.
// Thought parts are skipped.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	c := resp.Candidates[0]
	if c == nil || c.Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range c.Content.Parts {
		if part == nil || part.Thought || part.Text == "" {
			continue
		}
		sb.WriteString(part.Text)
	}
	// Some models inline their reasoning instead of marking thought parts.
	return parser.StripThinking(sb.String())
}

// groundingChunks converts the first candidate's grounding metadata into the
// provider-neutral tagged union, preserving order.
func groundingChunks(resp *genai.GenerateContentResponse) []llm.GroundingChunk {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return nil
	}
	md := resp.Candidates[0].GroundingMetadata
	if md == nil || len(md.GroundingChunks) == 0 {
		return nil
	}

	chunks := make([]llm.GroundingChunk, 0, len(md.GroundingChunks))
	for _, gc := range md.GroundingChunks {
		if gc == nil {
			continue
		}
		// A chunk carrying both sources yields two entries, web first.
		matched := false
		if gc.Web != nil {
			chunks = append(chunks, llm.WebChunk(gc.Web.Title, gc.Web.URI))
			matched = true
		}
		if gc.Maps != nil {
			chunks = append(chunks, llm.MapsChunk(gc.Maps.Title, gc.Maps.URI))
			matched = true
		}
		if !matched {
			chunks = append(chunks, llm.GroundingChunk{Kind: llm.ChunkUnknown})
		}
	}
	return chunks
}

// GetModelInfo returns information about the default model.
func (p *Provider) GetModelInfo() *types.ModelInfo {
	return p.modelInfo
}

// GetModel returns the default model name.
func (p *Provider) GetModel() string {
	return p.model
}

// GetBaseURL returns the base URL being used.
func (p *Provider) GetBaseURL() string {
	return p.baseURL
}
