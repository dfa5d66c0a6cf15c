package config

import (
	"fmt"
	"math"
	"sync"
)

const (
	// SectionIDLLM is the identifier for the LLM settings section
	SectionIDLLM = "llm"

	// ProviderGemini selects the Gemini backend.
	ProviderGemini = "gemini"
	// ProviderOpenAI selects an OpenAI-compatible backend.
	ProviderOpenAI = "openai"

	// MaxThinkingBudget is the largest deep_thinking_budget the provider
	// request can carry.
	MaxThinkingBudget = math.MaxInt32
)

// LLMSection manages provider and per-mode model settings.
// Empty model names mean "use the built-in default for that mode".
type LLMSection struct {
	Provider           string
	APIKey             string
	BaseURL            string
	FastModel          string
	SearchModel        string
	DeepModel          string
	DeepThinkingBudget int
	mu                 sync.RWMutex
}

// NewLLMSection creates a new LLM section with default settings.
func NewLLMSection() *LLMSection {
	return &LLMSection{}
}

// ID returns the section identifier.
func (s *LLMSection) ID() string {
	return SectionIDLLM
}

// Title returns the section title.
func (s *LLMSection) Title() string {
	return "LLM Settings"
}

// Description returns the section description.
func (s *LLMSection) Description() string {
	return "Provider, credentials and the model used by each mode. Leave a model empty to use the default for its mode."
}

// Data returns the current configuration data.
func (s *LLMSection) Data() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]any{
		"provider":             s.Provider,
		"api_key":              s.APIKey,
		"base_url":             s.BaseURL,
		"fast_model":           s.FastModel,
		"search_model":         s.SearchModel,
		"deep_model":           s.DeepModel,
		"deep_thinking_budget": s.DeepThinkingBudget,
	}
}

// SetData updates the configuration from the provided data.
func (s *LLMSection) SetData(data map[string]any) error {
	if data == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	fields := map[string]*string{
		"provider":     &s.Provider,
		"api_key":      &s.APIKey,
		"base_url":     &s.BaseURL,
		"fast_model":   &s.FastModel,
		"search_model": &s.SearchModel,
		"deep_model":   &s.DeepModel,
	}
	for key, dst := range fields {
		if v, ok := data[key].(string); ok {
			*dst = v
		}
	}

	if raw, exists := data["deep_thinking_budget"]; exists {
		budget, ok := intValue(raw)
		if !ok {
			return fmt.Errorf("deep_thinking_budget must be an integer, got %v", raw)
		}
		s.DeepThinkingBudget = budget
	}

	return nil
}

// Validate validates the current configuration.
// A missing API key is not an error here; it is reported when the provider is built.
func (s *LLMSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch s.Provider {
	case "", ProviderGemini, ProviderOpenAI:
	default:
		return fmt.Errorf("unknown provider %q (expected %s or %s)", s.Provider, ProviderGemini, ProviderOpenAI)
	}
	if s.DeepThinkingBudget < 0 {
		return fmt.Errorf("deep_thinking_budget must not be negative")
	}
	if s.DeepThinkingBudget > MaxThinkingBudget {
		return fmt.Errorf("deep_thinking_budget %d exceeds %d", s.DeepThinkingBudget, MaxThinkingBudget)
	}
	return nil
}

// Reset resets the section to default configuration.
func (s *LLMSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Provider = ""
	s.APIKey = ""
	s.BaseURL = ""
	s.FastModel = ""
	s.SearchModel = ""
	s.DeepModel = ""
	s.DeepThinkingBudget = 0
}

// GetProvider returns the configured provider name.
func (s *LLMSection) GetProvider() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Provider
}

// GetAPIKey returns the configured API key.
func (s *LLMSection) GetAPIKey() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.APIKey
}

// SetAPIKey sets the API key.
func (s *LLMSection) SetAPIKey(apiKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.APIKey = apiKey
}

// GetBaseURL returns the configured base URL.
func (s *LLMSection) GetBaseURL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.BaseURL
}

// GetModels returns the configured per-mode model names.
func (s *LLMSection) GetModels() ModelSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ModelSet{Fast: s.FastModel, Search: s.SearchModel, Deep: s.DeepModel}
}

// GetDeepThinkingBudget returns the configured deep-mode budget, 0 if unset.
func (s *LLMSection) GetDeepThinkingBudget() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.DeepThinkingBudget
}
