package config

import (
	"context"
	"fmt"
	"os"

	"github.com/thelegendaryrichman/nova/pkg/dispatch"
	"github.com/thelegendaryrichman/nova/pkg/llm"
	"github.com/thelegendaryrichman/nova/pkg/llm/gemini"
	"github.com/thelegendaryrichman/nova/pkg/llm/openai"
	"github.com/thelegendaryrichman/nova/pkg/types"
)

// ModelSet names the model used by each mode. Empty entries keep the
// provider's default for that mode.
type ModelSet struct {
	Fast   string
	Search string
	Deep   string
}

// ProviderFlags carries command-line values. Empty fields fall through to
// the environment, then the config file.
type ProviderFlags struct {
	Provider string
	APIKey   string
	BaseURL  string
	Models   ModelSet
}

// ProviderSettings is the fully resolved provider configuration.
type ProviderSettings struct {
	Provider           string
	APIKey             string
	BaseURL            string
	Models             ModelSet
	DeepThinkingBudget int32
}

// apiKeyEnv lists the environment variables consulted per provider, in order.
var apiKeyEnv = map[string][]string{
	ProviderGemini: {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
	ProviderOpenAI: {"OPENAI_API_KEY"},
}

// ResolveProvider applies configuration precedence:
// CLI flags > Environment variables > Config file > Defaults
func ResolveProvider(flags ProviderFlags) (ProviderSettings, error) {
	fromFile := GetLLM()
	if fromFile == nil {
		fromFile = NewLLMSection()
	}
	if err := fromFile.Validate(); err != nil {
		return ProviderSettings{}, fmt.Errorf("invalid llm config: %w", err)
	}

	settings := ProviderSettings{
		Provider: firstNonEmpty(flags.Provider, fromFile.GetProvider(), ProviderGemini),
	}
	envKeys, ok := apiKeyEnv[settings.Provider]
	if !ok {
		return ProviderSettings{}, fmt.Errorf("unknown provider %q (expected %s or %s)", settings.Provider, ProviderGemini, ProviderOpenAI)
	}

	settings.APIKey = flags.APIKey
	for _, name := range envKeys {
		if settings.APIKey == "" {
			settings.APIKey = os.Getenv(name)
		}
	}
	if settings.APIKey == "" {
		settings.APIKey = fromFile.GetAPIKey()
	}
	if settings.APIKey == "" {
		return ProviderSettings{}, fmt.Errorf("API key is required. Set %s, use -api-key flag, or configure api_key in ~/.nova/config.yaml", envKeys[0])
	}

	settings.BaseURL = flags.BaseURL
	if settings.BaseURL == "" && settings.Provider == ProviderOpenAI {
		settings.BaseURL = os.Getenv("OPENAI_BASE_URL")
	}
	if settings.BaseURL == "" {
		settings.BaseURL = fromFile.GetBaseURL()
	}

	fileModels := fromFile.GetModels()
	settings.Models = ModelSet{
		Fast:   firstNonEmpty(flags.Models.Fast, fileModels.Fast),
		Search: firstNonEmpty(flags.Models.Search, fileModels.Search),
		Deep:   firstNonEmpty(flags.Models.Deep, fileModels.Deep),
	}
	// The built-in defaults are Gemini model names.
	if settings.Provider == ProviderOpenAI {
		settings.Models.Fast = firstNonEmpty(settings.Models.Fast, openai.DefaultModel)
		settings.Models.Search = firstNonEmpty(settings.Models.Search, openai.DefaultModel)
		settings.Models.Deep = firstNonEmpty(settings.Models.Deep, openai.DefaultModel)
	}

	settings.DeepThinkingBudget = int32(fromFile.GetDeepThinkingBudget())
	return settings, nil
}

// BuildProvider creates the provider named by settings.
func BuildProvider(ctx context.Context, settings ProviderSettings) (llm.Provider, error) {
	switch settings.Provider {
	case ProviderGemini, "":
		var opts []gemini.ProviderOption
		if settings.BaseURL != "" {
			opts = append(opts, gemini.WithBaseURL(settings.BaseURL))
		}
		provider, err := gemini.NewProvider(ctx, settings.APIKey, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create LLM provider: %w", err)
		}
		return provider, nil

	case ProviderOpenAI:
		var opts []openai.ProviderOption
		if settings.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(settings.BaseURL))
		}
		provider, err := openai.NewProvider(settings.APIKey, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create LLM provider: %w", err)
		}
		return provider, nil

	default:
		return nil, fmt.Errorf("unknown provider %q", settings.Provider)
	}
}

// DispatchOptions converts the per-mode settings into dispatch options.
func (s ProviderSettings) DispatchOptions() []dispatch.Option {
	return []dispatch.Option{
		dispatch.WithModel(types.ModeFast, s.Models.Fast),
		dispatch.WithModel(types.ModeSearch, s.Models.Search),
		dispatch.WithModel(types.ModeDeep, s.Models.Deep),
		dispatch.WithThinkingBudget(s.DeepThinkingBudget),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
