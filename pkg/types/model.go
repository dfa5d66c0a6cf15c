package types

// ModelInfo describes the model a provider talks to.
type ModelInfo struct {
	Provider          string
	Name              string
	SupportsStreaming bool
	SupportsGrounding bool
	MaxTokens         int
	Metadata          map[string]interface{}
}
