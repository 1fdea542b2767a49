// Package llm provides centralized LLM configuration and client abstractions.
// Agents talk to a Client; which SDK backs it is a configuration choice.
package llm

import "fmt"

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for simple tasks: per-field content selection
	TierLite ModelTier = "lite"
	// TierStandard is for moderate reasoning: job analysis, style edits
	TierStandard ModelTier = "standard"
	// TierAdvanced is for complex reasoning: drafting, fabrication checks, QA
	TierAdvanced ModelTier = "advanced"
)

// Provider represents an LLM SDK backend
type Provider string

// Provider constants define supported backends
const (
	// ProviderGemini uses github.com/google/generative-ai-go
	ProviderGemini Provider = "gemini"
	// ProviderGenAI uses google.golang.org/genai
	ProviderGenAI Provider = "genai"
)

// DefaultTemperature keeps output consistent across retries
const DefaultTemperature float32 = 0.1

// Config holds the model configuration for the application
type Config struct {
	Provider        Provider
	Models          map[ModelTier]string
	Temperature     float32 // zero means DefaultTemperature
	MaxOutputTokens int32
}

// DefaultConfig returns the default configuration (Gemini)
func DefaultConfig() *Config {
	return DefaultGeminiConfig()
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
	}
}

// ParseProvider validates a provider name
func ParseProvider(name string) (Provider, error) {
	switch Provider(name) {
	case ProviderGemini, ProviderGenAI:
		return Provider(name), nil
	case "":
		return ProviderGemini, nil
	default:
		return "", fmt.Errorf("unknown LLM provider %q (expected %s or %s)", name, ProviderGemini, ProviderGenAI)
	}
}

// GetModel returns the model name for a given tier
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	// Fallback chain: try standard, then lite
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return ""
}

// WithModel returns a new Config with a specific model for a tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	newConfig := *c
	newConfig.Models = make(map[ModelTier]string, len(c.Models)+1)
	for k, v := range c.Models {
		newConfig.Models[k] = v
	}
	newConfig.Models[tier] = model
	return &newConfig
}

func (c *Config) temperature() float32 {
	if c.Temperature == 0 {
		return DefaultTemperature
	}
	return c.Temperature
}
