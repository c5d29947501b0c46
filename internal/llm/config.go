// Package llm wraps the Gemini API behind a small tiered client.
package llm

// ModelTier selects a model by capability.
type ModelTier string

const (
	// TierLite is for cheap classification and extraction
	TierLite ModelTier = "lite"
	// TierStandard is for resume revamps and gap tables
	TierStandard ModelTier = "standard"
	// TierAdvanced is for long-form planning
	TierAdvanced ModelTier = "advanced"
)

// Provider names an LLM backend.
type Provider string

// ProviderGemini is the only supported provider.
const ProviderGemini Provider = "gemini"

// Config maps tiers to model names.
type Config struct {
	Provider    Provider
	Models      map[ModelTier]string
	Temperature float32
}

// DefaultConfig returns the Gemini configuration. Temperature is zero so
// repeated revamps of the same input stay stable.
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
	}
}

// GetModel returns the model for tier, falling back to standard then lite.
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return ""
}

// WithModel returns a copy of c with tier mapped to model.
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	next := &Config{
		Provider:    c.Provider,
		Models:      make(map[ModelTier]string, len(c.Models)+1),
		Temperature: c.Temperature,
	}
	for k, v := range c.Models {
		next.Models[k] = v
	}
	next.Models[tier] = model
	return next
}
