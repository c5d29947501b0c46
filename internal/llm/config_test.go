package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, ProviderGemini, config.Provider)
	assert.Equal(t, "gemini-2.5-flash", config.GetModel(TierStandard))
	assert.Equal(t, "gemini-2.5-pro", config.GetModel(TierAdvanced))
	assert.Zero(t, config.Temperature)
}

func TestGetModel_Fallback(t *testing.T) {
	config := &Config{Models: map[ModelTier]string{TierLite: "fallback-model"}}
	assert.Equal(t, "fallback-model", config.GetModel(TierAdvanced))

	empty := &Config{Models: map[ModelTier]string{}}
	assert.Equal(t, "", empty.GetModel(TierAdvanced))
}

func TestWithModel(t *testing.T) {
	config := DefaultConfig()
	next := config.WithModel(TierAdvanced, "custom-model")

	assert.Equal(t, "gemini-2.5-pro", config.GetModel(TierAdvanced))
	assert.Equal(t, "custom-model", next.GetModel(TierAdvanced))
	assert.Equal(t, "gemini-2.5-flash-lite", next.GetModel(TierLite))
}

func TestNewClient_RequiresKey(t *testing.T) {
	_, err := NewClient(t.Context(), nil, "")
	assert.Error(t, err)
}
