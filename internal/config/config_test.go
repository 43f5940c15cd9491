package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sjt-studio/internal/domain"
)

func validConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider: ProviderGemini,
			Gemini:   ProviderConfig{APIKey: "key", Model: "gemini-2.5-pro"},
		},
		Batch: BatchConfig{
			MaxOptions:  4,
			OptionOrder: OptionOrderLevel,
			CallDelay:   time.Second,
		},
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	viper.Reset()
	t.Setenv("GEMINI_API_KEY", "env-key")
	t.Setenv("REDIS_ADDRESS", "localhost:6380")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ProviderGemini, cfg.LLM.Provider)
	assert.Equal(t, "env-key", cfg.LLM.Gemini.APIKey)
	assert.Equal(t, "localhost:6380", cfg.Redis.Address)
	assert.Equal(t, "mod-levels", cfg.Batch.Profile)
	assert.Equal(t, 0, cfg.Batch.Attempts)
	assert.Equal(t, time.Second, cfg.Batch.CallDelay)
	assert.Equal(t, 4, cfg.Batch.MaxOptions)
	assert.Equal(t, OptionOrderLevel, cfg.Batch.OptionOrder)
	assert.Equal(t, 120*time.Second, cfg.LLM.Timeout)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	viper.Reset()
	t.Setenv("LLM_PROVIDER", "OpenAI")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("BATCH_ATTEMPTS", "2")
	t.Setenv("BATCH_CALL_DELAY", "250ms")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, "sk-test", cfg.LLM.OpenAI.APIKey)
	assert.Equal(t, 2, cfg.Batch.Attempts)
	assert.Equal(t, 250*time.Millisecond, cfg.Batch.CallDelay)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		errCode domain.ErrorCode
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{
			name:    "gemini without key",
			mutate:  func(c *Config) { c.LLM.Gemini.APIKey = "" },
			errCode: domain.ErrMissingCredential,
		},
		{
			name: "openai without key",
			mutate: func(c *Config) {
				c.LLM.Provider = ProviderOpenAI
			},
			errCode: domain.ErrMissingCredential,
		},
		{
			name: "ollama needs no key",
			mutate: func(c *Config) {
				c.LLM.Provider = ProviderOllama
				c.LLM.Ollama.ServerURL = "http://localhost:11434"
			},
		},
		{
			name: "ollama without server",
			mutate: func(c *Config) {
				c.LLM.Provider = ProviderOllama
			},
			errCode: domain.ErrInvalidInput,
		},
		{
			name:    "unknown provider",
			mutate:  func(c *Config) { c.LLM.Provider = "bard" },
			errCode: domain.ErrInvalidInput,
		},
		{
			name:    "negative attempts",
			mutate:  func(c *Config) { c.Batch.Attempts = -1 },
			errCode: domain.ErrInvalidInput,
		},
		{
			name:    "zero max options",
			mutate:  func(c *Config) { c.Batch.MaxOptions = 0 },
			errCode: domain.ErrInvalidInput,
		},
		{
			name:    "negative delay",
			mutate:  func(c *Config) { c.Batch.CallDelay = -time.Second },
			errCode: domain.ErrInvalidInput,
		},
		{
			name:    "unknown option order",
			mutate:  func(c *Config) { c.Batch.OptionOrder = "random" },
			errCode: domain.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errCode == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, domain.HasCode(err, tt.errCode), "got %v", err)
		})
	}
}

func TestParseTTLStringOrDefault(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, 2*time.Hour, cfg.ParseTTLStringOrDefault("2h", time.Minute))
	assert.Equal(t, time.Minute, cfg.ParseTTLStringOrDefault("", time.Minute))
	assert.Equal(t, time.Minute, cfg.ParseTTLStringOrDefault("soon", time.Minute))
	assert.Equal(t, time.Minute, cfg.ParseTTLStringOrDefault("-1h", time.Minute))
}
