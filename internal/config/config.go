package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"sjt-studio/internal/domain"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"

	OptionOrderReceived = "received"
	OptionOrderLevel    = "level"
)

type Config struct {
	Logger    LoggerConfig
	LLM       LLMConfig
	Batch     BatchConfig
	Templates map[string]string
	Redis     RedisConfig
	CacheTTLs CacheTTLConfig
	Server    ServerConfig
}

type LoggerConfig struct {
	Level string
	Env   string
}

type LLMConfig struct {
	Provider    string
	Timeout     time.Duration
	Temperature float64
	Gemini      ProviderConfig
	OpenAI      ProviderConfig
	Ollama      OllamaConfig
}

type ProviderConfig struct {
	APIKey string
	Model  string
}

type OllamaConfig struct {
	ServerURL string
	Model     string
}

type BatchConfig struct {
	Profile string
	// Attempts overrides the profile's attempt count when positive.
	Attempts    int
	CallDelay   time.Duration
	MaxOptions  int
	OptionOrder string
	Sheet       string
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

type CacheTTLConfig struct {
	Reply string
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	BodyLimitMB  int
}

func setDefaults() {
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.env", "development")

	viper.SetDefault("llm.provider", ProviderGemini)
	viper.SetDefault("llm.timeout", "120s")
	viper.SetDefault("llm.temperature", 0.9)
	viper.SetDefault("llm.gemini.model", "gemini-2.5-pro")
	viper.SetDefault("llm.openai.model", "gpt-4o")
	viper.SetDefault("llm.ollama.server_url", "http://localhost:11434")
	viper.SetDefault("llm.ollama.model", "qwen3:8b")

	viper.SetDefault("batch.profile", "mod-levels")
	viper.SetDefault("batch.attempts", 0)
	viper.SetDefault("batch.call_delay", "1s")
	viper.SetDefault("batch.max_options", 4)
	viper.SetDefault("batch.option_order", OptionOrderLevel)

	viper.SetDefault("cache_ttls.reply", "720h")

	viper.SetDefault("server.port", 8090)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30m")
	viper.SetDefault("server.body_limit_mb", 10)
}

// LoadConfig reads config.yaml (optional) and the environment.
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	config := &Config{
		Logger: LoggerConfig{
			Level: viper.GetString("logger.level"),
			Env:   viper.GetString("logger.env"),
		},
		LLM: LLMConfig{
			Provider:    strings.ToLower(viper.GetString("llm.provider")),
			Timeout:     viper.GetDuration("llm.timeout"),
			Temperature: viper.GetFloat64("llm.temperature"),
			Gemini: ProviderConfig{
				APIKey: viper.GetString("llm.gemini.api_key"),
				Model:  viper.GetString("llm.gemini.model"),
			},
			OpenAI: ProviderConfig{
				APIKey: viper.GetString("llm.openai.api_key"),
				Model:  viper.GetString("llm.openai.model"),
			},
			Ollama: OllamaConfig{
				ServerURL: viper.GetString("llm.ollama.server_url"),
				Model:     viper.GetString("llm.ollama.model"),
			},
		},
		Batch: BatchConfig{
			Profile:     viper.GetString("batch.profile"),
			Attempts:    viper.GetInt("batch.attempts"),
			CallDelay:   viper.GetDuration("batch.call_delay"),
			MaxOptions:  viper.GetInt("batch.max_options"),
			OptionOrder: strings.ToLower(viper.GetString("batch.option_order")),
			Sheet:       viper.GetString("batch.sheet"),
		},
		Templates: viper.GetStringMapString("templates"),
		Redis: RedisConfig{
			Address:  viper.GetString("redis.address"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		},
		CacheTTLs: CacheTTLConfig{
			Reply: viper.GetString("cache_ttls.reply"),
		},
		Server: ServerConfig{
			Port:         viper.GetInt("server.port"),
			ReadTimeout:  viper.GetDuration("server.read_timeout"),
			WriteTimeout: viper.GetDuration("server.write_timeout"),
			BodyLimitMB:  viper.GetInt("server.body_limit_mb"),
		},
	}

	// Override with the conventional variable names if set
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		config.LLM.Gemini.APIKey = key
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		config.LLM.OpenAI.APIKey = key
	}
	if redisAddress := os.Getenv("REDIS_ADDRESS"); redisAddress != "" {
		config.Redis.Address = redisAddress
	}
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		config.Redis.Password = redisPassword
	}

	return config, nil
}

// Validate checks settings that must hold before any generation call.
// A missing credential for a hosted provider is a MISSING_CREDENTIAL error.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderGemini:
		if c.LLM.Gemini.APIKey == "" {
			return domain.NewMissingCredentialError(ProviderGemini, "GEMINI_API_KEY")
		}
	case ProviderOpenAI:
		if c.LLM.OpenAI.APIKey == "" {
			return domain.NewMissingCredentialError(ProviderOpenAI, "OPENAI_API_KEY")
		}
	case ProviderOllama:
		if c.LLM.Ollama.ServerURL == "" {
			return domain.NewInvalidInputError("llm.ollama.server_url must be set for the ollama provider")
		}
	default:
		return domain.NewInvalidInputError(fmt.Sprintf("unsupported llm.provider %q", c.LLM.Provider))
	}

	if c.Batch.Attempts < 0 {
		return domain.NewInvalidInputError("batch.attempts must not be negative")
	}
	if c.Batch.MaxOptions < 1 {
		return domain.NewInvalidInputError("batch.max_options must be at least 1")
	}
	if c.Batch.CallDelay < 0 {
		return domain.NewInvalidInputError("batch.call_delay must not be negative")
	}
	switch c.Batch.OptionOrder {
	case OptionOrderReceived, OptionOrderLevel:
	default:
		return domain.NewInvalidInputError(fmt.Sprintf("unsupported batch.option_order %q", c.Batch.OptionOrder))
	}
	return nil
}

// ParseTTLStringOrDefault parses a duration string, falling back to def.
func (c *Config) ParseTTLStringOrDefault(value string, def time.Duration) time.Duration {
	if value == "" {
		return def
	}
	d, err := time.ParseDuration(value)
	if err != nil || d < 0 {
		return def
	}
	return d
}
