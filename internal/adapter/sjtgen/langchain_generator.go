package sjtgen

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"

	"sjt-studio/internal/config"
	"sjt-studio/internal/domain"
)

// LangChainGenerator implements domain.SJTGenerator over any langchaingo model.
type LangChainGenerator struct {
	llm         llms.Model
	name        string
	temperature float64
	timeout     time.Duration
	logger      *zap.Logger
}

func NewLangChainGenerator(llm llms.Model, name string, llmCfg config.LLMConfig, logger *zap.Logger) *LangChainGenerator {
	return &LangChainGenerator{
		llm:         llm,
		name:        name,
		temperature: llmCfg.Temperature,
		timeout:     llmCfg.Timeout,
		logger:      logger,
	}
}

// NewOpenAIGenerator creates an OpenAI chat model generator.
func NewOpenAIGenerator(llmCfg config.LLMConfig, logger *zap.Logger) (*LangChainGenerator, error) {
	if llmCfg.OpenAI.APIKey == "" {
		return nil, domain.NewMissingCredentialError(config.ProviderOpenAI, "OPENAI_API_KEY")
	}
	llm, err := openai.New(
		openai.WithToken(llmCfg.OpenAI.APIKey),
		openai.WithModel(llmCfg.OpenAI.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create openai client: %w", err)
	}
	logger.Info("Initializing OpenAI generator", zap.String("model", llmCfg.OpenAI.Model))
	return NewLangChainGenerator(llm, config.ProviderOpenAI+"/"+llmCfg.OpenAI.Model, llmCfg, logger), nil
}

// NewOllamaGenerator creates a generator backed by a local Ollama server.
func NewOllamaGenerator(llmCfg config.LLMConfig, logger *zap.Logger) (*LangChainGenerator, error) {
	httpClient := &http.Client{Timeout: llmCfg.Timeout}
	llm, err := ollama.New(
		ollama.WithServerURL(llmCfg.Ollama.ServerURL),
		ollama.WithModel(llmCfg.Ollama.Model),
		ollama.WithHTTPClient(httpClient),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ollama client: %w", err)
	}
	logger.Info("Initializing Ollama generator",
		zap.String("server_url", llmCfg.Ollama.ServerURL),
		zap.String("model", llmCfg.Ollama.Model),
	)
	return NewLangChainGenerator(llm, config.ProviderOllama+"/"+llmCfg.Ollama.Model, llmCfg, logger), nil
}

func (g *LangChainGenerator) Name() string {
	return g.name
}

func (g *LangChainGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	reply, err := llms.GenerateFromSinglePrompt(ctx, g.llm, prompt, llms.WithTemperature(g.temperature))
	if err != nil {
		return "", domain.NewLLMServiceError(fmt.Errorf("%s: %w", g.name, err))
	}
	g.logger.Debug("LLM reply received",
		zap.String("model", g.name),
		zap.Duration("elapsed", time.Since(start)),
	)
	return reply, nil
}

var _ domain.SJTGenerator = (*LangChainGenerator)(nil)
