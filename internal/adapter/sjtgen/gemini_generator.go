package sjtgen

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"sjt-studio/internal/config"
	"sjt-studio/internal/domain"
)

// geminiModels is the part of genai.Models the generator calls.
type geminiModels interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiGenerator implements domain.SJTGenerator with the Gemini API.
type GeminiGenerator struct {
	models      geminiModels
	model       string
	temperature float32
	timeout     time.Duration
	logger      *zap.Logger
}

// NewGeminiGenerator creates a Gemini client for the configured model.
func NewGeminiGenerator(ctx context.Context, llmCfg config.LLMConfig, logger *zap.Logger) (*GeminiGenerator, error) {
	if llmCfg.Gemini.APIKey == "" {
		return nil, domain.NewMissingCredentialError(config.ProviderGemini, "GEMINI_API_KEY")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  llmCfg.Gemini.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	logger.Info("Initializing Gemini generator", zap.String("model", llmCfg.Gemini.Model))
	return newGeminiGenerator(client.Models, llmCfg, logger), nil
}

func newGeminiGenerator(models geminiModels, llmCfg config.LLMConfig, logger *zap.Logger) *GeminiGenerator {
	return &GeminiGenerator{
		models:      models,
		model:       llmCfg.Gemini.Model,
		temperature: float32(llmCfg.Temperature),
		timeout:     llmCfg.Timeout,
		logger:      logger,
	}
}

// Name identifies the provider and model, e.g. "gemini/gemini-2.5-pro".
func (g *GeminiGenerator) Name() string {
	return config.ProviderGemini + "/" + g.model
}

func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature: genai.Ptr(g.temperature),
	})
	if err != nil {
		return "", domain.NewLLMServiceError(fmt.Errorf("gemini %s: %w", g.model, err))
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", domain.NewLLMServiceError(errors.New("gemini returned no candidates"))
	}
	g.logger.Debug("Gemini reply received",
		zap.String("model", g.model),
		zap.Duration("elapsed", time.Since(start)),
	)
	return resp.Text(), nil
}

var _ domain.SJTGenerator = (*GeminiGenerator)(nil)
