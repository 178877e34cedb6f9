package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"alfredoptarigan/resume-tailor/internal/logger"
)

type geminiGateway struct {
	handle      *ClientHandle[*genai.Client]
	apiKey      string
	modelName   string
	temperature float32
	log         *zap.Logger
}

func NewGeminiGateway(apiKey, model string, temperature float32, log *zap.Logger) LLMGateway {
	if model == "" {
		model = defaultGeminiModel
	}

	handle := NewClientHandle(func() (*genai.Client, error) {
		client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
			APIKey:  apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini client: %w", err)
		}
		return client, nil
	})

	return &geminiGateway{
		handle:      handle,
		apiKey:      apiKey,
		modelName:   model,
		temperature: temperature,
		log:         logger.WithCommonFields(log, ProviderGemini, model),
	}
}

func (g *geminiGateway) Provider() string {
	return ProviderGemini
}

// Complete implements LLMGateway.
func (g *geminiGateway) Complete(ctx context.Context, systemPrompt, userPrompt string, opts CompletionOptions) (string, error) {
	if g.apiKey == "" {
		return "", ErrProviderUnavailable
	}

	client, err := g.handle.Get()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProviderError, err)
	}

	model := modelOr(opts, g.modelName)
	temperature := temperatureOr(opts, g.temperature)

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		Temperature:       &temperature,
		MaxOutputTokens:   8192,
	}
	if opts.JSONMode {
		config.ResponseMIMEType = "application/json"
	}

	g.log.Debug("📝 gemini request", zap.String("model", model), zap.Int("prompt_chars", len(userPrompt)))

	resp, err := client.Models.GenerateContent(ctx, model, genai.Text(userPrompt), config)
	if err != nil {
		g.log.Error("❌ Gemini API error", zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrProviderError, err)
	}

	if resp == nil {
		return "", fmt.Errorf("%w: nil response", ErrProviderError)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("%w: no text content in response", ErrProviderError)
	}

	g.log.Debug("📊 gemini response received",
		zap.Int("response_chars", len(text)),
		zap.String("preview", logger.TruncateForLog(text, logger.PreviewLimit)),
	)

	return StripCodeFences(text), nil
}
