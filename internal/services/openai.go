package services

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"alfredoptarigan/resume-tailor/internal/logger"
)

type openAIGateway struct {
	handle      *ClientHandle[*openai.Client]
	apiKey      string
	modelName   string
	temperature float32
	log         *zap.Logger
}

// NewOpenAIGateway builds a chat-completions gateway. baseURL may be empty for the public API.
func NewOpenAIGateway(apiKey, baseURL, model string, temperature float32, log *zap.Logger) LLMGateway {
	if model == "" {
		model = defaultOpenAIModel
	}

	handle := NewClientHandle(func() (*openai.Client, error) {
		cfg := openai.DefaultConfig(apiKey)
		if baseURL != "" {
			cfg.BaseURL = baseURL
		}
		return openai.NewClientWithConfig(cfg), nil
	})

	return &openAIGateway{
		handle:      handle,
		apiKey:      apiKey,
		modelName:   model,
		temperature: temperature,
		log:         logger.WithCommonFields(log, ProviderOpenAI, model),
	}
}

func (o *openAIGateway) Provider() string {
	return ProviderOpenAI
}

// Complete implements LLMGateway.
func (o *openAIGateway) Complete(ctx context.Context, systemPrompt, userPrompt string, opts CompletionOptions) (string, error) {
	if o.apiKey == "" {
		return "", ErrProviderUnavailable
	}

	client, err := o.handle.Get()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProviderError, err)
	}

	req := openai.ChatCompletionRequest{
		Model:       modelOr(opts, o.modelName),
		Temperature: temperatureOr(opts, o.temperature),
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	}
	if opts.JSONMode {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	o.log.Debug("📝 openai request", zap.String("model", req.Model), zap.Int("prompt_chars", len(userPrompt)))

	resp, err := client.CreateChatCompletion(ctx, req)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			o.log.Error("❌ OpenAI API error", zap.Int("status", apiErr.HTTPStatusCode), zap.String("message", apiErr.Message))
			return "", fmt.Errorf("%w: status %d: %s", ErrProviderError, apiErr.HTTPStatusCode, apiErr.Message)
		}
		o.log.Error("❌ OpenAI request failed", zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrProviderError, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in response", ErrProviderError)
	}

	content := resp.Choices[0].Message.Content
	if content == "" {
		return "", fmt.Errorf("%w: empty message content", ErrProviderError)
	}

	o.log.Debug("📊 openai response received",
		zap.Int("response_chars", len(content)),
		zap.String("preview", logger.TruncateForLog(content, logger.PreviewLimit)),
	)

	return StripCodeFences(content), nil
}
