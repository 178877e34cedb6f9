package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"alfredoptarigan/resume-tailor/internal/config"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"

	defaultGeminiModel = "gemini-2.5-flash"
	defaultOpenAIModel = "gpt-4o-mini"
)

type CompletionOptions struct {
	Model       string
	Temperature *float32
	JSONMode    bool
}

// LLMGateway makes exactly one chat-completion call per Complete. It never retries.
type LLMGateway interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, opts CompletionOptions) (string, error)
	Provider() string
}

// ClientHandle constructs a provider client on first use and hands out the same
// client for the rest of the process. The client is never replaced.
type ClientHandle[T any] struct {
	once   sync.Once
	build  func() (T, error)
	client T
	err    error
}

func NewClientHandle[T any](build func() (T, error)) *ClientHandle[T] {
	return &ClientHandle[T]{build: build}
}

func (h *ClientHandle[T]) Get() (T, error) {
	h.once.Do(func() {
		h.client, h.err = h.build()
	})
	return h.client, h.err
}

// NewLLMGateway picks the backend named by cfg.Provider.
func NewLLMGateway(cfg config.LLMConfig, log *zap.Logger) (LLMGateway, error) {
	switch cfg.Provider {
	case ProviderGemini, "":
		return NewGeminiGateway(cfg.GeminiAPIKey, cfg.Model, cfg.Temperature, log), nil
	case ProviderOpenAI:
		return NewOpenAIGateway(cfg.OpenAIAPIKey, cfg.OpenAIURL, cfg.Model, cfg.Temperature, log), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

// StripCodeFences removes a surrounding ``` or ```json fence.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	if nl := strings.Index(s, "\n"); nl >= 0 {
		lang := strings.TrimSpace(s[:nl])
		if lang == "" || !strings.ContainsAny(lang, "{[") {
			s = s[nl+1:]
		}
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")

	return strings.TrimSpace(s)
}

func temperatureOr(opts CompletionOptions, fallback float32) float32 {
	if opts.Temperature != nil {
		return *opts.Temperature
	}
	return fallback
}

func modelOr(opts CompletionOptions, fallback string) string {
	if opts.Model != "" {
		return opts.Model
	}
	return fallback
}

// Float32 returns a pointer to v, for CompletionOptions.Temperature.
func Float32(v float32) *float32 {
	return &v
}
