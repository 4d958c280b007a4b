package ai

import (
	"context"
	"errors"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIProvider answers through the OpenAI chat-completions API as an
// alternative to Gemini, selected by the ai.provider config option.
type OpenAIProvider struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float64
	logger      *zap.Logger
}

func NewOpenAIProvider(apiKey, model string, maxTokens int, temperature float64, logger *zap.Logger) *OpenAIProvider {
	return &OpenAIProvider{
		client:      openai.NewClient(apiKey),
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		logger:      logger,
	}
}

func (p *OpenAIProvider) Generate(ctx context.Context, prompt string) Result {
	resp, err := p.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: p.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			MaxTokens:   p.maxTokens,
			Temperature: float32(p.temperature),
		},
	)

	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			p.logger.Error("OpenAI returned an API error",
				zap.Int("status", apiErr.HTTPStatusCode),
				zap.Error(err))
			return Result{Kind: ProviderError}
		}
		if isTimeout(err) {
			p.logger.Error("OpenAI request timed out", zap.Error(err))
			return Result{Kind: Timeout}
		}
		p.logger.Error("OpenAI request failed", zap.Error(err))
		return Result{Kind: TransportError}
	}

	if len(resp.Choices) == 0 {
		p.logger.Error("OpenAI returned no choices")
		return Result{Kind: MalformedResponse}
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return Result{Kind: EmptyResponse}
	}
	return Result{Kind: Answer, Text: text}
}
