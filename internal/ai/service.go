package ai

import (
	"context"
	"fmt"
)

// Provider generates an answer for a fully built prompt.
type Provider interface {
	Generate(ctx context.Context, prompt string) Result
}

// Service answers user questions through a generative-AI provider. A nil
// provider means the feature was left unconfigured; Ask then returns an
// Unconfigured result without touching the network.
type Service struct {
	provider Provider
}

func NewService(provider Provider) *Service {
	return &Service{provider: provider}
}

func (s *Service) Ask(ctx context.Context, question, displayName string) Result {
	if s.provider == nil {
		return Result{Kind: Unconfigured}
	}

	prompt := fmt.Sprintf(
		"شما دستیار هوشمند کانال خبری هوش مصنوعی سیمرغ هستید.\n\n"+
			"به سوال زیر پاسخ دهید (فارسی، حدود 200-300 کلمه، در صورت امکان مثال عملی):\n\n"+
			"سوال %s: %s",
		displayName, question)

	return s.provider.Generate(ctx, prompt)
}
