package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const defaultGeminiURL = "https://generativelanguage.googleapis.com/v1beta/models/gemini-1.5-flash-latest:generateContent"

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// GeminiProvider calls the Google generative-language REST endpoint. The API
// key travels as a query parameter, which is why this provider speaks plain
// HTTP instead of going through a client library.
type GeminiProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

func NewGeminiProvider(apiKey string, logger *zap.Logger) *GeminiProvider {
	return &GeminiProvider{
		apiKey:  apiKey,
		baseURL: defaultGeminiURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
}

func (p *GeminiProvider) Generate(ctx context.Context, prompt string) Result {
	payload := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     0.7,
			TopK:            40,
			TopP:            0.95,
			MaxOutputTokens: 512,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		p.logger.Error("Failed to encode Gemini request", zap.Error(err))
		return Result{Kind: TransportError}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"?key="+p.apiKey, bytes.NewReader(body))
	if err != nil {
		p.logger.Error("Failed to build Gemini request", zap.Error(err))
		return Result{Kind: TransportError}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			p.logger.Error("Gemini request timed out", zap.Error(err))
			return Result{Kind: Timeout}
		}
		p.logger.Error("Gemini request failed", zap.Error(err))
		return Result{Kind: TransportError}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 400))
		p.logger.Error("Gemini returned non-OK status",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", raw))
		return Result{Kind: ProviderError}
	}

	var parsed geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		p.logger.Error("Failed to parse Gemini response", zap.Error(err))
		return Result{Kind: MalformedResponse}
	}

	// Response structure: candidates -> content -> parts -> [{text}]
	if len(parsed.Candidates) == 0 {
		p.logger.Error("Gemini returned no candidates")
		return Result{Kind: MalformedResponse}
	}
	parts := parsed.Candidates[0].Content.Parts
	if len(parts) == 0 {
		return Result{Kind: MalformedResponse, Text: "❌ پاسخ نامعتبری دریافت شد."}
	}

	text := strings.TrimSpace(parts[0].Text)
	if text == "" {
		return Result{Kind: EmptyResponse}
	}
	return Result{Kind: Answer, Text: text}
}
