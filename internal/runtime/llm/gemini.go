package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/huitzo/packkit/pkg/huitzo"
)

const defaultGeminiModel = "gemini-2.0-flash"

// Gemini completes prompts through the Google GenAI SDK.
type Gemini struct {
	client *genai.Client
	model  string
}

func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("llm: gemini api key is required")
	}
	if model == "" {
		model = defaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("llm: create gemini client: %w", err)
	}

	return &Gemini{client: client, model: model}, nil
}

var _ huitzo.LLMService = (*Gemini)(nil)

func (g *Gemini) Complete(ctx context.Context, req huitzo.CompletionRequest) (string, error) {
	model := req.Model
	if model == "" {
		model = g.model
	}

	cfg := &genai.GenerateContentConfig{}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.Temperature > 0 {
		cfg.Temperature = genai.Ptr(float32(req.Temperature))
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.JSONResponse {
		cfg.ResponseMIMEType = "application/json"
	}

	contents := []*genai.Content{
		genai.NewContentFromText(req.Prompt, genai.RoleUser),
	}

	resp, err := g.client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("llm: gemini generate: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("llm: gemini returned no text")
	}
	return text, nil
}
