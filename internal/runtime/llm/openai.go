package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/huitzo/packkit/internal/infra/httpclient"
	"github.com/huitzo/packkit/pkg/huitzo"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAI talks to an OpenAI-compatible chat completions endpoint.
type OpenAI struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

type OpenAIOption func(*OpenAI)

func WithOpenAIBaseURL(u string) OpenAIOption {
	return func(o *OpenAI) { o.baseURL = strings.TrimRight(u, "/") }
}

func WithOpenAIModel(m string) OpenAIOption {
	return func(o *OpenAI) { o.model = m }
}

func WithOpenAIClient(c *http.Client) OpenAIOption {
	return func(o *OpenAI) { o.client = c }
}

func NewOpenAI(apiKey string, opts ...OpenAIOption) (*OpenAI, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("llm: openai api key is required")
	}
	o := &OpenAI{
		apiKey:  apiKey,
		baseURL: "https://api.openai.com/v1",
		model:   defaultOpenAIModel,
		client:  httpclient.New(httpclient.DefaultConfig()),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

var _ huitzo.LLMService = (*OpenAI)(nil)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature,omitempty"`
	MaxTokens      int           `json:"max_tokens,omitempty"`
	ResponseFormat *struct {
		Type string `json:"type"`
	} `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (o *OpenAI) Complete(ctx context.Context, req huitzo.CompletionRequest) (string, error) {
	model := req.Model
	if model == "" {
		model = o.model
	}

	body := chatRequest{
		Model:       model,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if req.System != "" {
		body.Messages = append(body.Messages, chatMessage{Role: "system", Content: req.System})
	}
	body.Messages = append(body.Messages, chatMessage{Role: "user", Content: req.Prompt})
	if req.JSONResponse {
		body.ResponseFormat = &struct {
			Type string `json:"type"`
		}{Type: "json_object"}
	}

	httpReq, err := httpclient.BuildPost(ctx, o.baseURL+"/chat/completions", body, map[string]string{
		"Authorization": "Bearer " + o.apiKey,
	})
	if err != nil {
		return "", err
	}

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("llm: openai request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("llm: openai read response: %w", err)
	}

	var decoded chatResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("llm: openai decode response: %w", err)
	}
	if decoded.Error != nil {
		return "", fmt.Errorf("llm: openai: %s (%s)", decoded.Error.Message, decoded.Error.Type)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("llm: openai status %d", resp.StatusCode)
	}
	if len(decoded.Choices) == 0 {
		return "", fmt.Errorf("llm: openai returned no choices")
	}
	return decoded.Choices[0].Message.Content, nil
}
