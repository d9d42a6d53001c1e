package telegramsvc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/huitzo/packkit/internal/infra/httpclient"
	"github.com/huitzo/packkit/pkg/huitzo"
)

// Service delivers messages through the Telegram Bot API.
type Service struct {
	token   string
	baseURL string
	client  *http.Client
}

type Option func(*Service)

func WithBaseURL(u string) Option {
	return func(s *Service) { s.baseURL = strings.TrimRight(u, "/") }
}

func WithClient(c *http.Client) Option {
	return func(s *Service) { s.client = c }
}

func New(token string, opts ...Option) (*Service, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram: bot token is required")
	}
	s := &Service{
		token:   token,
		baseURL: "https://api.telegram.org",
		client:  httpclient.New(httpclient.DefaultConfig()),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

var _ huitzo.TelegramService = (*Service)(nil)

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

func (s *Service) Send(ctx context.Context, msg huitzo.Message) error {
	if msg.ChatID == "" {
		return fmt.Errorf("telegram: empty chat id")
	}

	payload := map[string]string{
		"chat_id": msg.ChatID,
		"text":    msg.Text,
	}
	if msg.ParseMode != "" {
		payload["parse_mode"] = msg.ParseMode
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", s.baseURL, s.token)
	req, err := httpclient.BuildPost(ctx, url, payload, nil)
	if err != nil {
		return err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram: send: %w", err)
	}
	defer resp.Body.Close()

	var decoded apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return fmt.Errorf("telegram: decode response: %w", err)
	}
	if !decoded.OK {
		return fmt.Errorf("telegram: api error: %s", decoded.Description)
	}
	return nil
}
