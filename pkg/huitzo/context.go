package huitzo

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"time"
)

// Record is one stored entry returned by StorageService.Query.
type Record struct {
	Key      string
	Value    map[string]any
	Metadata map[string]string
}

// SaveOptions configure a storage write.
type SaveOptions struct {
	// TTL expires the record after the given duration. Zero means no expiry.
	TTL time.Duration

	// Metadata is indexed for Query filters.
	Metadata map[string]string
}

type SaveOption func(*SaveOptions)

func WithTTL(d time.Duration) SaveOption {
	return func(o *SaveOptions) { o.TTL = d }
}

func WithMetadata(md map[string]string) SaveOption {
	return func(o *SaveOptions) { o.Metadata = md }
}

// StorageService is the platform key-value store. Keys are conventionally
// prefixed per pack (e.g. "note:", "lead:"). Tenant isolation is the
// platform's job; the SDK only sees the caller's own keyspace.
type StorageService interface {
	Save(ctx context.Context, key string, value map[string]any, opts ...SaveOption) error

	// Get returns (nil, nil) when the key does not exist.
	Get(ctx context.Context, key string) (map[string]any, error)

	// Delete reports whether the key existed.
	Delete(ctx context.Context, key string) (bool, error)

	List(ctx context.Context, prefix string, limit int) ([]map[string]any, error)

	Query(ctx context.Context, prefix string, metadata map[string]string, limit int) ([]Record, error)
}

// CompletionRequest describes one LLM call.
type CompletionRequest struct {
	Prompt string
	System string
	Model  string

	// JSONResponse asks the provider for a JSON-only reply.
	JSONResponse bool

	Temperature float64
	MaxTokens   int
}

// LLMService completes prompts against the configured provider.
type LLMService interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// CompleteJSON runs req with JSONResponse set and decodes the reply.
func CompleteJSON(ctx context.Context, llm LLMService, req CompletionRequest) (map[string]any, error) {
	req.JSONResponse = true
	raw, err := llm.Complete(ctx, req)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// HTTPResult is the outcome of an outbound HTTP call.
type HTTPResult struct {
	StatusCode int
	Body       []byte
	Duration   time.Duration
}

// RequestOptions configure an outbound HTTP call.
type RequestOptions struct {
	Params  map[string]string
	Timeout time.Duration
}

type RequestOption func(*RequestOptions)

func WithParams(params map[string]string) RequestOption {
	return func(o *RequestOptions) { o.Params = params }
}

func WithRequestTimeout(d time.Duration) RequestOption {
	return func(o *RequestOptions) { o.Timeout = d }
}

// HTTPService performs outbound HTTP calls on behalf of a pack.
type HTTPService interface {
	Get(ctx context.Context, url string, opts ...RequestOption) (HTTPResult, error)
	Post(ctx context.Context, url string, body any, opts ...RequestOption) (HTTPResult, error)
}

// Email is one outbound email message.
type Email struct {
	To      string
	Subject string
	HTML    string
}

type EmailService interface {
	Send(ctx context.Context, msg Email) error
}

// Message is one outbound Telegram message.
type Message struct {
	ChatID    string
	Text      string
	ParseMode string
}

type TelegramService interface {
	Send(ctx context.Context, msg Message) error
}

// FilesService reads and writes files in the pack's sandboxed file area.
type FilesService interface {
	ReadCSV(ctx context.Context, path string) ([]map[string]string, error)

	// Write stores content and returns the resolved path.
	Write(ctx context.Context, path, content string) (string, error)
}

// Context carries the platform services into a command handler.
// Fields a runtime does not provide are nil; handlers that treat a service
// as optional must degrade gracefully.
type Context struct {
	Storage  StorageService
	LLM      LLMService
	HTTP     HTTPService
	Email    EmailService
	Telegram TelegramService
	Files    FilesService
	Log      *slog.Logger
}

// Logger never returns nil.
func (c *Context) Logger() *slog.Logger {
	if c == nil || c.Log == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c.Log
}
