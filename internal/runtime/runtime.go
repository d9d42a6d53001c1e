package runtime

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/huitzo/packkit/internal/runtime/emailsvc"
	"github.com/huitzo/packkit/internal/runtime/filesvc"
	"github.com/huitzo/packkit/internal/runtime/httpsvc"
	"github.com/huitzo/packkit/internal/runtime/llm"
	"github.com/huitzo/packkit/internal/runtime/sqlitestore"
	"github.com/huitzo/packkit/internal/runtime/telegramsvc"
	"github.com/huitzo/packkit/pkg/huitzo"
)

// Runtime wires the platform services for local development and exposes an
// executor over the registered commands. It approximates the hosted platform
// closely enough to exercise packs end to end.
type Runtime struct {
	Config   Config
	Registry *huitzo.Registry
	Context  *huitzo.Context
	Executor *Executor

	store *sqlitestore.Store
}

func New(ctx context.Context, cfg Config, reg *huitzo.Registry, log *slog.Logger) (*Runtime, error) {
	store, err := sqlitestore.Open(cfg.StorageDSN())
	if err != nil {
		return nil, fmt.Errorf("runtime: open storage: %w", err)
	}

	llmSvc, err := buildLLM(ctx, cfg)
	if err != nil {
		store.Close()
		return nil, err
	}

	hctx := &huitzo.Context{
		Storage: store,
		LLM:     llmSvc,
		HTTP:    httpsvc.New(),
		Files:   filesvc.New(cfg.FilesRoot()),
		Log:     log,
	}

	if cfg.SMTPHost != "" {
		hctx.Email = emailsvc.NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.EmailFrom)
	} else {
		hctx.Email = emailsvc.NewOutbox(cfg.OutboxDir())
	}

	if cfg.TelegramToken != "" {
		tg, err := telegramsvc.New(cfg.TelegramToken, telegramsvc.WithBaseURL(cfg.TelegramBaseURL))
		if err != nil {
			store.Close()
			return nil, err
		}
		hctx.Telegram = tg
	}

	return &Runtime{
		Config:   cfg,
		Registry: reg,
		Context:  hctx,
		Executor: NewExecutor(reg, hctx, log),
		store:    store,
	}, nil
}

func (r *Runtime) Close() error {
	return r.store.Close()
}

func buildLLM(ctx context.Context, cfg Config) (huitzo.LLMService, error) {
	switch cfg.LLMProvider {
	case "openai":
		return llm.NewOpenAI(cfg.OpenAIKey,
			llm.WithOpenAIBaseURL(cfg.OpenAIBaseURL),
			llm.WithOpenAIModel(cfg.OpenAIModel))
	case "gemini":
		return llm.NewGemini(ctx, cfg.GeminiKey, cfg.GeminiModel)
	case "mock", "":
		return &llm.Mock{}, nil
	default:
		return nil, fmt.Errorf("runtime: unknown llm provider %q", cfg.LLMProvider)
	}
}
