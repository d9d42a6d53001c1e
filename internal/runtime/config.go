package runtime

import (
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

// Config is the local runtime configuration, read from the environment.
// Every knob has a default so `packkit invoke` works out of the box with the
// mock LLM provider and the filesystem outbox.
type Config struct {
	DataDir     string `env:"HUITZO_DATA_DIR" envDefault:".packkit"`
	StoragePath string `env:"HUITZO_STORAGE_PATH"`

	// LLMProvider selects the completion backend: openai, gemini or mock.
	LLMProvider string `env:"HUITZO_LLM_PROVIDER" envDefault:"mock"`

	OpenAIKey     string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `env:"HUITZO_OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1"`
	OpenAIModel   string `env:"HUITZO_OPENAI_MODEL" envDefault:"gpt-4o-mini"`

	GeminiKey   string `env:"GEMINI_API_KEY"`
	GeminiModel string `env:"HUITZO_GEMINI_MODEL" envDefault:"gemini-2.0-flash"`

	SMTPHost  string `env:"HUITZO_SMTP_HOST"`
	SMTPPort  int    `env:"HUITZO_SMTP_PORT" envDefault:"587"`
	SMTPUser  string `env:"HUITZO_SMTP_USER"`
	SMTPPass  string `env:"HUITZO_SMTP_PASS"`
	EmailFrom string `env:"HUITZO_EMAIL_FROM" envDefault:"packs@localhost"`

	TelegramToken   string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramBaseURL string `env:"HUITZO_TELEGRAM_BASE_URL" envDefault:"https://api.telegram.org"`

	FilesDir    string `env:"HUITZO_FILES_DIR"`
	ShowcaseDir string `env:"HUITZO_SHOWCASE_DIR" envDefault:"showcase"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// StorageDSN returns the configured sqlite path, defaulting under DataDir.
func (c Config) StorageDSN() string {
	if c.StoragePath != "" {
		return c.StoragePath
	}
	return filepath.Join(c.DataDir, "storage.db")
}

// FilesRoot returns the sandbox root for the files service.
func (c Config) FilesRoot() string {
	if c.FilesDir != "" {
		return c.FilesDir
	}
	return filepath.Join(c.DataDir, "files")
}

// OutboxDir is where the filesystem email fallback drops messages.
func (c Config) OutboxDir() string {
	return filepath.Join(c.DataDir, "outbox")
}
