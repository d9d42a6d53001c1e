package llm

import (
	"context"
	"fmt"

	"github.com/huitzo/packkit/pkg/huitzo"
)

// Mock is the zero-configuration provider used when no API key is set. It
// returns a canned reply so packs can be exercised offline.
type Mock struct {
	// JSONReply is returned verbatim for JSON requests. Defaults to "{}".
	JSONReply string
}

var _ huitzo.LLMService = (*Mock)(nil)

func (m *Mock) Complete(_ context.Context, req huitzo.CompletionRequest) (string, error) {
	if req.JSONResponse {
		if m.JSONReply != "" {
			return m.JSONReply, nil
		}
		return "{}", nil
	}

	prompt := req.Prompt
	if len(prompt) > 60 {
		prompt = prompt[:60] + "..."
	}
	return fmt.Sprintf("[mock completion] %s", prompt), nil
}
