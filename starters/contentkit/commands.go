// Package contentkit is the AI content starter pack: summarize, entity
// extraction and tone rewriting, all through the LLM service.
package contentkit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/huitzo/packkit/pkg/huitzo"
)

var tones = map[string]string{
	"formal":    "Use professional, polished language. Avoid contractions and slang.",
	"casual":    "Use friendly, conversational language. Contractions are fine.",
	"technical": "Use precise, technical language. Include domain-specific terms where appropriate.",
}

func checkText(text string) error {
	if len(text) < 10 {
		return &huitzo.ValidationError{Field: "text", Message: "text must be at least 10 characters"}
	}
	if len(text) > 50000 {
		return &huitzo.ValidationError{Field: "text", Value: len(text), Message: "text exceeds 50000 characters"}
	}
	return nil
}

type summarizeArgs struct {
	Text       string `json:"text"`
	MaxBullets int    `json:"max_bullets"`
}

func (a *summarizeArgs) Validate() error {
	if err := checkText(a.Text); err != nil {
		return err
	}
	if a.MaxBullets == 0 {
		a.MaxBullets = 5
	}
	if a.MaxBullets < 1 || a.MaxBullets > 20 {
		return &huitzo.ValidationError{Field: "max_bullets", Value: a.MaxBullets, Message: "max_bullets must be between 1 and 20"}
	}
	return nil
}

type extractArgs struct {
	Text string `json:"text"`
}

func (a *extractArgs) Validate() error { return checkText(a.Text) }

type rewriteArgs struct {
	Text string `json:"text"`
	Tone string `json:"tone"`
}

func (a *rewriteArgs) Validate() error {
	if err := checkText(a.Text); err != nil {
		return err
	}
	if a.Tone == "" {
		a.Tone = "formal"
	}
	if _, ok := tones[a.Tone]; !ok {
		return &huitzo.ValidationError{Field: "tone", Value: a.Tone, Message: "tone must be formal, casual or technical"}
	}
	return nil
}

// Commands returns the content namespace.
func Commands() []*huitzo.Command {
	return []*huitzo.Command{
		{
			Name:        "summarize",
			Namespace:   "content",
			Description: "Summarize text into bullets with sentiment",
			Timeout:     60 * time.Second,
			Retries:     3,
			Queue:       "medium",
			Handler:     summarize,
		},
		{
			Name:        "extract-entities",
			Namespace:   "content",
			Description: "Extract people, companies, dates and locations",
			Timeout:     60 * time.Second,
			Retries:     3,
			Queue:       "medium",
			Handler:     extractEntities,
		},
		{
			Name:        "rewrite",
			Namespace:   "content",
			Description: "Rewrite text in a target tone",
			Timeout:     60 * time.Second,
			Retries:     3,
			Queue:       "medium",
			Handler:     rewrite,
		},
	}
}

func summarize(ctx context.Context, hctx *huitzo.Context, raw json.RawMessage) (any, error) {
	var args summarizeArgs
	if err := huitzo.DecodeArgs(raw, &args); err != nil {
		return nil, err
	}

	wordCount := len(strings.Fields(args.Text))

	prompt := fmt.Sprintf(`Summarize the following text into at most %d bullet points.
Also classify the overall sentiment as one of: positive, negative, neutral, mixed.

Text:
%s

Respond as JSON:
{"bullets": ["bullet 1", "bullet 2"], "sentiment": "positive"}`, args.MaxBullets, args.Text)

	resp, err := huitzo.CompleteJSON(ctx, hctx.LLM, huitzo.CompletionRequest{
		Prompt:      prompt,
		System:      "You are a concise text analyst. Extract key points as short bullet strings. Classify sentiment accurately. Always respond with valid JSON.",
		Temperature: 0.3,
	})
	if err != nil {
		return nil, err
	}

	bullets := stringSlice(resp["bullets"])
	if len(bullets) > args.MaxBullets {
		bullets = bullets[:args.MaxBullets]
	}

	sentiment, _ := resp["sentiment"].(string)
	switch sentiment {
	case "positive", "negative", "neutral", "mixed":
	default:
		sentiment = "neutral"
	}

	hctx.Logger().Info("content.summarized",
		"words", wordCount, "bullets", len(bullets), "sentiment", sentiment)

	return map[string]any{
		"bullets":    bullets,
		"sentiment":  sentiment,
		"word_count": wordCount,
	}, nil
}

func extractEntities(ctx context.Context, hctx *huitzo.Context, raw json.RawMessage) (any, error) {
	var args extractArgs
	if err := huitzo.DecodeArgs(raw, &args); err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(`Extract all named entities from the following text.
Categorize each as: person, company, date, or location.

Text:
%s

Respond as JSON:
{"entities": [{"text": "entity text", "type": "person|company|date|location"}]}`, args.Text)

	resp, err := huitzo.CompleteJSON(ctx, hctx.LLM, huitzo.CompletionRequest{
		Prompt:      prompt,
		System:      "You are a precise named-entity extractor. Only extract entities that are explicitly mentioned. Always respond with valid JSON.",
		Temperature: 0.1,
	})
	if err != nil {
		return nil, err
	}

	type entity struct {
		Text string
		Type string
	}
	var entities []entity
	if list, ok := resp["entities"].([]any); ok {
		for _, item := range list {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			text, _ := m["text"].(string)
			typ, _ := m["type"].(string)
			if text == "" {
				continue
			}
			entities = append(entities, entity{Text: text, Type: typ})
		}
	}

	byType := func(t string) []string {
		out := []string{}
		for _, e := range entities {
			if e.Type == t {
				out = append(out, e.Text)
			}
		}
		return out
	}

	out := make([]map[string]any, 0, len(entities))
	for _, e := range entities {
		out = append(out, map[string]any{"text": e.Text, "type": e.Type})
	}

	hctx.Logger().Info("content.entities", "count", len(entities))

	return map[string]any{
		"entities":  out,
		"people":    byType("person"),
		"companies": byType("company"),
		"dates":     byType("date"),
		"locations": byType("location"),
	}, nil
}

func rewrite(ctx context.Context, hctx *huitzo.Context, raw json.RawMessage) (any, error) {
	var args rewriteArgs
	if err := huitzo.DecodeArgs(raw, &args); err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(`Rewrite the following text in a %s tone.

Instructions: %s

Original text:
%s

Respond as JSON:
{"rewritten": "the rewritten text"}`, args.Tone, tones[args.Tone], args.Text)

	resp, err := huitzo.CompleteJSON(ctx, hctx.LLM, huitzo.CompletionRequest{
		Prompt:      prompt,
		System:      "You are a skilled writer who can adapt text to different tones while preserving the original meaning. Always respond with valid JSON.",
		Temperature: 0.7,
	})
	if err != nil {
		return nil, err
	}

	rewritten, _ := resp["rewritten"].(string)
	if rewritten == "" {
		rewritten = args.Text
	}

	hctx.Logger().Info("content.rewritten", "tone", args.Tone)

	return map[string]any{
		"original":  args.Text,
		"rewritten": rewritten,
		"tone":      args.Tone,
	}, nil
}

func stringSlice(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
