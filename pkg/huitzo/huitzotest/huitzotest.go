// Package huitzotest provides in-memory service doubles for pack tests.
package huitzotest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/huitzo/packkit/pkg/huitzo"
)

// Harness bundles a Context wired to inspectable fakes.
type Harness struct {
	Storage  *Storage
	LLM      *LLM
	HTTP     *HTTP
	Email    *EmailSink
	Telegram *TelegramSink
	Files    *Files

	Ctx *huitzo.Context
}

// New builds a fully wired test harness.
func New() *Harness {
	h := &Harness{
		Storage:  NewStorage(),
		LLM:      &LLM{},
		HTTP:     &HTTP{Responses: map[string]huitzo.HTTPResult{}},
		Email:    &EmailSink{},
		Telegram: &TelegramSink{},
		Files:    NewFiles(),
	}
	h.Ctx = &huitzo.Context{
		Storage:  h.Storage,
		LLM:      h.LLM,
		HTTP:     h.HTTP,
		Email:    h.Email,
		Telegram: h.Telegram,
		Files:    h.Files,
		Log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	return h
}

type record struct {
	value    map[string]any
	metadata map[string]string
}

// Storage is an in-memory StorageService. TTLs are accepted but not expired;
// tests that need expiry should delete keys explicitly.
type Storage struct {
	mu      sync.Mutex
	records map[string]record

	// Err, when set, fails every call.
	Err error
}

func NewStorage() *Storage {
	return &Storage{records: map[string]record{}}
}

var _ huitzo.StorageService = (*Storage)(nil)

func (s *Storage) Save(_ context.Context, key string, value map[string]any, opts ...huitzo.SaveOption) error {
	if s.Err != nil {
		return s.Err
	}
	var so huitzo.SaveOptions
	for _, opt := range opts {
		opt(&so)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[key] = record{value: cloneValue(value), metadata: cloneMeta(so.Metadata)}
	return nil
}

func (s *Storage) Get(_ context.Context, key string) (map[string]any, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[key]
	if !ok {
		return nil, nil
	}
	return cloneValue(r.value), nil
}

func (s *Storage) Delete(_ context.Context, key string) (bool, error) {
	if s.Err != nil {
		return false, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.records[key]
	delete(s.records, key)
	return ok, nil
}

func (s *Storage) List(ctx context.Context, prefix string, limit int) ([]map[string]any, error) {
	recs, err := s.Query(ctx, prefix, nil, limit)
	if err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Value)
	}
	return out, nil
}

func (s *Storage) Query(_ context.Context, prefix string, metadata map[string]string, limit int) ([]huitzo.Record, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.records))
	for k := range s.records {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var out []huitzo.Record
	for _, k := range keys {
		r := s.records[k]
		if !matchesMeta(r.metadata, metadata) {
			continue
		}
		out = append(out, huitzo.Record{Key: k, Value: cloneValue(r.value), Metadata: cloneMeta(r.metadata)})
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// Len reports the stored record count.
func (s *Storage) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func matchesMeta(have, want map[string]string) bool {
	for k, v := range want {
		if have[k] != v {
			return false
		}
	}
	return true
}

func cloneValue(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func cloneMeta(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// LLM replays scripted responses in order.
type LLM struct {
	mu        sync.Mutex
	Responses []string
	Err       error

	// Requests records every call for assertions.
	Requests []huitzo.CompletionRequest
}

var _ huitzo.LLMService = (*LLM)(nil)

// Script queues responses to return from subsequent Complete calls.
func (l *LLM) Script(responses ...string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Responses = append(l.Responses, responses...)
}

func (l *LLM) Complete(_ context.Context, req huitzo.CompletionRequest) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Requests = append(l.Requests, req)
	if l.Err != nil {
		return "", l.Err
	}
	if len(l.Responses) == 0 {
		return "", errors.New("huitzotest: no scripted llm response")
	}
	resp := l.Responses[0]
	l.Responses = l.Responses[1:]
	return resp, nil
}

// HTTP serves canned results keyed by URL.
type HTTP struct {
	mu        sync.Mutex
	Responses map[string]huitzo.HTTPResult
	Err       error
	Requests  []string
}

var _ huitzo.HTTPService = (*HTTP)(nil)

func (h *HTTP) Get(_ context.Context, url string, _ ...huitzo.RequestOption) (huitzo.HTTPResult, error) {
	return h.respond(url)
}

func (h *HTTP) Post(_ context.Context, url string, _ any, _ ...huitzo.RequestOption) (huitzo.HTTPResult, error) {
	return h.respond(url)
}

func (h *HTTP) respond(url string) (huitzo.HTTPResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Requests = append(h.Requests, url)
	if h.Err != nil {
		return huitzo.HTTPResult{}, h.Err
	}
	if res, ok := h.Responses[url]; ok {
		return res, nil
	}
	return huitzo.HTTPResult{StatusCode: 404}, nil
}

// EmailSink captures sent emails.
type EmailSink struct {
	mu   sync.Mutex
	Sent []huitzo.Email
	Err  error
}

var _ huitzo.EmailService = (*EmailSink)(nil)

func (e *EmailSink) Send(_ context.Context, msg huitzo.Email) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.Err != nil {
		return e.Err
	}
	e.Sent = append(e.Sent, msg)
	return nil
}

// TelegramSink captures sent messages.
type TelegramSink struct {
	mu   sync.Mutex
	Sent []huitzo.Message
	Err  error
}

var _ huitzo.TelegramService = (*TelegramSink)(nil)

func (t *TelegramSink) Send(_ context.Context, msg huitzo.Message) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.Err != nil {
		return t.Err
	}
	t.Sent = append(t.Sent, msg)
	return nil
}

// Files is an in-memory FilesService.
type Files struct {
	mu      sync.Mutex
	CSV     map[string][]map[string]string
	Written map[string]string
	Err     error
}

func NewFiles() *Files {
	return &Files{CSV: map[string][]map[string]string{}, Written: map[string]string{}}
}

var _ huitzo.FilesService = (*Files)(nil)

func (f *Files) ReadCSV(_ context.Context, path string) ([]map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	rows, ok := f.CSV[path]
	if !ok {
		return nil, errors.New("huitzotest: no csv registered for " + path)
	}
	return rows, nil
}

func (f *Files) Write(_ context.Context, path, content string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return "", f.Err
	}
	f.Written[path] = content
	return path, nil
}
