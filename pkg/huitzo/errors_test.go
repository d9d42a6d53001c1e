package huitzo

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
)

type fakeArgs struct {
	Title string `json:"title"`
}

func (a fakeArgs) Validate() error {
	if a.Title == "" {
		return &ValidationError{Field: "title", Message: "title is required"}
	}
	return nil
}

func TestDecodeArgsValid(t *testing.T) {
	var args fakeArgs
	if err := DecodeArgs(json.RawMessage(`{"title":"hello"}`), &args); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if args.Title != "hello" {
		t.Errorf("title = %q", args.Title)
	}
}

func TestDecodeArgsEmptyRawDefaults(t *testing.T) {
	var args struct {
		Limit int `json:"limit"`
	}
	if err := DecodeArgs(nil, &args); err != nil {
		t.Fatalf("decode empty: %v", err)
	}
}

func TestDecodeArgsValidationFailure(t *testing.T) {
	var args fakeArgs
	err := DecodeArgs(json.RawMessage(`{}`), &args)

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Field != "title" {
		t.Errorf("field = %q", ve.Field)
	}
}

func TestDecodeArgsMalformedJSON(t *testing.T) {
	var args fakeArgs
	err := DecodeArgs(json.RawMessage(`{not json`), &args)

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestIsFatal(t *testing.T) {
	if !IsFatal(&CommandError{Message: "gone"}) {
		t.Error("CommandError should be fatal")
	}
	if !IsFatal(fmt.Errorf("wrap: %w", &ValidationError{Message: "bad"})) {
		t.Error("wrapped ValidationError should be fatal")
	}
	if IsFatal(errors.New("transient network blip")) {
		t.Error("plain errors should be retryable")
	}
}
