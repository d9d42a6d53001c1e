package smartnotes

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/huitzo/packkit/pkg/huitzo"
	"github.com/huitzo/packkit/pkg/huitzo/huitzotest"
)

func TestSaveNoteCreatesAndUpdates(t *testing.T) {
	h := huitzotest.New()
	ctx := context.Background()

	out, err := saveNote(ctx, h.Ctx, json.RawMessage(`{"title":"groceries","content":"milk"}`))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	created := out.(map[string]any)
	if created["created_at"] != created["updated_at"] {
		t.Error("fresh note should have matching timestamps")
	}

	out, err = saveNote(ctx, h.Ctx, json.RawMessage(`{"title":"groceries","content":"milk, eggs"}`))
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	updated := out.(map[string]any)
	if updated["created_at"] != created["created_at"] {
		t.Error("update must preserve created_at")
	}
	if updated["content"] != "milk, eggs" {
		t.Errorf("content = %v", updated["content"])
	}
	if h.Storage.Len() != 1 {
		t.Errorf("stored %d records, want 1", h.Storage.Len())
	}
}

func TestSaveNoteValidation(t *testing.T) {
	h := huitzotest.New()

	cases := []string{
		`{"content":"no title"}`,
		`{"title":"x"}`,
		`{}`,
	}
	for _, raw := range cases {
		_, err := saveNote(context.Background(), h.Ctx, json.RawMessage(raw))
		var ve *huitzo.ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("args %s: err = %v, want validation error", raw, err)
		}
	}
}

func TestGetNoteNotFound(t *testing.T) {
	h := huitzotest.New()

	out, err := getNote(context.Background(), h.Ctx, json.RawMessage(`{"title":"nope"}`))
	if err != nil {
		t.Fatalf("missing note is a structured result, not an error: %v", err)
	}
	res := out.(map[string]any)
	if res["error"] != "not_found" {
		t.Errorf("result = %v", res)
	}
}

func TestListNotesDefaultLimit(t *testing.T) {
	h := huitzotest.New()
	ctx := context.Background()

	for _, raw := range []string{
		`{"title":"a","content":"1"}`,
		`{"title":"b","content":"2"}`,
	} {
		if _, err := saveNote(ctx, h.Ctx, json.RawMessage(raw)); err != nil {
			t.Fatal(err)
		}
	}

	out, err := listNotes(ctx, h.Ctx, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	res := out.(map[string]any)
	if res["count"] != 2 {
		t.Errorf("count = %v", res["count"])
	}
	if res["limit"] != 10 {
		t.Errorf("default limit = %v, want 10", res["limit"])
	}
}

func TestListNotesRejectsOutOfRangeLimit(t *testing.T) {
	h := huitzotest.New()

	for _, raw := range []string{`{"limit":-1}`, `{"limit":101}`} {
		_, err := listNotes(context.Background(), h.Ctx, json.RawMessage(raw))
		var ve *huitzo.ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("limit %s: err = %v, want validation error", raw, err)
		}
	}
}

func TestDeleteNote(t *testing.T) {
	h := huitzotest.New()
	ctx := context.Background()

	if _, err := saveNote(ctx, h.Ctx, json.RawMessage(`{"title":"a","content":"1"}`)); err != nil {
		t.Fatal(err)
	}

	out, err := deleteNote(ctx, h.Ctx, json.RawMessage(`{"title":"a"}`))
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if out.(map[string]any)["deleted"] != true {
		t.Errorf("result = %v", out)
	}

	out, err = deleteNote(ctx, h.Ctx, json.RawMessage(`{"title":"a"}`))
	if err != nil {
		t.Fatal(err)
	}
	if out.(map[string]any)["error"] != "not_found" {
		t.Errorf("second delete = %v", out)
	}
}

func TestCommandsRegister(t *testing.T) {
	reg := huitzo.NewRegistry()
	if err := reg.Register(Commands()...); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, ok := reg.Lookup("notes/save-note"); !ok {
		t.Error("notes/save-note not registered")
	}
}
