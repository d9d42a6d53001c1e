// Package smartnotes is the introductory starter pack: CRUD over the storage
// service, one key per note title.
package smartnotes

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huitzo/packkit/pkg/huitzo"
)

const storagePrefix = "note:"

type saveNoteArgs struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (a *saveNoteArgs) Validate() error {
	if err := checkTitle(a.Title); err != nil {
		return err
	}
	if a.Content == "" {
		return &huitzo.ValidationError{Field: "content", Message: "content is required"}
	}
	if len(a.Content) > 10000 {
		return &huitzo.ValidationError{Field: "content", Value: len(a.Content), Message: "content exceeds 10000 characters"}
	}
	return nil
}

type titleArgs struct {
	Title string `json:"title"`
}

func (a *titleArgs) Validate() error { return checkTitle(a.Title) }

type listNotesArgs struct {
	Limit int `json:"limit"`
}

func (a *listNotesArgs) Validate() error {
	if a.Limit == 0 {
		a.Limit = 10
	}
	if a.Limit < 1 || a.Limit > 100 {
		return &huitzo.ValidationError{Field: "limit", Value: a.Limit, Message: "limit must be between 1 and 100"}
	}
	return nil
}

func checkTitle(title string) error {
	if title == "" {
		return &huitzo.ValidationError{Field: "title", Message: "title is required"}
	}
	if len(title) > 200 {
		return &huitzo.ValidationError{Field: "title", Value: len(title), Message: "title exceeds 200 characters"}
	}
	return nil
}

func notFound(title string) map[string]any {
	return map[string]any{
		"error":   "not_found",
		"message": fmt.Sprintf("Note %q not found", title),
	}
}

// Commands returns the notes namespace.
func Commands() []*huitzo.Command {
	return []*huitzo.Command{
		{
			Name:        "save-note",
			Namespace:   "notes",
			Description: "Create or update a note by title",
			Timeout:     30 * time.Second,
			Retries:     3,
			Handler:     saveNote,
		},
		{
			Name:        "get-note",
			Namespace:   "notes",
			Description: "Retrieve a note by title",
			Timeout:     15 * time.Second,
			Retries:     3,
			Handler:     getNote,
		},
		{
			Name:        "list-notes",
			Namespace:   "notes",
			Description: "List saved notes",
			Timeout:     15 * time.Second,
			Retries:     3,
			Handler:     listNotes,
		},
		{
			Name:        "delete-note",
			Namespace:   "notes",
			Description: "Delete a note by title",
			Timeout:     15 * time.Second,
			Retries:     3,
			Handler:     deleteNote,
		},
	}
}

func saveNote(ctx context.Context, hctx *huitzo.Context, raw json.RawMessage) (any, error) {
	var args saveNoteArgs
	if err := huitzo.DecodeArgs(raw, &args); err != nil {
		return nil, err
	}

	key := storagePrefix + args.Title
	now := time.Now().UTC().Format(time.RFC3339)

	existing, err := hctx.Storage.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	createdAt := now
	if existing != nil {
		if prev, ok := existing["created_at"].(string); ok && prev != "" {
			createdAt = prev
		}
	}

	note := map[string]any{
		"title":      args.Title,
		"content":    args.Content,
		"created_at": createdAt,
		"updated_at": now,
	}
	if err := hctx.Storage.Save(ctx, key, note); err != nil {
		return nil, err
	}

	action := "created"
	if existing != nil {
		action = "updated"
	}
	hctx.Logger().Info("note.saved", "title", args.Title, "action", action)

	return note, nil
}

func getNote(ctx context.Context, hctx *huitzo.Context, raw json.RawMessage) (any, error) {
	var args titleArgs
	if err := huitzo.DecodeArgs(raw, &args); err != nil {
		return nil, err
	}

	note, err := hctx.Storage.Get(ctx, storagePrefix+args.Title)
	if err != nil {
		return nil, err
	}
	if note == nil {
		hctx.Logger().Warn("note.missing", "title", args.Title)
		return notFound(args.Title), nil
	}
	return note, nil
}

func listNotes(ctx context.Context, hctx *huitzo.Context, raw json.RawMessage) (any, error) {
	var args listNotesArgs
	if err := huitzo.DecodeArgs(raw, &args); err != nil {
		return nil, err
	}

	notes, err := hctx.Storage.List(ctx, storagePrefix, args.Limit)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"notes": notes,
		"count": len(notes),
		"limit": args.Limit,
	}, nil
}

func deleteNote(ctx context.Context, hctx *huitzo.Context, raw json.RawMessage) (any, error) {
	var args titleArgs
	if err := huitzo.DecodeArgs(raw, &args); err != nil {
		return nil, err
	}

	deleted, err := hctx.Storage.Delete(ctx, storagePrefix+args.Title)
	if err != nil {
		return nil, err
	}
	if !deleted {
		return notFound(args.Title), nil
	}

	hctx.Logger().Info("note.deleted", "title", args.Title)
	return map[string]any{"deleted": true, "title": args.Title}, nil
}
