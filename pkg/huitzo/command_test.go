package huitzo

import (
	"context"
	"encoding/json"
	"testing"
)

func noopHandler(_ context.Context, _ *Context, _ json.RawMessage) (any, error) {
	return nil, nil
}

func TestRegistryRegisterAndLookup(t *testing.T) {
	r := NewRegistry()
	err := r.Register(
		&Command{Name: "save-note", Namespace: "notes", Handler: noopHandler},
		&Command{Name: "get-note", Namespace: "notes", Handler: noopHandler},
	)
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	c, ok := r.Lookup("notes/save-note")
	if !ok {
		t.Fatal("expected lookup to find notes/save-note")
	}
	if c.Qualified() != "notes/save-note" {
		t.Errorf("qualified = %q", c.Qualified())
	}

	if _, ok := r.Lookup("notes/missing"); ok {
		t.Error("expected lookup miss for notes/missing")
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	cmd := &Command{Name: "save-note", Namespace: "notes", Handler: noopHandler}
	if err := r.Register(cmd); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := r.Register(cmd); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
}

func TestRegistryRejectsInvalidNames(t *testing.T) {
	cases := []Command{
		{Name: "Save-Note", Namespace: "notes", Handler: noopHandler},
		{Name: "save_note", Namespace: "notes", Handler: noopHandler},
		{Name: "-bad", Namespace: "notes", Handler: noopHandler},
		{Name: "save-note", Namespace: "No-Tes", Handler: noopHandler},
		{Name: "save-note", Namespace: "notes"},
	}
	for _, c := range cases {
		r := NewRegistry()
		cmd := c
		if err := r.Register(&cmd); err == nil {
			t.Errorf("expected register to reject %q/%q", c.Namespace, c.Name)
		}
	}
}

func TestRegistryAllSorted(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(
		&Command{Name: "rewrite", Namespace: "content", Handler: noopHandler},
		&Command{Name: "save-note", Namespace: "notes", Handler: noopHandler},
		&Command{Name: "summarize", Namespace: "content", Handler: noopHandler},
	); err != nil {
		t.Fatalf("register: %v", err)
	}

	all := r.All()
	want := []string{"content/rewrite", "content/summarize", "notes/save-note"}
	if len(all) != len(want) {
		t.Fatalf("len(all) = %d, want %d", len(all), len(want))
	}
	for i, q := range want {
		if all[i].Qualified() != q {
			t.Errorf("all[%d] = %q, want %q", i, all[i].Qualified(), q)
		}
	}
}
