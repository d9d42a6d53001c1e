package usecase

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/huitzo/packkit/internal/domain"
	"github.com/huitzo/packkit/internal/ports"
)

type fakeStore struct {
	root      string
	exists    bool
	published []domain.Submission
	srcs      []string
}

func (f *fakeStore) Destination(username, packName string) string {
	return filepath.Join(f.root, username, packName)
}

func (f *fakeStore) Exists(string) bool { return f.exists }

func (f *fakeStore) Publish(src, _ string, sub domain.Submission) error {
	f.srcs = append(f.srcs, src)
	f.published = append(f.published, sub)
	return nil
}

type fakeConfirm struct {
	answer bool
	asked  int
}

func (f *fakeConfirm) Confirm(string) (bool, error) {
	f.asked++
	return f.answer, nil
}

func newSubmit(store *fakeStore, confirm *fakeConfirm, facts ports.PackFacts, m domain.Manifest) *SubmitPack {
	validate := NewValidatePack(fakeLoader{manifest: m}, &fakeScanner{facts: facts})
	s := NewSubmitPack(validate, store, confirm)
	s.now = func() time.Time { return time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC) }
	return s
}

func TestSubmitPublishesCleanPack(t *testing.T) {
	store := &fakeStore{root: "/showcase"}
	confirm := &fakeConfirm{}
	s := newSubmit(store, confirm, healthyFacts(), domain.Manifest{
		Name:        "smart-notes",
		Version:     "0.1.0",
		Description: "Notes with AI",
	})

	res, err := s.Run(SubmitParams{Dir: "/packs/smart-notes", Username: "octocat"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Cancelled {
		t.Fatal("should not be cancelled")
	}

	if len(store.published) != 1 {
		t.Fatalf("published %d times, want 1", len(store.published))
	}
	sub := store.published[0]
	if sub.Author != "@octocat" {
		t.Errorf("author = %q, want @octocat", sub.Author)
	}
	if sub.Version != "0.1.0" {
		t.Errorf("version = %q", sub.Version)
	}
	if sub.SubmittedAt.Location() != time.UTC {
		t.Error("submitted timestamp must be UTC")
	}
	if store.srcs[0] != "/packs/smart-notes" {
		t.Errorf("published src = %q", store.srcs[0])
	}
	if confirm.asked != 0 {
		t.Error("no confirmation needed for a fresh destination")
	}
}

func TestSubmitRejectsInvalidUsername(t *testing.T) {
	s := newSubmit(&fakeStore{}, &fakeConfirm{}, healthyFacts(), domain.Manifest{Name: "x", Version: "1"})

	for _, bad := range []string{"", "-lead", "a b", "user/../../etc"} {
		_, err := s.Run(SubmitParams{Dir: "/packs/x", Username: bad})
		if !domain.IsKind(err, domain.KindUsage) {
			t.Errorf("username %q: err = %v, want usage kind", bad, err)
		}
	}
}

func TestSubmitAbortsOnValidationFailure(t *testing.T) {
	store := &fakeStore{}
	s := newSubmit(store, &fakeConfirm{}, ports.PackFacts{ReadmeSize: -1, SourceFiles: -1}, domain.Manifest{})

	res, err := s.Run(SubmitParams{Dir: "/packs/broken", Username: "octocat"})
	if !domain.IsKind(err, domain.KindExecution) {
		t.Fatalf("err = %v, want execution kind", err)
	}
	if res.Report == nil || !res.Report.HasFailures() {
		t.Error("result should carry the failing report")
	}
	if len(store.published) != 0 {
		t.Error("nothing may be published on validation failure")
	}
}

func TestSubmitDeclinedOverwriteIsNotAnError(t *testing.T) {
	store := &fakeStore{exists: true}
	confirm := &fakeConfirm{answer: false}
	s := newSubmit(store, confirm, healthyFacts(), domain.Manifest{Name: "demo", Version: "1.0.0"})

	res, err := s.Run(SubmitParams{Dir: "/packs/demo", Username: "octocat"})
	if err != nil {
		t.Fatalf("declining must not error: %v", err)
	}
	if !res.Cancelled {
		t.Error("result should be marked cancelled")
	}
	if confirm.asked != 1 {
		t.Errorf("confirm asked %d times, want 1", confirm.asked)
	}
	if len(store.published) != 0 {
		t.Error("declined overwrite must leave the showcase untouched")
	}
}

func TestSubmitAssumeYesSkipsConfirmation(t *testing.T) {
	store := &fakeStore{exists: true}
	confirm := &fakeConfirm{answer: false}
	s := newSubmit(store, confirm, healthyFacts(), domain.Manifest{Name: "demo", Version: "1.0.0"})

	res, err := s.Run(SubmitParams{Dir: "/packs/demo", Username: "octocat", AssumeYes: true})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Cancelled {
		t.Error("assume-yes must not cancel")
	}
	if confirm.asked != 0 {
		t.Error("assume-yes must skip the prompt")
	}
	if len(store.published) != 1 {
		t.Error("expected a publish")
	}
}
