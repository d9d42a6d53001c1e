package showcase

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huitzo/packkit/internal/domain"
)

func seedPack(t *testing.T) string {
	t.Helper()
	src := t.TempDir()
	files := map[string]string{
		"README.md":        "# demo pack\n",
		"pack.yaml":        "name: demo\nversion: 0.1.0\n",
		"pack/commands.go": "package pack\n",
		".git/HEAD":        "ref: refs/heads/main\n",
		"vendor/dep.go":    "package dep\n",
	}
	for rel, content := range files {
		p := filepath.Join(src, rel)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return src
}

func TestDestinationLayout(t *testing.T) {
	s := NewStore("/tmp/showcase")
	dest := s.Destination("octocat", "Smart Notes")
	want := filepath.Join("/tmp/showcase", "octocat", "smart-notes")
	if dest != want {
		t.Errorf("dest = %q, want %q", dest, want)
	}
}

func TestPublishCopiesAndWritesMetadata(t *testing.T) {
	src := seedPack(t)
	root := t.TempDir()

	fixed := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	s := NewStore(root, WithNow(func() time.Time { return fixed }))

	dest := s.Destination("octocat", "demo")
	sub := domain.Submission{
		PackName:    "demo",
		Author:      "@octocat",
		Version:     "0.1.0",
		Description: "A demo pack",
	}
	if err := s.Publish(src, dest, sub); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dest, "pack", "commands.go")); err != nil {
		t.Errorf("expected copied source: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dest, ".git")); err == nil {
		t.Error(".git should be excluded from the copy")
	}
	if _, err := os.Stat(filepath.Join(dest, "vendor")); err == nil {
		t.Error("vendor should be excluded from the copy")
	}

	b, err := os.ReadFile(filepath.Join(dest, MetadataFilename))
	if err != nil {
		t.Fatalf("read metadata: %v", err)
	}
	content := string(b)

	for _, want := range []string{
		"@octocat",
		"0.1.0",
		"2026-08-25T12:00:00Z",
		"- [ ] Best Overall Pack",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("metadata missing %q:\n%s", want, content)
		}
	}
}

func TestPublishReplacesExistingDestination(t *testing.T) {
	src := seedPack(t)
	root := t.TempDir()
	s := NewStore(root)
	dest := s.Destination("octocat", "demo")

	if err := os.MkdirAll(dest, 0o755); err != nil {
		t.Fatal(err)
	}
	stale := filepath.Join(dest, "stale.txt")
	if err := os.WriteFile(stale, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}
	if !s.Exists(dest) {
		t.Fatal("expected Exists to report the pre-created destination")
	}

	if err := s.Publish(src, dest, domain.Submission{PackName: "demo", Author: "@octocat"}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if _, err := os.Stat(stale); err == nil {
		t.Error("stale files should be removed on republish")
	}
}

func TestPublishSkipsShowcaseRootInsidePack(t *testing.T) {
	src := seedPack(t)

	// The default showcase root sits inside the pack directory and already
	// holds an earlier submission.
	root := filepath.Join(src, "showcase")
	prior := filepath.Join(root, "hubot", "old-pack")
	if err := os.MkdirAll(prior, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(prior, "README.md"), []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewStore(root)
	dest := s.Destination("octocat", "demo")
	if err := s.Publish(src, dest, domain.Submission{PackName: "demo", Author: "@octocat"}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dest, "pack", "commands.go")); err != nil {
		t.Errorf("expected copied source: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dest, "showcase")); err == nil {
		t.Error("prior submissions must not be copied into the new one")
	}
	if _, err := os.Stat(filepath.Join(prior, "README.md")); err != nil {
		t.Errorf("existing submissions should be left alone: %v", err)
	}
}

func TestPublishSkipsSymlinks(t *testing.T) {
	src := seedPack(t)
	outside := t.TempDir()
	if err := os.WriteFile(filepath.Join(outside, "secret.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(outside, filepath.Join(src, "linked-dir")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	if err := os.Symlink(filepath.Join(src, "README.md"), filepath.Join(src, "readme-link")); err != nil {
		t.Fatal(err)
	}

	s := NewStore(t.TempDir())
	dest := s.Destination("octocat", "demo")
	if err := s.Publish(src, dest, domain.Submission{PackName: "demo", Author: "@octocat"}); err != nil {
		t.Fatalf("publish with symlinks: %v", err)
	}

	if _, err := os.Lstat(filepath.Join(dest, "linked-dir")); err == nil {
		t.Error("directory symlink should not be copied")
	}
	if _, err := os.Lstat(filepath.Join(dest, "readme-link")); err == nil {
		t.Error("file symlink should not be copied")
	}
}

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Smart Notes", "smart-notes"},
		{"lead_engine", "lead-engine"},
		{"  DevOps  Monitor  ", "devops-monitor"},
		{"***", ""},
	}
	for _, c := range cases {
		if got := slugify(c.in); got != c.want {
			t.Errorf("slugify(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
