package showcase

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/huitzo/packkit/internal/domain"
	"github.com/huitzo/packkit/internal/ports"
)

// MetadataFilename is the submission document written into each destination.
const MetadataFilename = "SUBMISSION.md"

// denylist names directories never copied into the showcase.
var denylist = map[string]bool{
	".git":         true,
	".packkit":     true,
	"vendor":       true,
	"bin":          true,
	"dist":         true,
	"node_modules": true,
	".idea":        true,
	".vscode":      true,
}

// Store copies validated packs into the showcase tree keyed by user and pack.
type Store struct {
	root string
	now  func() time.Time
}

type Option func(*Store)

// WithNow is useful for tests.
func WithNow(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func NewStore(root string, opts ...Option) *Store {
	s := &Store{
		root: filepath.Clean(root),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ ports.ShowcaseStore = (*Store)(nil)

func (s *Store) Destination(username, packName string) string {
	slug := slugify(packName)
	if slug == "" {
		slug = "pack"
	}
	return filepath.Join(s.root, username, slug)
}

func (s *Store) Exists(dest string) bool {
	_, err := os.Stat(dest)
	return err == nil
}

// Publish replaces dest with a copy of src (denylist applied) and writes the
// submission metadata. The caller is responsible for confirming overwrites.
func (s *Store) Publish(src, dest string, sub domain.Submission) error {
	if s.Exists(dest) {
		if err := os.RemoveAll(dest); err != nil {
			return &domain.OpError{
				Op:   "showcase.clear",
				Kind: domain.KindExecution,
				Path: dest,
				Err:  err,
			}
		}
	}

	skip := s.root
	if abs, err := filepath.Abs(s.root); err == nil {
		skip = abs
	}
	if err := copyTree(src, dest, skip); err != nil {
		return err
	}

	ts := sub.SubmittedAt
	if ts.IsZero() {
		ts = s.now()
	}
	sub.SubmittedAt = ts.UTC()
	sub.Destination = dest

	return writeMetadata(filepath.Join(dest, MetadataFilename), sub)
}

// copyTree mirrors src into dest, skipping denylisted directories, the
// showcase root itself (a pack may hold the showcase it publishes into), and
// symlinks, which WalkDir does not follow.
func copyTree(src, dest, skipRoot string) error {
	return filepath.WalkDir(src, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}

		if d.IsDir() {
			if rel != "." {
				if denylist[d.Name()] {
					return filepath.SkipDir
				}
				if abs, aerr := filepath.Abs(p); aerr == nil && abs == skipRoot {
					return filepath.SkipDir
				}
			}
			return os.MkdirAll(filepath.Join(dest, rel), 0o755)
		}

		if d.Type()&os.ModeSymlink != 0 {
			return nil
		}

		return copyFile(p, filepath.Join(dest, rel))
	})
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return &domain.OpError{
			Op:   "showcase.copy",
			Kind: domain.KindExecution,
			Path: src,
			Err:  err,
		}
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return &domain.OpError{
			Op:   "showcase.copy",
			Kind: domain.KindExecution,
			Path: dest,
			Err:  err,
		}
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

func writeMetadata(path string, sub domain.Submission) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# Showcase Submission\n\n")
	fmt.Fprintf(&b, "- **Pack**: %s\n", sub.PackName)
	fmt.Fprintf(&b, "- **Author**: %s\n", sub.Author)
	fmt.Fprintf(&b, "- **Version**: %s\n", sub.Version)
	fmt.Fprintf(&b, "- **Submitted**: %s\n", sub.SubmittedAt.Format(time.RFC3339))
	b.WriteString("\n## Description\n\n")
	if sub.Description != "" {
		b.WriteString(sub.Description + "\n")
	} else {
		b.WriteString("(no description in manifest)\n")
	}
	b.WriteString(`
## Prize categories

- [ ] Best Overall Pack
- [ ] Most Creative Use of AI
- [ ] Best Developer Experience
- [ ] Community Favorite
`)

	// Atomic-ish write: tmp then rename.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(b.String()), 0o644); err != nil {
		return &domain.OpError{
			Op:   "showcase.metadata",
			Kind: domain.KindExecution,
			Path: tmp,
			Err:  err,
		}
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return &domain.OpError{
			Op:   "showcase.metadata",
			Kind: domain.KindExecution,
			Path: path,
			Err:  err,
		}
	}
	return nil
}

func slugify(s string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
