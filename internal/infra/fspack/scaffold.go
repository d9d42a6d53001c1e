package fspack

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/huitzo/packkit/internal/domain"
)

//go:embed templates
var templatesFS embed.FS

// Initializer scaffolds a minimal pack from embedded templates.
type Initializer struct{}

func NewInitializer() *Initializer {
	return &Initializer{}
}

// Init writes the scaffold into dir. Existing files are kept unless force is
// set; a directory that already holds a pack.yaml refuses to scaffold at all
// without force.
func (i *Initializer) Init(dir, name string, force bool) error {
	dir = filepath.Clean(dir)
	name = strings.TrimSpace(name)
	if name == "" {
		name = filepath.Base(dir)
	}

	if !force {
		if _, err := os.Stat(filepath.Join(dir, "pack.yaml")); err == nil {
			return &domain.OpError{
				Op:   "fspack.init",
				Kind: domain.KindExecution,
				Path: dir,
				Err:  fmt.Errorf("pack already initialized (use --force to overwrite)"),
			}
		}
	}

	vars := map[string]string{
		"PACK_NAME":    name,
		"PACK_SLUG":    packSlug(name),
		"PACK_PACKAGE": goPackageName(name),
	}

	return fs.WalkDir(templatesFS, "templates", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel := strings.TrimPrefix(p, "templates/")
		rel = strings.TrimSuffix(rel, ".tmpl")
		dst := filepath.Join(dir, rel)

		if !force {
			if _, statErr := os.Stat(dst); statErr == nil {
				return nil
			}
		}

		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return err
		}

		b, err := fs.ReadFile(templatesFS, p)
		if err != nil {
			return err
		}

		content, err := renderString(string(b), vars)
		if err != nil {
			return err
		}

		return os.WriteFile(dst, []byte(content), 0o644)
	})
}

// packSlug converts a display name into the kebab-case form used for the
// module path and the command namespace ("My Pack" becomes "my-pack").
func packSlug(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(name) {
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
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		return "pack"
	}
	return slug
}

// goPackageName squeezes a pack name into a legal Go package identifier.
func goPackageName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 || b.String()[0] >= '0' && b.String()[0] <= '9' {
		return "pack"
	}
	return b.String()
}
