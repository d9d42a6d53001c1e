package fspack

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/huitzo/packkit/internal/domain"
	"github.com/huitzo/packkit/internal/ports"
)

// Registration markers the scanner looks for in pack sources. A pack that
// never constructs a huitzo.Command (or registers one) probably exports
// nothing the platform can call.
var registrationMarkers = []string{"huitzo.Command{", "Register("}

// Scanner inspects pack directories on disk.
type Scanner struct{}

func NewScanner() *Scanner {
	return &Scanner{}
}

var _ ports.PackScanner = (*Scanner)(nil)

func (s *Scanner) Scan(dir, sourceDir string) (ports.PackFacts, error) {
	facts := ports.PackFacts{ReadmeSize: -1, SourceFiles: -1}

	if info, err := os.Stat(filepath.Join(dir, "README.md")); err == nil && !info.IsDir() {
		facts.ReadmeSize = info.Size()
	}

	if info, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil && !info.IsDir() {
		facts.HasGoMod = true
	}

	src := filepath.Join(dir, sourceDir)
	entries, err := os.ReadDir(src)
	if err != nil {
		if os.IsNotExist(err) {
			return facts, nil
		}
		return facts, &domain.OpError{
			Op:   "fspack.scan",
			Kind: domain.KindExecution,
			Path: src,
			Err:  err,
		}
	}

	facts.SourceFiles = 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".go") {
			continue
		}
		if strings.HasSuffix(name, "_test.go") {
			facts.TestFiles++
			continue
		}
		facts.SourceFiles++
		if name == "doc.go" {
			facts.HasDocGo = true
		}
		if !facts.HasRegistrationMarker {
			facts.HasRegistrationMarker = fileHasMarker(filepath.Join(src, name))
		}
	}

	return facts, nil
}

func fileHasMarker(path string) bool {
	b, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	content := string(b)
	for _, marker := range registrationMarkers {
		if strings.Contains(content, marker) {
			return true
		}
	}
	return false
}
