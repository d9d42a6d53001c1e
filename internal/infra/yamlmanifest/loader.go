package yamlmanifest

import (
	"fmt"
	"os"
	"strings"

	"github.com/huitzo/packkit/internal/domain"
	"github.com/huitzo/packkit/internal/ports"
	"gopkg.in/yaml.v3"
)

// Filename is the manifest filename inside a pack directory.
const Filename = "pack.yaml"

// Loader reads pack.yaml files. Loading is lenient: the validator, not the
// loader, decides which missing fields are fatal.
type Loader struct{}

func NewLoader() *Loader {
	return &Loader{}
}

var _ ports.ManifestLoader = (*Loader)(nil)

func (l *Loader) LoadManifest(path string) (domain.Manifest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return domain.Manifest{}, &domain.OpError{
			Op:   "yamlmanifest.load",
			Kind: domain.KindNotFound,
			Path: path,
			Err:  err,
		}
	}

	var ym yamlManifest
	if err := yaml.Unmarshal(b, &ym); err != nil {
		return domain.Manifest{}, &domain.OpError{
			Op:   "yamlmanifest.load",
			Kind: domain.KindInvalidManifest,
			Path: path,
			Err:  fmt.Errorf("%s: %w", syntaxHint(b), err),
		}
	}

	return mapManifest(ym), nil
}

// syntaxHint classifies unparseable files so the FAIL diagnostic can tell
// "almost YAML" apart from "not a manifest at all".
func syntaxHint(b []byte) string {
	total := 0
	keyish := 0
	for _, line := range strings.Split(string(b), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		total++
		if idx := strings.Index(trimmed, ":"); idx > 0 {
			key := trimmed[:idx]
			if strings.IndexFunc(key, func(r rune) bool {
				return !isKeyRune(r)
			}) == -1 {
				keyish++
			}
		}
	}
	if total > 0 && keyish*2 >= total {
		return "file resembles key/value data but is not valid YAML"
	}
	return "file does not look like a YAML mapping"
}

func isKeyRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '_' || r == '-' || r == '.':
		return true
	}
	return false
}

type yamlManifest struct {
	// Top-level fields.
	Name        string        `yaml:"name"`
	Version     string        `yaml:"version"`
	Description string        `yaml:"description"`
	Author      string        `yaml:"author"`
	SourceDir   string        `yaml:"source_dir"`
	Commands    []yamlCommand `yaml:"commands"`

	// The same fields may instead live under a "pack" key; nested values win.
	Pack struct {
		Name        string        `yaml:"name"`
		Version     string        `yaml:"version"`
		Description string        `yaml:"description"`
		Author      string        `yaml:"author"`
		SourceDir   string        `yaml:"source_dir"`
		Commands    []yamlCommand `yaml:"commands"`
	} `yaml:"pack"`
}

type yamlCommand struct {
	Name      string `yaml:"name"`
	Namespace string `yaml:"namespace"`
	Timeout   int    `yaml:"timeout"`
	Queue     string `yaml:"queue"`
}

func mapManifest(ym yamlManifest) domain.Manifest {
	m := domain.Manifest{
		Name:        strings.TrimSpace(ym.Name),
		Version:     strings.TrimSpace(ym.Version),
		Description: strings.TrimSpace(ym.Description),
		Author:      strings.TrimSpace(ym.Author),
		SourceDir:   strings.TrimSpace(ym.SourceDir),
	}

	if v := strings.TrimSpace(ym.Pack.Name); v != "" {
		m.Name = v
	}
	if v := strings.TrimSpace(ym.Pack.Version); v != "" {
		m.Version = v
	}
	if v := strings.TrimSpace(ym.Pack.Description); v != "" {
		m.Description = v
	}
	if v := strings.TrimSpace(ym.Pack.Author); v != "" {
		m.Author = v
	}
	if v := strings.TrimSpace(ym.Pack.SourceDir); v != "" {
		m.SourceDir = v
	}

	cmds := ym.Commands
	if len(ym.Pack.Commands) > 0 {
		cmds = ym.Pack.Commands
	}
	for _, c := range cmds {
		m.Commands = append(m.Commands, domain.CommandDecl{
			Name:      strings.TrimSpace(c.Name),
			Namespace: strings.TrimSpace(c.Namespace),
			Timeout:   c.Timeout,
			Queue:     strings.TrimSpace(c.Queue),
		})
	}

	return m
}
