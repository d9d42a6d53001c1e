package usecase

import (
	"fmt"
	"path/filepath"

	"github.com/huitzo/packkit/internal/domain"
	"github.com/huitzo/packkit/internal/ports"
)

// minReadmeBytes is the threshold below which the README is considered a stub.
const minReadmeBytes = 100

// ValidatePack runs the structural checks a pack must satisfy before it can
// be submitted. Checks are independent: every problem is reported in one run.
type ValidatePack struct {
	loader  ports.ManifestLoader
	scanner ports.PackScanner
}

func NewValidatePack(loader ports.ManifestLoader, scanner ports.PackScanner) *ValidatePack {
	return &ValidatePack{loader: loader, scanner: scanner}
}

// Run validates the pack at dir. The returned manifest is zero-valued when
// the manifest could not be loaded; the report still covers the layout checks.
func (v *ValidatePack) Run(dir string) (*domain.Report, domain.Manifest, error) {
	rep := &domain.Report{Path: dir}

	var manifest domain.Manifest
	m, err := v.loader.LoadManifest(filepath.Join(dir, "pack.yaml"))
	switch {
	case err == nil:
		manifest = m
		v.checkManifest(rep, m)
	case domain.IsKind(err, domain.KindNotFound):
		rep.Fail("manifest", "pack.yaml not found (run `packkit init` to scaffold one)")
	case domain.IsKind(err, domain.KindInvalidManifest):
		rep.Fail("manifest", fmt.Sprintf("pack.yaml could not be parsed: %v", err))
	default:
		return nil, domain.Manifest{}, err
	}

	facts, err := v.scanner.Scan(dir, manifest.Source())
	if err != nil {
		return nil, domain.Manifest{}, err
	}
	v.checkLayout(rep, manifest, facts)

	return rep, manifest, nil
}

func (v *ValidatePack) checkManifest(rep *domain.Report, m domain.Manifest) {
	if m.Name == "" {
		rep.Fail("manifest.name", "pack.yaml is missing the required `name` field")
	} else {
		rep.Pass("manifest.name", m.Name)
	}

	if m.Version == "" {
		rep.Fail("manifest.version", "pack.yaml is missing the required `version` field")
	} else {
		rep.Pass("manifest.version", m.Version)
	}

	if m.Description == "" {
		rep.Info("manifest.description", "no description set")
	}
}

func (v *ValidatePack) checkLayout(rep *domain.Report, m domain.Manifest, facts ports.PackFacts) {
	switch {
	case facts.ReadmeSize < 0:
		rep.Fail("readme", "README.md is missing")
	case facts.ReadmeSize < minReadmeBytes:
		rep.Warn("readme", fmt.Sprintf("README.md is only %d bytes, add setup and usage notes", facts.ReadmeSize))
	default:
		rep.Pass("readme", "README.md present")
	}

	if facts.HasGoMod {
		rep.Pass("gomod", "go.mod present")
	} else {
		rep.Fail("gomod", "go.mod is missing (the pack must be its own module)")
	}

	srcDir := m.Source()
	switch {
	case facts.SourceFiles < 0:
		rep.Fail("source", fmt.Sprintf("source directory %q is missing", srcDir))
	case facts.SourceFiles == 0:
		rep.Fail("source", fmt.Sprintf("source directory %q has no Go files", srcDir))
	default:
		rep.Pass("source", fmt.Sprintf("%d Go file(s) in %q", facts.SourceFiles, srcDir))

		if !facts.HasDocGo {
			rep.Info("source.doc", "no doc.go in the source directory")
		}
		if !facts.HasRegistrationMarker {
			rep.Warn("source.commands", "no command registration found, the platform will see an empty pack")
		}
		if facts.TestFiles == 0 {
			rep.Warn("source.tests", "no _test.go files")
		}
	}
}
