package ports

import "github.com/huitzo/packkit/internal/domain"

// ManifestLoader loads pack manifests from a source (e.g., filesystem).
// Loading is lenient: required-field enforcement belongs to the validator.
type ManifestLoader interface {
	LoadManifest(path string) (domain.Manifest, error)
}
