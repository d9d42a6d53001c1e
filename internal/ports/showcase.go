package ports

import "github.com/huitzo/packkit/internal/domain"

// ShowcaseStore publishes validated packs into the showcase tree.
type ShowcaseStore interface {
	// Destination derives the target directory for a user/pack pair.
	Destination(username, packName string) string

	Exists(dest string) bool

	// Publish copies src into dest (denylist applied) and writes the
	// submission metadata document.
	Publish(src, dest string, sub domain.Submission) error
}
