package domain

import "regexp"

// DefaultSourceDir is where a pack keeps its command sources unless the
// manifest overrides it.
const DefaultSourceDir = "pack"

// CommandDecl is a command declared in a pack manifest. It mirrors what the
// platform reads at deploy time; packkit only uses it for listings.
type CommandDecl struct {
	Name      string
	Namespace string
	Timeout   int // seconds
	Queue     string
}

// Manifest is the declarative configuration of an Intelligence Pack
// (pack.yaml). Name and Version are the only required fields.
type Manifest struct {
	Name        string
	Version     string
	Description string
	Author      string

	// SourceDir overrides DefaultSourceDir when set.
	SourceDir string

	Commands []CommandDecl
}

// Source returns the manifest's source directory or the default.
func (m Manifest) Source() string {
	if m.SourceDir != "" {
		return m.SourceDir
	}
	return DefaultSourceDir
}

// PackRef is a lightweight reference to a pack directory on disk.
type PackRef struct {
	Name string
	Path string
}

var usernameRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,38}$`)

// ValidUsername reports whether s is a safe submitter identifier.
func ValidUsername(s string) bool {
	return usernameRe.MatchString(s)
}
