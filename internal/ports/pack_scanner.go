package ports

// PackFacts are the raw filesystem observations about a pack directory.
// The validator turns these into diagnostics; the scanner only reports.
type PackFacts struct {
	// ReadmeSize is the README.md size in bytes, -1 when missing.
	ReadmeSize int64

	HasGoMod bool

	// SourceFiles counts non-test .go files in the source dir, -1 when the
	// directory is missing.
	SourceFiles int
	TestFiles   int

	HasDocGo              bool
	HasRegistrationMarker bool
}

// PackScanner inspects a pack directory layout.
type PackScanner interface {
	Scan(dir, sourceDir string) (PackFacts, error)
}
