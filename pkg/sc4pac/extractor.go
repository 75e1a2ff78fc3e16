package sc4pac

// Extractor unpacks a downloaded archive into a target directory, applying
// an include/exclude filter. It is treated as an external
// collaborator: sc4pac-core depends only on this interface, never on a
// specific archive format implementation, matching the Non-goal that
// archive-format support is out of scope for the core package.
type Extractor interface {
	// Extract unpacks archive into targetDir, applying include/exclude glob
	// filters (either may be nil/empty, meaning "no filter"). Symbolic
	// links present in the archive must be skipped rather than followed or
	// recreated.
	Extract(archive, targetDir string, include, exclude []string) error
}
