// Package version holds build-time version information for the hookfang binary.
package version

// These variables are set at build time via -ldflags.
var (
	// Version is the semantic version of the binary.
	Version = "dev"

	// Commit is the Git commit hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)
