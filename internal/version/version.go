// Package version holds build-time version information, overridable
// via -ldflags at release time.
package version

var (
	// Version is the semantic version of this build
	Version = "0.1.0-dev"

	// Commit is the git revision this binary was built from
	Commit = "unknown"
)
