// Package version holds the build metadata of the gitledger binary.
package version

// Build metadata, overridden at link time via -ldflags "-X".
var (
	// Version is the semantic version of the running binary.
	Version = "dev"

	// Commit is the git revision the binary was built from.
	Commit = "none"

	// Date is the UTC timestamp of the build.
	Date = "unknown"
)
