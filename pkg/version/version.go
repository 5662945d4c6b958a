// Package version carries build metadata injected with -ldflags.
package version

// Build metadata. Overridden at link time, e.g.
// -ldflags "-X github.com/Sumatoshi-tech/trendmerge/pkg/version.Version=v1.2.0".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)
