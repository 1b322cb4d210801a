// Package version holds the tv release string reported by --version and
// stamped into exported summaries.
package version

// Version is set at link time for releases:
//
//	go build -ldflags "-X github.com/vanderheijden86/tremorview/pkg/version.Version=v0.2.0" ./cmd/tv
var Version = "v0.1.0-dev"
