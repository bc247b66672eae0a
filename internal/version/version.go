// Package version provides build version information for the
// application. Separate package to avoid import cycles between cli and
// gui packages.
package version

// Version is the build version string, set by ldflags during build.
var Version = "v0.3.0-dev"

// BuildTime is the build timestamp, set by ldflags during build.
var BuildTime = "unknown"
