// Package settings provides build metadata, runtime configuration, and
// context helpers used across the vernav CLI and library packages.
package settings

// CliBinaryName is the canonical binary name for this tool.
const CliBinaryName = "vernav"

// VersionInformation is populated at build time via ldflags and holds the
// commit hash, semantic version, and build timestamp of the running binary.
var VersionInformation = VersionInfo{
	Commit:       "unknown",
	BuildVersion: "v0.0.0-nightly",
	BuildTime:    "unknown",
}

// VersionInfo holds metadata about the build, including the commit hash,
// build version, and build timestamp.
type VersionInfo struct {
	Commit       string
	BuildVersion string
	BuildTime    string
}

// Run holds configuration settings for a single execution of the application.
// It includes options for logging, working-directory resolution, output
// formatting, and error handling behavior.
type Run struct {
	MinLogLevel int8
	BaseDir     string
	IsQuiet     bool
	NoColor     bool
	ExitOnError bool
}

// NewCliParams initializes and returns a pointer to a Run struct with default
// CLI parameters. Logging level defaults to 0, the base directory is left
// empty so relative paths resolve against the process working directory, and
// error handling is set to exit on error.
func NewCliParams() *Run {
	return &Run{
		MinLogLevel: 0,
		BaseDir:     "",
		IsQuiet:     false,
		NoColor:     false,
		ExitOnError: true,
	}
}
