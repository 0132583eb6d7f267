// Package settings provides build metadata, per-invocation options, and
// context helpers shared by the propdash commands and server.
package settings

// CliBinaryName is the canonical binary name for this tool.
const CliBinaryName = "propdash"

// EnvPrefix prefixes every environment override read by propdash.
const EnvPrefix = "PROPDASH_"

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

// Surface names the entry point that started the run.
type Surface string

const (
	SurfaceCLI    Surface = "cli"
	SurfaceServer Surface = "server"
)

// Run holds options for a single execution: logging, colour, which config
// file to merge, and which surface is serving output.
type Run struct {
	MinLogLevel int8
	ConfigFile  string
	Surface     Surface
	NoColor     bool
}

// NewCliParams returns the defaults for a terminal invocation.
func NewCliParams() *Run {
	return &Run{
		MinLogLevel: 0,
		Surface:     SurfaceCLI,
		NoColor:     false,
	}
}
