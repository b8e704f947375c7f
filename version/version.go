package version

import "fmt"

var (
	// Version is the current version of the xsort tool. It is set at build
	// time with -ldflags for release builds.
	Version = "v0.3.0-dev"

	// GitSHA is the short commit hash the binary was built from.
	GitSHA = ""
)

// GetHumanVersion returns a human-readable version string.
func GetHumanVersion() string {
	version := Version
	if GitSHA != "" {
		version = fmt.Sprintf("%v-%v", version, GitSHA)
	}
	return version
}
