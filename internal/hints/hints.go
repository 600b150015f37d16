// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-md2site/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForBundlerNotFound returns hints when the external bundler cannot be started.
// In CI or containers the bundler is usually missing from the image.
func ForBundlerNotFound(program string) string {
	var hints []string

	inCI := os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != "" ||
		os.Getenv("JENKINS_URL") != ""

	if program != "" {
		hints = append(hints, "install "+program+" or set bundles.command in md2site.yaml")
	}
	if inCI || IsInContainer() {
		hints = append(hints, "add the bundler to the build image or set bundles.command: [] to skip it")
	}

	return formatHints(hints)
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in ~/.config/go-md2site/.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/md2site.yaml or run 'md2site init'"

	for _, p := range searchedPaths {
		if strings.Contains(filepath.ToSlash(p), ".config/go-md2site") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForTemplateNotFound lists the templates that can be used instead.
func ForTemplateNotFound(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available: " + strings.Join(available, ", "))
}

// ForTemplateDir returns a hint for an unusable template directory.
func ForTemplateDir() string {
	return format("templateDir must be an existing directory holding <name>.html files")
}

// ForSourceDirectory returns a hint for a missing source tree.
func ForSourceDirectory() string {
	return format("run from the site root or set sourceDir / --source")
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForInvalidPattern returns a hint for malformed glob patterns.
func ForInvalidPattern() string {
	return format("patterns use doublestar syntax, e.g. **/*.md or {js,sass}/**")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
