package hints

// Notes:
// - ForBundlerNotFound tests cannot use t.Parallel() because they:
//   1. Use t.Setenv() which modifies process environment
//   2. Modify the package-level IsInContainer variable
// These are acceptable gaps: we test observable behavior through environment manipulation.

import (
	"strings"
	"testing"
)

func clearCI(t *testing.T) {
	t.Helper()
	for _, k := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL"} {
		t.Setenv(k, "")
	}
}

// ---------------------------------------------------------------------------
// ForBundlerNotFound
// ---------------------------------------------------------------------------

func TestForBundlerNotFound_Local(t *testing.T) {
	orig := IsInContainer
	defer func() { IsInContainer = orig }()
	IsInContainer = func() bool { return false }
	clearCI(t)

	hint := ForBundlerNotFound("polymer")

	if !strings.HasPrefix(hint, "\n  hint: ") {
		t.Errorf("expected hint prefix, got %q", hint)
	}
	if !strings.Contains(hint, "install polymer") {
		t.Errorf("expected install suggestion, got %q", hint)
	}
	if strings.Contains(hint, "build image") {
		t.Errorf("should not mention build image outside CI, got %q", hint)
	}
}

func TestForBundlerNotFound_InCI(t *testing.T) {
	orig := IsInContainer
	defer func() { IsInContainer = orig }()
	IsInContainer = func() bool { return false }
	clearCI(t)
	t.Setenv("CI", "true")

	hint := ForBundlerNotFound("polymer")

	if !strings.Contains(hint, "build image") {
		t.Errorf("expected build image suggestion in CI, got %q", hint)
	}
	if strings.Count(hint, "hint:") != 1 {
		t.Errorf("hints should be joined into one line, got %q", hint)
	}
}

func TestForBundlerNotFound_InDocker(t *testing.T) {
	orig := IsInContainer
	defer func() { IsInContainer = orig }()
	IsInContainer = func() bool { return true }
	clearCI(t)

	hint := ForBundlerNotFound("")

	if strings.Contains(hint, "install") {
		t.Errorf("no program given, got %q", hint)
	}
	if !strings.Contains(hint, "build image") {
		t.Errorf("expected build image suggestion in Docker, got %q", hint)
	}
}

func TestForBundlerNotFound_Empty(t *testing.T) {
	orig := IsInContainer
	defer func() { IsInContainer = orig }()
	IsInContainer = func() bool { return false }
	clearCI(t)

	if hint := ForBundlerNotFound(""); hint != "" {
		t.Errorf("ForBundlerNotFound(\"\") = %q, want empty", hint)
	}
}

// ---------------------------------------------------------------------------
// Static hints
// ---------------------------------------------------------------------------

func TestForConfigNotFound(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		searched []string
		want     string
		notWant  string
	}{
		{
			name:     "suggests user config path",
			searched: []string{"md2site.yaml", "/home/u/.config/go-md2site/md2site.yaml"},
			want:     "or create /home/u/.config/go-md2site/md2site.yaml",
		},
		{
			name:     "no user path",
			searched: []string{"md2site.yaml"},
			want:     "--config",
			notWant:  "or create",
		},
		{
			name: "nil paths",
			want: "md2site init",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			hint := ForConfigNotFound(tt.searched)
			if !strings.Contains(hint, tt.want) {
				t.Errorf("ForConfigNotFound() = %q, want to contain %q", hint, tt.want)
			}
			if tt.notWant != "" && strings.Contains(hint, tt.notWant) {
				t.Errorf("ForConfigNotFound() = %q, should not contain %q", hint, tt.notWant)
			}
		})
	}
}

func TestForTemplateNotFound(t *testing.T) {
	t.Parallel()

	if got := ForTemplateNotFound(nil); got != "" {
		t.Errorf("ForTemplateNotFound(nil) = %q, want empty", got)
	}
	if got := ForTemplateNotFound([]string{"blog", "page"}); got != "\n  hint: available: blog, page" {
		t.Errorf("ForTemplateNotFound() = %q", got)
	}
}

func TestStaticHints(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		fn   func() string
		want string
	}{
		{"template dir", ForTemplateDir, "templateDir"},
		{"source dir", ForSourceDirectory, "sourceDir"},
		{"output dir", ForOutputDirectory, "writable"},
		{"pattern", ForInvalidPattern, "doublestar"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := tt.fn()
			if !strings.HasPrefix(got, "\n  hint: ") || !strings.Contains(got, tt.want) {
				t.Errorf("%s hint = %q, want prefix and %q", tt.name, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Formatting
// ---------------------------------------------------------------------------

func TestFormat(t *testing.T) {
	t.Parallel()

	if format("") != "" {
		t.Error("format(\"\") should be empty")
	}
	if formatHints(nil) != "" {
		t.Error("formatHints(nil) should be empty")
	}
	if got := formatHints([]string{"a", "b"}); got != "\n  hint: a; b" {
		t.Errorf("formatHints() = %q", got)
	}
}
