package pipeline

import "testing"

func TestSlugify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple words", "Hello World", "hello-world"},
		{"surrounding space", "  Spaces  Around ", "spaces-around"},
		{"punctuation dropped", "C++ & Go!", "c-go"},
		{"dots removed", "Version 2.0", "version-20"},
		{"hyphen and underscore kept", "snake_case-name", "snake_case-name"},
		{"unicode letters kept", "Ünïcode Heading", "ünïcode-heading"},
		{"tabs and newlines collapse", "a\t\nb", "a-b"},
		{"only punctuation", "!!!", fallbackSlug},
		{"empty", "", fallbackSlug},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Slugify(tt.input); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
