package pipeline

import (
	"errors"
	"strings"
	"testing"
)

func TestSplitFrontMatter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		wantMeta map[string]string
		wantBody string
	}{
		{
			name:     "no front matter",
			input:    "# Title\n\nBody text.\n",
			wantMeta: map[string]string{},
			wantBody: "# Title\n\nBody text.",
		},
		{
			name:     "title and subtitle",
			input:    "---\ntitle: Hello\nsubtitle: World\n---\n# Body\n",
			wantMeta: map[string]string{"title": "Hello", "subtitle": "World"},
			wantBody: "# Body",
		},
		{
			name:     "empty block",
			input:    "---\n---\nbody\n",
			wantMeta: map[string]string{},
			wantBody: "body",
		},
		{
			name:     "toml delimiters are body",
			input:    "+++\ntitle = 1\n+++\nbody\n",
			wantMeta: map[string]string{},
			wantBody: "+++\ntitle = 1\n+++\nbody",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			meta, body, err := SplitFrontMatter([]byte(tt.input))
			if err != nil {
				t.Fatalf("SplitFrontMatter() unexpected error: %v", err)
			}
			if meta == nil {
				t.Fatal("SplitFrontMatter() returned nil map")
			}
			if len(meta) != len(tt.wantMeta) {
				t.Errorf("SplitFrontMatter() meta = %v, want %v", meta, tt.wantMeta)
			}
			for k, want := range tt.wantMeta {
				if got := MetaString(meta, k); got != want {
					t.Errorf("meta[%q] = %q, want %q", k, got, want)
				}
			}
			if got := strings.TrimSpace(string(body)); got != tt.wantBody {
				t.Errorf("SplitFrontMatter() body = %q, want %q", got, tt.wantBody)
			}
		})
	}
}

func TestSplitFrontMatter_NestedValues(t *testing.T) {
	t.Parallel()

	input := "---\ntitle: Post\ntags:\n  - go\n  - web\ndraft: true\n---\ntext\n"
	meta, _, err := SplitFrontMatter([]byte(input))
	if err != nil {
		t.Fatalf("SplitFrontMatter() unexpected error: %v", err)
	}

	tags, ok := meta["tags"].([]any)
	if !ok || len(tags) != 2 {
		t.Errorf("meta[tags] = %#v, want two-element list", meta["tags"])
	}
	if draft, ok := meta["draft"].(bool); !ok || !draft {
		t.Errorf("meta[draft] = %#v, want true", meta["draft"])
	}
}

func TestSplitFrontMatter_Malformed(t *testing.T) {
	t.Parallel()

	input := "---\ntitle: [unclosed\n---\nbody\n"
	_, _, err := SplitFrontMatter([]byte(input))
	if !errors.Is(err, ErrFrontMatter) {
		t.Errorf("SplitFrontMatter() error = %v, want ErrFrontMatter", err)
	}
}

func TestMetaString(t *testing.T) {
	t.Parallel()

	meta := map[string]any{
		"title": "Hello",
		"count": 3,
		"flag":  true,
		"null":  nil,
	}

	tests := []struct {
		key  string
		want string
	}{
		{"title", "Hello"},
		{"count", "3"},
		{"flag", "true"},
		{"null", ""},
		{"missing", ""},
	}

	for _, tt := range tests {
		if got := MetaString(meta, tt.key); got != tt.want {
			t.Errorf("MetaString(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}
