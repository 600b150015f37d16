package minify

import (
	"errors"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// MediaType
// ---------------------------------------------------------------------------

func TestMediaType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path   string
		want   string
		wantOK bool
	}{
		{"css/site.css", MediaCSS, true},
		{"js/app.JS", MediaJS, true},
		{"js/mod.mjs", MediaJS, true},
		{"elements/pw-shell.html", MediaHTML, true},
		{"index.htm", MediaHTML, true},
		{"images/logo.svg", MediaSVG, true},
		{"images/photo.png", "", false},
		{"README", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			got, ok := MediaType(tt.path)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("MediaType(%q) = (%q, %v), want (%q, %v)", tt.path, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Bytes
// ---------------------------------------------------------------------------

func TestBytes(t *testing.T) {
	t.Parallel()

	m := New()

	tests := []struct {
		name      string
		mediaType string
		input     string
		want      string
	}{
		{
			name:      "css",
			mediaType: MediaCSS,
			input:     "body {\n  color: #ff0000;\n  margin: 0px;\n}\n",
			want:      "body{color:red;margin:0}",
		},
		{
			name:      "js",
			mediaType: MediaJS,
			input:     "var answer = 40 + 2;\n",
			want:      "var answer=40+2",
		},
		{
			name:      "text/javascript alias",
			mediaType: "text/javascript",
			input:     "var a = 1;",
			want:      "var a=1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := m.Bytes(tt.mediaType, []byte(tt.input))
			if err != nil {
				t.Fatalf("Bytes() unexpected error: %v", err)
			}
			if strings.TrimSuffix(string(got), ";") != tt.want {
				t.Errorf("Bytes() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBytes_HTMLKeepsStructure(t *testing.T) {
	t.Parallel()

	m := New()
	in := "<html>\n<head>\n  <title>x</title>\n</head>\n<body>\n  <p class=\"a\">hi</p>\n</body>\n</html>"
	got, err := m.Bytes(MediaHTML, []byte(in))
	if err != nil {
		t.Fatalf("Bytes() unexpected error: %v", err)
	}
	for _, want := range []string{"<html>", "</p>", `class="a"`} {
		if !strings.Contains(string(got), want) {
			t.Errorf("Bytes() = %q, want to contain %q", got, want)
		}
	}
	if len(got) >= len(in) {
		t.Errorf("Bytes() did not shrink input: %d >= %d", len(got), len(in))
	}
}

func TestBytes_Unsupported(t *testing.T) {
	t.Parallel()

	_, err := New().Bytes("image/png", []byte("x"))
	if !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("Bytes() error = %v, want ErrUnsupportedType", err)
	}
}

// ---------------------------------------------------------------------------
// File and banner
// ---------------------------------------------------------------------------

func TestFile_Banner(t *testing.T) {
	t.Parallel()

	m := New(WithBanner("  @license Copyright (c) Site Authors  "))

	tests := []struct {
		name       string
		path       string
		input      string
		wantPrefix string
	}{
		{"css gets banner", "a.css", "a { color: red; }", "/*! @license Copyright (c) Site Authors */\n"},
		{"js gets banner", "a.js", "var a = 1;", "/*! @license Copyright (c) Site Authors */\n"},
		{"svg has none", "a.svg", `<svg xmlns="http://www.w3.org/2000/svg"></svg>`, "<svg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := m.File(tt.path, []byte(tt.input))
			if err != nil {
				t.Fatalf("File() unexpected error: %v", err)
			}
			if !strings.HasPrefix(string(got), tt.wantPrefix) {
				t.Errorf("File() = %q, want prefix %q", got, tt.wantPrefix)
			}
		})
	}
}

func TestFile_Errors(t *testing.T) {
	t.Parallel()

	m := New()

	if _, err := m.File("a.txt", []byte("x")); !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("File(a.txt) error = %v, want ErrUnsupportedType", err)
	}

	_, err := m.File("js/broken.js", []byte("var = ;"))
	if !errors.Is(err, ErrMinify) {
		t.Errorf("File(broken.js) error = %v, want ErrMinify", err)
	}
	if err != nil && !strings.Contains(err.Error(), "js/broken.js") {
		t.Errorf("File() error %q should name the file", err)
	}
}

func TestBanner(t *testing.T) {
	t.Parallel()

	if got := New().Banner(MediaCSS); got != "" {
		t.Errorf("Banner() without text = %q, want empty", got)
	}
	m := New(WithBanner("a */ b"))
	if got := m.Banner(MediaJS); got != "/*! a * / b */\n" {
		t.Errorf("Banner() = %q, comment terminator must be neutralised", got)
	}
	if got := m.Banner(MediaHTML); got != "" {
		t.Errorf("Banner(html) = %q, want empty", got)
	}
}

// ---------------------------------------------------------------------------
// CheckJS
// ---------------------------------------------------------------------------

func TestCheckJS(t *testing.T) {
	t.Parallel()

	m := New()

	tests := []struct {
		name    string
		src     string
		wantErr bool
	}{
		{"valid es5", "function f(a) { return a + 1; }", false},
		{"valid es2015", "const f = (a) => `${a}`; class X {}", false},
		{"empty", "", false},
		{"unbalanced brace", "function f() {", true},
		{"bad assignment", "var = 1;", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := m.CheckJS([]byte(tt.src))
			if (err != nil) != tt.wantErr {
				t.Fatalf("CheckJS() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrSyntax) {
				t.Errorf("CheckJS() error = %v, want ErrSyntax", err)
			}
		})
	}
}
