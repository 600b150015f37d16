// Package minify wraps tdewolff/minify for the asset tasks: stylesheets,
// scripts, element bundles and SVG images.
package minify

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"

	tdm "github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
	"github.com/tdewolff/minify/v2/svg"
)

// Media types handled by the minifier.
const (
	MediaCSS  = "text/css"
	MediaJS   = "application/javascript"
	MediaHTML = "text/html"
	MediaSVG  = "image/svg+xml"
)

// Sentinel errors for minification.
var (
	ErrUnsupportedType = errors.New("unsupported media type")
	ErrMinify          = errors.New("minification failed")
	ErrSyntax          = errors.New("syntax error")
)

var jsMediaPattern = regexp.MustCompile(`^(application|text)/(x-)?(java|ecma)script$`)

// extensions maps lowercase file extensions to media types.
var extensions = map[string]string{
	".css":  MediaCSS,
	".js":   MediaJS,
	".mjs":  MediaJS,
	".html": MediaHTML,
	".htm":  MediaHTML,
	".svg":  MediaSVG,
}

// Minifier minifies assets by media type and prepends an optional license
// banner to stylesheets and scripts. Safe for concurrent use.
type Minifier struct {
	m      *tdm.M
	banner string
}

// Option configures a Minifier.
type Option func(*Minifier)

// WithBanner sets the license text prepended to CSS and JS output.
// Empty text disables the banner.
func WithBanner(text string) Option {
	return func(m *Minifier) {
		m.banner = strings.TrimSpace(text)
	}
}

// New returns a Minifier with CSS, JS, HTML and SVG registered.
// HTML keeps quotes, end tags and document tags so element bundles stay
// parseable by older HTML import polyfills.
func New(opts ...Option) *Minifier {
	m := tdm.New()
	m.AddFunc(MediaCSS, css.Minify)
	m.AddFuncRegexp(jsMediaPattern, js.Minify)
	m.Add(MediaHTML, &html.Minifier{
		KeepDocumentTags: true,
		KeepEndTags:      true,
		KeepQuotes:       true,
	})
	m.AddFunc(MediaSVG, svg.Minify)

	out := &Minifier{m: m}
	for _, opt := range opts {
		opt(out)
	}
	return out
}

// MediaType returns the media type for a file path based on its extension.
func MediaType(p string) (string, bool) {
	mt, ok := extensions[strings.ToLower(path.Ext(p))]
	return mt, ok
}

// Bytes minifies b as mediaType without a banner.
func (m *Minifier) Bytes(mediaType string, b []byte) ([]byte, error) {
	if _, ok := m.lookup(mediaType); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, mediaType)
	}
	out, err := m.m.Bytes(mediaType, b)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMinify, err)
	}
	return out, nil
}

// File minifies the content of the file at p, picking the media type from
// its extension, and prepends the banner for CSS and JS.
func (m *Minifier) File(p string, b []byte) ([]byte, error) {
	mt, ok := MediaType(p)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, path.Ext(p))
	}
	out, err := m.Bytes(mt, b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	return m.withBanner(mt, out), nil
}

// CheckJS parses b as JavaScript and reports the first syntax error.
func (m *Minifier) CheckJS(b []byte) error {
	if err := m.m.Minify(MediaJS, io.Discard, bytes.NewReader(b)); err != nil {
		return fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	return nil
}

// Banner returns the license comment for mediaType, or "" when no banner
// is configured or the type takes none.
func (m *Minifier) Banner(mediaType string) string {
	if m.banner == "" {
		return ""
	}
	switch {
	case mediaType == MediaCSS, jsMediaPattern.MatchString(mediaType):
		// "/*!" survives later minification passes.
		return "/*! " + strings.ReplaceAll(m.banner, "*/", "* /") + " */\n"
	default:
		return ""
	}
}

func (m *Minifier) withBanner(mediaType string, b []byte) []byte {
	banner := m.Banner(mediaType)
	if banner == "" {
		return b
	}
	out := make([]byte, 0, len(banner)+len(b))
	out = append(out, banner...)
	return append(out, b...)
}

func (m *Minifier) lookup(mediaType string) (string, bool) {
	switch {
	case mediaType == MediaCSS, mediaType == MediaHTML, mediaType == MediaSVG:
		return mediaType, true
	case jsMediaPattern.MatchString(mediaType):
		return MediaJS, true
	default:
		return "", false
	}
}
