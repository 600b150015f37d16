package md2site

import (
	"html/template"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/alnah/go-md2site/internal/fileutil"
)

// Built-in template names.
const (
	TemplatePage = "page"
	TemplateBlog = "blog"
)

// DefaultOutputExtension is the extension of every generated page.
const DefaultOutputExtension = ".html"

// Document is one Markdown source file after front matter has been split off.
type Document struct {
	FrontMatter     map[string]any // every key of the front matter block
	Body            string         // raw Markdown without the front matter
	Path            string         // slash-separated, relative to the source root
	OutputExtension string         // set to ".html" by Assemble
}

// OutputPath returns Path with its extension replaced by OutputExtension
// (DefaultOutputExtension when unset).
func (d Document) OutputPath() string {
	ext := d.OutputExtension
	if ext == "" {
		ext = DefaultOutputExtension
	}
	return fileutil.ReplaceExtension(d.Path, ext)
}

// FileInfo is the template-facing view of a document's file.
type FileInfo struct {
	Path       string // source path, e.g. "docs/guide.md"
	OutputPath string // generated path, e.g. "docs/guide.html"
	Dir        string // "docs" ("." at the root)
	Name       string // "guide"
	Base       string // "guide.md"
	Ext        string // ".md"
}

// NewFileInfo describes doc's source and output locations.
func NewFileInfo(doc Document) FileInfo {
	base := path.Base(doc.Path)
	ext := path.Ext(base)
	return FileInfo{
		Path:       doc.Path,
		OutputPath: doc.OutputPath(),
		Dir:        path.Dir(doc.Path),
		Name:       strings.TrimSuffix(base, ext),
		Base:       base,
		Ext:        ext,
	}
}

// RenderContext is the data a page template executes against.
type RenderContext struct {
	Title    string         // front matter "title", "" when absent
	Subtitle string         // front matter "subtitle", "" when absent
	Content  template.HTML  // framed document HTML, never escaped
	File     FileInfo       // source and output locations
	Meta     map[string]any // every front matter key
}

// Input is one document to convert.
type Input struct {
	Path     string // slash-separated, relative to the source root (required)
	Source   []byte // file contents including any front matter
	Template string // template name, "" = TemplatePage
}

// Page is a converted document.
type Page struct {
	Document Document
	Context  *RenderContext
	HTML     []byte // executed template output
}

// OutputPath returns the slash-separated path of the generated page.
func (p *Page) OutputPath() string {
	return p.Document.OutputPath()
}

// Result reports the outcome of one Input in a batch.
type Result struct {
	Input    Input
	Page     *Page // nil when Err is set
	Err      error
	Duration time.Duration
}

// MarkdownOptions configures Markdown rendering.
// The zero value disables every optional behavior; start from
// DefaultMarkdownOptions to keep the site defaults.
type MarkdownOptions struct {
	RawHTML              bool   // keep raw HTML and <!-- toc --> markers
	Linkify              bool   // turn bare URLs into links
	HardWraps            bool   // newlines become <br>
	HighlightStyle       string // chroma style name
	HighlightClasses     bool   // CSS classes instead of inline styles
	GuessLanguage        bool   // highlight fences without a language
	RewriteMarkdownLinks bool   // relative *.md links point at *.html
}

// Option configures a Converter.
type Option func(*Converter)

// converterConfig holds internal configuration for Converter.
type converterConfig struct {
	markdown    MarkdownOptions
	templateDir string
	leftDelim   string
	rightDelim  string
	workers     int
	logger      zerolog.Logger
}

// WithMarkdownOptions replaces the Markdown rendering options.
func WithMarkdownOptions(opts MarkdownOptions) Option {
	return func(c *Converter) {
		c.cfg.markdown = opts
	}
}

// WithTemplateDir loads page templates from dir, falling back to the
// built-in templates for names dir does not provide.
func WithTemplateDir(dir string) Option {
	return func(c *Converter) {
		c.cfg.templateDir = dir
	}
}

// WithTemplateLoader sets a custom template source.
// Takes precedence over WithTemplateDir.
func WithTemplateLoader(loader TemplateLoader) Option {
	return func(c *Converter) {
		c.templateLoader = loader
	}
}

// WithDelims sets the template action delimiters. Sites whose templates are
// also processed by a server-side engine using {{ }} pick other delimiters.
func WithDelims(left, right string) Option {
	return func(c *Converter) {
		c.cfg.leftDelim = left
		c.cfg.rightDelim = right
	}
}

// WithWorkers sets the ConvertAll concurrency. Zero or negative selects
// ResolvePoolSize(0).
func WithWorkers(n int) Option {
	return func(c *Converter) {
		c.cfg.workers = n
	}
}

// WithLogger sets the logger used for per-document debug output.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Converter) {
		c.cfg.logger = logger
	}
}
