package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io"
	"sync"
)

// Sentinel errors for template rendering.
var (
	ErrTemplateRead    = errors.New("template read failed")
	ErrTemplateExecute = errors.New("template execution failed")
)

// Default action delimiters.
const (
	DefaultLeftDelim  = "{{"
	DefaultRightDelim = "}}"
)

// TemplateSource supplies template text by name.
type TemplateSource interface {
	LoadTemplate(name string) (string, error)
}

// TemplateRenderer executes named html/template templates. Each name is read
// and parsed once, then cached for the lifetime of the renderer.
// Safe for concurrent use.
type TemplateRenderer struct {
	source     TemplateSource
	leftDelim  string
	rightDelim string
	funcs      template.FuncMap

	mu    sync.Mutex
	cache map[string]*template.Template
}

// TemplateOption configures a TemplateRenderer.
type TemplateOption func(*TemplateRenderer)

// WithDelims sets the action delimiters, for templates whose markup already
// uses {{ }} for something else. Empty values keep the defaults.
func WithDelims(left, right string) TemplateOption {
	return func(r *TemplateRenderer) {
		if left != "" {
			r.leftDelim = left
		}
		if right != "" {
			r.rightDelim = right
		}
	}
}

// WithFuncs adds functions available to every template.
func WithFuncs(funcs template.FuncMap) TemplateOption {
	return func(r *TemplateRenderer) {
		for name, fn := range funcs {
			r.funcs[name] = fn
		}
	}
}

// NewTemplateRenderer creates a TemplateRenderer reading from source.
func NewTemplateRenderer(source TemplateSource, opts ...TemplateOption) *TemplateRenderer {
	r := &TemplateRenderer{
		source:     source,
		leftDelim:  DefaultLeftDelim,
		rightDelim: DefaultRightDelim,
		funcs:      template.FuncMap{},
		cache:      make(map[string]*template.Template),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Preload reads and parses every named template, so a missing template is
// reported before any document is converted.
func (r *TemplateRenderer) Preload(names ...string) error {
	for _, name := range names {
		if _, err := r.lookup(name); err != nil {
			return err
		}
	}
	return nil
}

// Invalidate drops the named templates from the cache so the next use reads
// them again from the source. Without names the whole cache is dropped.
func (r *TemplateRenderer) Invalidate(names ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(names) == 0 {
		clear(r.cache)
		return
	}
	for _, name := range names {
		delete(r.cache, name)
	}
}

// Render executes the named template with data and returns the output.
func (r *TemplateRenderer) Render(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.Execute(&buf, name, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Execute writes the named template, executed with data, to w.
// Returns ErrTemplateRead if the template cannot be loaded or parsed and
// ErrTemplateExecute if execution fails.
func (r *TemplateRenderer) Execute(w io.Writer, name string, data any) error {
	tmpl, err := r.lookup(name)
	if err != nil {
		return err
	}
	if err := tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrTemplateExecute, name, err)
	}
	return nil
}

// lookup returns the cached template for name, loading it on first use.
// Failures are not cached: a template fixed on disk is picked up next call.
func (r *TemplateRenderer) lookup(name string) (*template.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if tmpl, ok := r.cache[name]; ok {
		return tmpl, nil
	}
	if r.source == nil {
		return nil, fmt.Errorf("%w: %s: no template source", ErrTemplateRead, name)
	}

	text, err := r.source.LoadTemplate(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTemplateRead, name, err)
	}

	tmpl, err := template.New(name).
		Delims(r.leftDelim, r.rightDelim).
		Funcs(r.funcs).
		Option("missingkey=zero").
		Parse(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTemplateRead, name, err)
	}

	r.cache[name] = tmpl
	return tmpl, nil
}
