package md2site

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/alnah/go-md2site/internal/dateutil"
	"github.com/alnah/go-md2site/internal/pipeline"
)

// Compile-time interface implementation checks.
var (
	_ pipeline.MarkdownPreprocessor = (*pipeline.CommonMarkPreprocessor)(nil)
	_ pipeline.HTMLConverter        = (*pipeline.GoldmarkRenderer)(nil)
	_ pipeline.TemplateSource       = (TemplateLoader)(nil)
)

// Converter turns Markdown documents into site pages.
// Create with NewConverter. A Converter is safe for concurrent use: the only
// state shared between conversions is the template cache.
type Converter struct {
	cfg            converterConfig
	templateLoader TemplateLoader
	preprocessor   pipeline.MarkdownPreprocessor
	htmlConverter  pipeline.HTMLConverter
	templates      *pipeline.TemplateRenderer
}

// DefaultMarkdownOptions returns the rendering options the site content is
// written against: raw HTML kept, bare URLs linked, code highlighted with
// CSS classes, links between .md sources rewritten to .html.
func DefaultMarkdownOptions() MarkdownOptions {
	d := pipeline.DefaultRenderOptions()
	return MarkdownOptions{
		RawHTML:              d.RawHTML,
		Linkify:              d.Linkify,
		HardWraps:            d.HardWraps,
		HighlightStyle:       d.HighlightStyle,
		HighlightClasses:     d.HighlightClasses,
		GuessLanguage:        d.GuessLanguage,
		RewriteMarkdownLinks: d.RewriteMarkdownLinks,
	}
}

// NewConverter creates a Converter with default configuration.
// Use options to customize behavior (e.g., WithTemplateDir, WithMarkdownOptions).
// Returns ErrInvalidTemplateDir if a configured template directory is unusable.
func NewConverter(opts ...Option) (*Converter, error) {
	c := &Converter{
		cfg: converterConfig{
			markdown: DefaultMarkdownOptions(),
			logger:   zerolog.Nop(),
		},
		preprocessor: &pipeline.CommonMarkPreprocessor{},
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.templateLoader == nil {
		loader, err := NewTemplateLoader(c.cfg.templateDir)
		if err != nil {
			return nil, err
		}
		c.templateLoader = loader
	}

	if c.htmlConverter == nil {
		c.htmlConverter = pipeline.NewGoldmarkRenderer(toRenderOptions(c.cfg.markdown))
	}

	c.templates = pipeline.NewTemplateRenderer(c.templateLoader,
		pipeline.WithDelims(c.cfg.leftDelim, c.cfg.rightDelim),
		pipeline.WithFuncs(templateFuncs()),
	)

	return c, nil
}

// Preload reads and parses the named templates so a missing or broken
// template fails the run before any document is converted.
func (c *Converter) Preload(names ...string) error {
	return mapTemplateError(c.templates.Preload(names...))
}

// InvalidateTemplates forgets the parsed templates so edits on disk are seen
// by the next conversion. Without names every template is reloaded.
func (c *Converter) InvalidateTemplates(names ...string) {
	c.templates.Invalidate(names...)
}

// Assemble renders doc's body and builds the template context. The rendered
// HTML is framed by SynthesizeTOC, so Content always carries the article
// wrapper and, when the document asks for one, a table of contents.
// Sets doc.OutputExtension.
func (c *Converter) Assemble(ctx context.Context, doc *Document) (*RenderContext, error) {
	if doc.Path == "" {
		return nil, ErrEmptyPath
	}

	md := c.preprocessor.PreprocessMarkdown(ctx, doc.Body)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fragment, err := c.htmlConverter.ToHTML(ctx, md)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &FileError{Path: doc.Path, Err: fmt.Errorf("%w: %v", ErrRender, err)}
	}

	doc.OutputExtension = DefaultOutputExtension

	meta := doc.FrontMatter
	if meta == nil {
		meta = map[string]any{}
	}

	return &RenderContext{
		Title:    pipeline.MetaString(meta, "title"),
		Subtitle: pipeline.MetaString(meta, "subtitle"),
		Content:  template.HTML(pipeline.SynthesizeTOC(fragment)), // #nosec G203 -- rendered site content
		File:     NewFileInfo(*doc),
		Meta:     meta,
	}, nil
}

// Convert splits front matter, assembles and executes the page template for
// one document. Per-document failures are returned as *FileError.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (c *Converter) Convert(ctx context.Context, in Input) (page *Page, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &FileError{Path: in.Path, Err: fmt.Errorf("internal error: %v", r)}
		}
	}()

	if strings.TrimSpace(in.Path) == "" {
		return nil, ErrEmptyPath
	}

	meta, body, err := pipeline.SplitFrontMatter(in.Source)
	if err != nil {
		return nil, &FileError{Path: in.Path, Err: fmt.Errorf("%w: %v", ErrParse, err)}
	}

	doc := Document{FrontMatter: meta, Body: string(body), Path: in.Path}
	rc, err := c.Assemble(ctx, &doc)
	if err != nil {
		return nil, err
	}

	name := in.Template
	if name == "" {
		name = TemplatePage
	}

	html, err := c.templates.Render(name, rc)
	if err != nil {
		return nil, &FileError{Path: in.Path, Err: mapTemplateError(err)}
	}

	c.cfg.logger.Debug().
		Str("path", in.Path).
		Str("template", name).
		Int("bytes", len(html)).
		Msg("converted")

	return &Page{Document: doc, Context: rc, HTML: html}, nil
}

// toRenderOptions converts public options to the pipeline's options.
func toRenderOptions(o MarkdownOptions) pipeline.RenderOptions {
	return pipeline.RenderOptions{
		RawHTML:              o.RawHTML,
		Linkify:              o.Linkify,
		HardWraps:            o.HardWraps,
		HighlightStyle:       o.HighlightStyle,
		HighlightClasses:     o.HighlightClasses,
		GuessLanguage:        o.GuessLanguage,
		RewriteMarkdownLinks: o.RewriteMarkdownLinks,
	}
}

// mapTemplateError maps pipeline template errors to public sentinels.
func mapTemplateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pipeline.ErrTemplateRead):
		return fmt.Errorf("%w: %v", ErrTemplateRead, err)
	case errors.Is(err, pipeline.ErrTemplateExecute):
		return fmt.Errorf("%w: %v", ErrTemplateExecute, err)
	default:
		return err
	}
}

// templateFuncs are available to every page template.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"meta": pipeline.MetaString,
		"join": strings.Join,
		"date": formatDate,
	}
}

// formatDate renders a front matter date: {{date .Meta.published "long"}}.
// The format is optional and may be a preset (iso, european, us, long).
func formatDate(value any, format ...string) (string, error) {
	f := ""
	if len(format) > 0 {
		f = format[0]
	}
	return dateutil.Format(value, f, time.Now())
}
