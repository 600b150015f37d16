package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// ErrHTMLConversion indicates HTML conversion failed.
var ErrHTMLConversion = errors.New("HTML conversion failed")

// PermalinkClass is set on every rendered heading so the site script can
// attach permalink anchors.
const PermalinkClass = "has-permalink"

// DefaultHighlightStyle is the chroma style used for fenced code blocks.
const DefaultHighlightStyle = "github"

// RenderOptions configures a GoldmarkRenderer. The value is copied into the
// renderer at construction and never changes afterwards, so one renderer can
// serve concurrent conversions.
type RenderOptions struct {
	RawHTML              bool   // pass raw HTML (and the toc marker) through unchanged
	Linkify              bool   // turn bare URLs into links
	HardWraps            bool   // newlines become <br>
	HighlightStyle       string // chroma style name, "" = DefaultHighlightStyle
	HighlightClasses     bool   // CSS classes instead of inline styles
	GuessLanguage        bool   // guess the language of fences without info string
	RewriteMarkdownLinks bool   // relative *.md link targets become *.html
}

// DefaultRenderOptions mirrors what the site content expects: raw HTML and
// Polymer elements pass through, bare URLs are linked, links between pages
// are written against their .md sources.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		RawHTML:              true,
		Linkify:              true,
		HighlightStyle:       DefaultHighlightStyle,
		HighlightClasses:     true,
		GuessLanguage:        true,
		RewriteMarkdownLinks: true,
	}
}

// HTMLConverter abstracts Markdown to HTML conversion.
type HTMLConverter interface {
	ToHTML(ctx context.Context, content string) (string, error)
}

// GoldmarkRenderer converts Markdown to an HTML fragment using goldmark.
type GoldmarkRenderer struct {
	opts RenderOptions
	md   goldmark.Markdown
}

// NewGoldmarkRenderer creates a GoldmarkRenderer from opts.
func NewGoldmarkRenderer(opts RenderOptions) *GoldmarkRenderer {
	if opts.HighlightStyle == "" {
		opts.HighlightStyle = DefaultHighlightStyle
	}

	exts := []goldmark.Extender{
		extension.Table,
		extension.Strikethrough,
		extension.TaskList,
		highlighting.NewHighlighting(
			highlighting.WithStyle(opts.HighlightStyle),
			highlighting.WithGuessLanguage(opts.GuessLanguage),
			highlighting.WithFormatOptions(
				chromahtml.WithClasses(opts.HighlightClasses),
			),
		),
	}
	if opts.Linkify {
		exts = append(exts, extension.Linkify)
	}

	parserOpts := []parser.Option{
		parser.WithAttribute(), // {#id .class key=value} on headings
		parser.WithASTTransformers(util.Prioritized(headingIDs{}, 200)),
	}
	if opts.RewriteMarkdownLinks {
		parserOpts = append(parserOpts,
			parser.WithASTTransformers(util.Prioritized(markdownLinkRewriter{}, 100)))
	}

	rendererOpts := []renderer.Option{
		renderer.WithNodeRenderers(util.Prioritized(headingRenderer{}, 100)),
	}
	if opts.RawHTML {
		rendererOpts = append(rendererOpts, html.WithUnsafe())
	}
	if opts.HardWraps {
		rendererOpts = append(rendererOpts, html.WithHardWraps())
	}

	md := goldmark.New(
		goldmark.WithExtensions(exts...),
		goldmark.WithParserOptions(parserOpts...),
		goldmark.WithRendererOptions(rendererOpts...),
	)
	return &GoldmarkRenderer{opts: opts, md: md}
}

// Options returns a copy of the renderer configuration.
func (r *GoldmarkRenderer) Options() RenderOptions {
	return r.opts
}

// ToHTML converts Markdown content to an HTML fragment.
// Supports context cancellation via goroutine + select pattern since
// Goldmark doesn't natively support context.
func (r *GoldmarkRenderer) ToHTML(ctx context.Context, content string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		html string
		err  error
	}

	done := make(chan result, 1)

	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- result{err: fmt.Errorf("%w: %v", ErrHTMLConversion, p)}
			}
		}()

		var buf bytes.Buffer
		if err := r.md.Convert([]byte(content), &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrHTMLConversion, err)}
			return
		}
		done <- result{html: buf.String()}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-done:
		return res.html, res.err
	}
}

// headingRenderer writes headings as
// <hN{attrs} id="{anchor}" class="has-permalink">{text}</hN>.
type headingRenderer struct{}

func (headingRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindHeading, renderHeading)
}

func renderHeading(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.Heading)
	level := byte('0' + n.Level)

	if !entering {
		_, _ = w.WriteString("</h")
		_ = w.WriteByte(level)
		_, _ = w.WriteString(">\n")
		return ast.WalkContinue, nil
	}

	_, _ = w.WriteString("<h")
	_ = w.WriteByte(level)

	var id, class []byte
	for _, attr := range n.Attributes() {
		value := attributeBytes(attr.Value)
		switch string(attr.Name) {
		case "id":
			id = value
		case "class":
			class = value
		default:
			_ = w.WriteByte(' ')
			_, _ = w.Write(attr.Name)
			_, _ = w.WriteString(`="`)
			_, _ = w.Write(util.EscapeHTML(value))
			_ = w.WriteByte('"')
		}
	}

	_, _ = w.WriteString(` id="`)
	_, _ = w.Write(util.EscapeHTML(id))
	_, _ = w.WriteString(`" class="` + PermalinkClass)
	if len(class) > 0 {
		_ = w.WriteByte(' ')
		_, _ = w.Write(util.EscapeHTML(class))
	}
	_, _ = w.WriteString(`">`)
	return ast.WalkContinue, nil
}

// attributeBytes normalizes goldmark attribute values, which are []byte for
// parsed attributes and arbitrary values for programmatic ones.
func attributeBytes(v any) []byte {
	switch val := v.(type) {
	case []byte:
		return val
	case string:
		return []byte(val)
	default:
		return []byte(fmt.Sprint(val))
	}
}

// markdownLinkRewriter points relative links at the generated page instead of
// its Markdown source: "guide.md#setup" becomes "guide.html#setup".
type markdownLinkRewriter struct{}

func (markdownLinkRewriter) Transform(doc *ast.Document, _ text.Reader, _ parser.Context) {
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if link, ok := n.(*ast.Link); ok {
			link.Destination = []byte(RewriteMarkdownLink(string(link.Destination)))
		}
		return ast.WalkContinue, nil
	})
}

// RewriteMarkdownLink replaces a trailing .md/.markdown extension on a
// relative link target with .html. Absolute URLs, fragments and
// root-relative paths are returned unchanged.
func RewriteMarkdownLink(dest string) string {
	if dest == "" || strings.HasPrefix(dest, "#") || strings.HasPrefix(dest, "/") {
		return dest
	}
	u, err := url.Parse(dest)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return dest
	}

	pathPart, suffix := dest, ""
	if i := strings.IndexAny(dest, "?#"); i >= 0 {
		pathPart, suffix = dest[:i], dest[i:]
	}

	for _, ext := range []string{".md", ".markdown"} {
		if strings.HasSuffix(strings.ToLower(pathPart), ext) {
			return pathPart[:len(pathPart)-len(ext)] + ".html" + suffix
		}
	}
	return dest
}
