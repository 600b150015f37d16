// Package md2site converts Markdown documents with YAML front matter into
// static site pages.
//
// # Quick Start
//
// Create a converter and convert a document:
//
//	conv, err := md2site.NewConverter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	page, err := conv.Convert(ctx, md2site.Input{
//	    Path:   "docs/guide.md",
//	    Source: []byte("---\ntitle: Guide\n---\n<!-- toc -->\n\n## Install\n"),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile(page.OutputPath(), page.HTML, 0644)
//
// # Conversion Pipeline
//
// Each document goes through these stages:
//
//  1. Front matter split (YAML between "---" lines)
//  2. Markdown to HTML via Goldmark (GFM tables, heading attributes,
//     syntax highlighting, every heading gets an id and the
//     "has-permalink" class)
//  3. Table of contents synthesis: a <!-- toc --> comment becomes a
//     collapsible list of the h1-h3 headings; the document is always
//     framed by <div class="article-wrapper"><article>
//  4. Page template execution ("page" or "blog"), with .Title, .Subtitle,
//     .Content, .File and .Meta in scope
//
// # Templates
//
// Built-in templates are embedded. A site overrides them by name:
//
//	conv, err := md2site.NewConverter(
//	    md2site.WithTemplateDir("templates"),
//	    md2site.WithDelims("[[", "]]"),
//	)
//
// # Batch Conversion
//
// ConvertAll converts many documents with a bounded worker pool and reports
// one Result per input:
//
//	for _, r := range conv.ConvertAll(ctx, inputs) {
//	    if r.Err != nil {
//	        log.Printf("%s: %v", r.Input.Path, r.Err)
//	    }
//	}
//
// # Errors
//
// Per-document failures are *FileError values wrapping ErrParse, ErrRender
// (which is also ErrParse) or ErrTemplateExecute. ErrTemplateRead means a
// template is missing; use Converter.Preload to detect it up front.
package md2site
