package pipeline

import (
	"strings"
	"unicode"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// fallbackSlug is used when a heading has no letters or digits at all.
const fallbackSlug = "section"

// Slugify derives a URL-safe anchor from heading text: lowercase, punctuation
// removed, whitespace runs replaced with a single hyphen. Letters and digits
// outside ASCII are kept. Both the Markdown renderer and the TOC synthesizer
// use it, so generated anchors and heading ids always agree.
func Slugify(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pendingHyphen := false

	for _, r := range strings.TrimSpace(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(unicode.ToLower(r))
		case r == '-' || r == '_':
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		case unicode.IsSpace(r):
			pendingHyphen = true
		}
	}

	if b.Len() == 0 {
		return fallbackSlug
	}
	return b.String()
}

// headingIDs assigns an id to every heading that has none, slugified from
// the text the heading displays: link labels stay, link targets, images and
// raw HTML go. Ids are not de-duplicated, so two headings with the same text
// share an anchor. Explicit {#id} attributes are left alone.
type headingIDs struct{}

func (headingIDs) Transform(doc *ast.Document, reader text.Reader, _ parser.Context) {
	source := reader.Source()
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		if _, ok := h.AttributeString("id"); !ok {
			h.SetAttributeString("id", []byte(Slugify(visibleText(h, source))))
		}
		return ast.WalkSkipChildren, nil
	})
}

// visibleText concatenates the text a reader sees when n is rendered.
func visibleText(n ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := c.(type) {
		case *ast.Image, *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		case *ast.Text:
			b.Write(v.Segment.Value(source))
			if v.SoftLineBreak() || v.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(v.Value)
		case *ast.AutoLink:
			b.Write(v.Label(source))
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}
