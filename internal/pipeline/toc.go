package pipeline

import (
	"html"
	"regexp"
	"strconv"
	"strings"

	nethtml "golang.org/x/net/html"
)

// MaxTOCLevel is the deepest heading level listed in a table of contents.
const MaxTOCLevel = 3

// Wrapper markup shared by both outcomes of SynthesizeTOC.
const (
	articleOpen  = `<div class="article-wrapper"><article>`
	articleClose = `</article></div>`
	tocOpen      = `<div class="details-wrapper"><details id="toc"><summary>Contents</summary>`
	tocClose     = `</details></div>`
)

var (
	// tocMarkerPattern matches <!-- toc --> in any case, with any inner spacing.
	tocMarkerPattern = regexp.MustCompile(`(?i)<!--\s*toc\s*-->`)

	// tocHeadingPattern matches h1-h6 elements. Quoted attribute values may
	// contain '>'.
	// Captures: 1=level, 2=raw attributes (may be empty), 3=inner HTML
	tocHeadingPattern = regexp.MustCompile(`(?is)<h([1-6])(\s(?:[^>"']|"[^"]*"|'[^']*')*)?>(.*?)</h[1-6]\s*>`)
)

// HeadingEntry is one heading listed in a table of contents.
type HeadingEntry struct {
	Level    int    // 1-6
	AnchorID string // explicit id, or slug of Text
	Text     string // inner markup stripped, entities kept as rendered
}

// TocNode is a heading with the headings nested under it.
type TocNode struct {
	Entry    HeadingEntry
	Children []*TocNode
}

// HasTOCMarker reports whether renderedHTML asks for a table of contents.
func HasTOCMarker(renderedHTML string) bool {
	return tocMarkerPattern.MatchString(renderedHTML)
}

// SynthesizeTOC frames rendered document HTML for the site stylesheet.
//
// Without a <!-- toc --> marker the input is returned inside
// <div class="article-wrapper"><article>...</article></div>, byte for byte.
//
// With a marker, the first marker is replaced by a collapsible table of
// contents built from the h1-h3 headings, and everything after it is framed
// by the article wrapper. Content before the marker stays ahead of the table
// of contents; further markers are dropped. Headings listed without an
// explicit id get one, in the renderer's heading format, so every entry
// resolves. Markup that the heading pattern cannot match is left as is and
// not listed.
//
// SynthesizeTOC is not idempotent: its output carries no marker, so a second
// pass wraps the article again.
func SynthesizeTOC(renderedHTML string) string {
	loc := tocMarkerPattern.FindStringIndex(renderedHTML)
	if loc == nil {
		return articleOpen + renderedHTML + articleClose
	}

	before := renderedHTML[:loc[0]]
	after := tocMarkerPattern.ReplaceAllString(renderedHTML[loc[1]:], "")

	var entries []HeadingEntry
	before = collectHeadings(before, &entries)
	after = collectHeadings(after, &entries)

	var b strings.Builder
	b.Grow(len(renderedHTML) + len(tocOpen) + len(articleOpen) + 64*len(entries))
	b.WriteString(before)
	b.WriteString(tocOpen)
	writeTOCList(&b, BuildTOCTree(entries), 1)
	b.WriteString(tocClose)
	b.WriteString(articleOpen)
	b.WriteString(after)
	b.WriteString(articleClose)
	return b.String()
}

// ExtractHeadings returns the h1-h3 headings of rendered HTML in document
// order.
func ExtractHeadings(renderedHTML string) []HeadingEntry {
	var entries []HeadingEntry
	collectHeadings(renderedHTML, &entries)
	return entries
}

// collectHeadings appends the TOC-eligible headings of segment to entries and
// returns segment with an id added to every eligible heading that lacked one.
func collectHeadings(segment string, entries *[]HeadingEntry) string {
	matches := tocHeadingPattern.FindAllStringSubmatchIndex(segment, -1)
	if len(matches) == 0 {
		return segment
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		level, _ := strconv.Atoi(segment[m[2]:m[3]])
		if level > MaxTOCLevel {
			continue
		}

		attrs := ""
		if m[4] >= 0 {
			attrs = segment[m[4]:m[5]]
		}
		inner := segment[m[6]:m[7]]
		text := headingText(inner)

		parsed := parseAttrs(attrs)
		if id, ok := attrValue(parsed, "id"); ok {
			*entries = append(*entries, HeadingEntry{Level: level, AnchorID: id, Text: text})
			continue
		}

		anchor := Slugify(html.UnescapeString(text))
		*entries = append(*entries, HeadingEntry{Level: level, AnchorID: anchor, Text: text})

		b.WriteString(segment[last:m[0]])
		writeHeading(&b, level, parsed, anchor, inner)
		last = m[1]
	}

	if last == 0 {
		return segment
	}
	b.WriteString(segment[last:])
	return b.String()
}

// writeHeading emits a heading in the renderer's format:
// <hN{attrs} id="{anchor}" class="has-permalink">{inner}</hN>.
func writeHeading(b *strings.Builder, level int, attrs []nethtml.Attribute, anchor, inner string) {
	class := PermalinkClass
	n := strconv.Itoa(level)
	b.WriteString("<h" + n)
	for _, a := range attrs {
		if a.Key == "class" {
			if a.Val != "" {
				class += " " + html.EscapeString(a.Val)
			}
			continue
		}
		b.WriteString(" " + a.Key + `="` + html.EscapeString(a.Val) + `"`)
	}
	b.WriteString(` id="` + anchor + `" class="` + class + `">`)
	b.WriteString(inner)
	b.WriteString("</h" + n + ">")
}

// parseAttrs tokenizes a raw attribute string. Names come back lowercased
// and values unescaped, whatever quoting the markup used.
func parseAttrs(attrs string) []nethtml.Attribute {
	if strings.TrimSpace(attrs) == "" {
		return nil
	}
	z := nethtml.NewTokenizer(strings.NewReader("<h1" + attrs + ">"))
	if z.Next() != nethtml.StartTagToken {
		return nil
	}
	return z.Token().Attr
}

func attrValue(attrs []nethtml.Attribute, key string) (string, bool) {
	for _, a := range attrs {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// headingText strips tags from a heading's inner HTML. Text is copied raw, so
// character references stay escaped exactly as the renderer wrote them.
func headingText(inner string) string {
	z := nethtml.NewTokenizer(strings.NewReader(inner))
	var b strings.Builder
	for {
		switch z.Next() {
		case nethtml.ErrorToken:
			return strings.TrimSpace(b.String())
		case nethtml.TextToken:
			b.Write(z.Raw())
		}
	}
}

// BuildTOCTree nests entries by level. A heading deeper than its predecessor
// becomes its child even when levels are skipped (h1 then h3 nests once).
func BuildTOCTree(entries []HeadingEntry) []*TocNode {
	var roots []*TocNode
	var stack []*TocNode

	for _, e := range entries {
		node := &TocNode{Entry: e}
		for len(stack) > 0 && stack[len(stack)-1].Entry.Level >= e.Level {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			roots = append(roots, node)
		} else {
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, node)
		}
		stack = append(stack, node)
	}
	return roots
}

// writeTOCList renders nodes as <ul data-depth="N"> with one
// <li data-level="HL"> per heading, children nested inside their parent item.
func writeTOCList(b *strings.Builder, nodes []*TocNode, depth int) {
	if len(nodes) == 0 {
		return
	}
	b.WriteString(`<ul data-depth="` + strconv.Itoa(depth) + `">`)
	for _, n := range nodes {
		b.WriteString(`<li data-level="H` + strconv.Itoa(n.Entry.Level) + `">`)
		b.WriteString(`<a href="#` + n.Entry.AnchorID + `">` + n.Entry.Text + `</a>`)
		writeTOCList(b, n.Children, depth+1)
		b.WriteString(`</li>`)
	}
	b.WriteString(`</ul>`)
}
