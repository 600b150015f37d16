//go:build bench

package pipeline

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

// sitePage builds a documentation page with a toc marker and n sections,
// each with a subsection, a fenced code block and a link to another page.
func sitePage(n int) string {
	var b strings.Builder
	b.WriteString("# Guide\n\n<!-- toc -->\n\n")
	for i := range n {
		fmt.Fprintf(&b, "## Section %d\n\nSee [the next page](page-%d.md) for details.\n\n", i, i+1)
		fmt.Fprintf(&b, "### Step %d.1 {#step-%d}\n\n", i, i)
		b.WriteString("```js\nconst el = document.querySelector('pw-shell');\nel.open = true;\n```\n\n")
		b.WriteString("| key | value |\n|-----|-------|\n| a   | 1     |\n\n")
	}
	return b.String()
}

func BenchmarkToHTML(b *testing.B) {
	r := NewGoldmarkRenderer(DefaultRenderOptions())
	ctx := context.Background()

	for _, n := range []int{1, 10, 50, 200} {
		content := sitePage(n)
		b.Run(fmt.Sprintf("sections_%d", n), func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(content)))
			for b.Loop() {
				if _, err := r.ToHTML(ctx, content); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkToHTML_Options(b *testing.B) {
	ctx := context.Background()
	content := sitePage(20)

	plain := DefaultRenderOptions()
	plain.GuessLanguage = false
	plain.RewriteMarkdownLinks = false

	inline := DefaultRenderOptions()
	inline.HighlightClasses = false

	for name, opts := range map[string]RenderOptions{
		"default":       DefaultRenderOptions(),
		"no_guess":      plain,
		"inline_styles": inline,
	} {
		r := NewGoldmarkRenderer(opts)
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				if _, err := r.ToHTML(ctx, content); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkSynthesizeTOC(b *testing.B) {
	r := NewGoldmarkRenderer(DefaultRenderOptions())
	ctx := context.Background()

	for _, n := range []int{10, 200} {
		html, err := r.ToHTML(ctx, sitePage(n))
		if err != nil {
			b.Fatal(err)
		}
		b.Run(fmt.Sprintf("sections_%d", n), func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(html)))
			for b.Loop() {
				_ = SynthesizeTOC(html)
			}
		})
	}

	b.Run("no_marker", func(b *testing.B) {
		html := strings.Repeat("<h2>Title</h2><p>text</p>", 200)
		b.ReportAllocs()
		for b.Loop() {
			_ = SynthesizeTOC(html)
		}
	})
}

func BenchmarkToHTML_Parallel(b *testing.B) {
	r := NewGoldmarkRenderer(DefaultRenderOptions())
	ctx := context.Background()
	content := sitePage(20)

	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := r.ToHTML(ctx, content); err != nil {
				b.Error(err)
				return
			}
		}
	})
}
