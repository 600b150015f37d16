//go:build bench

package md2site

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

// BenchmarkResolvePoolSize benchmarks pool size calculation.
func BenchmarkResolvePoolSize(b *testing.B) {
	workers := []int{0, 1, 2, 4, 8}

	for _, w := range workers {
		b.Run(workerName(w), func(b *testing.B) {
			b.ReportAllocs()
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				_ = ResolvePoolSize(w)
			}
		})
	}
}

func workerName(w int) string {
	if w == 0 {
		return "auto"
	}
	return fmt.Sprintf("%d", w)
}

// BenchmarkConvertAll benchmarks batch conversion at several worker counts.
func BenchmarkConvertAll(b *testing.B) {
	inputs := make([]Input, 64)
	for i := range inputs {
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("---\ntitle: Doc %d\n---\n<!-- toc -->\n\n", i))
		for s := 0; s < 10; s++ {
			sb.WriteString(fmt.Sprintf("## Section %d\n\nSome *text* and `code`.\n\n", s))
		}
		inputs[i] = Input{Path: fmt.Sprintf("doc%d.md", i), Source: []byte(sb.String())}
	}

	for _, w := range []int{1, 2, 4, 8} {
		conv, err := NewConverter(WithWorkers(w))
		if err != nil {
			b.Fatal(err)
		}
		b.Run(workerName(w), func(b *testing.B) {
			b.ReportAllocs()
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				for _, r := range conv.ConvertAll(context.Background(), inputs) {
					if r.Err != nil {
						b.Fatal(r.Err)
					}
				}
			}
		})
	}
}
