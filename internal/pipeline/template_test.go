package pipeline

import (
	"errors"
	"html/template"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

// mapSource serves templates from memory and counts loads.
type mapSource struct {
	templates map[string]string
	loads     atomic.Int32
}

func (m *mapSource) LoadTemplate(name string) (string, error) {
	m.loads.Add(1)
	text, ok := m.templates[name]
	if !ok {
		return "", errors.New("not found")
	}
	return text, nil
}

type pageData struct {
	Title   string
	Content template.HTML
}

func TestTemplateRenderer_Render(t *testing.T) {
	t.Parallel()

	src := &mapSource{templates: map[string]string{
		"page": "<title>{{.Title}}</title><main>{{.Content}}</main>",
	}}
	r := NewTemplateRenderer(src)

	got, err := r.Render("page", pageData{Title: "A & B", Content: "<p>raw</p>"})
	if err != nil {
		t.Fatalf("Render() unexpected error: %v", err)
	}
	want := "<title>A &amp; B</title><main><p>raw</p></main>"
	if string(got) != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestTemplateRenderer_CachesTemplate(t *testing.T) {
	t.Parallel()

	src := &mapSource{templates: map[string]string{"page": "{{.Title}}"}}
	r := NewTemplateRenderer(src)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.Render("page", pageData{Title: "x"}); err != nil {
				t.Errorf("Render() unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if n := src.loads.Load(); n != 1 {
		t.Errorf("template loaded %d times, want 1", n)
	}
}

func TestTemplateRenderer_Invalidate(t *testing.T) {
	t.Parallel()

	src := &mapSource{templates: map[string]string{"page": "v1", "blog": "b1"}}
	r := NewTemplateRenderer(src)
	if err := r.Preload("page", "blog"); err != nil {
		t.Fatalf("Preload() unexpected error: %v", err)
	}

	src.templates = map[string]string{"page": "v2", "blog": "b2"}

	r.Invalidate("page")
	if got, _ := r.Render("page", nil); string(got) != "v2" {
		t.Errorf("Render(page) after Invalidate(page) = %q, want v2", got)
	}
	if got, _ := r.Render("blog", nil); string(got) != "b1" {
		t.Errorf("Render(blog) = %q, want the cached b1", got)
	}

	r.Invalidate()
	if got, _ := r.Render("blog", nil); string(got) != "b2" {
		t.Errorf("Render(blog) after Invalidate() = %q, want b2", got)
	}
}

func TestTemplateRenderer_Delims(t *testing.T) {
	t.Parallel()

	src := &mapSource{templates: map[string]string{
		"page": "{{ server }} <%.Title%>",
	}}
	r := NewTemplateRenderer(src, WithDelims("<%", "%>"))

	got, err := r.Render("page", pageData{Title: "Hi"})
	if err != nil {
		t.Fatalf("Render() unexpected error: %v", err)
	}
	if string(got) != "{{ server }} Hi" {
		t.Errorf("Render() = %q, want %q", got, "{{ server }} Hi")
	}
}

func TestTemplateRenderer_Funcs(t *testing.T) {
	t.Parallel()

	src := &mapSource{templates: map[string]string{"page": "{{upper .Title}}"}}
	r := NewTemplateRenderer(src, WithFuncs(template.FuncMap{"upper": strings.ToUpper}))

	got, err := r.Render("page", pageData{Title: "hi"})
	if err != nil {
		t.Fatalf("Render() unexpected error: %v", err)
	}
	if string(got) != "HI" {
		t.Errorf("Render() = %q, want %q", got, "HI")
	}
}

func TestTemplateRenderer_Errors(t *testing.T) {
	t.Parallel()

	src := &mapSource{templates: map[string]string{
		"broken": "{{.Title",
		"exec":   "{{.Missing.Field}}",
	}}
	r := NewTemplateRenderer(src)

	tests := []struct {
		name    string
		tmpl    string
		wantErr error
	}{
		{"missing template", "nope", ErrTemplateRead},
		{"parse failure", "broken", ErrTemplateRead},
		{"execution failure", "exec", ErrTemplateExecute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := r.Render(tt.tmpl, pageData{})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Render(%q) error = %v, want %v", tt.tmpl, err, tt.wantErr)
			}
		})
	}
}

func TestTemplateRenderer_Preload(t *testing.T) {
	t.Parallel()

	src := &mapSource{templates: map[string]string{"page": "x", "blog": "y"}}
	r := NewTemplateRenderer(src)

	if err := r.Preload("page", "blog"); err != nil {
		t.Fatalf("Preload() unexpected error: %v", err)
	}
	if err := r.Preload("page", "missing"); !errors.Is(err, ErrTemplateRead) {
		t.Errorf("Preload() error = %v, want ErrTemplateRead", err)
	}
}

func TestTemplateRenderer_NilSource(t *testing.T) {
	t.Parallel()

	_, err := NewTemplateRenderer(nil).Render("page", nil)
	if !errors.Is(err, ErrTemplateRead) {
		t.Errorf("Render() error = %v, want ErrTemplateRead", err)
	}
}
