package md2site

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestNewTemplateLoader(t *testing.T) {
	t.Parallel()

	t.Run("builtin only", func(t *testing.T) {
		t.Parallel()

		loader, err := NewTemplateLoader("")
		if err != nil {
			t.Fatalf("NewTemplateLoader(\"\") error = %v", err)
		}
		if _, err := loader.LoadTemplate(TemplatePage); err != nil {
			t.Errorf("LoadTemplate(page) error = %v", err)
		}
	})

	t.Run("invalid directory", func(t *testing.T) {
		t.Parallel()

		_, err := NewTemplateLoader(filepath.Join(t.TempDir(), "missing"))
		if !errors.Is(err, ErrInvalidTemplateDir) {
			t.Errorf("NewTemplateLoader() error = %v, want ErrInvalidTemplateDir", err)
		}
	})

	t.Run("public errors", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "landing.html"), []byte("L"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		loader, err := NewTemplateLoader(dir)
		if err != nil {
			t.Fatalf("NewTemplateLoader() error = %v", err)
		}

		if got, err := loader.LoadTemplate("landing"); err != nil || got != "L" {
			t.Errorf("LoadTemplate(landing) = %q, %v", got, err)
		}
		if _, err := loader.LoadTemplate("missing"); !errors.Is(err, ErrTemplateRead) {
			t.Errorf("LoadTemplate(missing) error = %v, want ErrTemplateRead", err)
		}
		if _, err := loader.LoadTemplate("../x"); !errors.Is(err, ErrInvalidTemplateName) {
			t.Errorf("LoadTemplate(../x) error = %v, want ErrInvalidTemplateName", err)
		}
	})
}

func TestBuiltinTemplates(t *testing.T) {
	t.Parallel()

	if got, want := BuiltinTemplates(), []string{TemplateBlog, TemplatePage}; !reflect.DeepEqual(got, want) {
		t.Errorf("BuiltinTemplates() = %v, want %v", got, want)
	}
	if _, err := BuiltinTemplate("nope"); !errors.Is(err, ErrTemplateRead) {
		t.Errorf("BuiltinTemplate(nope) error = %v, want ErrTemplateRead", err)
	}
}
