package md2site

import (
	"errors"
	"fmt"

	"github.com/alnah/go-md2site/internal/assets"
)

// TemplateLoader supplies page template text by name.
// Implementations may load from the filesystem, embedded assets, a database, etc.
//
// The library provides NewTemplateLoader() for directory-based loading with
// fallback to the built-in templates. Implement this interface for custom backends.
type TemplateLoader interface {
	// LoadTemplate loads a template by name (without .html extension).
	LoadTemplate(name string) (string, error)
}

// NewTemplateLoader creates a TemplateLoader for the given template directory.
// If dir is empty, returns a loader using only the built-in templates.
// If dir is set, its {name}.html files take precedence over the built-ins.
//
// Returns ErrInvalidTemplateDir if dir is set but not a readable directory.
func NewTemplateLoader(dir string) (TemplateLoader, error) {
	resolver, err := assets.NewAssetResolver(dir)
	if err != nil {
		return nil, convertAssetError(err)
	}
	return &templateLoaderAdapter{resolver: resolver}, nil
}

// BuiltinTemplates lists the names of the embedded templates.
func BuiltinTemplates() []string {
	return assets.TemplateNames()
}

// BuiltinTemplate returns the text of an embedded template.
func BuiltinTemplate(name string) (string, error) {
	content, err := assets.LoadTemplate(name)
	if err != nil {
		return "", convertAssetError(err)
	}
	return content, nil
}

// templateLoaderAdapter wraps the internal resolver to return public errors.
type templateLoaderAdapter struct {
	resolver *assets.AssetResolver
}

func (a *templateLoaderAdapter) LoadTemplate(name string) (string, error) {
	content, err := a.resolver.LoadTemplate(name)
	if err != nil {
		return "", convertAssetError(err)
	}
	return content, nil
}

// convertAssetError maps internal asset errors to public sentinels.
func convertAssetError(err error) error {
	switch {
	case errors.Is(err, assets.ErrTemplateNotFound),
		errors.Is(err, assets.ErrAssetRead),
		errors.Is(err, assets.ErrPathTraversal):
		return fmt.Errorf("%w: %v", ErrTemplateRead, err)
	case errors.Is(err, assets.ErrInvalidAssetName):
		return fmt.Errorf("%w: %v", ErrInvalidTemplateName, err)
	case errors.Is(err, assets.ErrInvalidBasePath):
		return fmt.Errorf("%w: %v", ErrInvalidTemplateDir, err)
	default:
		return err
	}
}
