package assets

// Built-in template names.
const (
	PageTemplate = "page"
	BlogTemplate = "blog"
)

// TemplateExt is the file extension of template files on disk and in the
// embedded set.
const TemplateExt = ".html"

// AssetLoader defines the contract for loading page templates.
// Implementations may load from embedded assets, a directory on disk, etc.
type AssetLoader interface {
	// LoadTemplate loads an HTML template by name (without .html extension).
	// Returns ErrTemplateNotFound if the template doesn't exist.
	// Returns ErrInvalidAssetName if the name contains invalid characters.
	LoadTemplate(name string) (string, error)
}
