// Package assets provides the HTML templates that wrap rendered Markdown
// documents into site pages.
//
// # Loader Architecture
//
// The package implements a layered loading system:
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - loads from go:embed filesystem (page, blog)
//	    ├── FilesystemLoader  - loads from the site's template directory
//	    └── AssetResolver     - combines both with custom-first fallback
//
// AssetResolver is the loader used by the converter. It tries the site's
// template directory first, falling back to the embedded defaults when a
// template is not found there. A site can override "page" and keep the
// built-in "blog", or add templates of its own.
//
// # Directory Layout
//
//	{templateDir}/
//	├── page.html
//	├── blog.html
//	└── {name}.html
//
// # Security
//
// Template names are validated to prevent path traversal.
// FilesystemLoader resolves symlinks and verifies paths stay within the
// template directory.
package assets
