package md2site

import (
	"errors"
	"fmt"
)

// Sentinel errors for library operations.
var (
	// ErrParse indicates malformed front matter or an unparseable document.
	ErrParse = errors.New("document parse failed")

	// ErrRender indicates the Markdown renderer failed. It is also ErrParse.
	ErrRender = fmt.Errorf("%w: render failed", ErrParse)

	// ErrTemplateRead indicates a page template is missing or unreadable.
	// Fatal to a whole build: no page using the template can be produced.
	ErrTemplateRead = errors.New("template read failed")

	// ErrTemplateExecute indicates a page template failed for one document.
	ErrTemplateExecute = errors.New("template execution failed")

	// ErrEmptyPath indicates a document has no source path.
	ErrEmptyPath = errors.New("document path cannot be empty")

	// ErrInvalidTemplateDir indicates the configured template directory is unusable.
	ErrInvalidTemplateDir = errors.New("invalid template directory")

	// ErrInvalidTemplateName indicates a template name with path components
	// or other characters not allowed in a file name.
	ErrInvalidTemplateName = errors.New("invalid template name")
)

// FileError attaches the source path to a per-document failure.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return e.Path + ": " + e.Err.Error()
}

// Unwrap exposes the sentinel chain to errors.Is.
func (e *FileError) Unwrap() error {
	return e.Err
}
