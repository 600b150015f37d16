package pipeline

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/adrg/frontmatter"

	"github.com/alnah/go-md2site/internal/yamlutil"
)

// ErrFrontMatter indicates the metadata block could not be decoded.
var ErrFrontMatter = errors.New("malformed front matter")

// yamlFrontMatter recognises a YAML block between "---" lines and decodes it
// with the same YAML library as the site configuration.
var yamlFrontMatter = frontmatter.NewFormat("---", "---", yamlutil.UnmarshalLenient)

// SplitFrontMatter separates a document's metadata block from its body.
// A document without front matter yields an empty map and the whole input
// as body. The returned map is never nil.
func SplitFrontMatter(src []byte) (map[string]any, []byte, error) {
	meta := map[string]any{}

	body, err := frontmatter.Parse(bytes.NewReader(src), &meta, yamlFrontMatter)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrFrontMatter, err)
	}
	if meta == nil {
		meta = map[string]any{}
	}
	return meta, body, nil
}

// MetaString returns meta[key] as a string. Missing and null values yield "";
// non-string scalars are formatted with fmt.Sprint.
func MetaString(meta map[string]any, key string) string {
	v, ok := meta[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
