// Package fileutil provides file and path utility functions.
package fileutil

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Sentinel errors for file utility operations.
var (
	ErrInvalidPattern = errors.New("invalid glob pattern")
)

// Permissions for generated output.
const (
	DirPerm  fs.FileMode = 0o755
	FilePerm fs.FileMode = 0o644
)

// WriteFileAtomic writes data to path through a temporary file in the same
// directory, creating parent directories as needed. Readers never observe a
// partially written file.
func WriteFileAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, DirPerm); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, ".md2site-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, writeErr := tmpFile.Write(data); writeErr != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("writing temp file: %w", writeErr)
	}
	if closeErr := tmpFile.Close(); closeErr != nil {
		return fmt.Errorf("closing temp file: %w", closeErr)
	}
	if chmodErr := os.Chmod(tmpPath, FilePerm); chmodErr != nil {
		return fmt.Errorf("setting permissions: %w", chmodErr)
	}
	if renameErr := os.Rename(tmpPath, path); renameErr != nil {
		return fmt.Errorf("renaming temp file: %w", renameErr)
	}
	return nil
}

// CopyFile copies src to dst, creating parent directories and keeping the
// source permission bits.
func CopyFile(src, dst string) error {
	in, err := os.Open(src) // #nosec G304 -- caller-selected path
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), DirPerm); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, info.Mode().Perm()) // #nosec G304 -- caller-selected path
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("copying %s: %w", src, err)
	}
	return out.Close()
}

// ReplaceExtension returns p with its extension replaced by ext. The leading
// dot on ext is optional. A path without extension gets ext appended.
func ReplaceExtension(p, ext string) string {
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return strings.TrimSuffix(p, path.Ext(p)) + ext
}

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirExists returns true if the path exists and is a directory.
func DirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// IsNewer reports whether dst exists and was modified no earlier than src.
// Incremental tasks use it to skip outputs that are already up to date.
func IsNewer(dst, src string) bool {
	dstInfo, err := os.Stat(dst)
	if err != nil {
		return false
	}
	srcInfo, err := os.Stat(src)
	if err != nil {
		return false
	}
	return !dstInfo.ModTime().Before(srcInfo.ModTime())
}

// IsFilePath returns true if the string looks like a file path rather than a name.
// A string containing path separators (/, \) is treated as a path.
//
// Examples:
//   - "page" -> false (name)
//   - "./site.yaml" -> true (relative path)
//   - "/absolute/site.yaml" -> true (absolute)
//   - "C:\site\site.yaml" -> true (Windows)
func IsFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// ValidatePatterns checks that every pattern is a well-formed doublestar glob.
func ValidatePatterns(patterns []string) error {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("%w: %q", ErrInvalidPattern, p)
		}
	}
	return nil
}

// MatchAny reports whether the slash-separated path matches any pattern.
// Malformed patterns never match.
func MatchAny(name string, patterns []string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
	}
	return false
}

// Select returns the regular files under root matching at least one include
// pattern and no exclude pattern. Patterns use doublestar syntax ("**",
// "{a,b}") against slash-separated paths relative to root. The result is
// relative to root, slash-separated, sorted and free of duplicates.
func Select(root string, include, exclude []string) ([]string, error) {
	if err := ValidatePatterns(include); err != nil {
		return nil, err
	}
	if err := ValidatePatterns(exclude); err != nil {
		return nil, err
	}

	fsys := os.DirFS(root)
	seen := make(map[string]struct{})
	var files []string

	for _, pattern := range include {
		matches, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, pattern, err)
		}
		for _, m := range matches {
			if _, dup := seen[m]; dup || MatchAny(m, exclude) {
				continue
			}
			info, err := fs.Stat(fsys, m)
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}

	sort.Strings(files)
	return files, nil
}

// Rebase strips the static directory prefix of the first pattern matching
// name: "sass/site/a.css" matched by "sass/**/*.css" becomes "site/a.css".
// Names no pattern matches are returned unchanged.
func Rebase(name string, patterns []string) string {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, name); !ok {
			continue
		}
		base, _ := doublestar.SplitPattern(p)
		if base == "" || base == "." {
			return name
		}
		return strings.TrimPrefix(name, base+"/")
	}
	return name
}
