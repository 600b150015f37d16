package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	md2site "github.com/alnah/go-md2site"
	"github.com/alnah/go-md2site/internal/config"
	"github.com/alnah/go-md2site/internal/fileutil"
)

// runConvert renders one Markdown file with the site's templates and
// writes the page to --output or stdout.
func runConvert(ctx context.Context, args []string, env *Environment) error {
	f := &convertFlags{}
	rest, err := parseFlagSet(newConvertFlagSet(f), args)
	if err != nil {
		return err
	}
	switch {
	case len(rest) == 0:
		return fmt.Errorf("%w: markdown file", ErrMissingArgument)
	case len(rest) > 1:
		return fmt.Errorf("%w: %s", ErrTooManyArguments, strings.Join(rest[1:], " "))
	}
	inputPath := rest[0]
	if err := validateMarkdownExtension(inputPath); err != nil {
		return err
	}

	s, err := openSession(f.common, f.site, env, false)
	if err != nil {
		return err
	}

	source, err := os.ReadFile(inputPath) // #nosec G304 -- user-provided input path
	if err != nil {
		return fmt.Errorf("%w: %v", ErrReadMarkdown, err)
	}

	start := env.Now()
	page, err := s.site.Converter().Convert(ctx, md2site.Input{
		Path:     documentPath(inputPath, s.cfg),
		Source:   source,
		Template: f.template,
	})
	if err != nil {
		return withHint(err, s.cfg)
	}

	if f.output == "" {
		if _, err := env.Stdout.Write(page.HTML); err != nil {
			return fmt.Errorf("%w: %v", ErrWriteOutput, err)
		}
	} else if err := fileutil.WriteFileAtomic(f.output, page.HTML); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}

	s.logger.Debug().
		Str("path", inputPath).
		Str("output", outputName(f.output)).
		Dur("duration", env.Now().Sub(start)).
		Msg("converted")
	return nil
}

// validateMarkdownExtension checks that path has a Markdown extension.
func validateMarkdownExtension(path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".md" && ext != ".markdown" {
		return fmt.Errorf("%w: %s", ErrInvalidExtension, path)
	}
	return nil
}

// documentPath returns the slash-separated document path templates see:
// relative to the source directory when the file lives inside it, the
// bare file name otherwise.
func documentPath(inputPath string, cfg *config.Config) string {
	abs, err := filepath.Abs(inputPath)
	if err != nil {
		return filepath.Base(inputPath)
	}
	src, err := filepath.Abs(cfg.SourcePath())
	if err != nil {
		return filepath.Base(inputPath)
	}
	rel, err := filepath.Rel(src, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.Base(inputPath)
	}
	return filepath.ToSlash(rel)
}

func outputName(output string) string {
	if output == "" {
		return "stdout"
	}
	return output
}
