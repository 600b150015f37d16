package build

import (
	"context"
	"os"

	"github.com/alnah/go-md2site"
	"github.com/alnah/go-md2site/internal/config"
	"github.com/alnah/go-md2site/internal/fileutil"
)

func (s *Site) markdownTask(col config.CollectionConfig) Task {
	name := MarkdownTaskPrefix + col.Name
	return taskFunc{name, func(ctx context.Context) (Report, error) {
		return s.renderCollection(ctx, name, col)
	}}
}

// renderCollection converts the collection's Markdown files into pages.
// A missing template fails the task before any file is read; a failing
// document is reported and the others are still written.
func (s *Site) renderCollection(ctx context.Context, task string, col config.CollectionConfig) (Report, error) {
	if err := s.conv.Preload(col.Template); err != nil {
		return Report{}, err
	}

	files, err := s.selectSource(col.Include, col.Exclude)
	if err != nil {
		return Report{}, err
	}

	log := s.logger.With().Str("task", task).Logger()
	var rep Report

	inputs := make([]md2site.Input, 0, len(files))
	for _, rel := range files {
		data, err := os.ReadFile(s.sourceFile(rel)) // #nosec G304 -- selected source file
		if err != nil {
			rep.Failed++
			log.Error().Err(err).Str("path", rel).Msg("failed")
			continue
		}
		inputs = append(inputs, md2site.Input{Path: rel, Source: data, Template: col.Template})
	}

	for _, r := range s.conv.ConvertAll(ctx, inputs) {
		if r.Err != nil {
			if ctx.Err() != nil {
				return rep, ctx.Err()
			}
			rep.Failed++
			log.Error().Err(r.Err).Str("path", r.Input.Path).Msg("failed")
			continue
		}

		out := r.Page.OutputPath()
		if err := fileutil.WriteFileAtomic(s.distFile("", out), r.Page.HTML); err != nil {
			rep.Failed++
			log.Error().Err(err).Str("path", r.Input.Path).Msg("failed")
			continue
		}
		rep.Processed++
		log.Debug().
			Str("path", r.Input.Path).
			Str("output", out).
			Dur("duration", r.Duration).
			Msg("converted")
	}

	if rep.Failed > 0 {
		return rep, failedFiles(rep.Failed, len(files))
	}
	return rep, nil
}
