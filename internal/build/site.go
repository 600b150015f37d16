package build

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-md2site"
	"github.com/alnah/go-md2site/internal/config"
	"github.com/alnah/go-md2site/internal/fileutil"
	"github.com/alnah/go-md2site/internal/imageopt"
	"github.com/alnah/go-md2site/internal/minify"
	"github.com/alnah/go-md2site/internal/process"
)

// CommandRunner runs an external command. process.Run in production.
type CommandRunner func(ctx context.Context, cmd process.Command) error

// Site holds everything the tasks of one site share.
type Site struct {
	cfg        *config.Config
	conv       *md2site.Converter
	minifier   *minify.Minifier
	images     *imageopt.Optimizer
	logger     zerolog.Logger
	runCommand CommandRunner
	workers    int
}

// SiteOption configures a Site.
type SiteOption func(*Site)

// WithLogger sets the logger used by the site tasks.
func WithLogger(logger zerolog.Logger) SiteOption {
	return func(s *Site) {
		s.logger = logger
	}
}

// WithCommandRunner replaces the runner used for the bundler command.
func WithCommandRunner(run CommandRunner) SiteOption {
	return func(s *Site) {
		s.runCommand = run
	}
}

// NewSite wires the converter, minifier and image optimizer for cfg.
// Returns md2site.ErrInvalidTemplateDir when the template directory is unusable.
func NewSite(cfg *config.Config, opts ...SiteOption) (*Site, error) {
	s := &Site{
		cfg:        cfg,
		logger:     zerolog.Nop(),
		runCommand: process.Run,
		workers:    md2site.ResolvePoolSize(cfg.Workers),
	}
	for _, opt := range opts {
		opt(s)
	}

	convOpts := []md2site.Option{
		md2site.WithMarkdownOptions(cfg.MarkdownOptions()),
		md2site.WithWorkers(cfg.Workers),
		md2site.WithLogger(s.logger),
	}
	if dir := cfg.TemplatePath(); dir != "" {
		convOpts = append(convOpts, md2site.WithTemplateDir(dir))
	}
	if cfg.Delims.Left != "" {
		convOpts = append(convOpts, md2site.WithDelims(cfg.Delims.Left, cfg.Delims.Right))
	}
	conv, err := md2site.NewConverter(convOpts...)
	if err != nil {
		return nil, err
	}
	s.conv = conv

	s.minifier = minify.New(minify.WithBanner(cfg.License))
	s.images = imageopt.New(imageopt.Options{
		MaxWidth:    cfg.Images.MaxWidth,
		JPEGQuality: cfg.Images.JPEGQuality,
	}, s.minifier)

	return s, nil
}

// Config returns the site configuration.
func (s *Site) Config() *config.Config { return s.cfg }

// Converter returns the Markdown converter configured for the site.
func (s *Site) Converter() *md2site.Converter { return s.conv }

// Tasks returns every task the site defines.
func (s *Site) Tasks() []Task {
	tasks := []Task{
		taskFunc{TaskClean, s.clean},
		taskFunc{TaskScriptsCheck, s.checkScripts},
		taskFunc{TaskBundles, s.bundles},
		taskFunc{TaskStyles, s.styles},
		taskFunc{TaskImages, s.optimizeImages},
		taskFunc{TaskScripts, s.scripts},
		taskFunc{TaskCopy, s.copyFiles},
	}
	for _, col := range s.cfg.Collections {
		tasks = append(tasks, s.markdownTask(col))
	}
	return tasks
}

// Runner returns a Runner with every site task registered.
func (s *Site) Runner() (*Runner, error) {
	return NewRunner(s.logger, s.Tasks()...)
}

// DefaultPlan is the full build: clean, check scripts, bundle elements,
// process assets in parallel, copy static files, render Markdown.
func (s *Site) DefaultPlan() Plan {
	plan := Plan{
		{TaskClean},
		{TaskScriptsCheck},
		{TaskBundles},
		{TaskStyles, TaskImages, TaskScripts},
		{TaskCopy},
	}
	if md := s.markdownStage(); len(md) > 0 {
		plan = append(plan, md)
	}
	return plan
}

func (s *Site) markdownStage() Stage {
	var stage Stage
	for _, col := range s.cfg.Collections {
		stage = append(stage, MarkdownTaskPrefix+col.Name)
	}
	return stage
}

// fileFunc processes one file. It reports skipped=true when it left the
// output untouched on purpose.
type fileFunc func(ctx context.Context, rel string) (skipped bool, err error)

// eachFile runs fn over files with at most s.workers in flight. A failing
// file is logged and counted and the others continue.
func (s *Site) eachFile(ctx context.Context, task string, files []string, fn fileFunc) (Report, error) {
	var (
		mu  sync.Mutex
		rep Report
	)
	log := s.logger.With().Str("task", task).Logger()

	var g errgroup.Group
	g.SetLimit(s.workers)
	for _, rel := range files {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			skipped, err := fn(ctx, rel)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				rep.Failed++
				log.Error().Err(err).Str("path", rel).Msg("failed")
			case skipped:
				rep.Skipped++
			default:
				rep.Processed++
				log.Debug().Str("path", rel).Msg("written")
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return rep, err
	}
	if rep.Failed > 0 {
		return rep, failedFiles(rep.Failed, len(files))
	}
	return rep, nil
}

// distFile returns the output path for a slash-separated path under dest.
func (s *Site) distFile(dest, rel string) string {
	return filepath.Join(s.cfg.DistPath(), filepath.FromSlash(dest), filepath.FromSlash(rel))
}

// sourceFile returns the path of a slash-separated path under the source dir.
func (s *Site) sourceFile(rel string) string {
	return filepath.Join(s.cfg.SourcePath(), filepath.FromSlash(rel))
}

// selectSource lists files under the source dir.
func (s *Site) selectSource(include, exclude []string) ([]string, error) {
	return fileutil.Select(s.cfg.SourcePath(), include, exclude)
}
