package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	md2site "github.com/alnah/go-md2site"
	"github.com/alnah/go-md2site/internal/build"
	"github.com/alnah/go-md2site/internal/config"
	"github.com/alnah/go-md2site/internal/fileutil"
	"github.com/alnah/go-md2site/internal/hints"
	"github.com/alnah/go-md2site/internal/process"
)

// logTimeFormat keeps console lines short; dates add nothing to a build log.
const logTimeFormat = "15:04:05"

// session is the state shared by the commands that operate on a site.
type session struct {
	cfg    *config.Config
	site   *build.Site
	logger zerolog.Logger
}

// newLogger builds the console logger: --verbose shows debug events,
// --quiet only errors.
func newLogger(w io.Writer, quiet, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	switch {
	case verbose:
		level = zerolog.DebugLevel
	case quiet:
		level = zerolog.ErrorLevel
	}

	out := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: logTimeFormat,
		NoColor:    !isTerminal(w),
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// openSession resolves the configuration and wires the site.
// With requireSource, a missing source directory is an error.
func openSession(common commonFlags, sf siteFlags, env *Environment, requireSource bool) (*session, error) {
	logger := newLogger(env.Stderr, common.quiet, common.verbose)
	warnUnknownEnvVars(logger, env.Environ())

	cfg, err := resolveConfig(common.config, sf, env)
	if err != nil {
		return nil, err
	}
	if requireSource && !fileutil.DirExists(cfg.SourcePath()) {
		return nil, fmt.Errorf("source directory %s: %w%s", cfg.SourcePath(), os.ErrNotExist, hints.ForSourceDirectory())
	}

	site, err := build.NewSite(cfg, build.WithLogger(logger))
	if err != nil {
		return nil, withHint(err, cfg)
	}
	logger.Debug().
		Str("root", cfg.Root).
		Str("source", cfg.SourceDir).
		Str("dist", cfg.DistDir).
		Int("workers", md2site.ResolvePoolSize(cfg.Workers)).
		Msg("site loaded")

	return &session{cfg: cfg, site: site, logger: logger}, nil
}

// resolveConfig loads the config file and applies overrides:
// flags > env > config file > defaults.
func resolveConfig(name string, sf siteFlags, env *Environment) (*config.Config, error) {
	ec := loadEnvConfig(env.Getenv)
	if name == "" {
		name = ec.ConfigPath
	}

	var cfg *config.Config
	var err error
	if name != "" {
		cfg, err = config.LoadConfig(name)
		if errors.Is(err, config.ErrConfigNotFound) && !fileutil.IsFilePath(name) {
			return nil, fmt.Errorf("loading config: %w%s", err, hints.ForConfigNotFound(config.SearchPaths(name)))
		}
	} else {
		cfg, _, err = config.LoadDefault()
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	applyEnvConfig(ec, cfg)
	if err := applySiteFlags(sf, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// withHint appends an actionable hint to err when one applies.
func withHint(err error, cfg *config.Config) error {
	var hint string
	switch {
	case errors.Is(err, md2site.ErrInvalidTemplateDir):
		hint = hints.ForTemplateDir()
	case errors.Is(err, md2site.ErrTemplateRead):
		hint = hints.ForTemplateNotFound(md2site.BuiltinTemplates())
	case errors.Is(err, fileutil.ErrInvalidPattern):
		hint = hints.ForInvalidPattern()
	case errors.Is(err, process.ErrCommandFailed) && cfg != nil && len(cfg.Bundles.Command) > 0:
		bundler := process.Command{Args: cfg.Bundles.Command}
		if _, lookErr := process.LookPath(bundler); lookErr != nil {
			hint = hints.ForBundlerNotFound(cfg.Bundles.Command[0])
		}
	case errors.Is(err, os.ErrPermission):
		hint = hints.ForOutputDirectory()
	}
	if hint == "" {
		return err
	}
	return fmt.Errorf("%w%s", err, hint)
}
