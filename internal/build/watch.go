package build

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/alnah/go-md2site/internal/fileutil"
)

// WatchRule maps changed files to the plan that rebuilds their outputs.
type WatchRule struct {
	Root     string   // directory the patterns are relative to
	Patterns []string // doublestar patterns that trigger the plan
	Exclude  []string
	Plan     Plan
	Before   func() // runs ahead of the plan, e.g. to drop cached state
}

// matches reports whether path (absolute) falls under the rule.
func (r WatchRule) matches(path string) bool {
	rel, err := filepath.Rel(r.Root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}
	rel = filepath.ToSlash(rel)
	return fileutil.MatchAny(rel, r.Patterns) && !fileutil.MatchAny(rel, r.Exclude)
}

// WatchRules derives the watch rules from the site configuration.
func (s *Site) WatchRules() []WatchRule {
	src := s.cfg.SourcePath()
	rules := []WatchRule{
		{Root: src, Patterns: s.cfg.Styles.Include, Exclude: s.cfg.Styles.Exclude, Plan: Plan{{TaskStyles}}},
		{Root: src, Patterns: s.cfg.Scripts.Include, Exclude: s.cfg.Scripts.Exclude, Plan: Plan{{TaskScriptsCheck}, {TaskScripts}}},
		{Root: src, Patterns: s.cfg.Images.Include, Exclude: s.cfg.Images.Exclude, Plan: Plan{{TaskImages}}},
	}
	if len(s.cfg.Bundles.Command) > 0 {
		rules = append(rules, WatchRule{Root: src, Patterns: []string{"elements/**/*"}, Plan: Plan{{TaskBundles}, {TaskCopy}}})
	}
	for _, col := range s.cfg.Collections {
		rules = append(rules, WatchRule{
			Root:     src,
			Patterns: col.Include,
			Exclude:  col.Exclude,
			Plan:     Plan{{MarkdownTaskPrefix + col.Name}},
		})
	}
	if dir := s.cfg.TemplatePath(); dir != "" {
		if md := s.markdownStage(); len(md) > 0 {
			rules = append(rules, WatchRule{
				Root:     dir,
				Patterns: []string{"*.html"},
				Plan:     Plan{md},
				Before:   func() { s.conv.InvalidateTemplates() },
			})
		}
	}
	for _, c := range s.cfg.Copy {
		rules = append(rules, WatchRule{Root: s.cfg.Path(c.Base), Patterns: c.Include, Exclude: c.Exclude, Plan: Plan{{TaskCopy}}})
	}
	return rules
}

// Watcher rebuilds on file changes. Each change runs the merged plan of the
// rules it matches, one change at a time.
type Watcher struct {
	runner *Runner
	rules  []WatchRule
	dirs   []string
	skip   []string
	logger zerolog.Logger
}

// NewWatcher watches dirs recursively, ignoring the skip directories.
func NewWatcher(runner *Runner, rules []WatchRule, dirs, skip []string, logger zerolog.Logger) *Watcher {
	w := &Watcher{runner: runner, logger: logger}
	for _, r := range rules {
		r.Root = absPath(r.Root)
		w.rules = append(w.rules, r)
	}
	for _, d := range dirs {
		w.dirs = append(w.dirs, absPath(d))
	}
	for _, d := range skip {
		w.skip = append(w.skip, absPath(d))
	}
	return w
}

// Watcher returns a Watcher for the site's sources, templates and copy
// bases. The output and bundler directories are never watched.
func (s *Site) Watcher(runner *Runner) *Watcher {
	dirs := []string{s.cfg.SourcePath()}
	if dir := s.cfg.TemplatePath(); dir != "" {
		dirs = append(dirs, dir)
	}
	for _, c := range s.cfg.Copy {
		dirs = append(dirs, s.cfg.Path(c.Base))
	}
	skip := []string{s.cfg.DistPath(), s.cfg.Path(s.cfg.Bundles.Dir)}
	return NewWatcher(runner, s.WatchRules(), dirs, skip, s.logger)
}

// PlanFor merges the plans of every rule matching path. Tasks appear once,
// at their first position.
func (w *Watcher) PlanFor(path string) Plan {
	path = absPath(path)
	seen := make(map[string]bool)
	var plan Plan
	for _, r := range w.rules {
		if !r.matches(path) {
			continue
		}
		for _, stage := range r.Plan {
			var fresh Stage
			for _, name := range stage {
				if !seen[name] {
					seen[name] = true
					fresh = append(fresh, name)
				}
			}
			if len(fresh) > 0 {
				plan = append(plan, fresh)
			}
		}
	}
	return plan
}

// prepare runs the Before hooks of every rule matching path.
func (w *Watcher) prepare(path string) {
	path = absPath(path)
	for _, r := range w.rules {
		if r.Before != nil && r.matches(path) {
			r.Before()
		}
	}
}

// Rebuild runs the plan for a changed path, as Run does for each event.
// Returns nil without running anything when no rule matches.
func (w *Watcher) Rebuild(ctx context.Context, path string) ([]Report, error) {
	plan := w.PlanFor(path)
	if len(plan) == 0 {
		return nil, nil
	}
	w.prepare(path)
	return w.runner.Run(ctx, plan)
}

// Run watches until ctx is done. Task failures are logged and watching
// continues.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = fw.Close() }()

	for _, dir := range w.dirs {
		if err := w.addTree(fw, dir); err != nil {
			return err
		}
	}
	w.logger.Info().Int("dirs", len(fw.WatchList())).Msg("watching for changes")

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn().Err(err).Msg("watch error")
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handle(ctx, fw, ev)
		}
	}
}

func (w *Watcher) handle(ctx context.Context, fw *fsnotify.Watcher, ev fsnotify.Event) {
	if ev.Op == fsnotify.Chmod {
		return
	}
	if ev.Has(fsnotify.Create) && fileutil.DirExists(ev.Name) {
		if err := w.addTree(fw, ev.Name); err != nil {
			w.logger.Warn().Err(err).Str("path", ev.Name).Msg("cannot watch directory")
		}
		return
	}

	plan := w.PlanFor(ev.Name)
	if len(plan) == 0 {
		return
	}
	w.logger.Info().Str("path", ev.Name).Str("op", ev.Op.String()).Str("plan", plan.String()).Msg("change detected")
	if _, err := w.Rebuild(ctx, ev.Name); err != nil && ctx.Err() == nil {
		w.logger.Error().Err(err).Msg("rebuild failed")
	}
}

// addTree adds dir and its subdirectories. Hidden directories,
// node_modules and the skip list are left out; a missing dir is ignored.
func (w *Watcher) addTree(fw *fsnotify.Watcher, dir string) error {
	if !fileutil.DirExists(dir) || w.skipped(dir) {
		return nil
	}
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		name := d.Name()
		if p != dir && (strings.HasPrefix(name, ".") || name == "node_modules" || w.skipped(p)) {
			return filepath.SkipDir
		}
		return fw.Add(p)
	})
}

func (w *Watcher) skipped(dir string) bool {
	for _, s := range w.skip {
		if within(dir, s) {
			return true
		}
	}
	return false
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}
