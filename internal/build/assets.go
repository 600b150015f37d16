package build

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/alnah/go-md2site/internal/config"
	"github.com/alnah/go-md2site/internal/fileutil"
	"github.com/alnah/go-md2site/internal/imageopt"
	"github.com/alnah/go-md2site/internal/process"
)

// clean removes the output directory.
func (s *Site) clean(ctx context.Context) (Report, error) {
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}
	dist := s.cfg.DistPath()
	if !fileutil.DirExists(dist) {
		return Report{Skipped: 1}, nil
	}
	if err := os.RemoveAll(dist); err != nil {
		return Report{Failed: 1}, fmt.Errorf("removing %s: %w", dist, err)
	}
	return Report{Processed: 1}, nil
}

// checkScripts parses every configured script and fails on syntax errors.
func (s *Site) checkScripts(ctx context.Context) (Report, error) {
	files, err := s.selectSource(s.cfg.Scripts.Check, nil)
	if err != nil {
		return Report{}, err
	}
	return s.eachFile(ctx, TaskScriptsCheck, files, func(_ context.Context, rel string) (bool, error) {
		data, err := os.ReadFile(s.sourceFile(rel)) // #nosec G304 -- selected source file
		if err != nil {
			return false, err
		}
		if err := s.minifier.CheckJS(data); err != nil {
			return false, fmt.Errorf("%s: %w", rel, err)
		}
		return false, nil
	})
}

// styles minifies stylesheets into the css output directory. Outputs newer
// than their source are left alone. Sass sources go through styles.command
// first; without one they are skipped with a warning. Sass partials (_name)
// are only compiled through the files that import them.
func (s *Site) styles(ctx context.Context) (Report, error) {
	st := s.cfg.Styles
	files, err := s.selectSource(st.Include, st.Exclude)
	if err != nil {
		return Report{}, err
	}
	return s.eachFile(ctx, TaskStyles, files, func(ctx context.Context, rel string) (bool, error) {
		dst := s.distFile(st.Dest, fileutil.Rebase(rel, st.Include))
		if !isSass(rel) {
			return s.minifyTo(rel, dst, true)
		}
		if strings.HasPrefix(path.Base(rel), "_") {
			return true, nil
		}
		if len(st.Command) == 0 {
			s.logger.Warn().Str("task", TaskStyles).Str("path", rel).Msg("no styles.command configured; sass source skipped")
			return true, nil
		}
		return false, s.compileSass(ctx, rel, strings.TrimSuffix(dst, filepath.Ext(dst))+".css")
	})
}

func isSass(rel string) bool {
	ext := path.Ext(rel)
	return strings.EqualFold(ext, ".scss") || strings.EqualFold(ext, ".sass")
}

// compileSass runs styles.command on the source file rel, then minifies the
// CSS it produced into dst. Partials may have changed, so the output is
// always rebuilt.
func (s *Site) compileSass(ctx context.Context, rel, dst string) error {
	tmp, err := os.MkdirTemp("", "md2site-sass-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.RemoveAll(tmp) }()

	out := filepath.Join(tmp, "out.css")
	log := s.logger.With().Str("task", TaskStyles).Str("path", rel).Logger()

	var stdout bytes.Buffer
	cmd := process.Command{Dir: s.cfg.Root, Stderr: log}
	toStdout := true
	for _, arg := range s.cfg.Styles.Command {
		switch arg {
		case config.PlaceholderIn:
			arg = s.sourceFile(rel)
		case config.PlaceholderOut:
			arg = out
			toStdout = false
		}
		cmd.Args = append(cmd.Args, arg)
	}
	if toStdout {
		cmd.Stdout = &stdout
	}

	log.Debug().Str("command", cmd.String()).Msg("compiling sass")
	if err := s.runCommand(ctx, cmd); err != nil {
		return fmt.Errorf("%s: %w", rel, err)
	}

	css := stdout.Bytes()
	if !toStdout {
		if css, err = os.ReadFile(out); err != nil { // #nosec G304 -- compiler output in our temp dir
			return fmt.Errorf("%s: compiler wrote no output: %w", rel, err)
		}
	}
	minified, err := s.minifier.File(dst, css)
	if err != nil {
		return err
	}
	return fileutil.WriteFileAtomic(dst, minified)
}

// scripts minifies scripts into the js output directory.
func (s *Site) scripts(ctx context.Context) (Report, error) {
	sc := s.cfg.Scripts
	files, err := s.selectSource(sc.Include, sc.Exclude)
	if err != nil {
		return Report{}, err
	}
	return s.eachFile(ctx, TaskScripts, files, func(_ context.Context, rel string) (bool, error) {
		return s.minifyTo(rel, s.distFile(sc.Dest, fileutil.Rebase(rel, sc.Include)), false)
	})
}

// minifyTo minifies the source file rel into dst.
func (s *Site) minifyTo(rel, dst string, incremental bool) (bool, error) {
	src := s.sourceFile(rel)
	if incremental && fileutil.IsNewer(dst, src) {
		return true, nil
	}
	data, err := os.ReadFile(src) // #nosec G304 -- selected source file
	if err != nil {
		return false, err
	}
	out, err := s.minifier.File(rel, data)
	if err != nil {
		return false, err
	}
	return false, fileutil.WriteFileAtomic(dst, out)
}

// optimizeImages shrinks images into the images output directory.
// Unknown formats are copied unchanged; up-to-date outputs are skipped.
func (s *Site) optimizeImages(ctx context.Context) (Report, error) {
	im := s.cfg.Images
	files, err := s.selectSource(im.Include, im.Exclude)
	if err != nil {
		return Report{}, err
	}
	return s.eachFile(ctx, TaskImages, files, func(_ context.Context, rel string) (bool, error) {
		src := s.sourceFile(rel)
		dst := s.distFile(im.Dest, fileutil.Rebase(rel, im.Include))
		if fileutil.IsNewer(dst, src) {
			return true, nil
		}

		if _, known := imageopt.FormatOf(rel); !known {
			return false, fileutil.CopyFile(src, dst)
		}

		data, err := os.ReadFile(src) // #nosec G304 -- selected source file
		if err != nil {
			return false, err
		}
		res, err := s.images.Optimize(rel, data)
		if err != nil {
			return false, err
		}
		s.logger.Debug().
			Str("task", TaskImages).
			Str("path", rel).
			Int("in", res.InSize).
			Int("out", len(res.Data)).
			Bool("optimized", res.Optimized).
			Msg("image")
		return false, fileutil.WriteFileAtomic(dst, res.Data)
	})
}

// copyFiles runs every copy rule. Paths keep their layout below the rule's base.
func (s *Site) copyFiles(ctx context.Context) (Report, error) {
	type job struct{ src, dst string }
	var jobs []job

	for _, rule := range s.cfg.Copy {
		base := s.cfg.Path(rule.Base)
		files, err := fileutil.Select(base, rule.Include, rule.Exclude)
		if err != nil {
			return Report{}, err
		}
		for _, rel := range files {
			jobs = append(jobs, job{
				src: filepath.Join(base, filepath.FromSlash(rel)),
				dst: s.distFile(rule.Dest, rel),
			})
		}
	}

	// Rules with base "." could pick up the output tree itself.
	dist, _ := filepath.Abs(s.cfg.DistPath())
	keys := make([]string, 0, len(jobs))
	byKey := make(map[string]job, len(jobs))
	for _, j := range jobs {
		if abs, _ := filepath.Abs(j.src); within(abs, dist) {
			continue
		}
		if _, dup := byKey[j.dst]; !dup {
			keys = append(keys, j.dst)
		}
		byKey[j.dst] = j
	}

	return s.eachFile(ctx, TaskCopy, keys, func(_ context.Context, dst string) (bool, error) {
		j := byKey[dst]
		return false, fileutil.CopyFile(j.src, j.dst)
	})
}

// within reports whether p is dir or below it.
func within(p, dir string) bool {
	rel, err := filepath.Rel(dir, p)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
