package build

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alnah/go-md2site/internal/config"
	"github.com/alnah/go-md2site/internal/fileutil"
	"github.com/alnah/go-md2site/internal/minify"
	"github.com/alnah/go-md2site/internal/process"
)

// ErrNoBundles means the bundler ran but left nothing to publish.
var ErrNoBundles = errors.New("bundler produced no files")

// bundles runs the element bundler, minifies what it produced, applies the
// inline rules and writes the result to the bundles output directory.
func (s *Site) bundles(ctx context.Context) (Report, error) {
	b := s.cfg.Bundles
	log := s.logger.With().Str("task", TaskBundles).Logger()

	if len(b.Command) == 0 {
		log.Debug().Msg("no bundler command configured")
		return Report{Skipped: 1}, nil
	}

	cmd := process.Command{
		Args:   b.Command,
		Dir:    s.cfg.Root,
		Stdout: log,
		Stderr: log,
	}
	log.Info().Str("command", cmd.String()).Msg("running bundler")
	if err := s.runCommand(ctx, cmd); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Report{}, ctxErr
		}
		return Report{Failed: 1}, err
	}

	dir := s.cfg.Path(b.Dir)
	files, err := fileutil.Select(dir, []string{"*"}, nil)
	if err != nil {
		return Report{}, err
	}
	if len(files) == 0 {
		return Report{Failed: 1}, fmt.Errorf("%w: %s", ErrNoBundles, dir)
	}

	outputs := make(map[string][]byte, len(files))
	for _, rel := range files {
		data, err := os.ReadFile(filepath.Join(dir, rel)) // #nosec G304 -- bundler output
		if err != nil {
			return Report{}, err
		}
		if _, ok := minify.MediaType(rel); ok {
			if data, err = s.minifier.File(rel, data); err != nil {
				return Report{Failed: 1}, err
			}
		}
		outputs[rel] = data
	}

	for _, rule := range b.Inline {
		if err := inlineScript(outputs, rule); err != nil {
			return Report{Failed: 1}, err
		}
	}

	var rep Report
	for _, rel := range files {
		if err := fileutil.WriteFileAtomic(s.distFile(b.Dest, rel), outputs[rel]); err != nil {
			return rep, err
		}
		rep.Processed++
	}
	return rep, nil
}

// inlineScript replaces <script src="rule.Script"></script> in rule.HTML with
// the script's content, so the shell needs no second request before first
// paint. A rule whose tag is absent leaves the HTML unchanged.
func inlineScript(outputs map[string][]byte, rule config.InlineRule) error {
	html, ok := outputs[rule.HTML]
	if !ok {
		return fmt.Errorf("inline: %s not found in bundle", rule.HTML)
	}
	script, ok := outputs[rule.Script]
	if !ok {
		return fmt.Errorf("inline: %s not found in bundle", rule.Script)
	}

	tag := []byte(`<script src="` + rule.Script + `"></script>`)
	if !bytes.Contains(html, tag) {
		return nil
	}

	// "</script" inside the script would end the inline element early.
	safe := bytes.ReplaceAll(script, []byte("</script"), []byte(`<\/script`))

	var inline bytes.Buffer
	inline.Grow(len(safe) + len("<script></script>"))
	inline.WriteString("<script>")
	inline.Write(safe)
	inline.WriteString("</script>")

	outputs[rule.HTML] = bytes.Replace(html, tag, inline.Bytes(), 1)
	return nil
}
