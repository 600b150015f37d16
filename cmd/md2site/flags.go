package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-md2site/internal/config"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// siteFlags override the site layout from the config file.
type siteFlags struct {
	source    string
	dist      string
	templates string
	workers   int
}

// buildFlags holds flags for build and clean.
type buildFlags struct {
	common commonFlags
	site   siteFlags
}

// runFlags holds flags for the run command.
type runFlags struct {
	common commonFlags
	site   siteFlags
	list   bool
}

// watchFlags holds flags for the watch command.
type watchFlags struct {
	common  commonFlags
	site    siteFlags
	noBuild bool
}

// convertFlags holds flags for the convert command.
type convertFlags struct {
	common   commonFlags
	site     siteFlags
	output   string
	template string
}

// initFlags holds flags for the init command.
type initFlags struct {
	output string
	force  bool
}

// doctorFlags holds flags for the doctor command.
type doctorFlags struct {
	common commonFlags
	json   bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug output")
}

// addSiteFlags adds site layout flags to a FlagSet.
func addSiteFlags(fs *flag.FlagSet, f *siteFlags) {
	fs.StringVarP(&f.source, "source", "s", "", "source directory (default: app)")
	fs.StringVarP(&f.dist, "dist", "d", "", "output directory (default: dist)")
	fs.StringVar(&f.templates, "templates", "", "page template directory (default: built-in)")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
}

// newBuildFlagSet registers the build/clean flags into f.
func newBuildFlagSet(name string, f *buildFlags) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	addCommonFlags(fs, &f.common)
	addSiteFlags(fs, &f.site)
	return fs
}

// newRunFlagSet registers the run flags into f.
func newRunFlagSet(f *runFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	addCommonFlags(fs, &f.common)
	addSiteFlags(fs, &f.site)
	fs.BoolVarP(&f.list, "list", "l", false, "list available tasks")
	return fs
}

// newWatchFlagSet registers the watch flags into f.
func newWatchFlagSet(f *watchFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	addCommonFlags(fs, &f.common)
	addSiteFlags(fs, &f.site)
	fs.BoolVar(&f.noBuild, "no-build", false, "skip the initial full build")
	return fs
}

// newConvertFlagSet registers the convert flags into f.
func newConvertFlagSet(f *convertFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	addCommonFlags(fs, &f.common)
	addSiteFlags(fs, &f.site)
	fs.StringVarP(&f.output, "output", "o", "", "output file (default: stdout)")
	fs.StringVarP(&f.template, "template", "t", "", "page template name (default: page)")
	return fs
}

// newInitFlagSet registers the init flags into f.
func newInitFlagSet(f *initFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	fs.StringVarP(&f.output, "output", "o", config.DefaultName+".yaml", "config file to write")
	fs.BoolVarP(&f.force, "force", "f", false, "overwrite an existing file")
	return fs
}

// newDoctorFlagSet registers the doctor flags into f.
func newDoctorFlagSet(f *doctorFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	addCommonFlags(fs, &f.common)
	fs.BoolVar(&f.json, "json", false, "print results as JSON")
	return fs
}

// parseFlagSet parses args and returns the positional arguments.
// Usage output is left to the caller: flag.ErrHelp is returned unchanged,
// every other parse error is wrapped with ErrInvalidFlag.
func parseFlagSet(fs *flag.FlagSet, args []string) ([]string, error) {
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidFlag, err)
	}
	return fs.Args(), nil
}

// validateWorkers checks the --workers value.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0)", ErrInvalidWorkerCount, n)
	}
	if n > config.MaxWorkers {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, config.MaxWorkers)
	}
	return nil
}

// applySiteFlags overrides config values with explicitly set flags.
func applySiteFlags(f siteFlags, cfg *config.Config) error {
	if err := validateWorkers(f.workers); err != nil {
		return err
	}
	if f.source != "" {
		cfg.SourceDir = f.source
	}
	if f.dist != "" {
		cfg.DistDir = f.dist
	}
	if f.templates != "" {
		cfg.TemplateDir = f.templates
	}
	if f.workers > 0 {
		cfg.Workers = f.workers
	}
	return nil
}
