package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	flag "github.com/spf13/pflag"

	md2site "github.com/alnah/go-md2site"
	"github.com/alnah/go-md2site/internal/build"
	"github.com/alnah/go-md2site/internal/config"
	"github.com/alnah/go-md2site/internal/fileutil"
	"github.com/alnah/go-md2site/internal/hints"
	"github.com/alnah/go-md2site/internal/process"
)

// Doctor statuses.
const (
	statusReady    = "ready"
	statusWarnings = "warnings"
	statusErrors   = "errors"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string      `json:"status"`
	Config   configInfo  `json:"config"`
	Site     siteInfo    `json:"site"`
	Bundler  bundlerInfo `json:"bundler"`
	Env      envInfo     `json:"environment"`
	Warnings []string    `json:"warnings,omitempty"`
	Errors   []string    `json:"errors,omitempty"`
}

// configInfo holds config resolution results.
type configInfo struct {
	Path    string `json:"path,omitempty"` // "" for built-in defaults
	Default bool   `json:"default"`
	Valid   bool   `json:"valid"`
}

// siteInfo holds site layout checks.
type siteInfo struct {
	SourceDir    string   `json:"source_dir"`
	SourceExists bool     `json:"source_exists"`
	DistDir      string   `json:"dist_dir"`
	DistWritable bool     `json:"dist_writable"`
	TemplateDir  string   `json:"template_dir,omitempty"`
	Templates    []string `json:"templates"`
	Tasks        []string `json:"tasks,omitempty"`
}

// bundlerInfo holds bundler detection results.
type bundlerInfo struct {
	Command  string `json:"command,omitempty"`
	Disabled bool   `json:"disabled"`
	Found    bool   `json:"found"`
	Path     string `json:"path,omitempty"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS         string   `json:"os"`
	Arch       string   `json:"arch"`
	GOMAXPROCS int      `json:"gomaxprocs"`
	Workers    int      `json:"workers"`
	Container  bool     `json:"container"`
	CI         bool     `json:"ci"`
	UnknownEnv []string `json:"unknown_env,omitempty"`
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found.
func runDoctorCmd(args []string, env *Environment) int {
	f := &doctorFlags{}
	if _, err := parseFlagSet(newDoctorFlagSet(f), args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printDoctorUsage(env.Stdout)
			return ExitSuccess
		}
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		return ExitUsage
	}

	result := runDoctor(f.common.config, env)

	if f.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == statusErrors {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(configName string, env *Environment) *doctorResult {
	result := &doctorResult{
		Status: statusReady,
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			GOMAXPROCS: runtime.GOMAXPROCS(0),
		},
	}

	checkEnvironment(result, env)
	if cfg := checkConfig(result, configName, env); cfg != nil {
		checkSite(result, cfg)
		checkBundler(result, cfg)
		checkSassCompiler(result, cfg)
	}

	if len(result.Errors) > 0 {
		result.Status = statusErrors
	} else if len(result.Warnings) > 0 {
		result.Status = statusWarnings
	}
	return result
}

// checkConfig resolves the config the same way the build commands do.
func checkConfig(result *doctorResult, name string, env *Environment) *config.Config {
	if name == "" {
		name = env.Getenv("MD2SITE_CONFIG")
	}
	if name == "" {
		for _, p := range config.SearchPaths(config.DefaultName) {
			if fileutil.FileExists(p) {
				result.Config.Path = p
				break
			}
		}
		result.Config.Default = result.Config.Path == ""
	} else {
		result.Config.Path = name
	}

	cfg, err := resolveConfig(name, siteFlags{}, env)
	if err != nil {
		result.Errors = append(result.Errors, firstLine(err.Error()))
		return nil
	}
	result.Config.Valid = true
	return cfg
}

// checkSite verifies the source directory, output directory and templates.
func checkSite(result *doctorResult, cfg *config.Config) {
	result.Env.Workers = md2site.ResolvePoolSize(cfg.Workers)
	result.Site.SourceDir = cfg.SourcePath()
	result.Site.DistDir = cfg.DistPath()
	result.Site.TemplateDir = cfg.TemplatePath()

	result.Site.SourceExists = fileutil.DirExists(cfg.SourcePath())
	if !result.Site.SourceExists {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Source directory not found: %s", cfg.SourcePath()))
	}

	result.Site.DistWritable = dirWritable(cfg.DistPath())
	if !result.Site.DistWritable {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Output directory not writable: %s", cfg.DistPath()))
	}

	site, err := build.NewSite(cfg)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return
	}

	seen := make(map[string]bool)
	for _, col := range cfg.Collections {
		if seen[col.Template] {
			continue
		}
		seen[col.Template] = true
		if err := site.Converter().Preload(col.Template); err != nil {
			result.Errors = append(result.Errors,
				fmt.Sprintf("Collection %s: %v", col.Name, err))
			continue
		}
		result.Site.Templates = append(result.Site.Templates, col.Template)
	}

	if runner, err := site.Runner(); err == nil {
		result.Site.Tasks = runner.Names()
	} else {
		result.Errors = append(result.Errors, err.Error())
	}
}

// checkBundler detects the element bundler on PATH.
func checkBundler(result *doctorResult, cfg *config.Config) {
	cmd := process.Command{Args: cfg.Bundles.Command}
	if len(cmd.Args) == 0 {
		result.Bundler.Disabled = true
		return
	}
	result.Bundler.Command = cmd.String()

	path, err := process.LookPath(cmd)
	if err != nil {
		hint := strings.TrimPrefix(hints.ForBundlerNotFound(cmd.Args[0]), "\n  hint: ")
		result.Errors = append(result.Errors,
			fmt.Sprintf("Bundler %s not found (%s)", cmd.Args[0], hint))
		return
	}
	result.Bundler.Found = true
	result.Bundler.Path = path
}

// checkSassCompiler warns when styles.command names a program missing from
// PATH. Only Sass sources need it, so it is not an error.
func checkSassCompiler(result *doctorResult, cfg *config.Config) {
	cmd := process.Command{Args: cfg.Styles.Command}
	if len(cmd.Args) == 0 {
		return
	}
	if _, err := process.LookPath(cmd); err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Sass compiler %s not found; .scss sources will fail", cmd.Args[0]))
	}
}

// checkEnvironment detects container and CI environments and unknown
// MD2SITE_* variables.
func checkEnvironment(result *doctorResult, env *Environment) {
	result.Env.Container = hints.IsInContainer()

	ciVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"}
	for _, v := range ciVars {
		if env.Getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}

	result.Env.UnknownEnv = unknownEnvVars(env.Environ())
	for _, name := range result.Env.UnknownEnv {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Unknown environment variable %s (typo?)", name))
	}
}

// dirWritable reports whether files can be created in dir, or in its
// nearest existing parent when dir does not exist yet.
func dirWritable(dir string) bool {
	for !fileutil.DirExists(dir) {
		parent := filepath.Dir(dir)
		if parent == dir {
			return false
		}
		dir = parent
	}
	f, err := os.CreateTemp(dir, ".md2site-doctor-*")
	if err != nil {
		return false
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	return true
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "md2site doctor")
	fmt.Fprintln(w)

	// Config section
	fmt.Fprintln(w, "Config")
	switch {
	case r.Config.Default && r.Config.Valid:
		fmt.Fprintln(w, "  [OK] Using built-in defaults (no md2site.yaml found)")
	case r.Config.Valid:
		fmt.Fprintf(w, "  [OK] Loaded %s\n", r.Config.Path)
	default:
		fmt.Fprintln(w, "  [ERROR] Could not load config")
	}
	fmt.Fprintln(w)

	// Site section
	if r.Config.Valid {
		fmt.Fprintln(w, "Site")
		if r.Site.SourceExists {
			fmt.Fprintf(w, "  [OK] Source: %s\n", r.Site.SourceDir)
		} else {
			fmt.Fprintf(w, "  [ERROR] Source: %s (missing)\n", r.Site.SourceDir)
		}
		if r.Site.DistWritable {
			fmt.Fprintf(w, "  [OK] Output: %s (writable)\n", r.Site.DistDir)
		} else {
			fmt.Fprintf(w, "  [ERROR] Output: %s (not writable)\n", r.Site.DistDir)
		}
		if r.Site.TemplateDir != "" {
			fmt.Fprintf(w, "  [OK] Template directory: %s\n", r.Site.TemplateDir)
		}
		if len(r.Site.Templates) > 0 {
			fmt.Fprintf(w, "  [OK] Templates: %s\n", strings.Join(r.Site.Templates, ", "))
		}
		fmt.Fprintln(w)

		// Bundler section
		fmt.Fprintln(w, "Bundler")
		switch {
		case r.Bundler.Disabled:
			fmt.Fprintln(w, "  [OK] Disabled (bundles.command is empty)")
		case r.Bundler.Found:
			fmt.Fprintf(w, "  [OK] %s (%s)\n", r.Bundler.Command, r.Bundler.Path)
		default:
			fmt.Fprintf(w, "  [ERROR] %s not found\n", r.Bundler.Command)
		}
		fmt.Fprintln(w)
	}

	// Environment section
	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	fmt.Fprintf(w, "  [OK] GOMAXPROCS: %d\n", r.Env.GOMAXPROCS)
	if r.Env.Workers > 0 {
		fmt.Fprintf(w, "  [OK] Workers: %d\n", r.Env.Workers)
	}
	if r.Env.Container {
		fmt.Fprintln(w, "  [OK] Container: detected")
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	// Warnings
	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	// Errors
	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	// Final status
	switch r.Status {
	case statusReady:
		fmt.Fprintln(w, "Status: Ready to build")
	case statusWarnings:
		fmt.Fprintln(w, "Status: Ready with warnings")
	case statusErrors:
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
