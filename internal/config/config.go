package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/alnah/go-md2site"
	"github.com/alnah/go-md2site/internal/fileutil"
	"github.com/alnah/go-md2site/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// DefaultName is the config base name looked up when none is given.
const DefaultName = "md2site"

// userConfigSubdir is the directory under os.UserConfigDir searched for configs.
const userConfigSubdir = "go-md2site"

// Field limits.
const (
	MaxPathLength     = 4096
	MaxPatternLength  = 512
	MaxNameLength     = 64
	MaxDelimLength    = 8
	MaxLicenseLength  = 1000
	MaxStyleLength    = 64
	MaxWorkers        = 64
	MaxCommandArgs    = 64
	MaxImageWidth     = 16384
	MaxJPEGQuality    = 100
	MaxCollections    = 32
	MaxCopyRules      = 64
	MaxPatternsPerSet = 64
)

// Config holds everything a site build needs.
// Paths are relative to Root unless noted otherwise.
type Config struct {
	// Root is the project directory: the directory holding the config file,
	// or "." for built-in defaults. Not read from YAML.
	Root string `yaml:"-"`

	SourceDir   string             `yaml:"sourceDir"`             // Markdown, styles, scripts, images (default "app")
	DistDir     string             `yaml:"distDir"`               // Build output (default "dist")
	TemplateDir string             `yaml:"templateDir,omitempty"` // Page templates (empty = built-in)
	Delims      DelimsConfig       `yaml:"delims,omitempty"`
	Workers     int                `yaml:"workers,omitempty"` // 0 = automatic
	License     string             `yaml:"license,omitempty"` // Banner prepended to CSS/JS (empty = none)
	Markdown    MarkdownConfig     `yaml:"markdown,omitempty"`
	Collections []CollectionConfig `yaml:"collections"`
	Styles      StylesConfig       `yaml:"styles"`
	Scripts     ScriptsConfig      `yaml:"scripts"`
	Images      ImagesConfig       `yaml:"images"`
	Bundles     BundlesConfig      `yaml:"bundles"`
	Copy        []CopyRule         `yaml:"copy"`
}

// DelimsConfig sets the page template action delimiters.
type DelimsConfig struct {
	Left  string `yaml:"left"`
	Right string `yaml:"right"`
}

// MarkdownConfig mirrors md2site.MarkdownOptions. Unset booleans keep the
// site defaults.
type MarkdownConfig struct {
	RawHTML          *bool  `yaml:"rawHTML,omitempty"`
	Linkify          *bool  `yaml:"linkify,omitempty"`
	HardWraps        *bool  `yaml:"hardWraps,omitempty"`
	HighlightStyle   string `yaml:"highlightStyle,omitempty"`
	HighlightClasses *bool  `yaml:"highlightClasses,omitempty"`
	GuessLanguage    *bool  `yaml:"guessLanguage,omitempty"`
	RewriteLinks     *bool  `yaml:"rewriteLinks,omitempty"`
}

// CollectionConfig selects Markdown files rendered with one template.
// Patterns are relative to SourceDir.
type CollectionConfig struct {
	Name     string   `yaml:"name"`
	Include  []string `yaml:"include"`
	Exclude  []string `yaml:"exclude,omitempty"`
	Template string   `yaml:"template"`
}

// Placeholders substituted in StylesConfig.Command.
const (
	PlaceholderIn  = "{in}"  // Sass source file
	PlaceholderOut = "{out}" // CSS file to write; without it stdout is the CSS
)

// StylesConfig configures stylesheet minification and Sass compilation.
type StylesConfig struct {
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude,omitempty"`
	Dest    string   `yaml:"dest"`
	Command []string `yaml:"command,omitempty"` // Sass compiler; empty skips .scss/.sass sources
}

// ScriptsConfig configures JavaScript minification and syntax checking.
type ScriptsConfig struct {
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude,omitempty"`
	Dest    string   `yaml:"dest"`
	Check   []string `yaml:"check"` // Files parsed by scripts:check, relative to SourceDir
}

// ImagesConfig configures image optimization.
type ImagesConfig struct {
	Include     []string `yaml:"include"`
	Exclude     []string `yaml:"exclude,omitempty"`
	Dest        string   `yaml:"dest"`
	MaxWidth    int      `yaml:"maxWidth,omitempty"` // 0 = keep size
	JPEGQuality int      `yaml:"jpegQuality"`        // 1-100 (default 80)
}

// BundlesConfig configures the external element bundler.
type BundlesConfig struct {
	Command []string     `yaml:"command"` // Empty list disables the task
	Dir     string       `yaml:"dir"`     // Bundler output directory
	Dest    string       `yaml:"dest"`    // DistDir subdirectory
	Inline  []InlineRule `yaml:"inline"`
}

// InlineRule replaces <script src="Script"></script> in HTML with the
// script's content. Both names are relative to BundlesConfig.Dir.
type InlineRule struct {
	HTML   string `yaml:"html"`
	Script string `yaml:"script"`
}

// CopyRule copies files matching Include from Base to DistDir/Dest.
type CopyRule struct {
	Base    string   `yaml:"base"`
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude,omitempty"`
	Dest    string   `yaml:"dest,omitempty"`
}

// DefaultConfig returns the layout of a site with Markdown under app/,
// element bundles built by polymer and output in dist/.
func DefaultConfig() *Config {
	cfg := &Config{Root: "."}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills unset fields. Nil lists get defaults; an explicit
// empty list in YAML is kept, so "copy: []" disables copying.
func (c *Config) applyDefaults() {
	if c.Root == "" {
		c.Root = "."
	}
	if c.SourceDir == "" {
		c.SourceDir = "app"
	}
	if c.DistDir == "" {
		c.DistDir = "dist"
	}
	if c.Collections == nil {
		c.Collections = []CollectionConfig{
			{
				Name:     "docs",
				Include:  []string{"**/*.md"},
				Exclude:  []string{"blog/*.md", "{bower_components,elements,images,js,sass}/**"},
				Template: md2site.TemplatePage,
			},
			{
				Name:     "blog",
				Include:  []string{"blog/*.md"},
				Template: md2site.TemplateBlog,
			},
		}
	}
	for i := range c.Collections {
		if c.Collections[i].Template == "" {
			c.Collections[i].Template = md2site.TemplatePage
		}
	}
	if c.Styles.Include == nil {
		c.Styles.Include = []string{"sass/**/*.css", "sass/**/*.scss"}
	}
	if c.Styles.Dest == "" {
		c.Styles.Dest = "css"
	}
	if c.Scripts.Include == nil {
		c.Scripts.Include = []string{"js/**/*.js"}
	}
	if c.Scripts.Dest == "" {
		c.Scripts.Dest = "js"
	}
	if c.Scripts.Check == nil {
		c.Scripts.Check = []string{"js/**/*.js", "elements/**/*.js"}
	}
	if c.Images.Include == nil {
		c.Images.Include = []string{"images/**/*"}
	}
	if c.Images.Dest == "" {
		c.Images.Dest = "images"
	}
	if c.Images.JPEGQuality == 0 {
		c.Images.JPEGQuality = 80
	}
	if c.Bundles.Command == nil {
		c.Bundles.Command = []string{"polymer", "build"}
	}
	if c.Bundles.Dir == "" {
		c.Bundles.Dir = "build/default/app/elements"
	}
	if c.Bundles.Dest == "" {
		c.Bundles.Dest = "elements"
	}
	if c.Bundles.Inline == nil {
		c.Bundles.Inline = []InlineRule{{HTML: "pw-shell.html", Script: "pw-shell.js"}}
	}
	if c.Copy == nil {
		c.Copy = []CopyRule{
			{
				Base:    "app",
				Include: []string{"**/*.html", "**/nav.yaml", "**/blog.yaml", "**/authors.yaml", "manifest.json"},
				Exclude: []string{"{bower_components,elements}/**", "1.0/homepage/**"},
			},
			{Base: ".", Include: []string{"{templates,lib}/**/*", "*.py", "*.{yml,yaml}"}},
			{Base: "app", Include: []string{"bower_components/webcomponentsjs/webcomponents*.js"}},
			{Base: "app", Include: []string{"summit*/**/*"}},
		}
	}
}

// MarkdownOptions converts the Markdown section to converter options.
func (c *Config) MarkdownOptions() md2site.MarkdownOptions {
	opts := md2site.DefaultMarkdownOptions()
	m := c.Markdown
	setBool(&opts.RawHTML, m.RawHTML)
	setBool(&opts.Linkify, m.Linkify)
	setBool(&opts.HardWraps, m.HardWraps)
	setBool(&opts.HighlightClasses, m.HighlightClasses)
	setBool(&opts.GuessLanguage, m.GuessLanguage)
	setBool(&opts.RewriteMarkdownLinks, m.RewriteLinks)
	if m.HighlightStyle != "" {
		opts.HighlightStyle = m.HighlightStyle
	}
	return opts
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

// Path joins p to Root unless p is absolute.
func (c *Config) Path(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Root, p)
}

// SourcePath is the absolute-or-root-relative source directory.
func (c *Config) SourcePath() string { return c.Path(c.SourceDir) }

// DistPath is the absolute-or-root-relative output directory.
func (c *Config) DistPath() string { return c.Path(c.DistDir) }

// TemplatePath returns the template directory, or "" for built-in templates.
func (c *Config) TemplatePath() string {
	if c.TemplateDir == "" {
		return ""
	}
	return c.Path(c.TemplateDir)
}

// Validate checks limits and value ranges.
// Called automatically by LoadConfig, but available for callers
// who construct Config manually or apply overrides afterwards.
func (c *Config) Validate() error {
	for _, f := range []struct{ name, value string }{
		{"sourceDir", c.SourceDir},
		{"distDir", c.DistDir},
		{"templateDir", c.TemplateDir},
		{"bundles.dir", c.Bundles.Dir},
	} {
		if err := validateFieldLength(f.name, f.value, MaxPathLength); err != nil {
			return err
		}
	}
	if err := validateFieldLength("license", c.License, MaxLicenseLength); err != nil {
		return err
	}
	if err := validateFieldLength("markdown.highlightStyle", c.Markdown.HighlightStyle, MaxStyleLength); err != nil {
		return err
	}
	if strings.TrimSpace(c.DistDir) == "" {
		return fmt.Errorf("%w: distDir cannot be empty", ErrInvalidValue)
	}
	if filepath.Clean(c.DistDir) == "." || filepath.Clean(c.DistDir) == filepath.Clean(c.SourceDir) {
		return fmt.Errorf("%w: distDir %q would overwrite the project or sources", ErrInvalidValue, c.DistDir)
	}

	if err := c.validateDelims(); err != nil {
		return err
	}
	if c.Workers < 0 || c.Workers > MaxWorkers {
		return fmt.Errorf("%w: workers must be between 0 and %d, got %d", ErrInvalidValue, MaxWorkers, c.Workers)
	}
	if err := c.validateCollections(); err != nil {
		return err
	}

	if err := validatePatternSet("styles", c.Styles.Include, c.Styles.Exclude); err != nil {
		return err
	}
	if err := validatePatternSet("scripts", c.Scripts.Include, c.Scripts.Exclude); err != nil {
		return err
	}
	if err := validatePatternSet("scripts.check", c.Scripts.Check, nil); err != nil {
		return err
	}
	if err := validatePatternSet("images", c.Images.Include, c.Images.Exclude); err != nil {
		return err
	}
	if c.Images.MaxWidth < 0 || c.Images.MaxWidth > MaxImageWidth {
		return fmt.Errorf("%w: images.maxWidth must be between 0 and %d, got %d", ErrInvalidValue, MaxImageWidth, c.Images.MaxWidth)
	}
	if c.Images.JPEGQuality < 0 || c.Images.JPEGQuality > MaxJPEGQuality {
		return fmt.Errorf("%w: images.jpegQuality must be between 0 and %d, got %d", ErrInvalidValue, MaxJPEGQuality, c.Images.JPEGQuality)
	}

	if err := validateCommand("styles.command", c.Styles.Command); err != nil {
		return err
	}
	if len(c.Styles.Command) > 0 && !slices.Contains(c.Styles.Command, PlaceholderIn) {
		return fmt.Errorf("%w: styles.command needs a %s argument", ErrInvalidValue, PlaceholderIn)
	}
	if err := c.validateBundles(); err != nil {
		return err
	}

	if len(c.Copy) > MaxCopyRules {
		return fmt.Errorf("%w: at most %d copy rules, got %d", ErrInvalidValue, MaxCopyRules, len(c.Copy))
	}
	for i, r := range c.Copy {
		field := fmt.Sprintf("copy[%d]", i)
		if len(r.Include) == 0 {
			return fmt.Errorf("%w: %s.include cannot be empty", ErrInvalidValue, field)
		}
		if err := validatePatternSet(field, r.Include, r.Exclude); err != nil {
			return err
		}
		if err := validateFieldLength(field+".base", r.Base, MaxPathLength); err != nil {
			return err
		}
		if err := validateDest(field+".dest", r.Dest); err != nil {
			return err
		}
	}

	for name, dest := range map[string]string{
		"styles.dest":  c.Styles.Dest,
		"scripts.dest": c.Scripts.Dest,
		"images.dest":  c.Images.Dest,
		"bundles.dest": c.Bundles.Dest,
	} {
		if err := validateDest(name, dest); err != nil {
			return err
		}
	}

	return nil
}

func (c *Config) validateDelims() error {
	l, r := c.Delims.Left, c.Delims.Right
	if l == "" && r == "" {
		return nil
	}
	if strings.TrimSpace(l) == "" || strings.TrimSpace(r) == "" {
		return fmt.Errorf("%w: delims.left and delims.right must both be set", ErrInvalidValue)
	}
	if err := validateFieldLength("delims.left", l, MaxDelimLength); err != nil {
		return err
	}
	if err := validateFieldLength("delims.right", r, MaxDelimLength); err != nil {
		return err
	}
	if l == r {
		return fmt.Errorf("%w: delims.left and delims.right must differ", ErrInvalidValue)
	}
	return nil
}

func (c *Config) validateCollections() error {
	if len(c.Collections) > MaxCollections {
		return fmt.Errorf("%w: at most %d collections, got %d", ErrInvalidValue, MaxCollections, len(c.Collections))
	}
	seen := make(map[string]bool, len(c.Collections))
	for i, col := range c.Collections {
		field := fmt.Sprintf("collections[%d]", i)
		if strings.TrimSpace(col.Name) == "" {
			return fmt.Errorf("%w: %s.name cannot be empty", ErrInvalidValue, field)
		}
		if err := validateFieldLength(field+".name", col.Name, MaxNameLength); err != nil {
			return err
		}
		if seen[col.Name] {
			return fmt.Errorf("%w: duplicate collection %q", ErrInvalidValue, col.Name)
		}
		seen[col.Name] = true
		if len(col.Include) == 0 {
			return fmt.Errorf("%w: %s.include cannot be empty", ErrInvalidValue, field)
		}
		if err := validatePatternSet(field, col.Include, col.Exclude); err != nil {
			return err
		}
		if err := validateFieldLength(field+".template", col.Template, MaxNameLength); err != nil {
			return err
		}
	}
	return nil
}

func validateCommand(field string, args []string) error {
	if len(args) > MaxCommandArgs {
		return fmt.Errorf("%w: %s has %d arguments, max %d", ErrInvalidValue, field, len(args), MaxCommandArgs)
	}
	if len(args) > 0 && strings.TrimSpace(args[0]) == "" {
		return fmt.Errorf("%w: %s program cannot be empty", ErrInvalidValue, field)
	}
	return nil
}

func (c *Config) validateBundles() error {
	if err := validateCommand("bundles.command", c.Bundles.Command); err != nil {
		return err
	}
	for i, r := range c.Bundles.Inline {
		field := fmt.Sprintf("bundles.inline[%d]", i)
		if r.HTML == "" || r.Script == "" {
			return fmt.Errorf("%w: %s needs html and script", ErrInvalidValue, field)
		}
		if escapes(r.HTML) || escapes(r.Script) {
			return fmt.Errorf("%w: %s must stay inside bundles.dir", ErrInvalidValue, field)
		}
	}
	return nil
}

func validatePatternSet(field string, include, exclude []string) error {
	if len(include)+len(exclude) > MaxPatternsPerSet {
		return fmt.Errorf("%w: %s has more than %d patterns", ErrInvalidValue, field, MaxPatternsPerSet)
	}
	for _, p := range append(append([]string(nil), include...), exclude...) {
		if err := validateFieldLength(field+" pattern", p, MaxPatternLength); err != nil {
			return err
		}
	}
	if err := fileutil.ValidatePatterns(include); err != nil {
		return fmt.Errorf("%s.include: %w", field, err)
	}
	if err := fileutil.ValidatePatterns(exclude); err != nil {
		return fmt.Errorf("%s.exclude: %w", field, err)
	}
	return nil
}

func validateDest(field, dest string) error {
	if err := validateFieldLength(field, dest, MaxPathLength); err != nil {
		return err
	}
	if escapes(dest) {
		return fmt.Errorf("%w: %s must be relative to distDir", ErrInvalidValue, field)
	}
	return nil
}

// escapes reports whether p is absolute or climbs out of its base directory.
func escapes(p string) bool {
	if filepath.IsAbs(p) {
		return true
	}
	clean := filepath.ToSlash(filepath.Clean(p))
	return clean == ".." || strings.HasPrefix(clean, "../")
}

func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// LoadConfig loads a config by path or by name.
// A value containing a path separator is read directly; a bare name is
// looked up as name.yaml / name.yml in the working directory, then in
// the user config directory (go-md2site/).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	return loadFile(configPath)
}

// LoadDefault loads md2site.yaml / md2site.yml when present and falls back
// to DefaultConfig otherwise. The returned path is "" for built-in defaults.
func LoadDefault() (*Config, string, error) {
	path, err := resolveConfigPath(DefaultName)
	if errors.Is(err, ErrConfigNotFound) {
		return DefaultConfig(), "", nil
	}
	if err != nil {
		return nil, "", err
	}
	cfg, err := loadFile(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// SearchPaths lists the files LoadConfig tries for name, in order.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2) // 2 locations

	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, userConfigSubdir, name+ext))
		}
	}
	return paths
}

func loadFile(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yamlutil.UnmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	cfg.Root = filepath.Dir(configPath)
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func resolveConfigPath(name string) (string, error) {
	paths := SearchPaths(name)
	for _, p := range paths {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(paths, ", "))
}
