package main

import (
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/alnah/go-md2site/internal/config"
)

// envPrefix marks the variables md2site reads.
const envPrefix = "MD2SITE_"

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath  string // MD2SITE_CONFIG: config file name or path
	SourceDir   string // MD2SITE_SOURCE_DIR: source directory
	DistDir     string // MD2SITE_DIST_DIR: output directory
	TemplateDir string // MD2SITE_TEMPLATE_DIR: page template directory
	Workers     int    // MD2SITE_WORKERS: parallel workers
}

// knownEnvVars lists valid MD2SITE_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"MD2SITE_CONFIG":       true,
	"MD2SITE_SOURCE_DIR":   true,
	"MD2SITE_DIST_DIR":     true,
	"MD2SITE_TEMPLATE_DIR": true,
	"MD2SITE_WORKERS":      true,
}

// loadEnvConfig reads configuration through getenv.
// Malformed or non-positive MD2SITE_WORKERS values are ignored.
func loadEnvConfig(getenv func(string) string) *envConfig {
	cfg := &envConfig{
		ConfigPath:  getenv("MD2SITE_CONFIG"),
		SourceDir:   getenv("MD2SITE_SOURCE_DIR"),
		DistDir:     getenv("MD2SITE_DIST_DIR"),
		TemplateDir: getenv("MD2SITE_TEMPLATE_DIR"),
	}

	if workers := getenv("MD2SITE_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// unknownEnvVars returns the MD2SITE_* names in environ that md2site does
// not read, in environ order.
func unknownEnvVars(environ []string) []string {
	var unknown []string
	for _, kv := range environ {
		if !strings.HasPrefix(kv, envPrefix) {
			continue
		}
		name, _, _ := strings.Cut(kv, "=")
		if !knownEnvVars[name] {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// warnUnknownEnvVars logs a warning per unrecognized MD2SITE_* variable.
// Helps catch typos like MD2SITE_DIST instead of MD2SITE_DIST_DIR.
func warnUnknownEnvVars(logger zerolog.Logger, environ []string) {
	for _, name := range unknownEnvVars(environ) {
		logger.Warn().Str("name", name).Msg("unknown environment variable (typo?)")
	}
}

// applyEnvConfig overrides config file values with the environment.
// Flags are applied afterwards by applySiteFlags, which gives
// flags > env > config file > defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.SourceDir != "" {
		cfg.SourceDir = env.SourceDir
	}
	if env.DistDir != "" {
		cfg.DistDir = env.DistDir
	}
	if env.TemplateDir != "" {
		cfg.TemplateDir = env.TemplateDir
	}
	if env.Workers > 0 {
		cfg.Workers = env.Workers
	}
}
