package main

import (
	"errors"
	"os"

	md2site "github.com/alnah/go-md2site"
	"github.com/alnah/go-md2site/internal/build"
	"github.com/alnah/go-md2site/internal/config"
	"github.com/alnah/go-md2site/internal/fileutil"
	"github.com/alnah/go-md2site/internal/process"
)

// Exit codes for md2site CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful build
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied, missing template
	ExitBuild   = 4 // One or more files or tasks failed
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
// Usage errors win over I/O errors, which win over build failures: a run
// that fails for several reasons reports the one the user must fix first.
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUnknownCommand) ||
		errors.Is(err, ErrInvalidFlag) ||
		errors.Is(err, ErrMissingArgument) ||
		errors.Is(err, ErrTooManyArguments) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrUnsupportedShell) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, fileutil.ErrInvalidPattern) ||
		errors.Is(err, build.ErrUnknownTask) ||
		errors.Is(err, build.ErrDuplicateTask) ||
		errors.Is(err, build.ErrEmptyPlan) ||
		errors.Is(err, process.ErrEmptyCommand) ||
		errors.Is(err, md2site.ErrInvalidTemplateDir) ||
		errors.Is(err, md2site.ErrInvalidTemplateName) {
		return ExitUsage
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, md2site.ErrTemplateRead) ||
		errors.Is(err, ErrReadMarkdown) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, ErrConfigExists) {
		return ExitIO
	}

	// Build failures (exit 4)
	if errors.Is(err, build.ErrTaskFailed) ||
		errors.Is(err, build.ErrNoBundles) ||
		errors.Is(err, process.ErrCommandFailed) ||
		errors.Is(err, md2site.ErrParse) ||
		errors.Is(err, md2site.ErrTemplateExecute) {
		return ExitBuild
	}

	return ExitGeneral
}
