// Package build runs the site build: named tasks grouped into stages,
// stages run in order, tasks inside a stage run concurrently.
package build

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Sentinel errors for build operations.
var (
	ErrTaskFailed    = errors.New("task failed")
	ErrUnknownTask   = errors.New("unknown task")
	ErrDuplicateTask = errors.New("duplicate task")
	ErrEmptyPlan     = errors.New("empty plan")
)

// Task names.
const (
	TaskClean        = "clean"
	TaskScriptsCheck = "scripts:check"
	TaskBundles      = "bundles"
	TaskStyles       = "styles"
	TaskImages       = "images"
	TaskScripts      = "scripts"
	TaskCopy         = "copy"

	// MarkdownTaskPrefix prefixes one task per configured collection,
	// e.g. "md:docs".
	MarkdownTaskPrefix = "md:"
)

// Task is one named unit of build work.
type Task interface {
	Name() string
	Run(ctx context.Context) (Report, error)
}

// Report summarizes a task run.
type Report struct {
	Task      string
	Processed int // files written
	Skipped   int // files left untouched (up to date, unsupported)
	Failed    int // files that could not be processed
	Duration  time.Duration
}

// Stage is a set of tasks run concurrently.
type Stage []string

// Plan is an ordered list of stages.
type Plan []Stage

// Tasks returns every task name in the plan in order.
func (p Plan) Tasks() []string {
	var names []string
	for _, stage := range p {
		names = append(names, stage...)
	}
	return names
}

// String renders the plan as "a -> b,c -> d".
func (p Plan) String() string {
	parts := make([]string, len(p))
	for i, stage := range p {
		parts[i] = strings.Join(stage, ",")
	}
	return strings.Join(parts, " -> ")
}

// ParsePlan builds a plan from command-line arguments: each argument is a
// stage, and comma-separated names inside an argument run concurrently.
// "styles,images copy" runs styles and images together, then copy.
func ParsePlan(args []string) (Plan, error) {
	var plan Plan
	for _, arg := range args {
		var stage Stage
		for _, name := range strings.Split(arg, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			stage = append(stage, name)
		}
		if len(stage) > 0 {
			plan = append(plan, stage)
		}
	}
	if len(plan) == 0 {
		return nil, ErrEmptyPlan
	}
	return plan, nil
}

// taskFunc adapts a function to Task.
type taskFunc struct {
	name string
	run  func(ctx context.Context) (Report, error)
}

func (t taskFunc) Name() string { return t.name }

func (t taskFunc) Run(ctx context.Context) (Report, error) { return t.run(ctx) }

// failedFiles builds the error returned when some files of a task failed.
func failedFiles(failed, total int) error {
	return fmt.Errorf("%w: %d of %d files failed", ErrTaskFailed, failed, total)
}
