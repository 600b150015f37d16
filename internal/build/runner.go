package build

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Runner executes plans against a registry of tasks.
type Runner struct {
	tasks  map[string]Task
	logger zerolog.Logger
}

// NewRunner registers tasks. Task names must be unique.
func NewRunner(logger zerolog.Logger, tasks ...Task) (*Runner, error) {
	r := &Runner{tasks: make(map[string]Task, len(tasks)), logger: logger}
	for _, t := range tasks {
		if _, dup := r.tasks[t.Name()]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTask, t.Name())
		}
		r.tasks[t.Name()] = t
	}
	return r, nil
}

// Names returns the registered task names, sorted.
func (r *Runner) Names() []string {
	names := make([]string, 0, len(r.tasks))
	for name := range r.tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks that every task of plan is registered.
func (r *Runner) Validate(plan Plan) error {
	if len(plan) == 0 {
		return ErrEmptyPlan
	}
	for _, name := range plan.Tasks() {
		if _, ok := r.tasks[name]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownTask, name)
		}
	}
	return nil
}

// Run executes plan stage by stage. Every task of a stage runs to
// completion; the first stage with a failing task ends the run. Reports of
// the tasks that ran are returned together with the joined task errors.
func (r *Runner) Run(ctx context.Context, plan Plan) ([]Report, error) {
	if err := r.Validate(plan); err != nil {
		return nil, err
	}

	var reports []Report
	for _, stage := range plan {
		if err := ctx.Err(); err != nil {
			return reports, err
		}
		stageReports, err := r.runStage(ctx, stage)
		reports = append(reports, stageReports...)
		if err != nil {
			return reports, err
		}
	}
	return reports, nil
}

func (r *Runner) runStage(ctx context.Context, stage Stage) ([]Report, error) {
	reports := make([]Report, len(stage))
	errs := make([]error, len(stage))

	// Siblings of a failing task run to completion, so no errgroup here.
	var wg sync.WaitGroup
	for i, name := range stage {
		task := r.tasks[name]
		wg.Go(func() {
			reports[i], errs[i] = r.runTask(ctx, task)
		})
	}
	wg.Wait()

	return reports, errors.Join(errs...)
}

func (r *Runner) runTask(ctx context.Context, task Task) (Report, error) {
	name := task.Name()
	log := r.logger.With().Str("task", name).Logger()
	log.Debug().Msg("starting")

	start := time.Now()
	rep, err := task.Run(ctx)
	rep.Task = name
	rep.Duration = time.Since(start)

	event := log.Info()
	if err != nil {
		event = log.Error().Err(err)
	}
	event.
		Int("processed", rep.Processed).
		Int("skipped", rep.Skipped).
		Int("failed", rep.Failed).
		Dur("duration", rep.Duration).
		Msg("finished")

	if err != nil {
		return rep, fmt.Errorf("%s: %w", name, err)
	}
	return rep, nil
}
