package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/alnah/go-md2site/internal/build"
)

// runBuild runs the full default plan.
func runBuild(ctx context.Context, args []string, env *Environment) error {
	f := &buildFlags{}
	rest, err := parseFlagSet(newBuildFlagSet("build", f), args)
	if err != nil {
		return err
	}
	if len(rest) > 0 {
		return fmt.Errorf("%w: %s", ErrTooManyArguments, strings.Join(rest, " "))
	}

	s, err := openSession(f.common, f.site, env, true)
	if err != nil {
		return err
	}
	return s.run(ctx, s.site.DefaultPlan(), env)
}

// runTasks runs the plan named on the command line:
// "md2site run styles,images copy" runs styles and images together, then copy.
func runTasks(ctx context.Context, args []string, env *Environment) error {
	f := &runFlags{}
	rest, err := parseFlagSet(newRunFlagSet(f), args)
	if err != nil {
		return err
	}

	s, err := openSession(f.common, f.site, env, !f.list)
	if err != nil {
		return err
	}

	if f.list {
		runner, err := s.site.Runner()
		if err != nil {
			return err
		}
		for _, name := range runner.Names() {
			fmt.Fprintln(env.Stdout, name)
		}
		return nil
	}

	if len(rest) == 0 {
		return fmt.Errorf("%w: no tasks given", ErrMissingArgument)
	}
	plan, err := build.ParsePlan(rest)
	if err != nil {
		return err
	}
	return s.run(ctx, plan, env)
}

// runClean removes the output directory.
func runClean(ctx context.Context, args []string, env *Environment) error {
	f := &buildFlags{}
	rest, err := parseFlagSet(newBuildFlagSet("clean", f), args)
	if err != nil {
		return err
	}
	if len(rest) > 0 {
		return fmt.Errorf("%w: %s", ErrTooManyArguments, strings.Join(rest, " "))
	}

	s, err := openSession(f.common, f.site, env, false)
	if err != nil {
		return err
	}
	return s.run(ctx, build.Plan{{build.TaskClean}}, env)
}

// runWatch builds the site once, then re-runs the tasks affected by each
// change until interrupted. A failing build is logged and watching goes on.
func runWatch(ctx context.Context, args []string, env *Environment) error {
	f := &watchFlags{}
	rest, err := parseFlagSet(newWatchFlagSet(f), args)
	if err != nil {
		return err
	}
	if len(rest) > 0 {
		return fmt.Errorf("%w: %s", ErrTooManyArguments, strings.Join(rest, " "))
	}

	s, err := openSession(f.common, f.site, env, true)
	if err != nil {
		return err
	}

	if !f.noBuild {
		if err := s.run(ctx, s.site.DefaultPlan(), env); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			s.logger.Error().Err(err).Msg("initial build failed")
		}
	}

	runner, err := s.site.Runner()
	if err != nil {
		return err
	}
	return s.site.Watcher(runner).Run(ctx)
}

// run executes plan and logs a one-line summary.
func (s *session) run(ctx context.Context, plan build.Plan, env *Environment) error {
	runner, err := s.site.Runner()
	if err != nil {
		return err
	}

	start := env.Now()
	s.logger.Info().Str("plan", plan.String()).Msg("build started")

	reports, err := runner.Run(ctx, plan)
	if err != nil {
		return withHint(err, s.cfg)
	}

	var processed, skipped int
	for _, r := range reports {
		processed += r.Processed
		skipped += r.Skipped
	}
	s.logger.Info().
		Int("tasks", len(reports)).
		Int("processed", processed).
		Int("skipped", skipped).
		Dur("duration", env.Now().Sub(start)).
		Msg("build finished")
	return nil
}
