// Package process runs external build tools in their own process group, so
// cancelling a build stops the tool and everything it started.
package process

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"
)

// Sentinel errors for external commands.
var (
	ErrEmptyCommand  = errors.New("empty command")
	ErrCommandFailed = errors.New("command failed")
)

// waitDelay bounds how long Wait blocks on output pipes after a kill.
const waitDelay = 5 * time.Second

// Command describes one external program invocation.
type Command struct {
	Args   []string  // program followed by its arguments
	Dir    string    // working directory, "" = current
	Env    []string  // extra KEY=VALUE entries appended to the environment
	Stdout io.Writer // nil discards
	Stderr io.Writer // nil discards
}

// String renders the command line for logs.
func (c Command) String() string {
	return strings.Join(c.Args, " ")
}

// Run executes c and waits for it. When ctx is cancelled the whole process
// group is killed and ctx.Err() is returned. A non-zero exit yields
// ErrCommandFailed.
func Run(ctx context.Context, c Command) error {
	if len(c.Args) == 0 || strings.TrimSpace(c.Args[0]) == "" {
		return ErrEmptyCommand
	}

	cmd := exec.CommandContext(ctx, c.Args[0], c.Args[1:]...) // #nosec G204 -- configured build command
	cmd.Dir = c.Dir
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr
	if len(c.Env) > 0 {
		cmd.Env = append(cmd.Environ(), c.Env...)
	}
	setProcessGroup(cmd)
	cmd.Cancel = func() error {
		KillProcessGroup(cmd.Process.Pid)
		return nil
	}
	cmd.WaitDelay = waitDelay

	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCommandFailed, c, err)
	}
	return nil
}

// LookPath reports whether the program of c can be found.
func LookPath(c Command) (string, error) {
	if len(c.Args) == 0 {
		return "", ErrEmptyCommand
	}
	return exec.LookPath(c.Args[0])
}
