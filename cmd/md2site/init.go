package main

import (
	"fmt"
	"strings"

	"github.com/alnah/go-md2site/internal/config"
	"github.com/alnah/go-md2site/internal/fileutil"
	"github.com/alnah/go-md2site/internal/yamlutil"
)

// configHeader starts every generated config file.
const configHeader = "# md2site site configuration.\n" +
	"# Paths are relative to this file. Run 'md2site help init' for details.\n\n"

// runInit writes the default configuration so it can be edited.
func runInit(args []string, env *Environment) error {
	f := &initFlags{}
	rest, err := parseFlagSet(newInitFlagSet(f), args)
	if err != nil {
		return err
	}
	if len(rest) > 0 {
		return fmt.Errorf("%w: %s", ErrTooManyArguments, strings.Join(rest, " "))
	}

	if fileutil.FileExists(f.output) && !f.force {
		return fmt.Errorf("%w: %s (use --force to overwrite)", ErrConfigExists, f.output)
	}

	data, err := yamlutil.Marshal(config.DefaultConfig())
	if err != nil {
		return err
	}
	if err := fileutil.WriteFileAtomic(f.output, append([]byte(configHeader), data...)); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}

	fmt.Fprintf(env.Stdout, "wrote %s\n", f.output)
	return nil
}
