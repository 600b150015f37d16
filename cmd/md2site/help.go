package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2site <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  build       Build the whole site")
	fmt.Fprintln(w, "  run         Run selected build tasks")
	fmt.Fprintln(w, "  watch       Rebuild on source changes")
	fmt.Fprintln(w, "  clean       Remove the output directory")
	fmt.Fprintln(w, "  convert     Convert one markdown file to a page")
	fmt.Fprintln(w, "  init        Write a default md2site.yaml")
	fmt.Fprintln(w, "  doctor      Check the site setup")
	fmt.Fprintln(w, "  completion  Generate shell completion script")
	fmt.Fprintln(w, "  version     Show version information")
	fmt.Fprintln(w, "  help        Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'md2site help <command>' for details on a specific command.")
}

// printSiteFlags prints the flags shared by the site commands.
func printSiteFlags(w io.Writer) {
	fmt.Fprintln(w, "Site:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -s, --source <dir>        Source directory (default: app)")
	fmt.Fprintln(w, "  -d, --dist <dir>          Output directory (default: dist)")
	fmt.Fprintln(w, "      --templates <dir>     Page template directory (default: built-in)")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto)")
	fmt.Fprintln(w, "                            Directories are relative to the config file")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug output")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  MD2SITE_CONFIG, MD2SITE_SOURCE_DIR, MD2SITE_DIST_DIR,")
	fmt.Fprintln(w, "  MD2SITE_TEMPLATE_DIR, MD2SITE_WORKERS")
	fmt.Fprintln(w, "  Precedence: flags > environment > config file > defaults")
}

// printBuildUsage prints usage for the build command.
func printBuildUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2site build [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Build the whole site. Stages run in order, tasks of a stage in parallel:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  clean -> scripts:check -> bundles -> styles,images,scripts -> copy -> md:*")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "A failing stage stops the build; the tasks beside it still finish.")
	fmt.Fprintln(w)
	printSiteFlags(w)
}

// printRunUsage prints usage for the run command.
func printRunUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2site run <task>[,<task>...] [<task>...] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run selected tasks. Each argument is a stage; comma-separated tasks")
	fmt.Fprintln(w, "inside an argument run in parallel.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  md2site run styles")
	fmt.Fprintln(w, "  md2site run styles,images copy")
	fmt.Fprintln(w, "  md2site run md:docs md:blog")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Tasks:")
	fmt.Fprintln(w, "  -l, --list                List available tasks")
	fmt.Fprintln(w)
	printSiteFlags(w)
}

// printWatchUsage prints usage for the watch command.
func printWatchUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2site watch [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Build the site, then re-run the tasks whose inputs change.")
	fmt.Fprintln(w, "Stop with Ctrl+C.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Watch:")
	fmt.Fprintln(w, "      --no-build            Skip the initial full build")
	fmt.Fprintln(w)
	printSiteFlags(w)
}

// printCleanUsage prints usage for the clean command.
func printCleanUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2site clean [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Remove the output directory.")
	fmt.Fprintln(w)
	printSiteFlags(w)
}

// printConvertUsage prints usage for the convert command.
func printConvertUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2site convert <file.md> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert one markdown file with the site templates.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file (default: stdout)")
	fmt.Fprintln(w, "  -t, --template <name>     Page template: page, blog, or a name in --templates")
	fmt.Fprintln(w)
	printSiteFlags(w)
}

// printInitUsage prints usage for the init command.
func printInitUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2site init [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Write the default configuration to md2site.yaml.")
	fmt.Fprintln(w, "Lists set in the file replace the defaults; an empty list ([]) disables")
	fmt.Fprintln(w, "the matching task, e.g. bundles.command: [] skips the bundler.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -o, --output <path>       File to write (default: md2site.yaml)")
	fmt.Fprintln(w, "  -f, --force               Overwrite an existing file")
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2site doctor [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check the config, source directory, templates and bundler.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "      --json                Print results as JSON")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "build":
		printBuildUsage(env.Stdout)
	case "run":
		printRunUsage(env.Stdout)
	case "watch":
		printWatchUsage(env.Stdout)
	case "clean":
		printCleanUsage(env.Stdout)
	case "convert":
		printConvertUsage(env.Stdout)
	case "init":
		printInitUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "completion":
		printCompletionUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: md2site version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: md2site help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}
