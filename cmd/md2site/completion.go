package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	flag "github.com/spf13/pflag"

	md2site "github.com/alnah/go-md2site"
	"github.com/alnah/go-md2site/internal/build"
)

// Shell represents a supported shell for completion generation.
type Shell string

// Supported shells for completion.
const (
	ShellBash       Shell = "bash"
	ShellZsh        Shell = "zsh"
	ShellFish       Shell = "fish"
	ShellPowerShell Shell = "powershell"
)

// ErrUnsupportedShell is returned when an unknown shell is requested.
var ErrUnsupportedShell = errors.New("unsupported shell")

// flagType represents the completion type for a flag.
type flagType int

const (
	flagString flagType = iota // default
	flagBool
	flagInt
	flagEnum // has predefined values
	flagFile // file with glob pattern
	flagDir  // directory
)

// flagDef describes a flag for completion purposes.
type flagDef struct {
	Long     string   // --output
	Short    string   // -o (empty if none)
	Type     flagType // completion type
	Desc     string   // help text
	Values   []string // for enum flags
	FileGlob string   // for file flags
}

// commandDef describes a command for completion.
type commandDef struct {
	Name        string
	Desc        string
	Flags       []flagDef
	Args        []string // fixed positional values (tasks, shells, commands)
	FilePattern string   // glob for file arguments (e.g., "*.md")
}

// completionMeta holds completion-specific metadata for flags.
// Flag names, types, and descriptions come from the FlagSets.
type completionMeta struct {
	Values   []string // enum values
	FileGlob string   // file glob pattern
	IsDir    bool     // directory completion
}

// flagCompletionMeta maps flag names to their completion metadata.
var flagCompletionMeta = map[string]completionMeta{
	// Enum flags
	"template": {Values: md2site.BuiltinTemplates()},

	// File flags with glob patterns
	"config": {FileGlob: "*.yaml,*.yml"},
	"output": {FileGlob: "*"},

	// Directory flags
	"source":    {IsDir: true},
	"dist":      {IsDir: true},
	"templates": {IsDir: true},
}

// defaultTaskNames lists the tasks of a site with the default collections.
func defaultTaskNames() []string {
	return []string{
		build.TaskClean,
		build.TaskScriptsCheck,
		build.TaskBundles,
		build.TaskStyles,
		build.TaskImages,
		build.TaskScripts,
		build.TaskCopy,
		build.MarkdownTaskPrefix + "docs",
		build.MarkdownTaskPrefix + "blog",
	}
}

// extractFlagsFromFlagSet extracts flag definitions from a pflag.FlagSet.
// Enriches with completion metadata from flagCompletionMeta.
func extractFlagsFromFlagSet(fs *flag.FlagSet) []flagDef {
	var flags []flagDef

	fs.VisitAll(func(f *flag.Flag) {
		fd := flagDef{
			Long:  f.Name,
			Short: f.Shorthand,
			Desc:  f.Usage,
		}

		switch f.Value.Type() {
		case "bool":
			fd.Type = flagBool
		case "int", "int8", "int16", "int32", "int64", "uint", "uint8", "uint16", "uint32", "uint64":
			fd.Type = flagInt
		default:
			fd.Type = flagString
		}

		if meta, ok := flagCompletionMeta[f.Name]; ok && fd.Type == flagString {
			switch {
			case len(meta.Values) > 0:
				fd.Type = flagEnum
				fd.Values = meta.Values
			case meta.FileGlob != "":
				fd.Type = flagFile
				fd.FileGlob = meta.FileGlob
			case meta.IsDir:
				fd.Type = flagDir
			}
		}

		flags = append(flags, fd)
	})

	return flags
}

// getCommands returns the command registry for completion.
// Flags are extracted from the actual FlagSets - single source of truth.
func getCommands() []commandDef {
	shells := []string{string(ShellBash), string(ShellZsh), string(ShellFish), string(ShellPowerShell)}

	cmds := []commandDef{
		{Name: "build", Desc: "Build the whole site", Flags: extractFlagsFromFlagSet(newBuildFlagSet("build", &buildFlags{}))},
		{Name: "run", Desc: "Run selected build tasks", Flags: extractFlagsFromFlagSet(newRunFlagSet(&runFlags{})), Args: defaultTaskNames()},
		{Name: "watch", Desc: "Rebuild on source changes", Flags: extractFlagsFromFlagSet(newWatchFlagSet(&watchFlags{}))},
		{Name: "clean", Desc: "Remove the output directory", Flags: extractFlagsFromFlagSet(newBuildFlagSet("clean", &buildFlags{}))},
		{Name: "convert", Desc: "Convert one markdown file to a page", Flags: extractFlagsFromFlagSet(newConvertFlagSet(&convertFlags{})), FilePattern: "*.md,*.markdown"},
		{Name: "init", Desc: "Write a default md2site.yaml", Flags: extractFlagsFromFlagSet(newInitFlagSet(&initFlags{}))},
		{Name: "doctor", Desc: "Check the site setup", Flags: extractFlagsFromFlagSet(newDoctorFlagSet(&doctorFlags{}))},
		{Name: "completion", Desc: "Generate shell completion script", Args: shells},
		{Name: "version", Desc: "Show version information"},
	}

	names := make([]string, 0, len(cmds))
	for _, c := range cmds {
		names = append(names, c.Name)
	}
	return append(cmds, commandDef{Name: "help", Desc: "Show help for a command", Args: names})
}

// GenerateCompletion writes shell completion script to w.
// Returns error if shell is unsupported or write fails.
func GenerateCompletion(w io.Writer, shell Shell) error {
	var b strings.Builder
	cmds := getCommands()

	switch shell {
	case ShellBash:
		writeBash(&b, cmds)
	case ShellZsh:
		writeZsh(&b, cmds)
	case ShellFish:
		writeFish(&b, cmds)
	case ShellPowerShell:
		writePowerShell(&b, cmds)
	default:
		return fmt.Errorf("%w: %q (supported: bash, zsh, fish, powershell)", ErrUnsupportedShell, shell)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// flagNames returns "--long" and "-s" spellings of every flag.
func flagNames(flags []flagDef) []string {
	var names []string
	for _, f := range flags {
		names = append(names, "--"+f.Long)
		if f.Short != "" {
			names = append(names, "-"+f.Short)
		}
	}
	return names
}

// flagPattern returns the bash case pattern matching f, e.g. "--output|-o".
func flagPattern(f flagDef) string {
	if f.Short == "" {
		return "--" + f.Long
	}
	return "--" + f.Long + "|-" + f.Short
}

func writeBash(b *strings.Builder, cmds []commandDef) {
	names := make([]string, len(cmds))
	for i, c := range cmds {
		names[i] = c.Name
	}

	b.WriteString("# bash completion for md2site\n")
	b.WriteString("_md2site_completions() {\n")
	b.WriteString("    local cur prev cmd\n")
	b.WriteString("    cur=\"${COMP_WORDS[COMP_CWORD]}\"\n")
	b.WriteString("    prev=\"${COMP_WORDS[COMP_CWORD-1]}\"\n\n")
	b.WriteString("    if [[ ${COMP_CWORD} -eq 1 ]]; then\n")
	fmt.Fprintf(b, "        COMPREPLY=($(compgen -W \"%s\" -- \"${cur}\"))\n", strings.Join(names, " "))
	b.WriteString("        return\n")
	b.WriteString("    fi\n\n")
	b.WriteString("    cmd=\"${COMP_WORDS[1]}\"\n")
	b.WriteString("    case \"${cmd}\" in\n")

	for _, c := range cmds {
		fmt.Fprintf(b, "    %s)\n", c.Name)

		var valueFlags []flagDef
		for _, f := range c.Flags {
			if f.Type != flagBool {
				valueFlags = append(valueFlags, f)
			}
		}
		if len(valueFlags) > 0 {
			b.WriteString("        case \"${prev}\" in\n")
			for _, f := range valueFlags {
				fmt.Fprintf(b, "        %s)\n", flagPattern(f))
				switch f.Type {
				case flagEnum:
					fmt.Fprintf(b, "            COMPREPLY=($(compgen -W \"%s\" -- \"${cur}\"))\n", strings.Join(f.Values, " "))
				case flagFile:
					b.WriteString("            COMPREPLY=($(compgen -f -- \"${cur}\"))\n")
				case flagDir:
					b.WriteString("            COMPREPLY=($(compgen -d -- \"${cur}\"))\n")
				}
				b.WriteString("            return\n")
				b.WriteString("            ;;\n")
			}
			b.WriteString("        esac\n")
		}

		b.WriteString("        if [[ \"${cur}\" == -* ]]; then\n")
		fmt.Fprintf(b, "            COMPREPLY=($(compgen -W \"%s\" -- \"${cur}\"))\n", strings.Join(flagNames(c.Flags), " "))
		switch {
		case len(c.Args) > 0:
			b.WriteString("        else\n")
			fmt.Fprintf(b, "            COMPREPLY=($(compgen -W \"%s\" -- \"${cur}\"))\n", strings.Join(c.Args, " "))
		case c.FilePattern != "":
			b.WriteString("        else\n")
			b.WriteString("            COMPREPLY=($(compgen -f -- \"${cur}\"))\n")
		}
		b.WriteString("        fi\n")
		b.WriteString("        ;;\n")
	}

	b.WriteString("    esac\n")
	b.WriteString("}\n\n")
	b.WriteString("complete -F _md2site_completions md2site\n")
}

// zshEscape escapes text used inside a single-quoted _arguments spec.
func zshEscape(s string) string {
	r := strings.NewReplacer("'", `'\''`, "[", `\[`, "]", `\]`, ":", `\:`)
	return r.Replace(s)
}

// zshGlob turns "*.md,*.markdown" into "*.md *.markdown".
func zshGlob(pattern string) string {
	return strings.ReplaceAll(pattern, ",", " ")
}

func writeZsh(b *strings.Builder, cmds []commandDef) {
	b.WriteString("#compdef md2site\n\n")
	b.WriteString("_md2site() {\n")
	b.WriteString("    local -a commands\n")
	b.WriteString("    commands=(\n")
	for _, c := range cmds {
		fmt.Fprintf(b, "        '%s:%s'\n", c.Name, zshEscape(c.Desc))
	}
	b.WriteString("    )\n\n")
	b.WriteString("    if (( CURRENT == 2 )); then\n")
	b.WriteString("        _describe 'command' commands\n")
	b.WriteString("        return\n")
	b.WriteString("    fi\n\n")
	b.WriteString("    case \"${words[2]}\" in\n")

	for _, c := range cmds {
		fmt.Fprintf(b, "    %s)\n", c.Name)
		b.WriteString("        _arguments")
		for _, f := range c.Flags {
			var action string
			switch f.Type {
			case flagBool:
			case flagEnum:
				action = ":value:(" + strings.Join(f.Values, " ") + ")"
			case flagFile:
				action = ":file:_files -g \"" + zshGlob(f.FileGlob) + "\""
			case flagDir:
				action = ":directory:_files -/"
			default:
				action = ":value: "
			}
			desc := zshEscape(f.Desc)
			if f.Short != "" {
				fmt.Fprintf(b, " \\\n            '(-%s --%s)'{-%s,--%s}'[%s]%s'", f.Short, f.Long, f.Short, f.Long, desc, action)
			} else {
				fmt.Fprintf(b, " \\\n            '--%s[%s]%s'", f.Long, desc, action)
			}
		}
		switch {
		case len(c.Args) > 0:
			fmt.Fprintf(b, " \\\n            '*:argument:(%s)'", strings.Join(c.Args, " "))
		case c.FilePattern != "":
			fmt.Fprintf(b, " \\\n            '*:file:_files -g \"%s\"'", zshGlob(c.FilePattern))
		}
		b.WriteString("\n        ;;\n")
	}

	b.WriteString("    esac\n")
	b.WriteString("}\n\n")
	b.WriteString("_md2site \"$@\"\n")
}

// fishEscape escapes text used inside a single-quoted fish string.
func fishEscape(s string) string {
	return strings.NewReplacer(`\`, `\\`, "'", `\'`).Replace(s)
}

func writeFish(b *strings.Builder, cmds []commandDef) {
	b.WriteString("# fish completion for md2site\n\n")
	b.WriteString("function __fish_md2site_needs_command\n")
	b.WriteString("    set -l cmd (commandline -opc)\n")
	b.WriteString("    test (count $cmd) -eq 1\n")
	b.WriteString("end\n\n")
	b.WriteString("function __fish_md2site_using_command\n")
	b.WriteString("    set -l cmd (commandline -opc)\n")
	b.WriteString("    test (count $cmd) -gt 1; and test $cmd[2] = $argv[1]\n")
	b.WriteString("end\n\n")
	b.WriteString("complete -c md2site -f\n")

	for _, c := range cmds {
		fmt.Fprintf(b, "complete -c md2site -n __fish_md2site_needs_command -a %s -d '%s'\n", c.Name, fishEscape(c.Desc))
	}

	for _, c := range cmds {
		cond := fmt.Sprintf("-n '__fish_md2site_using_command %s'", c.Name)
		for _, f := range c.Flags {
			line := fmt.Sprintf("complete -c md2site %s", cond)
			if f.Short != "" {
				line += " -s " + f.Short
			}
			line += " -l " + f.Long
			switch f.Type {
			case flagBool:
			case flagEnum:
				line += fmt.Sprintf(" -x -a '%s'", strings.Join(f.Values, " "))
			case flagFile:
				line += " -r -F"
			case flagDir:
				line += " -x -a '(__fish_complete_directories)'"
			default:
				line += " -x"
			}
			line += fmt.Sprintf(" -d '%s'", fishEscape(f.Desc))
			b.WriteString(line + "\n")
		}
		switch {
		case len(c.Args) > 0:
			fmt.Fprintf(b, "complete -c md2site %s -a '%s'\n", cond, strings.Join(c.Args, " "))
		case c.FilePattern != "":
			fmt.Fprintf(b, "complete -c md2site %s -F\n", cond)
		}
	}
}

// psQuote quotes s as a PowerShell single-quoted string.
func psQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// psList renders values as a PowerShell array literal.
func psList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = psQuote(v)
	}
	return "@(" + strings.Join(quoted, ", ") + ")"
}

func writePowerShell(b *strings.Builder, cmds []commandDef) {
	b.WriteString("# PowerShell completion for md2site\n")
	b.WriteString("Register-ArgumentCompleter -Native -CommandName md2site -ScriptBlock {\n")
	b.WriteString("    param($wordToComplete, $commandAst, $cursorPosition)\n\n")
	b.WriteString("    $elements = @($commandAst.CommandElements | ForEach-Object { $_.ToString() })\n")
	b.WriteString("    $commands = [ordered]@{\n")
	for _, c := range cmds {
		fmt.Fprintf(b, "        %s = %s\n", psQuote(c.Name), psQuote(c.Desc))
	}
	b.WriteString("    }\n\n")
	b.WriteString("    if ($elements.Count -le 1 -or ($elements.Count -eq 2 -and $wordToComplete -ne '')) {\n")
	b.WriteString("        $commands.GetEnumerator() | Where-Object { $_.Key -like \"$wordToComplete*\" } | ForEach-Object {\n")
	b.WriteString("            [System.Management.Automation.CompletionResult]::new($_.Key, $_.Key, 'ParameterValue', $_.Value)\n")
	b.WriteString("        }\n")
	b.WriteString("        return\n")
	b.WriteString("    }\n\n")

	b.WriteString("    $flags = switch ($elements[1]) {\n")
	for _, c := range cmds {
		names := flagNames(c.Flags)
		sort.Strings(names)
		fmt.Fprintf(b, "        %s { %s }\n", psQuote(c.Name), psList(names))
	}
	b.WriteString("        default { @() }\n")
	b.WriteString("    }\n")
	b.WriteString("    $values = switch ($elements[1]) {\n")
	for _, c := range cmds {
		if len(c.Args) > 0 {
			fmt.Fprintf(b, "        %s { %s }\n", psQuote(c.Name), psList(c.Args))
		}
	}
	b.WriteString("        default { @() }\n")
	b.WriteString("    }\n\n")
	b.WriteString("    if ($wordToComplete -like '-*') {\n")
	b.WriteString("        $flags | Where-Object { $_ -like \"$wordToComplete*\" } | ForEach-Object {\n")
	b.WriteString("            [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterName', $_)\n")
	b.WriteString("        }\n")
	b.WriteString("        return\n")
	b.WriteString("    }\n")
	b.WriteString("    $values | Where-Object { $_ -like \"$wordToComplete*\" } | ForEach-Object {\n")
	b.WriteString("        [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)\n")
	b.WriteString("    }\n")
	b.WriteString("}\n")
}

// runCompletion handles the completion command.
func runCompletion(args []string, env *Environment) error {
	if len(args) == 0 {
		printCompletionUsage(env.Stdout)
		return nil
	}

	return GenerateCompletion(env.Stdout, Shell(args[0]))
}

// printCompletionUsage prints help for the completion command.
func printCompletionUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2site completion <shell>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate shell completion script for the specified shell.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Supported shells:")
	fmt.Fprintln(w, "  bash        Bash completion script")
	fmt.Fprintln(w, "  zsh         Zsh completion script")
	fmt.Fprintln(w, "  fish        Fish completion script")
	fmt.Fprintln(w, "  powershell  PowerShell completion script")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Installation:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Bash:")
	fmt.Fprintln(w, "    # Add to ~/.bashrc:")
	fmt.Fprintln(w, "    eval \"$(md2site completion bash)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Zsh:")
	fmt.Fprintln(w, "    # Add to ~/.zshrc (before compinit):")
	fmt.Fprintln(w, "    eval \"$(md2site completion zsh)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Fish:")
	fmt.Fprintln(w, "    md2site completion fish > ~/.config/fish/completions/md2site.fish")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  PowerShell:")
	fmt.Fprintln(w, "    # Add to $PROFILE:")
	fmt.Fprintln(w, "    md2site completion powershell | Out-String | Invoke-Expression")
}
