// Command pyro is the Pyro language driver: run a script, drop into the
// REPL, or invoke one of the check/test/time subcommands. It owns nothing
// about language semantics itself — every subcommand just wires a fresh
// internal/heap.Allocator, internal/loader.Loader and internal/vm.VM
// together and hands source text to internal/compiler (§6 "CLI surface").
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

const version = "0.1.0"

const helpText = `Pyro %s

  The Pyro programming language.

Usage:
  pyro [file] [args...]
  pyro <command>
  pyro help <command>

Arguments:
  [file]                     Script to run. Opens the REPL if omitted.
  [args...]                  Extra arguments passed to the script as $args.

Options:
  -i, --import-root <dir>    Adds a directory to the list of import roots.
                             (This option can be specified multiple times.)
  -m, --max-memory <size>    Sets the maximum memory allocation in bytes.
                             (Append 'K' for KB, 'M' for MB, 'G' for GB.)
  -s, --stack-size <size>    Sets the stack size in bytes.
                             (Append 'K' for KB, 'M' for MB, 'G' for GB.)

Flags:
  -h, --help                 Print this help text and exit.
  -v, --version              Print the version number and exit.

Commands:
  check                      Compile files without executing.
  test                       Run unit tests.
  time                       Run timing functions.

Command Help:
  help <command>             Print the specified command's help text.
`

const checkHelpText = `Usage: pyro [options] check [files]

  Attempts to compile but not execute the specified files. Can be used to
  check files for syntax errors.

  Options are read only before the command name; every argument after it
  is taken as a file name.

Arguments:
  [files]              Files to compile.

Command Help:
  pyro help check      Print this help text.
`

const testHelpText = `Usage: pyro [options] test [files]

  This command runs unit tests. Each input file is executed in a new VM
  instance.

  For each input file, Pyro first executes the file, then runs any test
  functions it contains, i.e. functions whose names begin with '$test_'.
  A test function passes if it executes without panicking.

  Options are read only before the command name; every argument after it
  is taken as a file name.

Arguments:
  [files]                    Files to test.

Options:
  -i, --import-root <dir>    Adds a directory to the list of import roots.
  -m, --max-memory <size>    Sets the maximum memory allocation in bytes.
  -s, --stack-size <size>    Sets the stack size in bytes.

Flags:
      --verbose              Also print a PASS line for each passing test.

Command Help:
  pyro help test             Print this help text.
`

const timeHelpText = `Usage: pyro [options] time [files]

  This command runs timing functions. Each input file is executed in a new
  VM instance.

  For each input file, Pyro first executes the file, then runs any timing
  functions it contains, i.e. functions whose names begin with '$time_'.

  By default Pyro runs each timing function 10 times, then prints the mean
  execution time. The number of iterations can be customized using the
  -n/--num-runs option.

  Options are read only before the command name; every argument after it
  is taken as a file name.

Arguments:
  [files]                    Files to time.

Options:
  -i, --import-root <dir>    Adds a directory to the list of import roots.
  -m, --max-memory <size>    Sets the maximum memory allocation in bytes.
  -n, --num-runs <int>       Number of times to run each function.
  -s, --stack-size <size>    Sets the stack size in bytes.

Command Help:
  pyro help time             Print this help text.
`

// sharedOpts holds the flags common to every subcommand and the bare
// `pyro [file]` form (§6 "Shared options").
type sharedOpts struct {
	importRoots []string
	maxMemory   uint64
	stackSize   uint64
	numRuns     int
	verbose     bool
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	opts, rest, helpFlag, versionFlag, err := parseSharedFlags(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 2
	}

	if versionFlag {
		fmt.Printf("Pyro %s\n", version)
		return 0
	}

	if len(rest) > 0 && rest[0] == "help" {
		printCommandHelp(rest[1:])
		return 0
	}

	if helpFlag {
		printUsage()
		return 0
	}

	if len(rest) == 0 {
		return runREPL(opts)
	}

	switch rest[0] {
	case "check":
		return cmdCheck(opts, rest[1:])
	case "test":
		return cmdTest(opts, rest[1:])
	case "time":
		return cmdTime(opts, rest[1:])
	default:
		return cmdRun(opts, rest[0], rest[1:])
	}
}

func printUsage() {
	fmt.Printf(helpText, version)
}

func printCommandHelp(args []string) {
	if len(args) == 0 {
		printUsage()
		return
	}
	switch args[0] {
	case "check":
		fmt.Print(checkHelpText)
	case "test":
		fmt.Print(testHelpText)
	case "time":
		fmt.Print(timeHelpText)
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n", args[0])
	}
}

// parseSharedFlags walks args collecting -i/-m/-s/-h/-v (and their long
// forms), stopping at the first token that isn't a recognized option —
// a command name or a file path — the same "first positional argument
// ends option parsing" rule original_source/cli/main.c sets with
// ap_first_pos_arg_ends_options(parser, true).
func parseSharedFlags(args []string) (opts sharedOpts, rest []string, helpFlag, versionFlag bool, err error) {
	opts.numRuns = 10

	i := 0
	for i < len(args) {
		a := args[i]
		switch {
		case a == "-h" || a == "--help":
			helpFlag = true
			i++
		case a == "-v" || a == "--version":
			versionFlag = true
			i++
		case a == "--verbose":
			opts.verbose = true
			i++
		case a == "-i" || a == "--import-root":
			val, n, e := requireValue(args, i, a)
			if e != nil {
				return opts, nil, false, false, e
			}
			opts.importRoots = append(opts.importRoots, val)
			i = n
		case a == "-m" || a == "--max-memory":
			val, n, e := requireValue(args, i, a)
			if e != nil {
				return opts, nil, false, false, e
			}
			size, e := humanize.ParseBytes(val)
			if e != nil {
				return opts, nil, false, false, fmt.Errorf("invalid %s value %q: %w", a, val, e)
			}
			opts.maxMemory = size
			i = n
		case a == "-s" || a == "--stack-size":
			val, n, e := requireValue(args, i, a)
			if e != nil {
				return opts, nil, false, false, e
			}
			size, e := humanize.ParseBytes(val)
			if e != nil {
				return opts, nil, false, false, fmt.Errorf("invalid %s value %q: %w", a, val, e)
			}
			opts.stackSize = size
			i = n
		case a == "-n" || a == "--num-runs":
			val, n, e := requireValue(args, i, a)
			if e != nil {
				return opts, nil, false, false, e
			}
			num, e := strconv.Atoi(val)
			if e != nil {
				return opts, nil, false, false, fmt.Errorf("invalid %s value %q: not an integer", a, val)
			}
			opts.numRuns = num
			i = n
		case strings.HasPrefix(a, "-") && a != "-":
			return opts, nil, false, false, fmt.Errorf("unrecognized option %q", a)
		default:
			rest = args[i:]
			return opts, rest, helpFlag, versionFlag, nil
		}
	}
	return opts, rest, helpFlag, versionFlag, nil
}

func requireValue(args []string, i int, flag string) (string, int, error) {
	if i+1 >= len(args) {
		return "", 0, fmt.Errorf("%s requires an argument", flag)
	}
	return args[i+1], i + 2, nil
}

// importRootsFor merges -i flags with PYRO_IMPORT_ROOTS (§6 "Environment"),
// always including the current working directory so scripts can import
// siblings by bare name.
func importRootsFor(opts sharedOpts) []string {
	roots := append([]string(nil), opts.importRoots...)
	if env := os.Getenv("PYRO_IMPORT_ROOTS"); env != "" {
		roots = append(roots, strings.Split(env, ":")...)
	}
	if cwd, err := os.Getwd(); err == nil {
		roots = append(roots, cwd)
	}
	return roots
}
