package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/pyro-lang/pyro/internal/compiler"
	"github.com/pyro-lang/pyro/internal/heap"
	"github.com/pyro-lang/pyro/internal/loader"
	"github.com/pyro-lang/pyro/internal/object"
	"github.com/pyro-lang/pyro/internal/panicx"
	"github.com/pyro-lang/pyro/internal/vm"
)

// newSession builds a fresh allocator/loader/VM for one run of one file,
// matching "each input file is executed in a new VM instance" (§6, `pyro
// test`/`pyro time` help text) — and for the single-file `pyro [file]`
// form too, since nothing in the core shares state across invocations.
func newSession(opts sharedOpts, scriptPath string, scriptArgs []string) *vm.VM {
	alloc := heap.NewAllocator(0, opts.maxMemory)
	root := object.NewModule(scriptPath)

	roots := importRootsFor(opts)
	ld := loader.New(alloc, root, roots)
	ld.RegisterNative("std", func(a *heap.Allocator) *object.Module {
		// The .pyro-sourced standard-library modules are external
		// collaborators (§1); this is the hook a future std/ package
		// would populate. $std resolves to this empty namespace until then.
		return object.NewModule("std")
	})

	machine := vm.New(alloc, ld)
	if opts.stackSize > 0 {
		machine.SetStackLimit(int(opts.stackSize / 16)) // approximate object.Value slot size
	}

	args := make([]object.Value, len(scriptArgs))
	for i, a := range scriptArgs {
		args[i] = object.FromObj(alloc.Intern([]byte(a)))
	}
	machine.SetGlobal("$args", object.FromObj(alloc.NewTup(args)))

	rootsVec := alloc.NewVec()
	for _, r := range roots {
		rootsVec.Append(object.FromObj(alloc.Intern([]byte(r))))
	}
	machine.SetGlobal("$roots", object.FromObj(rootsVec))

	if std, p := ld.Load(machine, []string{"std"}); p == nil {
		machine.SetGlobal("$std", object.FromObj(std))
	}

	return machine
}

// compileAndRun compiles src and runs it to completion against machine's
// module, reporting both compile-time and run-time panics uniformly. A
// $exit() call surfaces as a hard panic internally but isn't one of these
// reportable failures, so callers should check machine.ExitRequested first.
func compileAndRun(machine *vm.VM, src, sourceID string) *panicx.Panic {
	fn, p := compiler.Compile(src, sourceID, machine.Alloc)
	if p != nil {
		return p
	}
	_, p = machine.Run(fn, sourceID)
	if machine.ExitRequested {
		return nil
	}
	return p
}

func readSource(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func reportPanic(p *panicx.Panic) {
	msg := p.Format()
	if isStderrTTY() {
		color.New(color.FgRed, color.Bold).Fprint(os.Stderr, "error: ")
		fmt.Fprintf(os.Stderr, "%s\n", msg)
	} else {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	}
}

// cmdRun implements `pyro [flags] file [args...]` (§6): run the file, then
// call its $main() if one is defined.
func cmdRun(opts sharedOpts, path string, scriptArgs []string) int {
	src, err := readSource(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
		return 1
	}

	machine := newSession(opts, path, scriptArgs)
	if p := compileAndRun(machine, src, path); p != nil {
		reportPanic(p)
		return 1
	}
	if machine.ExitRequested {
		return machine.ExitCode
	}

	if main, ok := machine.Global("$main"); ok {
		if _, p := machine.CallValue(main, nil); p != nil {
			reportPanic(p)
			return 1
		}
		if machine.ExitRequested {
			return machine.ExitCode
		}
	}
	return 0
}

// cmdCheck implements `pyro check files...` (§6): compile only.
func cmdCheck(opts sharedOpts, files []string) int {
	if len(files) == 0 {
		fmt.Print(checkHelpText)
		return 2
	}
	status := 0
	for _, path := range files {
		src, err := readSource(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
			status = 1
			continue
		}
		alloc := heap.NewAllocator(0, opts.maxMemory)
		if _, p := compiler.Compile(src, path, alloc); p != nil {
			reportPanic(p)
			status = 1
		}
	}
	return status
}

// cmdTest implements `pyro test files...` (§6): execute each file, then
// invoke every global closure named $test_* with zero arguments.
func cmdTest(opts sharedOpts, files []string) int {
	if len(files) == 0 {
		fmt.Print(testHelpText)
		return 2
	}
	status := 0
	for _, path := range files {
		src, err := readSource(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
			status = 1
			continue
		}

		machine := newSession(opts, path, nil)
		if p := compileAndRun(machine, src, path); p != nil {
			reportPanic(p)
			status = 1
			continue
		}

		for _, name := range sortedTestNames(machine, "$test_") {
			fn, _ := machine.Global(name)
			if _, p := machine.CallValue(fn, nil); p != nil {
				status = 1
				fmt.Printf("FAIL %s: %s\n", name, p.Format())
			} else if opts.verbose {
				fmt.Printf("PASS %s\n", name)
			}
		}
	}
	return status
}

// cmdTime implements `pyro [-n N] time files...` (§6): like test, but runs
// $time_* functions opts.numRuns times and reports mean wall-clock. The run
// count comes from -n/--num-runs given before the command name.
func cmdTime(opts sharedOpts, files []string) int {
	if len(files) == 0 {
		fmt.Print(timeHelpText)
		return 2
	}
	status := 0
	for _, path := range files {
		src, err := readSource(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
			status = 1
			continue
		}

		machine := newSession(opts, path, nil)
		if p := compileAndRun(machine, src, path); p != nil {
			reportPanic(p)
			status = 1
			continue
		}

		for _, name := range sortedTestNames(machine, "$time_") {
			fn, _ := machine.Global(name)
			start := time.Now()
			ran := 0
			for ; ran < opts.numRuns; ran++ {
				if _, p := machine.CallValue(fn, nil); p != nil {
					reportPanic(p)
					status = 1
					break
				}
			}
			if ran == 0 {
				continue
			}
			mean := time.Since(start) / time.Duration(ran)
			fmt.Printf("%s: mean %s over %s runs\n", name, mean, humanize.Comma(int64(ran)))
		}
	}
	return status
}

// sortedTestNames returns every global whose name starts with prefix, in a
// stable order so repeated runs print tests in the same sequence.
func sortedTestNames(machine *vm.VM, prefix string) []string {
	var names []string
	for _, name := range machine.GlobalNames() {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	for i := 1; i < len(names); i++ {
		for j := i; j > 0 && names[j-1] > names[j]; j-- {
			names[j-1], names[j] = names[j], names[j-1]
		}
	}
	return names
}
