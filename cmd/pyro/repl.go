package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/peterh/liner"

	"github.com/pyro-lang/pyro/internal/compiler"
)

const historyFileName = ".pyro_history"

// isStdoutTTY/isStderrTTY gate REPL coloring and prompt behavior on
// whether the corresponding stream is an actual terminal (§6, ambient
// stack: "only colorize when stdout is a terminal").
func isStdoutTTY() bool { return isatty.IsTerminal(os.Stdout.Fd()) }
func isStderrTTY() bool { return isatty.IsTerminal(os.Stderr.Fd()) }

// runREPL implements the bare `pyro` invocation with no file argument
// (§6 "with no file, open REPL"): a persistent VM evaluating one
// expression or statement per line, echoing its result the way
// kristofer/smog's `smog repl` did, but reading input through
// github.com/peterh/liner for history and line editing instead of a bare
// bufio.Scanner.
func runREPL(opts sharedOpts) int {
	machine := newSession(opts, "<repl>", nil)

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	historyPath := historyFilePath()
	if f, err := os.Open(historyPath); err == nil {
		line.ReadHistory(f)
		f.Close()
	}

	prompt := "pyro> "
	banner := fmt.Sprintf("Pyro %s", version)
	if isStdoutTTY() {
		banner = color.New(color.FgCyan, color.Bold).Sprint(banner)
	}
	fmt.Println(banner)
	fmt.Println("Type :quit or :exit to leave, :help for help.")

	counter := 0
	for {
		input, err := line.Prompt(prompt)
		if err != nil { // liner.ErrPromptAborted or io.EOF
			break
		}
		trimmed := strings.TrimSpace(input)
		if trimmed == "" {
			continue
		}
		line.AppendHistory(input)

		switch trimmed {
		case ":quit", ":exit":
			saveHistory(line, historyPath)
			return 0
		case ":help":
			fmt.Println("Enter Pyro statements or expressions, terminated by a semicolon.")
			continue
		}

		counter++
		sourceID := fmt.Sprintf("<repl:%d>", counter)
		fn, p := compiler.Compile(trimmed, sourceID, machine.Alloc)
		if p != nil {
			printReplError(p.Format())
			continue
		}
		if _, p := machine.Run(fn, sourceID); p != nil && !machine.ExitRequested {
			printReplError(p.Format())
		}
		if machine.ExitRequested {
			saveHistory(line, historyPath)
			return machine.ExitCode
		}
	}

	saveHistory(line, historyPath)
	return 0
}

func printReplError(msg string) {
	if isStderrTTY() {
		color.New(color.FgRed).Fprintln(os.Stderr, msg)
		return
	}
	fmt.Fprintln(os.Stderr, msg)
}

func historyFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return historyFileName
	}
	return filepath.Join(home, historyFileName)
}

func saveHistory(line *liner.State, path string) {
	if f, err := os.Create(path); err == nil {
		line.WriteHistory(f)
		f.Close()
	}
}
