// Package panicx implements Pyro's error/panic taxonomy: the small set of
// error kinds every runtime failure is tagged with, and the hard-panic rule
// that makes a handful of catastrophic failures uncatchable (§7).
package panicx

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind is the small integer error code carried alongside every panic
// message (§7 "Error taxonomy").
type Kind int

const (
	Error Kind = iota
	OutOfMemory
	OsError
	ArgsError
	AssertionFailed
	NameError
	ValueError
	TypeError
	ModuleNotFound
	SyntaxError
)

func (k Kind) String() string {
	switch k {
	case Error:
		return "Error"
	case OutOfMemory:
		return "OutOfMemory"
	case OsError:
		return "OsError"
	case ArgsError:
		return "ArgsError"
	case AssertionFailed:
		return "AssertionFailed"
	case NameError:
		return "NameError"
	case ValueError:
		return "ValueError"
	case TypeError:
		return "TypeError"
	case ModuleNotFound:
		return "ModuleNotFound"
	case SyntaxError:
		return "SyntaxError"
	default:
		return "Error"
	}
}

// Frame is one entry in the stack trace captured at the point a Panic was
// raised, reconstructed from each function's compressed line-number table.
type Frame struct {
	FnName   string
	SourceID string
	Line     int
}

// Panic is a structured runtime failure: a kind, a formatted message, the
// call stack at the point it was raised, and whether it is catchable by a
// surrounding TRY. Hard panics are reserved for memory-allocation failure
// while building the error tuple itself and invalid-opcode assertions; they
// skip TRY entirely and terminate the process (§7 "Hard panic").
type Panic struct {
	Kind       Kind
	Message    string
	Stack      []Frame
	Hard       bool
	underlying error
}

// New constructs a catchable Panic, wrapping its message with a Go-level
// stack via github.com/pkg/errors. Unwrap exposes that cause; the CLI
// prints only the Pyro-level trace (Format).
func New(kind Kind, format string, args ...interface{}) *Panic {
	msg := fmt.Sprintf(format, args...)
	return &Panic{
		Kind:       kind,
		Message:    msg,
		underlying: errors.WithStack(errors.New(msg)),
	}
}

// NewHard constructs an uncatchable panic.
func NewHard(kind Kind, format string, args ...interface{}) *Panic {
	p := New(kind, format, args...)
	p.Hard = true
	return p
}

// NewSyntaxError constructs a SyntaxError panic carrying the source id and
// line at which the lexer or compiler rejected the input (§7 "Syntax
// errors carry the source id and line number").
func NewSyntaxError(sourceID string, line int, format string, args ...interface{}) *Panic {
	p := New(SyntaxError, format, args...)
	p.Stack = []Frame{{SourceID: sourceID, Line: line}}
	return p
}

func (p *Panic) Error() string { return p.Message }

// Unwrap exposes the github.com/pkg/errors-wrapped cause, which carries
// the Go-level stack, for errors.Is/As.
func (p *Panic) Unwrap() error { return p.underlying }

func (p *Panic) PushFrame(f Frame) {
	p.Stack = append(p.Stack, f)
}
