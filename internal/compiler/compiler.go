// Package compiler implements Pyro's single-pass Pratt compiler (§4.6):
// source tokens go in, a bytecode object.Fn comes out, with no explicit
// AST in between. It keeps kristofer/smog's compiler shape — one Compiler
// walking a token stream and emitting straight into a growing bytecode
// buffer — but replaces smog's two-phase parser-then-compiler design
// (pkg/ast + pkg/parser + pkg/compiler) with a single recursive-descent
// Pratt parser that both parses and emits in the same call, the way
// spec.md §4.6 describes: "The compiler walks the token stream and emits
// bytecode directly into a growing Fn object; there is no explicit AST."
package compiler

import (
	"fmt"

	"github.com/pyro-lang/pyro/internal/bytecode"
	"github.com/pyro-lang/pyro/internal/heap"
	"github.com/pyro-lang/pyro/internal/lexer"
	"github.com/pyro-lang/pyro/internal/object"
	"github.com/pyro-lang/pyro/internal/panicx"
)

// Precedence levels, lowest to highest, for the Pratt expression parser.
type precedence int

const (
	precNone       precedence = iota
	precAssignment            // =
	precOr                    // or
	precAnd                   // and
	precEquality              // == !=
	precComparison            // < <= > >= is in
	precBitOr                 // |
	precBitXor                // ^
	precBitAnd                // &
	precShift                 // << >>
	precRange                 // ..
	precTerm                  // + -
	precFactor                // * / // %
	precPower                 // ** (right-assoc)
	precUnary                 // - ! ~ not
	precCall                  // . : ( [ (postfix)
	precPrimary
)

type (
	prefixFn func(canAssign bool)
	infixFn  func(canAssign bool)
)

type rule struct {
	prefix     prefixFn
	infix      infixFn
	precedence precedence
}

// local is one entry in a CompilerFrame's locals array (§4.6 "a stack of
// CompilerFrame structs tracks local variables by name and scope depth").
type local struct {
	name       string
	depth      int
	isCaptured bool
}

// upvalueSlot mirrors object.UpvalueRef: is-local + slot/parent-index pair
// recorded while resolving a name that escapes the current frame.
type upvalueSlot struct {
	isLocal bool
	index   int
}

type loopState struct {
	continueTarget int
	breakJumps     []int
	scopeDepth     int
}

// classState tracks the class body currently being compiled, so `self`/
// `super` resolve correctly and INHERIT can be emitted once the
// superclass expression has been compiled (§4.6 "current class context").
type classState struct {
	enclosing    *classState
	hasSuperclass bool
}

// frame is one CompilerFrame: the locals/upvalues/loop state for one
// function body being compiled. Frames form a stack via enclosing,
// mirroring how the lexical scopes of nested `def` literals nest.
type frame struct {
	enclosing *frame
	fn        *object.Fn
	fnKind    fnKind

	locals     []local
	scopeDepth int
	upvalues   []upvalueSlot

	loops []*loopState
}

type fnKind int

const (
	fnKindScript fnKind = iota
	fnKindFunction
	fnKindMethod
	fnKindInitializer
)

// Compiler is Pyro's single-pass Pratt compiler. One Compiler compiles one
// source unit (a file, a REPL chunk, or an imported module body) into a
// top-level zero-arg object.Fn that the VM loads as a closure (§4.6/§4.7).
type Compiler struct {
	lx       *lexer.Lexer
	alloc    *heap.Allocator
	sourceID string

	prev Token
	cur  Token

	cf    *frame
	class *classState

	lastLine int
	err      *panicx.Panic
}

// Token is a thin alias kept local to this package so callers don't need
// to import internal/lexer just to read compiler error positions.
type Token = lexer.Token

// Compile lexes and compiles src in one pass, returning the top-level
// script function. The returned Fn has arity 0 and is meant to be wrapped
// in a Closure and called against a module (§4.7 "The top-level program
// is compiled into a zero-arg function").
func Compile(src, sourceID string, alloc *heap.Allocator) (*object.Fn, *panicx.Panic) {
	c := &Compiler{
		lx:       lexer.New(src, sourceID),
		alloc:    alloc,
		sourceID: sourceID,
	}
	c.cf = &frame{fn: object.NewFn("$main"), fnKind: fnKindScript}
	c.cf.locals = append(c.cf.locals, local{name: "", depth: 0}) // slot 0 reserved for the running closure/self

	c.advance()
	for !c.check(lexer.TokenEOF) {
		c.declaration()
		if c.err != nil {
			return nil, c.err
		}
	}
	c.emitReturn()
	if c.err != nil {
		return nil, c.err
	}
	return c.cf.fn, nil
}

// pushFrame opens a fresh compiler frame for a nested function body named
// name (a def, an anonymous function or a method); popFrame closes it and
// returns the finished Fn (§4.6).
func (c *Compiler) pushFrame(name string, kind fnKind) {
	fn := object.NewFn(name)
	c.cf = &frame{enclosing: c.cf, fn: fn, fnKind: kind}
	selfName := ""
	if kind == fnKindMethod || kind == fnKindInitializer {
		selfName = "self"
	}
	c.cf.locals = append(c.cf.locals, local{name: selfName, depth: 0})
}

func (c *Compiler) popFrame() *object.Fn {
	c.emitReturn()
	fn := c.cf.fn
	fn.UpvalueCount = len(c.cf.upvalues)
	c.cf = c.cf.enclosing
	return fn
}

// ---- token stream plumbing ----

func (c *Compiler) advance() {
	c.prev = c.cur
	for {
		c.cur = c.lx.NextToken()
		if c.cur.Type != lexer.TokenIllegal {
			break
		}
		c.errorAt(c.cur, "unexpected character %q", c.cur.Literal)
	}
}

func (c *Compiler) check(t lexer.TokenType) bool { return c.cur.Type == t }

func (c *Compiler) match(t lexer.TokenType) bool {
	if !c.check(t) {
		return false
	}
	c.advance()
	return true
}

func (c *Compiler) expect(t lexer.TokenType, msg string) {
	if c.cur.Type == t {
		c.advance()
		return
	}
	c.errorAt(c.cur, "%s", msg)
}

func (c *Compiler) errorAt(tok Token, format string, args ...interface{}) {
	if c.err != nil {
		return
	}
	c.err = panicx.NewSyntaxError(c.sourceID, tok.Line, format, args...)
}

// ---- bytecode emission ----

func (c *Compiler) emitByte(b byte) {
	c.cf.fn.Code = append(c.cf.fn.Code, b)
	c.recordLine()
}

func (c *Compiler) emitOp(op bytecode.Opcode) { c.emitByte(byte(op)) }

func (c *Compiler) emitU16(v int) {
	c.emitByte(byte(v >> 8))
	c.emitByte(byte(v))
}

func (c *Compiler) emitOpU16(op bytecode.Opcode, v int) {
	c.emitOp(op)
	c.emitU16(v)
}

func (c *Compiler) emitOpByte(op bytecode.Opcode, v byte) {
	c.emitOp(op)
	c.emitByte(v)
}

// recordLine appends a run-length entry to the line table only when the
// current source line differs from the last recorded one, matching the
// compressed format §4.6 describes ("stores bytes-per-line as a
// compressed uint16 array").
func (c *Compiler) recordLine() {
	line := c.prev.Line
	if line == 0 {
		line = c.cur.Line
	}
	if line == c.lastLine {
		return
	}
	c.lastLine = line
	c.cf.fn.Lines = append(c.cf.fn.Lines, object.LineEntry{Offset: len(c.cf.fn.Code) - 1, Line: line})
}

func (c *Compiler) emitReturn() {
	if c.cf.fnKind == fnKindInitializer {
		c.emitOpByte(bytecode.OpGetLocal, 0)
	} else {
		c.emitOp(bytecode.OpNull)
	}
	c.emitOp(bytecode.OpReturn)
}

// emitJump writes a placeholder 2-byte operand and returns its offset for
// later patching — jump patching is "always backwards-resolved" per §4.6:
// placeholder now, patch once the jump target is known.
func (c *Compiler) emitJump(op bytecode.Opcode) int {
	c.emitOp(op)
	pos := len(c.cf.fn.Code)
	c.emitU16(0xFFFF)
	return pos
}

func (c *Compiler) patchJump(pos int) {
	offset := len(c.cf.fn.Code) - pos - 2
	c.cf.fn.Code[pos] = byte(offset >> 8)
	c.cf.fn.Code[pos+1] = byte(offset)
}

func (c *Compiler) emitLoop(start int) {
	c.emitOp(bytecode.OpJumpBack)
	offset := len(c.cf.fn.Code) - start + 2
	c.emitU16(offset)
}

// addConstant deduplicates via linear scan per §4.6 ("Constant table is
// per-function; deduplication via scan (small N)").
func (c *Compiler) addConstant(v object.Value) int {
	for i, existing := range c.cf.fn.Constants {
		if sameConstant(existing, v) {
			return i
		}
	}
	c.cf.fn.Constants = append(c.cf.fn.Constants, v)
	return len(c.cf.fn.Constants) - 1
}

func sameConstant(a, b object.Value) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	if a.Kind() == object.KindObj {
		as, aok := a.AsObj().(*object.Str)
		bs, bok := b.AsObj().(*object.Str)
		if aok && bok {
			return string(as.Bytes()) == string(bs.Bytes())
		}
		return a.AsObj() == b.AsObj()
	}
	return object.Eq(a, b)
}

func (c *Compiler) internString(s string) int {
	str := c.alloc.Intern([]byte(s))
	return c.addConstant(object.FromObj(str))
}

func (c *Compiler) emitConstant(v object.Value) {
	c.emitOpU16(bytecode.OpConstant, c.addConstant(v))
}

// ---- errors ----

func errf(format string, args ...interface{}) error { return fmt.Errorf(format, args...) }
