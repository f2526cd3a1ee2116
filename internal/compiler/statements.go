package compiler

import (
	"github.com/pyro-lang/pyro/internal/bytecode"
	"github.com/pyro-lang/pyro/internal/lexer"
)

// declaration dispatches a top-of-statement construct; synchronizing here
// is where a future multi-error recovery pass would resync on a syntax
// error, but single-pass compilation bails out on the first one (§4.6,
// §7 "Syntax errors... go through the panic machinery").
func (c *Compiler) declaration() {
	if c.err != nil {
		return
	}
	switch {
	case c.match(lexer.TokenPub):
		c.pubDeclaration()
	case c.match(lexer.TokenVar):
		c.varDeclaration(false)
	case c.match(lexer.TokenDef):
		c.funDeclaration(false)
	case c.match(lexer.TokenClass):
		c.classDeclaration(false)
	case c.match(lexer.TokenImport):
		c.importStatement()
	default:
		c.statement()
	}
}

// pubDeclaration compiles `pub var|def|class ...` (§4.9). The pub marker
// is parsed and then ignored: OP_DEFINE_GLOBAL records every top-level
// global on the enclosing module at runtime, so pub and non-pub names are
// equally visible to IMPORT_MEMBERS and to direct `module::name` access.
func (c *Compiler) pubDeclaration() {
	switch {
	case c.match(lexer.TokenVar):
		c.varDeclaration(true)
	case c.match(lexer.TokenDef):
		c.funDeclaration(true)
	case c.match(lexer.TokenClass):
		c.classDeclaration(true)
	default:
		c.errorAt(c.cur, "expected var, def, or class after pub")
	}
}

func (c *Compiler) varDeclaration(pub bool) {
	_ = pub
	name := c.parseVariableName("expected variable name")
	if c.match(lexer.TokenAssign) {
		c.expression()
	} else {
		c.emitOp(bytecode.OpNull)
	}
	c.consumeStatementEnd()
	c.defineVariable(name)
}

// parseVariableName consumes an identifier and, for a local, declares it
// immediately (shadowing is allowed within a new scope only); it returns
// the constant-pool index of the name for globals, or -1 for locals.
func (c *Compiler) parseVariableName(msg string) int {
	c.expect(lexer.TokenIdent, msg)
	name := c.prev.Literal
	if c.cf.scopeDepth > 0 {
		c.declareLocal(name)
		return -1
	}
	return c.internString(name)
}

func (c *Compiler) declareLocal(name string) {
	for i := len(c.cf.locals) - 1; i >= 0; i-- {
		l := c.cf.locals[i]
		if l.depth != -1 && l.depth < c.cf.scopeDepth {
			break
		}
		if l.name == name {
			c.errorAt(c.prev, "variable %q already declared in this scope", name)
			return
		}
	}
	c.cf.locals = append(c.cf.locals, local{name: name, depth: c.cf.scopeDepth})
}

func (c *Compiler) defineVariable(globalNameIdx int) {
	if c.cf.scopeDepth > 0 {
		return // local: value is already sitting on the stack in its slot
	}
	c.emitOpU16(bytecode.OpDefineGlobal, globalNameIdx)
}

func (c *Compiler) statement() {
	switch {
	case c.match(lexer.TokenEcho):
		c.echoStatement()
	case c.match(lexer.TokenIf):
		c.ifStatement()
	case c.match(lexer.TokenWhile):
		c.whileStatement()
	case c.match(lexer.TokenLoop):
		c.loopStatement()
	case c.match(lexer.TokenFor):
		c.forStatement()
	case c.match(lexer.TokenReturn):
		c.returnStatement()
	case c.match(lexer.TokenBreak):
		c.breakStatement()
	case c.match(lexer.TokenContinue):
		c.continueStatement()
	case c.match(lexer.TokenAssert):
		c.assertStatement()
	case c.match(lexer.TokenLBrace):
		c.beginScope()
		c.block()
		c.endScope()
	default:
		c.expressionStatement()
	}
}

func (c *Compiler) consumeStatementEnd() {
	c.match(lexer.TokenSemicolon)
}

func (c *Compiler) echoStatement() {
	c.expression()
	c.emitOp(bytecode.OpEcho)
	c.consumeStatementEnd()
}

func (c *Compiler) expressionStatement() {
	c.expression()
	c.emitOp(bytecode.OpPop)
	c.consumeStatementEnd()
}

func (c *Compiler) assertStatement() {
	c.expression()
	c.emitOpU16(bytecode.OpAssert, c.internString(c.sourceID))
	c.consumeStatementEnd()
}

func (c *Compiler) block() {
	for !c.check(lexer.TokenRBrace) && !c.check(lexer.TokenEOF) {
		c.declaration()
		if c.err != nil {
			return
		}
	}
	c.expect(lexer.TokenRBrace, "expected '}' to close block")
}

func (c *Compiler) beginScope() { c.cf.scopeDepth++ }

// endScope pops every local declared at-or-below the scope being closed,
// closing any that were captured by a nested closure (§4.2/§4.5:
// "matched by RETURN or by stack unwinding... CLOSE_UPVALUE"). Emitted
// bytecode is never rewound even though the compiler's own locals array
// is (§8 property 4).
func (c *Compiler) endScope() {
	c.cf.scopeDepth--
	for len(c.cf.locals) > 0 && c.cf.locals[len(c.cf.locals)-1].depth > c.cf.scopeDepth {
		last := c.cf.locals[len(c.cf.locals)-1]
		if last.isCaptured {
			c.emitOp(bytecode.OpCloseUpvalue)
		} else {
			c.emitOp(bytecode.OpPop)
		}
		c.cf.locals = c.cf.locals[:len(c.cf.locals)-1]
	}
}

func (c *Compiler) ifStatement() {
	c.expect(lexer.TokenLParen, "expected '(' after if")
	c.expression()
	c.expect(lexer.TokenRParen, "expected ')' after condition")

	thenJump := c.emitJump(bytecode.OpPopJumpIfFalse)
	c.statement()

	elseJump := c.emitJump(bytecode.OpJump)
	c.patchJump(thenJump)

	if c.match(lexer.TokenElse) {
		c.statement()
	}
	c.patchJump(elseJump)
}

func (c *Compiler) pushLoop() *loopState {
	ls := &loopState{scopeDepth: c.cf.scopeDepth}
	c.cf.loops = append(c.cf.loops, ls)
	return ls
}

func (c *Compiler) popLoop() {
	c.cf.loops = c.cf.loops[:len(c.cf.loops)-1]
}

func (c *Compiler) currentLoop() *loopState {
	if len(c.cf.loops) == 0 {
		return nil
	}
	return c.cf.loops[len(c.cf.loops)-1]
}

func (c *Compiler) whileStatement() {
	loopStart := len(c.cf.fn.Code)
	ls := c.pushLoop()
	ls.continueTarget = loopStart

	c.expect(lexer.TokenLParen, "expected '(' after while")
	c.expression()
	c.expect(lexer.TokenRParen, "expected ')' after condition")

	exitJump := c.emitJump(bytecode.OpPopJumpIfFalse)
	c.statement()
	c.emitLoop(loopStart)
	c.patchJump(exitJump)
	for _, j := range ls.breakJumps {
		c.patchJump(j)
	}
	c.popLoop()
}

// loopStatement compiles the unconditional `loop { ... }` form (§4.7
// family 4's unconditional backward jump, no test).
func (c *Compiler) loopStatement() {
	loopStart := len(c.cf.fn.Code)
	ls := c.pushLoop()
	ls.continueTarget = loopStart

	c.statement()
	c.emitLoop(loopStart)
	for _, j := range ls.breakJumps {
		c.patchJump(j)
	}
	c.popLoop()
}

// forStatement compiles `for x in iterable { ... }` through the iterator
// protocol: GET_ITERATOR_OBJECT once, then GET_ITERATOR_NEXT each pass,
// comparing against the canned empty-Err sentinel by identity (§4.7
// family 9, §4.8).
func (c *Compiler) forStatement() {
	c.beginScope()
	c.expect(lexer.TokenIdent, "expected loop variable name")
	varName := c.prev.Literal
	c.expect(lexer.TokenIn, "expected 'in' in for loop")
	c.expression()
	c.expect(lexer.TokenLBrace, "expected '{' to begin for-loop body")

	c.emitOp(bytecode.OpGetIterator)
	c.declareLocal("$iter")

	loopStart := len(c.cf.fn.Code)
	ls := c.pushLoop()
	ls.continueTarget = loopStart

	iterSlot := c.resolveLocal(c.cf, "$iter")
	c.emitOpByte(bytecode.OpGetLocal, byte(iterSlot))
	c.emitOp(bytecode.OpIterNext)
	exitJump := c.emitJump(bytecode.OpJumpIfErr)

	// Not exhausted: IterNext's result is still on top of the stack.
	// declareLocal binds varName to that slot directly, no extra push.
	c.beginScope()
	c.declareLocal(varName)
	c.block()
	c.endScope()

	c.emitLoop(loopStart)
	c.patchJump(exitJump)
	// Exhausted: the err sentinel IterNext left on top of the stack was
	// never popped by the jump itself, so discard it here before falling
	// out of the loop.
	c.emitOp(bytecode.OpPop)
	for _, j := range ls.breakJumps {
		c.patchJump(j)
	}
	c.popLoop()
	c.endScope() // pops $iter
}

func (c *Compiler) breakStatement() {
	ls := c.currentLoop()
	if ls == nil {
		c.errorAt(c.prev, "break used outside a loop")
		return
	}
	c.popLocalsAbove(ls.scopeDepth)
	ls.breakJumps = append(ls.breakJumps, c.emitJump(bytecode.OpJump))
	c.consumeStatementEnd()
}

func (c *Compiler) continueStatement() {
	ls := c.currentLoop()
	if ls == nil {
		c.errorAt(c.prev, "continue used outside a loop")
		return
	}
	c.popLocalsAbove(ls.scopeDepth)
	c.emitLoop(ls.continueTarget)
	c.consumeStatementEnd()
}

// popLocalsAbove emits POP for every local declared deeper than depth,
// without touching the compiler's own locals array (break/continue leave
// the enclosing scope's bookkeeping alone; the block's own endScope still
// runs when control resumes normally).
func (c *Compiler) popLocalsAbove(depth int) {
	for i := len(c.cf.locals) - 1; i >= 0 && c.cf.locals[i].depth > depth; i-- {
		if c.cf.locals[i].isCaptured {
			c.emitOp(bytecode.OpCloseUpvalue)
		} else {
			c.emitOp(bytecode.OpPop)
		}
	}
}

func (c *Compiler) returnStatement() {
	if c.cf.fnKind == fnKindScript {
		c.errorAt(c.prev, "cannot return from top-level code")
	}
	if c.match(lexer.TokenSemicolon) || c.check(lexer.TokenRBrace) {
		c.emitReturn()
		return
	}
	if c.cf.fnKind == fnKindInitializer {
		c.errorAt(c.prev, "cannot return a value from an initializer")
	}
	c.expression()
	c.consumeStatementEnd()
	c.emitOp(bytecode.OpReturn)
}

// importStatement compiles `import a::b;` and `import a::b::{x, y};`
// (§4.7 family 11, §4.9). IMPORT_MODULE walks each `::`-separated
// component, registering the empty module before compiling its body so
// cyclic imports resolve to the partially-populated module (§4.9
// "cycles").
func (c *Compiler) importStatement() {
	var segments []int
	c.expect(lexer.TokenIdent, "expected module path")
	segments = append(segments, c.internString(c.prev.Literal))
	for c.match(lexer.TokenColonColon) {
		if c.check(lexer.TokenLBrace) {
			break
		}
		c.expect(lexer.TokenIdent, "expected module path segment")
		segments = append(segments, c.internString(c.prev.Literal))
	}

	if len(segments) > 255 {
		c.errorAt(c.prev, "import path too long")
		return
	}

	var members []int
	if c.match(lexer.TokenLBrace) {
		for {
			c.expect(lexer.TokenIdent, "expected imported member name")
			members = append(members, c.internString(c.prev.Literal))
			if !c.match(lexer.TokenComma) {
				break
			}
		}
		c.expect(lexer.TokenRBrace, "expected '}' after import member list")
	}

	if len(members) == 0 {
		c.emitOp(bytecode.OpImportModule)
		c.emitByte(byte(len(segments)))
		for _, s := range segments {
			c.emitU16(s)
		}
		// bind the last path segment as a local/global of that name
		lastName := segments[len(segments)-1]
		if c.cf.scopeDepth > 0 {
			c.declareLocal("") // the module's slot, named after the last path segment on the next line
			c.cf.locals[len(c.cf.locals)-1].name = c.constantName(lastName)
		} else {
			c.emitOpU16(bytecode.OpDefineGlobal, lastName)
		}
	} else {
		c.emitOp(bytecode.OpImportMembers)
		c.emitByte(byte(len(segments)))
		for _, s := range segments {
			c.emitU16(s)
		}
		c.emitByte(byte(len(members)))
		for _, m := range members {
			c.emitU16(m)
		}
		if c.cf.scopeDepth > 0 {
			for _, m := range members {
				c.declareLocal(c.constantName(m))
			}
		} else {
			// The VM pushes the members in list order, so the globals are
			// defined from the top of the stack down.
			for i := len(members) - 1; i >= 0; i-- {
				c.emitOpU16(bytecode.OpDefineGlobal, members[i])
			}
		}
	}
	c.consumeStatementEnd()
}

func (c *Compiler) constantName(idx int) string {
	if idx < 0 || idx >= len(c.cf.fn.Constants) {
		return ""
	}
	v := c.cf.fn.Constants[idx]
	if s, ok := v.AsObj().(interface{ String() string }); ok {
		return s.String()
	}
	return ""
}
