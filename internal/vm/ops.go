package vm

import (
	"github.com/pyro-lang/pyro/internal/bytecode"
	"github.com/pyro-lang/pyro/internal/object"
	"github.com/pyro-lang/pyro/internal/panicx"
)

// runLoop is the bytecode dispatch loop for the frame most recently
// pushed by callValue; it returns once that frame (and only that frame)
// returns, so nested calls recurse through callValue -> runLoop ->
// callValue just like a tree-walking interpreter would, but over
// compiled bytecode (§4.8).
func (vm *VM) runLoop() (result object.Value, outerPanic *panicx.Panic) {
	frameDepthOnEntry := len(vm.frames)

	defer func() {
		if r := recover(); r != nil {
			p, ok := r.(*panicx.Panic)
			if !ok {
				panic(r)
			}
			recovered, handled := vm.unwindToHandler(p, frameDepthOnEntry-1)
			if handled {
				result, outerPanic = recovered, nil
				return
			}
			outerPanic = p
		}
	}()

	for {
		f := vm.currentFrame()
		code := f.closure.Fn.Code

		vm.Collector.MaybeCollect(vm)

		op := bytecode.Opcode(code[f.ip])
		f.ip++

		switch op {
		case bytecode.OpNull:
			vm.push(object.Null())
		case bytecode.OpTrue:
			vm.push(object.Bool(true))
		case bytecode.OpFalse:
			vm.push(object.Bool(false))
		case bytecode.OpSmallInt:
			vm.push(object.I64(int64(code[f.ip])))
			f.ip++
		case bytecode.OpConstant:
			idx := vm.readU16(f)
			vm.push(f.closure.Fn.Constants[idx])

		case bytecode.OpPop:
			vm.pop()
		case bytecode.OpDup:
			vm.push(vm.peek(0))
		case bytecode.OpEcho:
			v := vm.pop()
			vm.Stdout(vm.stringify(v))
			vm.Stdout("\n")
		case bytecode.OpAssert:
			idx := vm.readU16(f)
			cond := vm.pop()
			if !cond.IsTruthy() {
				name := "<unknown>"
				if s, ok := f.closure.Fn.Constants[idx].AsObj().(*object.Str); ok {
					name = s.String()
				}
				vm.raise(vm.runtimeError(panicx.AssertionFailed, "assertion failed: %s", name))
			}

		case bytecode.OpGetLocal:
			slot := int(code[f.ip])
			f.ip++
			vm.push(vm.stack[f.base+slot])
		case bytecode.OpSetLocal:
			slot := int(code[f.ip])
			f.ip++
			vm.stack[f.base+slot] = vm.peek(0)

		case bytecode.OpGetUpvalue:
			idx := vm.readU16(f)
			vm.push(f.closure.Upvalues[idx].Get())
		case bytecode.OpSetUpvalue:
			idx := vm.readU16(f)
			f.closure.Upvalues[idx].Set(vm.peek(0))

		case bytecode.OpGetGlobal:
			idx := vm.readU16(f)
			name := vm.constName(f, idx)
			v, ok := vm.globals[name]
			if !ok {
				vm.raise(vm.runtimeError(panicx.NameError, "undefined variable %q", name))
			}
			vm.push(v)
		case bytecode.OpSetGlobal:
			idx := vm.readU16(f)
			name := vm.constName(f, idx)
			if _, ok := vm.globals[name]; !ok {
				vm.raise(vm.runtimeError(panicx.NameError, "undefined variable %q", name))
			}
			vm.globals[name] = vm.peek(0)
		case bytecode.OpDefineGlobal:
			idx := vm.readU16(f)
			name := vm.constName(f, idx)
			vm.globals[name] = vm.pop()
			vm.module.Set(name, vm.globals[name])

		case bytecode.OpGetField:
			idx := vm.readU16(f)
			name := vm.constName(f, idx)
			recv := vm.pop()
			v, p := vm.getField(recv, name)
			if p != nil {
				vm.raise(p)
			}
			vm.push(v)
		case bytecode.OpSetField:
			idx := vm.readU16(f)
			name := vm.constName(f, idx)
			val := vm.pop()
			recv := vm.pop()
			p := vm.setField(recv, name, val)
			if p != nil {
				vm.raise(p)
			}
			vm.push(val)

		case bytecode.OpAdd, bytecode.OpSub, bytecode.OpMul, bytecode.OpDiv, bytecode.OpFloorDiv,
			bytecode.OpMod, bytecode.OpPow, bytecode.OpBitAnd, bytecode.OpBitOr, bytecode.OpBitXor,
			bytecode.OpShiftLeft, bytecode.OpShiftRight,
			bytecode.OpEq, bytecode.OpNotEq, bytecode.OpLess, bytecode.OpLessEq, bytecode.OpGreater, bytecode.OpGreaterEq:
			b := vm.pop()
			a := vm.pop()
			v, p := vm.binaryOp(op, a, b)
			if p != nil {
				vm.raise(p)
			}
			vm.push(v)

		case bytecode.OpNeg:
			v, p := vm.unaryNeg(vm.pop())
			if p != nil {
				vm.raise(p)
			}
			vm.push(v)
		case bytecode.OpNot:
			vm.push(object.Bool(!vm.pop().IsTruthy()))
		case bytecode.OpBitNot:
			v := vm.pop()
			if !v.IsI64() {
				vm.raise(vm.runtimeError(panicx.TypeError, "~ requires an integer operand"))
			}
			vm.push(object.I64(^v.AsI64()))

		case bytecode.OpJump:
			off := vm.readU16(f)
			f.ip += off
		case bytecode.OpJumpBack:
			off := vm.readU16(f)
			f.ip -= off
		case bytecode.OpPopJumpIfFalse:
			off := vm.readU16(f)
			if !vm.pop().IsTruthy() {
				f.ip += off
			}
		case bytecode.OpJumpIfFalse:
			off := vm.readU16(f)
			if !vm.peek(0).IsTruthy() {
				f.ip += off
			}
		case bytecode.OpJumpIfTrue:
			off := vm.readU16(f)
			if vm.peek(0).IsTruthy() {
				f.ip += off
			}
		case bytecode.OpJumpIfErr:
			off := vm.readU16(f)
			if vm.peek(0).IsErrTuple() {
				f.ip += off
			}
		case bytecode.OpJumpIfNotErr:
			off := vm.readU16(f)
			if !vm.peek(0).IsErrTuple() {
				f.ip += off
			}
		case bytecode.OpJumpIfNotNull:
			off := vm.readU16(f)
			if !vm.peek(0).IsNull() {
				f.ip += off
			}

		case bytecode.OpCall:
			argc := int(code[f.ip])
			f.ip++
			callee := vm.peek(argc)
			_, p := vm.callValue(callee, argc, false)
			if p != nil {
				vm.raise(p)
			}

		case bytecode.OpInvokeMethod:
			idx := vm.readU16(f)
			argc := int(code[f.ip])
			f.ip++
			name := vm.constName(f, idx)
			recv := vm.peek(argc)
			p := vm.invoke(recv, name, argc)
			if p != nil {
				vm.raise(p)
			}

		case bytecode.OpInvokeSuperMethod:
			idx := vm.readU16(f)
			argc := int(code[f.ip])
			f.ip++
			name := vm.constName(f, idx)
			super := vm.pop().AsObj().(*object.Class)
			method, ok := super.LookupMethod(name)
			if !ok {
				vm.raise(vm.runtimeError(panicx.NameError, "%s has no method %q", super.Name, name))
			}
			if _, p := vm.callValue(method, argc, false); p != nil {
				vm.raise(p)
			}

		case bytecode.OpMakeClosure:
			idx := vm.readU16(f)
			fn := f.closure.Fn.Constants[idx].AsObj().(*object.Fn)
			upvalues := make([]*object.Upvalue, fn.UpvalueCount)
			for i := 0; i < fn.UpvalueCount; i++ {
				isLocal := code[f.ip]
				f.ip++
				index := int(code[f.ip])<<8 | int(code[f.ip+1])
				f.ip += 2
				if isLocal != 0 {
					upvalues[i] = vm.captureUpvalue(f.base + index)
				} else {
					upvalues[i] = f.closure.Upvalues[index]
				}
			}
			vm.push(object.FromObj(vm.Alloc.NewClosure(fn, upvalues, f.closure.ModuleID)))

		case bytecode.OpCloseUpvalue:
			vm.closeUpvalues(len(vm.stack) - 1)
			vm.pop()

		case bytecode.OpReturn:
			retVal := vm.pop()
			vm.closeUpvalues(f.base)
			vm.stack = vm.stack[:f.base]
			vm.frames = vm.frames[:len(vm.frames)-1]
			if len(vm.frames) < frameDepthOnEntry {
				return retVal, nil
			}
			vm.push(retVal)

		case bytecode.OpClass:
			idx := vm.readU16(f)
			name := vm.constName(f, idx)
			cls := object.NewClass(name)
			vm.Alloc.New(cls)
			vm.push(object.FromObj(cls))

		case bytecode.OpInherit:
			subVal := vm.pop()
			superVal := vm.peek(0)
			super, ok := superVal.AsObj().(*object.Class)
			if !ok {
				vm.raise(vm.runtimeError(panicx.TypeError, "superclass must be a class"))
			}
			sub := subVal.AsObj().(*object.Class)
			if sub == super {
				// §8 "Class inheriting from itself raises TypeError"; caught
				// here rather than at compile time so aliasing (`var X = A;
				// class A < X {}`) is covered, not just the literal-name case.
				vm.raise(vm.runtimeError(panicx.TypeError, "a class cannot inherit from itself"))
			}
			sub.Superclass = super
			for name, m := range super.Methods {
				sub.SetMethod(name, m)
			}
			for name, idx := range super.FieldIndex {
				sub.FieldIndex[name] = idx
			}
			sub.FieldInit = append([]object.Value(nil), super.FieldInit...)

		case bytecode.OpDefineMethod:
			idx := vm.readU16(f)
			name := vm.constName(f, idx)
			method := vm.pop()
			cls := vm.peek(0).AsObj().(*object.Class)
			cls.SetMethod(name, method)

		case bytecode.OpDefineField:
			idx := vm.readU16(f)
			name := vm.constName(f, idx)
			init := vm.pop()
			cls := vm.peek(0).AsObj().(*object.Class)
			cls.AddField(name, init)

		case bytecode.OpGetIterator:
			v := vm.pop()
			it, p := vm.makeIterator(v)
			if p != nil {
				vm.raise(p)
			}
			vm.push(object.FromObj(it))
		case bytecode.OpIterNext:
			itVal := vm.pop()
			it, ok := itVal.AsObj().(*object.Iter)
			if !ok {
				vm.raise(vm.runtimeError(panicx.TypeError, "not an iterator"))
			}
			v, ok := it.Next(vm)
			if !ok {
				vm.push(object.FromObj(vm.exhaustedSentinel()))
			} else {
				vm.push(v)
			}

		case bytecode.OpTry:
			off := vm.readU16(f)
			vm.tries = append(vm.tries, tryHandler{
				frameIndex: len(vm.frames) - 1,
				stackDepth: len(vm.stack),
				target:     f.ip + off,
			})
		case bytecode.OpPopTry:
			// The protected expression returned normally; discard the
			// handler OP_TRY installed so a later panic in this same frame
			// doesn't mistake it for an active recovery target.
			if len(vm.tries) > 0 {
				vm.tries = vm.tries[:len(vm.tries)-1]
			}

		case bytecode.OpImportModule:
			n := int(code[f.ip])
			f.ip++
			segs := make([]string, n)
			for i := 0; i < n; i++ {
				idx := vm.readU16(f)
				segs[i] = vm.constName(f, idx)
			}
			mod, p := vm.Importer.Load(vm, segs)
			if p != nil {
				vm.raise(p)
			}
			vm.push(object.FromObj(mod))

		case bytecode.OpImportMembers:
			n := int(code[f.ip])
			f.ip++
			segs := make([]string, n)
			for i := 0; i < n; i++ {
				idx := vm.readU16(f)
				segs[i] = vm.constName(f, idx)
			}
			mod, p := vm.Importer.Load(vm, segs)
			if p != nil {
				vm.raise(p)
			}
			m := int(code[f.ip])
			f.ip++
			for i := 0; i < m; i++ {
				idx := vm.readU16(f)
				name := vm.constName(f, idx)
				v, ok := mod.Get(name)
				if !ok {
					vm.raise(vm.runtimeError(panicx.NameError, "module %q has no member %q", mod.Path, name))
				}
				vm.push(v)
			}

		case bytecode.OpUnpack:
			n := int(code[f.ip])
			f.ip++
			src := vm.pop()
			vals, p := vm.unpackInto(src, n)
			if p != nil {
				vm.raise(p)
			}
			for _, v := range vals {
				vm.push(v)
			}

		case bytecode.OpBuildVec:
			n := vm.readU16(f)
			vec := vm.Alloc.NewVec()
			elems := append([]object.Value(nil), vm.stack[len(vm.stack)-n:]...)
			vm.stack = vm.stack[:len(vm.stack)-n]
			for _, e := range elems {
				vec.Append(e)
			}
			vec.SetClass(vm.classes.vec)
			vm.push(object.FromObj(vec))

		case bytecode.OpBuildTup:
			n := vm.readU16(f)
			elems := append([]object.Value(nil), vm.stack[len(vm.stack)-n:]...)
			vm.stack = vm.stack[:len(vm.stack)-n]
			tup := vm.Alloc.NewTup(elems)
			tup.SetClass(vm.classes.tup)
			vm.push(object.FromObj(tup))

		case bytecode.OpBuildMap:
			n := vm.readU16(f)
			pairs := append([]object.Value(nil), vm.stack[len(vm.stack)-2*n:]...)
			vm.stack = vm.stack[:len(vm.stack)-2*n]
			m := vm.Alloc.NewMap()
			for i := 0; i < n; i++ {
				m.Set(pairs[2*i], pairs[2*i+1])
			}
			m.SetClass(vm.classes.mapCls)
			vm.push(object.FromObj(m))

		case bytecode.OpBuildSet:
			n := vm.readU16(f)
			elems := append([]object.Value(nil), vm.stack[len(vm.stack)-n:]...)
			vm.stack = vm.stack[:len(vm.stack)-n]
			s := vm.Alloc.NewSet()
			for _, e := range elems {
				s.Set(e, object.Bool(true))
			}
			s.SetClass(vm.classes.setCls)
			vm.push(object.FromObj(s))

		case bytecode.OpGetIndex:
			idx := vm.pop()
			recv := vm.pop()
			v, p := vm.getIndex(recv, idx)
			if p != nil {
				vm.raise(p)
			}
			vm.push(v)
		case bytecode.OpSetIndex:
			val := vm.pop()
			idx := vm.pop()
			recv := vm.pop()
			p := vm.setIndex(recv, idx, val)
			if p != nil {
				vm.raise(p)
			}
			vm.push(val)

		default:
			vm.raise(vm.hardPanic(panicx.Error, "invalid opcode %d", op))
		}
	}
}

func (vm *VM) readU16(f *CallFrame) int {
	v := int(f.closure.Fn.Code[f.ip])<<8 | int(f.closure.Fn.Code[f.ip+1])
	f.ip += 2
	return v
}

func (vm *VM) constName(f *CallFrame, idx int) string {
	if s, ok := f.closure.Fn.Constants[idx].AsObj().(*object.Str); ok {
		return s.String()
	}
	return ""
}

// raise panics with a *panicx.Panic, unwound by runLoop's recover/defer
// into either a TRY landing pad or the caller.
func (vm *VM) raise(p *panicx.Panic) {
	panic(p)
}

// unwindToHandler pops stack/frames back to the most recent try handler at
// or above minFrame and, if one exists, leaves an Err tuple in its place
// and resumes there; otherwise it reports unhandled so the panic keeps
// propagating to an enclosing runLoop (§4.7 family 10, §7).
func (vm *VM) unwindToHandler(p *panicx.Panic, minFrame int) (object.Value, bool) {
	if p.Hard {
		return object.Value{}, false
	}
	for len(vm.tries) > 0 {
		h := vm.tries[len(vm.tries)-1]
		if h.frameIndex < minFrame {
			return object.Value{}, false
		}
		vm.tries = vm.tries[:len(vm.tries)-1]
		vm.frames = vm.frames[:h.frameIndex+1]
		vm.stack = vm.stack[:h.stackDepth]
		errTup := vm.Alloc.NewTup([]object.Value{
			object.I64(int64(p.Kind)),
			object.FromObj(vm.Alloc.Intern([]byte(p.Message))),
		})
		errTup.IsErr = true
		errTup.SetClass(vm.classes.tup)
		vm.push(object.FromObj(errTup))
		vm.currentFrame().ip = h.target
		return vm.runLoop()
	}
	return object.Value{}, false
}

func (vm *VM) captureUpvalue(stackIndex int) *object.Upvalue {
	for _, uv := range vm.openUpvalues {
		if uv.StackIndex == stackIndex && uv.IsOpen() {
			return uv
		}
	}
	uv := object.NewOpenUpvalue(vm.stack, stackIndex)
	vm.openUpvalues = append(vm.openUpvalues, uv)
	return uv
}

func (vm *VM) closeUpvalues(fromStackIndex int) {
	kept := vm.openUpvalues[:0]
	for _, uv := range vm.openUpvalues {
		if uv.StackIndex >= fromStackIndex {
			uv.Close()
		} else {
			kept = append(kept, uv)
		}
	}
	vm.openUpvalues = kept
}
