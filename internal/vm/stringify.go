package vm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pyro-lang/pyro/internal/object"
	"github.com/pyro-lang/pyro/internal/utf8"
)

// stringify renders v for OP_ECHO and string interpolation/concatenation
// (§4.1): instances consult an overridable "$str" method first, every
// built-in kind otherwise gets a canonical literal-like rendering.
func (vm *VM) stringify(v object.Value) string {
	switch v.Kind() {
	case object.KindNull:
		return "null"
	case object.KindBool:
		if v.AsBool() {
			return "true"
		}
		return "false"
	case object.KindI64:
		return strconv.FormatInt(v.AsI64(), 10)
	case object.KindF64:
		return formatFloat(v.AsF64())
	case object.KindChar:
		return string(append([]byte(nil), utf8.WriteCodepoint(nil, v.AsChar())...))
	case object.KindObj:
		return vm.stringifyObj(v)
	default:
		return ""
	}
}

func (vm *VM) stringifyObj(v object.Value) string {
	if object.HasMethod(v, "$str") {
		result, p := vm.invokeNamed(v, "$str", nil)
		if p == nil {
			if s, ok := result.AsObj().(*object.Str); ok {
				return s.String()
			}
		}
	}
	switch o := v.AsObj().(type) {
	case *object.Str:
		return o.String()
	case *object.Vec:
		return vm.joinValues("[", "]", o.Slice())
	case *object.Tup:
		return vm.joinValues("(", ")", o.Elements)
	case *object.Buf:
		return string(o.Bytes())
	case *object.Map:
		return vm.stringifyMap(o)
	case *object.Class:
		return fmt.Sprintf("<class %s>", o.Name)
	case *object.Instance:
		return fmt.Sprintf("<instance of %s>", o.Class().Name)
	case *object.Fn:
		return fmt.Sprintf("<fn %s>", o.Name)
	case *object.Closure:
		return fmt.Sprintf("<fn %s>", o.Fn.Name)
	case *object.NativeFn:
		return fmt.Sprintf("<native fn %s>", o.Name)
	case *object.BoundMethod:
		return vm.stringify(o.Method)
	case *object.Module:
		return fmt.Sprintf("<module %s>", o.Path)
	case *object.Queue:
		return fmt.Sprintf("<queue, %d items>", o.Len())
	default:
		return fmt.Sprintf("<%s>", v.AsObj().ObjKind())
	}
}

func (vm *VM) joinValues(open, close string, elems []object.Value) string {
	var b strings.Builder
	b.WriteString(open)
	for i, e := range elems {
		if i > 0 {
			b.WriteString(", ")
		}
		if s, ok := e.AsObj().(*object.Str); ok {
			b.WriteByte('"')
			b.WriteString(s.String())
			b.WriteByte('"')
		} else {
			b.WriteString(vm.stringify(e))
		}
	}
	b.WriteString(close)
	return b.String()
}

func (vm *VM) stringifyMap(m *object.Map) string {
	var b strings.Builder
	if m.IsSet {
		b.WriteString("{")
		first := true
		m.Entries(func(k, _ object.Value) bool {
			if !first {
				b.WriteString(", ")
			}
			first = false
			b.WriteString(vm.stringify(k))
			return true
		})
		b.WriteString("}")
		return b.String()
	}
	b.WriteString("{")
	first := true
	m.Entries(func(k, v object.Value) bool {
		if !first {
			b.WriteString(", ")
		}
		first = false
		b.WriteString(vm.stringify(k))
		b.WriteString(": ")
		b.WriteString(vm.stringify(v))
		return true
	})
	b.WriteString("}")
	return b.String()
}

func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") && !strings.Contains(s, "Inf") && !strings.Contains(s, "NaN") {
		s += ".0"
	}
	return s
}
