package panicx

import (
	"strconv"
	"strings"
)

// Format renders a Panic the way the driver prints an uncaught error: the
// kind and message, then one "at" line per captured frame in reverse order
// of Stack; the VM stores frames innermost first, so the outermost call is
// printed first and the innermost last (§7 "the driver prints the message
// and a stack trace").
func (p *Panic) Format() string {
	var b strings.Builder
	b.WriteString(p.Kind.String())
	b.WriteString(": ")
	b.WriteString(p.Message)
	for i := len(p.Stack) - 1; i >= 0; i-- {
		f := p.Stack[i]
		b.WriteString("\n  at ")
		if f.FnName != "" {
			b.WriteString(f.FnName)
			b.WriteString(" ")
		}
		if f.SourceID != "" {
			b.WriteString("(")
			b.WriteString(f.SourceID)
			if f.Line > 0 {
				b.WriteString(":")
				b.WriteString(strconv.Itoa(f.Line))
			}
			b.WriteString(")")
		}
	}
	return b.String()
}
