package errors

import (
	"fmt"
	"strings"

	"github.com/lucklove/dyon/internal/token"
)

// StackFrame is a single call-stack entry: the function being executed and
// where in the source it was called from.
type StackFrame struct {
	Position     *token.Position
	FunctionName string
}

// String renders "name [line: N, column: M]", or just the name if the
// position is unavailable (e.g. a built-in frame).
func (sf StackFrame) String() string {
	if sf.Position == nil {
		return sf.FunctionName
	}
	return fmt.Sprintf("%s [line: %d, column: %d]", sf.FunctionName, sf.Position.Line, sf.Position.Column)
}

// StackTrace is a sequence of frames ordered oldest (bottom) to newest (top).
type StackTrace []StackFrame

// String renders the trace newest-frame-first, one per line.
func (st StackTrace) String() string {
	if len(st) == 0 {
		return ""
	}

	var sb strings.Builder
	for i := len(st) - 1; i >= 0; i-- {
		sb.WriteString(st[i].String())
		if i > 0 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// Depth returns the number of frames in the stack.
func (st StackTrace) Depth() int {
	return len(st)
}

// NewStackFrame creates a new stack frame.
func NewStackFrame(functionName string, pos *token.Position) StackFrame {
	return StackFrame{FunctionName: functionName, Position: pos}
}
