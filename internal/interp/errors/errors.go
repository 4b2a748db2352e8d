// Package errors defines the evaluator's error taxonomy: every runtime
// failure is raised through one of the constructors below, never a bare
// fmt.Errorf, so each carries a category and a source position for
// diagnostics (spec §7: Type, Shape, Resolution, Stack contract, I/O).
package errors

import (
	"fmt"

	"github.com/lucklove/dyon/internal/ast"
	cerrors "github.com/lucklove/dyon/internal/errors"
	"github.com/lucklove/dyon/internal/token"
)

// Category groups evaluator errors for reporting purposes.
type Category string

const (
	// CategoryType covers operand/assignment type mismatches.
	CategoryType Category = "type"
	// CategoryShape covers arity mismatches and break/continue escaping a function.
	CategoryShape Category = "shape"
	// CategoryResolution covers unknown locals, missing keys, bad indices, unknown functions.
	CategoryResolution Category = "resolution"
	// CategoryStackContract covers production/flow contract violations.
	CategoryStackContract Category = "stack-contract"
	// CategoryIO covers read_line/read_number host I/O failures.
	CategoryIO Category = "io"
)

// EvalError is a fatal evaluator error: the language has no catch construct,
// so every EvalError terminates the running program.
type EvalError struct {
	Err      error
	Pos      token.Position
	Category Category
	Message  string

	// Trace accumulates one frame per user function the error unwound
	// through, `main` included, innermost first. That is the reverse of
	// StackTrace's oldest-first order, so Trace.String() lists the outermost
	// frame first, the same order the `backtrace` built-in uses. Builtins
	// never append a frame here.
	Trace cerrors.StackTrace
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("%s error at %s: %s", e.Category, e.Pos, e.Message)
}

func (e *EvalError) Unwrap() error { return e.Err }

// AppendFrame records that the error unwound through fn's call frame, called
// by the call protocol's error path as it pops each frame on the way out.
func (e *EvalError) AppendFrame(fn string, pos token.Position) {
	e.Trace = append(e.Trace, cerrors.NewStackFrame(fn, &pos))
}

func newf(category Category, pos token.Position, format string, args ...any) *EvalError {
	return &EvalError{Category: category, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// NewTypeErrorf creates a type-category error.
func NewTypeErrorf(pos token.Position, format string, args ...any) *EvalError {
	return newf(CategoryType, pos, format, args...)
}

// NewShapeErrorf creates a shape-category error.
func NewShapeErrorf(pos token.Position, format string, args ...any) *EvalError {
	return newf(CategoryShape, pos, format, args...)
}

// NewResolutionErrorf creates a resolution-category error.
func NewResolutionErrorf(pos token.Position, format string, args ...any) *EvalError {
	return newf(CategoryResolution, pos, format, args...)
}

// NewStackContractErrorf creates a stack-contract-category error.
func NewStackContractErrorf(pos token.Position, format string, args ...any) *EvalError {
	return newf(CategoryStackContract, pos, format, args...)
}

// NewIOErrorf wraps a host I/O error (read_line / read_number) as an EvalError.
func NewIOErrorf(pos token.Position, err error, format string, args ...any) *EvalError {
	e := newf(CategoryIO, pos, format, args...)
	e.Err = err
	return e
}

// PositionFromNode extracts the position of an AST node, or the zero
// Position if node is nil.
func PositionFromNode(node ast.Node) token.Position {
	if node == nil {
		return token.Position{}
	}
	return node.Pos()
}
