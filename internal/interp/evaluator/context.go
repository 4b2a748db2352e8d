package evaluator

import (
	"bufio"
	"io"
	"math/rand"

	"github.com/lucklove/dyon/internal/ast"
	"github.com/lucklove/dyon/internal/interp/runtime"
	"github.com/lucklove/dyon/internal/token"
)

// Builtin is a built-in procedure's signature: it receives the evaluator
// context (for output, input, RNG, and stack/call-frame introspection used
// by debug/backtrace), the call-site position (for error reporting), and
// its already-evaluated arguments, and returns either a value or nothing.
type Builtin struct {
	Name    string
	Arity   int
	Returns bool
	Fn      func(ctx *Context, pos token.Position, args []runtime.Value) (runtime.Value, error)
}

// Context is the evaluator's runtime state: the stacks, the immutable
// function tables, and the host collaborators (output, input, RNG) every
// built-in needs. One Context is created per program run and threaded
// explicitly through every Eval call — there is no global mutable state,
// per spec §9's design note.
type Context struct {
	Values *runtime.ValueStack
	Calls  *runtime.CallStack

	Functions map[string]*ast.FunctionDecl
	Builtins  map[string]*Builtin

	Output *bufio.Writer
	Input  *bufio.Reader
	Rand   *rand.Rand
}

// Config holds the host-tunable knobs for a single interpreter run, mirroring
// the teacher's evaluator.Config: how deep function calls may recurse before
// the call stack reports an overflow, the source name used in diagnostics,
// and the RNG seed backing `random()`.
type Config struct {
	MaxCallDepth int
	SourceName   string
	Seed         int64
}

// DefaultConfig returns the Config a bare `dyon run` uses absent any flags.
func DefaultConfig() Config {
	return Config{
		MaxCallDepth: runtime.DefaultMaxCallDepth,
		SourceName:   "<input>",
		Seed:         1,
	}
}

// NewContext wires a fresh Context around the given program, output and
// input streams, and RNG seed.
func NewContext(program *ast.Program, builtins map[string]*Builtin, out io.Writer, in io.Reader, seed int64) *Context {
	return NewContextWithConfig(program, builtins, out, in, Config{MaxCallDepth: runtime.DefaultMaxCallDepth, Seed: seed})
}

// NewContextWithConfig is NewContext generalized over Config, used by `dyon
// run` so --seed/--max-depth flags reach the call stack and RNG.
func NewContextWithConfig(program *ast.Program, builtins map[string]*Builtin, out io.Writer, in io.Reader, cfg Config) *Context {
	functions := make(map[string]*ast.FunctionDecl, len(program.Functions))
	for _, fn := range program.Functions {
		functions[fn.Name] = fn
	}
	values := runtime.NewValueStack()
	return &Context{
		Values:    values,
		Calls:     runtime.NewCallStack(values, cfg.MaxCallDepth),
		Functions: functions,
		Builtins:  builtins,
		Output:    bufio.NewWriter(out),
		Input:     bufio.NewReader(in),
		Rand:      rand.New(rand.NewSource(cfg.Seed)),
	}
}
